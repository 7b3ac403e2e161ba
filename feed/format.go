package feed

import (
	"fmt"
	"strings"
)

// Format selects an output dialect.
type Format int

const (
	RSS1 Format = iota
	RSS2
	Atom
)

// Formats lists every supported format in a stable order.
var Formats = []Format{RSS1, RSS2, Atom}

var formatInfo = [...]struct {
	name        string
	title       string
	contentType string
	extension   string
}{
	RSS1: {"rss1", "RSS 1.0", "application/rdf+xml", ".rdf"},
	RSS2: {"rss2", "RSS 2.0", "application/rss+xml", ".xml"},
	Atom: {"atom", "Atom 1.0", "application/atom+xml", ".atom"},
}

func (f Format) valid() bool {
	return f >= 0 && int(f) < len(formatInfo)
}

// String returns the short name used in configuration and on the command line.
func (f Format) String() string {
	if !f.valid() {
		return fmt.Sprintf("Format(%d)", int(f))
	}
	return formatInfo[f].name
}

// Title returns the human-readable name, e.g. "RSS 2.0".
func (f Format) Title() string {
	if !f.valid() {
		return f.String()
	}
	return formatInfo[f].title
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	if !f.valid() {
		return "application/xml"
	}
	return formatInfo[f].contentType
}

// Extension returns the conventional file extension including the dot.
func (f Format) Extension() string {
	if !f.valid() {
		return ".xml"
	}
	return formatInfo[f].extension
}

// ParseFormat accepts the short names plus a few common spellings
// ("rss", "rss2.0", "atom1.0"), case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rss1", "rss1.0", "rss 1.0", "rdf":
		return RSS1, nil
	case "rss2", "rss2.0", "rss 2.0", "rss":
		return RSS2, nil
	case "atom", "atom1.0", "atom 1.0":
		return Atom, nil
	}
	return 0, fmt.Errorf("unknown feed format %q (want rss1, rss2 or atom)", s)
}
