package feed

import (
	"fmt"
	"io"
	"os"

	"github.com/theoremus-urban-solutions/feedformatter/normalize"
	"github.com/theoremus-urban-solutions/feedformatter/xmltree"
)

// Format renders f as the given format.
func (f *Feed) Format(format Format, opts Options) (string, error) {
	if opts.Validate {
		if err := f.Validate(format); err != nil {
			return "", err
		}
	}

	b := &builder{feed: f, conv: normalize.Converter{Location: opts.Location}}
	if opts.Warnings != nil {
		b.rec = opts.Warnings
	}

	var (
		root *xmltree.Element
		err  error
	)
	switch format {
	case RSS1:
		root, err = b.rss1()
	case RSS2:
		root, err = b.rss2()
	case Atom:
		root, err = b.atom()
	default:
		return "", fmt.Errorf("format: unsupported format %v", format)
	}
	if err != nil {
		return "", fmt.Errorf("format %s: %w", format, err)
	}

	out := xmltree.Render(root, opts.Pretty)
	if format == RSS2 {
		out = xmlDeclaration + out
	}
	return out, nil
}

// FormatFile renders f and writes the result to filename, replacing any
// existing file.
func (f *Feed) FormatFile(format Format, filename string, opts Options) error {
	s, err := f.Format(format, opts)
	if err != nil {
		return err
	}
	return writeFile(filename, s)
}

func writeFile(filename, s string) (err error) {
	fp, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := fp.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", filename, cerr)
		}
	}()
	_, err = io.WriteString(fp, s)
	return err
}

// FormatRSS1String renders f as RSS 1.0.
func (f *Feed) FormatRSS1String(validate, pretty bool) (string, error) {
	return f.Format(RSS1, Options{Validate: validate, Pretty: pretty})
}

// FormatRSS2String renders f as RSS 2.0, prefixed by the XML declaration.
func (f *Feed) FormatRSS2String(validate, pretty bool) (string, error) {
	return f.Format(RSS2, Options{Validate: validate, Pretty: pretty})
}

// FormatAtomString renders f as Atom 1.0.
func (f *Feed) FormatAtomString(validate, pretty bool) (string, error) {
	return f.Format(Atom, Options{Validate: validate, Pretty: pretty})
}

// FormatRSS1File writes f as RSS 1.0 to filename.
func (f *Feed) FormatRSS1File(filename string, validate, pretty bool) error {
	return f.FormatFile(RSS1, filename, Options{Validate: validate, Pretty: pretty})
}

// FormatRSS2File writes f as RSS 2.0 to filename.
func (f *Feed) FormatRSS2File(filename string, validate, pretty bool) error {
	return f.FormatFile(RSS2, filename, Options{Validate: validate, Pretty: pretty})
}

// FormatAtomFile writes f as Atom 1.0 to filename.
func (f *Feed) FormatAtomFile(filename string, validate, pretty bool) error {
	return f.FormatFile(Atom, filename, Options{Validate: validate, Pretty: pretty})
}
