package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"net/url"
	"path"
	"strings"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/yaml.v3"
)

// Encoding is the serialization of a source document.
type Encoding int

const (
	YAML Encoding = iota
	JSON
	Protobuf
)

func (e Encoding) String() string {
	switch e {
	case YAML:
		return "yaml"
	case JSON:
		return "json"
	case Protobuf:
		return "protobuf"
	}
	return fmt.Sprintf("Encoding(%d)", int(e))
}

// ParseEncoding accepts yaml, json and protobuf (or pb).
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(s) {
	case "yaml", "yml":
		return YAML, nil
	case "json":
		return JSON, nil
	case "protobuf", "proto", "pb":
		return Protobuf, nil
	}
	return 0, fmt.Errorf("unknown source encoding %q", s)
}

// DetectEncoding picks an encoding from the server's content type, then the
// file extension, defaulting to YAML.
func DetectEncoding(urlOrPath, contentType string) Encoding {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		switch {
		case mt == "application/json" || strings.HasSuffix(mt, "+json"):
			return JSON
		case mt == "application/x-protobuf" || mt == "application/protobuf":
			return Protobuf
		}
	}

	p := urlOrPath
	if IsURL(urlOrPath) {
		if u, err := url.Parse(urlOrPath); err == nil {
			p = u.Path
		}
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".json":
		return JSON
	case ".pb", ".binpb":
		return Protobuf
	}
	return YAML
}

// Decode parses a document into the generic value grammar.
func Decode(data []byte, enc Encoding) (map[string]any, error) {
	var doc map[string]any
	switch enc {
	case YAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	case JSON:
		d := json.NewDecoder(bytes.NewReader(data))
		d.UseNumber()
		if err := d.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	case Protobuf:
		var s structpb.Struct
		if err := proto.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("decode protobuf: %w", err)
		}
		doc = s.AsMap()
	default:
		return nil, fmt.Errorf("decode: unsupported encoding %v", enc)
	}
	if doc == nil {
		doc = make(map[string]any)
	}
	return doc, nil
}
