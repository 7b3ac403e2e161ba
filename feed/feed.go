package feed

import (
	"fmt"
	"time"

	"github.com/theoremus-urban-solutions/feedformatter/xmltree"
)

// Feed is the generic description every format is rendered from. Channel
// holds feed-level fields and Items the per-item (per-entry) fields, both in
// the value grammar of package xmltree.
type Feed struct {
	Channel map[string]any
	Items   []map[string]any
}

// Options controls one Format call.
type Options struct {
	// Validate runs the format's minimum-content checks first.
	Validate bool
	// Pretty indents the output by two spaces per level.
	Pretty bool
	// Location is the zone timestamps are rendered in; nil means time.Local.
	Location *time.Location
	// Warnings, when set, collects degradations that did not fail the call.
	Warnings *WarningAggregator
}

// New creates a feed. Nil arguments become empty values.
func New(channel map[string]any, items []map[string]any) *Feed {
	if channel == nil {
		channel = make(map[string]any)
	}
	return &Feed{Channel: channel, Items: items}
}

// FromUFP builds a feed from a universal feed document: a mapping with a
// structured "feed" value and an optional list under "items" ("entries" is
// accepted as well).
func FromUFP(doc map[string]any) (*Feed, error) {
	raw, ok := doc["feed"]
	if !ok || raw == nil {
		return nil, fmt.Errorf("%w: missing \"feed\"", ErrMalformedDocument)
	}
	channel, ok := xmltree.Structured(raw)
	if !ok {
		return nil, fmt.Errorf("%w: \"feed\" is %T, not a mapping", ErrMalformedDocument, raw)
	}

	key := "items"
	rawItems, ok := doc[key]
	if !ok || rawItems == nil {
		key = "entries"
		rawItems = doc[key]
	}
	if rawItems == nil {
		return New(channel, nil), nil
	}
	list, ok := xmltree.List(rawItems)
	if !ok {
		return nil, fmt.Errorf("%w: %q is %T, not a list", ErrMalformedDocument, key, rawItems)
	}
	items := make([]map[string]any, 0, len(list))
	for i, v := range list {
		m, ok := xmltree.Structured(v)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d] is %T, not a mapping", ErrMalformedDocument, key, i, v)
		}
		items = append(items, m)
	}
	return New(channel, items), nil
}
