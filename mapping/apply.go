package mapping

import (
	"fmt"
	"sort"

	"github.com/theoremus-urban-solutions/feedformatter/normalize"
	"github.com/theoremus-urban-solutions/feedformatter/xmltree"
)

// Warning types recorded while applying a table.
const (
	// WarningDroppedValue: a normalizer turned a present value into nothing.
	WarningDroppedValue = "dropped_value"
	// WarningUnmappedKey: an input key matched no alias of the table.
	WarningUnmappedKey = "unmapped_key"
	// WarningInvalidName: a structured-value key is not a valid XML name.
	WarningInvalidName = "invalid_name"
)

// Recorder collects degradations that do not fail serialization.
type Recorder interface {
	Add(warningType, exampleID string)
}

// Lookup returns the first alias of r present in values with a non-nil value.
func Lookup(values map[string]any, r Rule) (alias string, value any, ok bool) {
	for _, a := range r.Aliases {
		if v, present := values[a]; present && v != nil {
			return a, v, true
		}
	}
	return "", nil, false
}

// Apply appends one element per rule of t to parent, in table order, using
// the first alias present in values. List values are normalized entry by
// entry. rec may be nil.
func Apply(parent *xmltree.Element, t Table, values map[string]any, conv normalize.Converter, rec Recorder) error {
	for _, r := range t.rules {
		// A nil alias counts as absent, so {"link": nil, "url": u} uses u.
		alias, raw, ok := Lookup(values, r)
		if !ok {
			continue
		}
		value, err := normalizeValue(conv, r.Normalizer, raw)
		if err != nil {
			return fmt.Errorf("%s field %q: %w", t.name, alias, err)
		}
		if value == nil {
			if rec != nil {
				rec.Add(WarningDroppedValue, t.name+"."+r.Name)
			}
			continue
		}
		for _, k := range xmltree.Build(parent, r.Name, value) {
			if rec != nil {
				rec.Add(WarningInvalidName, t.name+"."+r.Name+"."+k)
			}
		}
	}
	return nil
}

func normalizeValue(conv normalize.Converter, k normalize.Kind, raw any) (any, error) {
	list, ok := xmltree.List(raw)
	if !ok || k == normalize.None {
		return conv.Apply(k, raw)
	}
	out := make([]any, 0, len(list))
	for _, item := range list {
		if item == nil {
			continue
		}
		v, err := conv.Apply(k, item)
		if err != nil {
			return nil, err
		}
		if v != nil {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// Unmapped returns the keys of values that no rule of t accepts, sorted.
func Unmapped(values map[string]any, t Table) []string {
	known := make(map[string]bool)
	for _, r := range t.rules {
		for _, a := range r.Aliases {
			known[a] = true
		}
	}
	var out []string
	for k := range values {
		if !known[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
