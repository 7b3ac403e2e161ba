package xmltree

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Generic value grammar.
const (
	// AttrPrefix marks a structured-value key as an XML attribute.
	AttrPrefix = "_"
	// TextKey holds the text content of a structured value.
	TextKey = "text"
	// ContentElement is the rich-content slot rendered as CDATA.
	ContentElement = "content"
	// ContentKey and TypeKey are read from a structured value built as ContentElement.
	ContentKey = "content"
	TypeKey    = "type"
	// DefaultContentType is used when a content value carries no type.
	DefaultContentType = "text"
)

// Build appends the element named name, built from value, to parent, and
// returns the keys it skipped because they are not valid XML names.
//
// A nil value appends nothing. A structured value (map) is split into
// attributes, text and nested children; under ContentElement it becomes a
// CDATA leaf instead. A list appends one sibling per entry. Anything else is
// a scalar and becomes the element text.
func Build(parent *Element, name string, value any) (skipped []string) {
	if value == nil {
		return nil
	}
	if !ValidName(name) {
		return []string{name}
	}
	if list, ok := List(value); ok {
		for _, v := range list {
			skipped = append(skipped, Build(parent, name, v)...)
		}
		return skipped
	}
	m, ok := Structured(value)
	if !ok {
		parent.SubElement(name).Text = ScalarText(value)
		return nil
	}
	if name == ContentElement {
		buildContent(parent, name, m)
		return nil
	}

	el := parent.SubElement(name)
	var children []string
	for _, k := range SortedKeys(m) {
		v := m[k]
		switch {
		case strings.HasPrefix(k, AttrPrefix):
			if v == nil || len(k) == len(AttrPrefix) {
				continue
			}
			attr := k[len(AttrPrefix):]
			if !ValidName(attr) {
				skipped = append(skipped, k)
				continue
			}
			el.Attrs = append(el.Attrs, Attr{Name: attr, Value: ScalarText(v)})
		case k == TextKey:
			if v != nil {
				el.Text = ScalarText(v)
			}
		default:
			children = append(children, k)
		}
	}
	for _, k := range children {
		skipped = append(skipped, Build(el, k, m[k])...)
	}
	return skipped
}

// ValidName reports whether s can be used as an element or attribute name.
func ValidName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case unicode.IsLetter(r), r == '_', r == ':':
		case i > 0 && (unicode.IsDigit(r) || r == '-' || r == '.' || unicode.In(r, unicode.Mn, unicode.Mc)):
		default:
			return false
		}
	}
	return true
}

// buildContent emits <content type="..."><![CDATA[...]]></content>. A missing
// content key still produces the element with an empty CDATA block.
func buildContent(parent *Element, name string, m map[string]any) {
	typ := DefaultContentType
	if v, ok := m[TypeKey]; ok && v != nil {
		typ = ScalarText(v)
	}
	el := parent.SubElement(name, Attr{Name: TypeKey, Value: typ})
	text := ""
	if v, ok := m[ContentKey]; ok && v != nil {
		text = ScalarText(v)
	}
	el.Append(CDATA(text))
}

// Structured reports whether v is a structured value and returns it as a map.
// The returned map is never the caller's map[string]string, but a
// map[string]any is returned as is and must not be mutated.
func Structured(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case map[string]string:
		out := make(map[string]any, len(t))
		for k, s := range t {
			out[k] = s
		}
		return out, true
	}
	return nil, false
}

// List reports whether v is a list of values.
func List(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(t))
		for i, m := range t {
			out[i] = m
		}
		return out, true
	}
	return nil, false
}

// Copy returns a shallow copy of a structured value.
func Copy(m map[string]any) map[string]any {
	out := make(map[string]any, len(m)+2)
	for k, v := range m {
		out[k] = v
	}
	return out
}

// SortedKeys returns the keys of m in lexical order.
func SortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ScalarText stringifies a scalar value for element text or attribute values.
func ScalarText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case uint:
		return strconv.FormatUint(uint64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case uint32:
		return strconv.FormatUint(uint64(t), 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case json.Number:
		return t.String()
	case time.Time:
		return t.Format(time.RFC3339)
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(v)
}
