package normalize

import (
	"strings"

	"github.com/theoremus-urban-solutions/feedformatter/xmltree"
)

// Structured-value keys used by link normalizers.
const (
	hrefAttr = xmltree.AttrPrefix + "href"
	typeAttr = xmltree.AttrPrefix + "type"
	relAttr  = xmltree.AttrPrefix + "rel"

	defaultLinkType = "text/html"
)

// Link returns an Atom link as a structured value. A structured input is
// copied and gets _type=text/html and the given rel unless already set; a
// bare URL is wrapped. An empty rel is not added.
func Link(raw any, rel string) any {
	if raw == nil {
		return nil
	}
	if m, ok := xmltree.Structured(raw); ok {
		out := xmltree.Copy(m)
		if _, ok := out[typeAttr]; !ok {
			out[typeAttr] = defaultLinkType
		}
		if rel != "" {
			if _, ok := out[relAttr]; !ok {
				out[relAttr] = rel
			}
		}
		return out
	}
	out := map[string]any{
		hrefAttr: xmltree.ScalarText(raw),
		typeAttr: defaultLinkType,
	}
	if rel != "" {
		out[relAttr] = rel
	}
	return out
}

// Href returns the URL of a link value: the _href (or href) key of a
// structured value, or the scalar itself.
func Href(raw any) string {
	v := plainHref(raw)
	if v == nil {
		return ""
	}
	return xmltree.ScalarText(v)
}

func plainHref(raw any) any {
	m, ok := xmltree.Structured(raw)
	if !ok {
		return raw
	}
	if v, ok := m[hrefAttr]; ok && v != nil {
		return v
	}
	if v, ok := m["href"]; ok && v != nil {
		return v
	}
	return nil
}

// PersonKind classifies a bare person string.
type PersonKind string

const (
	PersonURI   PersonKind = "uri"
	PersonEmail PersonKind = "email"
	PersonName  PersonKind = "name"
)

// ClassifyPerson decides what a bare person string is. The URI check runs
// before the email check, and name is the fallback.
func ClassifyPerson(s string) PersonKind {
	switch {
	case strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "www"):
		return PersonURI
	case looksLikeEmail(s):
		return PersonEmail
	default:
		return PersonName
	}
}

// AtomPerson returns an Atom person construct. Structured input passes through.
func AtomPerson(raw any) any {
	if raw == nil {
		return nil
	}
	if m, ok := xmltree.Structured(raw); ok {
		return m
	}
	s := xmltree.ScalarText(raw)
	return map[string]any{string(ClassifyPerson(s)): s}
}

// RSSAuthor returns the bare email address RSS 2.0 expects, or nil when the
// author has none.
func RSSAuthor(raw any) any {
	if raw == nil {
		return nil
	}
	if m, ok := xmltree.Structured(raw); ok {
		if v, ok := m["email"]; ok && v != nil {
			return v
		}
		return nil
	}
	s := xmltree.ScalarText(raw)
	if looksLikeEmail(s) {
		return s
	}
	return nil
}

// AtomContent returns an Atom content value. Structured input defaults to
// type "text"; a bare string is taken as rendered markup of type "html".
func AtomContent(raw any) any {
	if raw == nil {
		return nil
	}
	if m, ok := xmltree.Structured(raw); ok {
		out := xmltree.Copy(m)
		if _, ok := out[xmltree.TypeKey]; !ok {
			out[xmltree.TypeKey] = xmltree.DefaultContentType
		}
		return out
	}
	return map[string]any{
		xmltree.TypeKey:    "html",
		xmltree.ContentKey: xmltree.ScalarText(raw),
	}
}

func looksLikeEmail(s string) bool {
	return strings.Contains(s, "@") && strings.Contains(s, ".")
}
