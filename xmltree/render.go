package xmltree

import (
	"strings"
	"unicode/utf8"
)

const indentUnit = "  "

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\"", "&quot;",
	"'", "&apos;",
)

// Render serializes root to XML without a declaration. With pretty set the
// output is indented by two spaces per level; elements that hold only text or
// CDATA stay on one line.
func Render(root *Element, pretty bool) string {
	w := &writer{pretty: pretty}
	w.element(root, 0)
	if pretty {
		w.b.WriteByte('\n')
	}
	return w.b.String()
}

// String renders e compactly.
func (e *Element) String() string {
	return Render(e, false)
}

type writer struct {
	b      strings.Builder
	pretty bool
}

func (w *writer) element(e *Element, depth int) {
	w.indent(depth)
	w.b.WriteByte('<')
	w.b.WriteString(e.Name)
	for _, a := range e.Attrs {
		w.b.WriteByte(' ')
		w.b.WriteString(a.Name)
		w.b.WriteString("=\"")
		w.b.WriteString(xmlEscape(a.Value))
		w.b.WriteByte('"')
	}
	if e.Text == "" && len(e.Children) == 0 {
		w.b.WriteString("/>")
		return
	}
	w.b.WriteByte('>')
	w.b.WriteString(xmlEscape(e.Text))

	nested := false
	for _, c := range e.Children {
		switch n := c.(type) {
		case CDATA:
			writeCDATA(&w.b, string(n))
		case *Element:
			nested = true
			w.element(n, depth+1)
		}
	}
	if nested {
		w.indent(depth)
	}
	w.b.WriteString("</")
	w.b.WriteString(e.Name)
	w.b.WriteByte('>')
}

func (w *writer) indent(depth int) {
	if !w.pretty {
		return
	}
	if w.b.Len() > 0 {
		w.b.WriteByte('\n')
	}
	for i := 0; i < depth; i++ {
		w.b.WriteString(indentUnit)
	}
}

// writeCDATA writes s verbatim. A "]]>" inside s would end the section early,
// so it is split across two sections; a parser still sees the original text.
func writeCDATA(b *strings.Builder, s string) {
	b.WriteString("<![CDATA[")
	b.WriteString(strings.ReplaceAll(sanitize(s), "]]>", "]]]]><![CDATA[>"))
	b.WriteString("]]>")
}

func xmlEscape(s string) string {
	return escaper.Replace(sanitize(s))
}

// sanitize replaces invalid UTF-8 and runes outside the XML Char production
// with U+FFFD.
func sanitize(s string) string {
	clean := true
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if (r == utf8.RuneError && size == 1) || !isXMLChar(r) {
			clean = false
			break
		}
		i += size
	}
	if clean {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if (r == utf8.RuneError && size == 1) || !isXMLChar(r) {
			r = utf8.RuneError
		}
		b.WriteRune(r)
		i += size
	}
	return b.String()
}

func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}
