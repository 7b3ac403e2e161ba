package xmltree

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"
)

func buildOne(name string, value any) *Element {
	root := NewElement("root")
	Build(root, name, value)
	return root
}

// TestBuild_AttributeTextPartition verifies "_"-prefixed keys become
// attributes and "text" becomes the element text
func TestBuild_AttributeTextPartition(t *testing.T) {
	root := buildOne("link", map[string]any{"_rel": "alternate", "_href": "http://x", "text": "X"})

	link := root.Find("link")
	if link == nil {
		t.Fatal("link element not built")
	}
	if href, _ := link.Attr("href"); href != "http://x" {
		t.Errorf("href = %q, want http://x", href)
	}
	if rel, _ := link.Attr("rel"); rel != "alternate" {
		t.Errorf("rel = %q, want alternate", rel)
	}
	if link.Text != "X" {
		t.Errorf("text = %q, want X", link.Text)
	}
	if len(link.Children) != 0 {
		t.Errorf("expected no children, got %d", len(link.Children))
	}

	got := link.String()
	if got != `<link href="http://x" rel="alternate">X</link>` {
		t.Errorf("rendered %s", got)
	}
}

func TestBuild_SkipsInvalidNames(t *testing.T) {
	root := NewElement("root")
	skipped := Build(root, "item", map[string]any{
		"title":  "ok",
		"url x":  "bad",
		"1title": "bad",
		"_a b":   "bad",
		"_rel":   "self",
	})
	if got := root.String(); got != `<root><item rel="self"><title>ok</title></item></root>` {
		t.Errorf("rendered %s", got)
	}
	if strings.Join(skipped, "|") != "_a b|1title|url x" {
		t.Errorf("skipped = %v", skipped)
	}
	if s := Build(root, "no good", "x"); len(s) != 1 || s[0] != "no good" {
		t.Errorf("top-level name not rejected: %v", s)
	}

	for name, want := range map[string]bool{
		"title": true, "rdf:li": true, "_x": true, "a-b.c1": true, "été": true,
		"": false, "1a": false, "a b": false, "-a": false, "a<b": false,
	} {
		if ValidName(name) != want {
			t.Errorf("ValidName(%q) = %v", name, !want)
		}
	}
}

func TestBuild_NilAppendsNothing(t *testing.T) {
	root := buildOne("title", nil)
	if len(root.Children) != 0 {
		t.Fatalf("nil value should not emit an element, got %d children", len(root.Children))
	}
}

func TestBuild_NestedChildren(t *testing.T) {
	root := buildOne("author", map[string]any{
		"name":  "Luke",
		"email": "luke@example.com",
		"_lang": "en",
	})
	author := root.Find("author")
	if author == nil {
		t.Fatal("author not built")
	}
	if lang, _ := author.Attr("lang"); lang != "en" {
		t.Errorf("lang = %q", lang)
	}
	names := []string{}
	for _, el := range author.Elements() {
		names = append(names, el.Name)
	}
	if strings.Join(names, ",") != "email,name" {
		t.Errorf("children = %v, want [email name]", names)
	}
	if author.Find("name").Text != "Luke" {
		t.Errorf("name text = %q", author.Find("name").Text)
	}
}

func TestBuild_DoesNotMutateInput(t *testing.T) {
	in := map[string]any{"_href": "http://x", "text": "X", "child": "c"}
	buildOne("link", in)
	if len(in) != 3 {
		t.Errorf("input map mutated: %v", in)
	}
}

func TestBuild_ScalarStringification(t *testing.T) {
	root := NewElement("root")
	Build(root, "ttl", 60)
	Build(root, "ratio", 1.5)
	Build(root, "flag", true)
	if got := root.Find("ttl").Text; got != "60" {
		t.Errorf("ttl = %q", got)
	}
	if got := root.Find("ratio").Text; got != "1.5" {
		t.Errorf("ratio = %q", got)
	}
	if got := root.Find("flag").Text; got != "true" {
		t.Errorf("flag = %q", got)
	}
}

func TestBuild_ListRepeatsElement(t *testing.T) {
	root := buildOne("category", []any{"go", nil, "xml"})
	cats := root.FindAll("category")
	if len(cats) != 2 {
		t.Fatalf("expected 2 category elements, got %d", len(cats))
	}
	if cats[0].Text != "go" || cats[1].Text != "xml" {
		t.Errorf("categories = %q, %q", cats[0].Text, cats[1].Text)
	}
}

func TestBuild_ContentBecomesCDATA(t *testing.T) {
	root := buildOne("content", map[string]any{"type": "html", "content": "<p>hi</p>"})
	content := root.Find("content")
	if content == nil {
		t.Fatal("content not built")
	}
	if typ, _ := content.Attr("type"); typ != "html" {
		t.Errorf("type = %q", typ)
	}
	if len(content.Attrs) != 1 {
		t.Errorf("content should carry only the type attribute, got %v", content.Attrs)
	}
	if len(content.Children) != 1 {
		t.Fatalf("expected one CDATA child, got %d", len(content.Children))
	}
	if c, ok := content.Children[0].(CDATA); !ok || string(c) != "<p>hi</p>" {
		t.Errorf("unexpected child %#v", content.Children[0])
	}
}

func TestBuild_ContentDefaults(t *testing.T) {
	root := buildOne("content", map[string]any{})
	content := root.Find("content")
	if content == nil {
		t.Fatal("content without text source must still be emitted")
	}
	if typ, _ := content.Attr("type"); typ != DefaultContentType {
		t.Errorf("type = %q, want %q", typ, DefaultContentType)
	}
	if got := content.String(); got != `<content type="text"><![CDATA[]]></content>` {
		t.Errorf("rendered %s", got)
	}
}

// TestRender_CDATASafety verifies markup and "]]>" survive verbatim
func TestRender_CDATASafety(t *testing.T) {
	raw := `<b>bold</b> & "quotes" ]]> tail`
	root := buildOne("content", map[string]any{"content": raw})
	out := root.String()

	if strings.Contains(out, "&lt;b&gt;") || strings.Contains(out, "&amp;") {
		t.Errorf("CDATA content was entity-escaped: %s", out)
	}
	if !strings.Contains(out, "<![CDATA[<b>bold</b> & \"quotes\" ]]") {
		t.Errorf("CDATA block missing: %s", out)
	}

	var parsed struct {
		Content struct {
			Type string `xml:"type,attr"`
			Body string `xml:",chardata"`
		} `xml:"content"`
	}
	if err := xml.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("output is not well-formed: %v\n%s", err, out)
	}
	if parsed.Content.Body != raw {
		t.Errorf("parsed content = %q, want %q", parsed.Content.Body, raw)
	}
}

func TestRender_EscapesTextAndAttributes(t *testing.T) {
	root := NewElement("item", Attr{Name: "about", Value: `a"b&c`})
	root.SubElement("title").Text = "Fish & <Chips>"
	got := root.String()
	want := `<item about="a&quot;b&amp;c"><title>Fish &amp; &lt;Chips&gt;</title></item>`
	if got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

// TestRender_ReplacesIllegalCharacters verifies control characters and
// invalid UTF-8 become U+FFFD in text, attributes and CDATA
func TestRender_ReplacesIllegalCharacters(t *testing.T) {
	root := NewElement("entry", Attr{Name: "about", Value: "a\x01b"})
	root.SubElement("title").Text = "bell\x07 and bad \xff utf8\ttab"
	Build(root, "content", map[string]any{"content": "nul\x00 ok"})
	out := root.String()

	want := "<entry about=\"a\uFFFDb\"><title>bell\uFFFD and bad \uFFFD utf8\ttab</title>" +
		"<content type=\"text\"><![CDATA[nul\uFFFD ok]]></content></entry>"
	if out != want {
		t.Errorf("got  %q\nwant %q", out, want)
	}

	d := xml.NewDecoder(strings.NewReader(out))
	for {
		if _, err := d.Token(); err != nil {
			if !errors.Is(err, io.EOF) {
				t.Fatalf("output is not well-formed: %v\n%s", err, out)
			}
			break
		}
	}
	t.Log("✓ Illegal characters replaced")
}

func TestRender_EmptyElement(t *testing.T) {
	root := NewElement("rdf:li", Attr{Name: "resource", Value: "http://e/i"})
	if got := root.String(); got != `<rdf:li resource="http://e/i"/>` {
		t.Errorf("got %s", got)
	}
}

func TestRender_Pretty(t *testing.T) {
	root := NewElement("feed")
	root.SubElement("title").Text = "T"
	entry := root.SubElement("entry")
	entry.SubElement("title").Text = "I"
	Build(entry, "content", map[string]any{"content": "x"})

	got := Render(root, true)
	want := strings.Join([]string{
		"<feed>",
		"  <title>T</title>",
		"  <entry>",
		"    <title>I</title>",
		`    <content type="text"><![CDATA[x]]></content>`,
		"  </entry>",
		"</feed>",
		"",
	}, "\n")
	if got != want {
		t.Errorf("pretty output mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}

	compact := Render(root, false)
	if strings.Contains(compact, "\n") {
		t.Errorf("compact output contains newlines: %s", compact)
	}
}
