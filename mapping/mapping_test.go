package mapping

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/theoremus-urban-solutions/feedformatter/normalize"
	"github.com/theoremus-urban-solutions/feedformatter/xmltree"
)

var utcConv = normalize.Converter{Location: time.UTC}

type recorder map[string][]string

func (r recorder) Add(warningType, exampleID string) {
	r[warningType] = append(r[warningType], exampleID)
}

func childNames(el *xmltree.Element) string {
	names := []string{}
	for _, c := range el.Elements() {
		names = append(names, c.Name)
	}
	return strings.Join(names, ",")
}

// TestApply_AliasPrecedence verifies the first declared alias wins over later ones
func TestApply_AliasPrecedence(t *testing.T) {
	root := xmltree.NewElement("item")
	values := map[string]any{
		"summary":     "from summary",
		"desc":        "from desc",
		"description": "from description",
	}
	if err := Apply(root, RSS1Item(), values, utcConv, nil); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	descs := root.FindAll("description")
	if len(descs) != 1 {
		t.Fatalf("expected exactly one description, got %d", len(descs))
	}
	if descs[0].Text != "from description" {
		t.Errorf("description = %q, want value of first alias", descs[0].Text)
	}

	root = xmltree.NewElement("item")
	delete(values, "description")
	_ = Apply(root, RSS1Item(), values, utcConv, nil)
	if got := root.Find("description").Text; got != "from desc" {
		t.Errorf("description = %q, want value of second alias", got)
	}

	root = xmltree.NewElement("item")
	values["description"] = nil
	_ = Apply(root, RSS1Item(), values, utcConv, nil)
	if got := root.Find("description").Text; got != "from desc" {
		t.Errorf("description = %q, want nil alias treated as absent", got)
	}
}

func TestApply_FieldOmission(t *testing.T) {
	root := xmltree.NewElement("channel")
	if err := Apply(root, RSS2Channel(), map[string]any{"title": "T", "unknown": "x", "language": nil}, utcConv, nil); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := childNames(root); got != "title" {
		t.Errorf("children = %s, want only title", got)
	}
}

func TestApply_OutputOrderFollowsTable(t *testing.T) {
	root := xmltree.NewElement("channel")
	values := map[string]any{
		"skipDays":    "Sunday",
		"webMaster":   "wm@example.com",
		"description": "D",
		"url":         "http://e/",
		"title":       "T",
		"language":    "en",
	}
	if err := Apply(root, RSS2Channel(), values, utcConv, nil); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := childNames(root); got != "title,link,description,language,webmaster,skipDays" {
		t.Errorf("order = %s", got)
	}
}

func TestApply_NormalizerError(t *testing.T) {
	root := xmltree.NewElement("item")
	err := Apply(root, RSS2Item(), map[string]any{"title": "T", "date": "not a date"}, utcConv, nil)
	if !errors.Is(err, normalize.ErrUnrecognizedTime) {
		t.Fatalf("expected ErrUnrecognizedTime, got %v", err)
	}
	if !strings.Contains(err.Error(), `"date"`) {
		t.Errorf("error should name the input field: %v", err)
	}
}

func TestApply_DroppedValueIsRecorded(t *testing.T) {
	root := xmltree.NewElement("item")
	rec := recorder{}
	if err := Apply(root, RSS2Item(), map[string]any{"title": "T", "author": "Luke Maurits"}, utcConv, rec); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if root.Find("author") != nil {
		t.Error("author without email must be omitted from RSS 2.0")
	}
	if got := rec[WarningDroppedValue]; len(got) != 1 || got[0] != "rss2-item.author" {
		t.Errorf("recorded %v", got)
	}
}

func TestApply_InvalidNamesAreSkipped(t *testing.T) {
	root := xmltree.NewElement("feed")
	rec := recorder{}
	author := map[string]any{"name": "Ed", "url x": "http://e/", "1title": "x", "_bad attr": "v"}
	if err := Apply(root, AtomFeed(), map[string]any{"author": author}, utcConv, rec); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := root.String(); got != "<feed><author><name>Ed</name></author></feed>" {
		t.Errorf("rendered %s", got)
	}
	want := []string{"atom-feed.author._bad attr", "atom-feed.author.1title", "atom-feed.author.url x"}
	if got := rec[WarningInvalidName]; strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("recorded %v, want %v", got, want)
	}
	t.Log("✓ Invalid names skipped and recorded")
}

func TestApply_ListValuesNormalizedPerEntry(t *testing.T) {
	root := xmltree.NewElement("entry")
	values := map[string]any{
		"author": []any{"Luke Maurits", "luke@example.com"},
	}
	if err := Apply(root, AtomEntry(), values, utcConv, nil); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	authors := root.FindAll("author")
	if len(authors) != 2 {
		t.Fatalf("expected 2 authors, got %d", len(authors))
	}
	if authors[0].Find("name") == nil || authors[1].Find("email") == nil {
		t.Errorf("authors = %s", root.String())
	}
}

func TestApply_AtomEntryLink(t *testing.T) {
	root := xmltree.NewElement("entry")
	if err := Apply(root, AtomEntry(), map[string]any{"link": "http://e/1"}, utcConv, nil); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := `<entry><id>http://e/1</id><link href="http://e/1" rel="alternate" type="text/html"/></entry>`
	if got := root.String(); got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func TestTables_ShapeIsStable(t *testing.T) {
	cases := []struct {
		table Table
		names string
	}{
		{RSS1Channel(), "title,link,description"},
		{RSS1Item(), "title,link,description"},
		{RSS2Channel(), "title,link,description,pubDate,category,language,copyright,webmaster,image,skipHours,skipDays"},
		{RSS2Item(), "title,link,description,guid,pubDate,category,author"},
		{AtomFeed(), "title,id,link,subtitle,updated,category,author,contributor,generator,icon,logo,rights"},
		{AtomEntry(), "title,id,link,summary,content,published,updated,category,author,contributor,source,rights"},
	}
	for _, c := range cases {
		names := []string{}
		for _, r := range c.table.Rules() {
			names = append(names, r.Name)
		}
		if got := strings.Join(names, ","); got != c.names {
			t.Errorf("%s rules = %s", c.table.Name(), got)
		}
	}

	rules := RSS2Item().Rules()
	rules[0].Aliases[0] = "mutated"
	if RSS2Item().Rules()[0].Aliases[0] != "title" {
		t.Error("Rules must return a copy")
	}
}

func TestUnmapped(t *testing.T) {
	values := map[string]any{"title": "T", "guid": "g", "zeta": 1, "url": "http://e/"}
	got := Unmapped(values, AtomEntry())
	if strings.Join(got, ",") != "guid,zeta" {
		t.Errorf("Unmapped = %v", got)
	}
	if got := Unmapped(values, RSS2Item()); strings.Join(got, ",") != "zeta" {
		t.Errorf("Unmapped = %v", got)
	}
}
