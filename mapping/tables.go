// Package mapping holds the per-format field mapping tables and the dispatch
// that turns a generic attribute set into ordered child elements.
package mapping

import (
	"github.com/theoremus-urban-solutions/feedformatter/normalize"
)

// Rule maps a set of accepted input aliases onto one output element.
type Rule struct {
	// Aliases are tried in order; the first one present wins.
	Aliases []string
	// Name is the output element name.
	Name string
	// Normalizer converts the raw value before the element is built.
	Normalizer normalize.Kind
}

// Table is an ordered, read-only list of rules for one format and level.
type Table struct {
	name  string
	rules []Rule
}

// Name identifies the table, e.g. "rss2-item".
func (t Table) Name() string { return t.name }

// Rules returns a copy of the table's rules in order.
func (t Table) Rules() []Rule {
	out := make([]Rule, len(t.rules))
	for i, r := range t.rules {
		r.Aliases = append([]string(nil), r.Aliases...)
		out[i] = r
	}
	return out
}

func rule(name string, normalizer normalize.Kind, aliases ...string) Rule {
	return Rule{Aliases: aliases, Name: name, Normalizer: normalizer}
}

var (
	descriptionAliases = []string{"description", "desc", "summary"}
	dateAliases        = []string{"pubDate", "pubdate", "date", "published", "updated"}
	linkAliases        = []string{"link", "url"}
	idAliases          = []string{"id", "link", "url"}
)

var rss1Channel = Table{name: "rss1-channel", rules: []Rule{
	rule("title", normalize.None, "title"),
	rule("link", normalize.None, linkAliases...),
	rule("description", normalize.None, descriptionAliases...),
}}

var rss1Item = Table{name: "rss1-item", rules: []Rule{
	rule("title", normalize.None, "title"),
	rule("link", normalize.None, linkAliases...),
	rule("description", normalize.None, descriptionAliases...),
}}

var rss2Channel = Table{name: "rss2-channel", rules: []Rule{
	rule("title", normalize.None, "title"),
	rule("link", normalize.PlainHref, linkAliases...),
	rule("description", normalize.None, descriptionAliases...),
	rule("pubDate", normalize.RSS2Date, dateAliases...),
	rule("category", normalize.None, "category"),
	rule("language", normalize.None, "language"),
	rule("copyright", normalize.None, "copyright"),
	rule("webmaster", normalize.None, "webMaster"),
	rule("image", normalize.None, "image"),
	rule("skipHours", normalize.None, "skipHours"),
	rule("skipDays", normalize.None, "skipDays"),
}}

var rss2Item = Table{name: "rss2-item", rules: []Rule{
	rule("title", normalize.None, "title"),
	rule("link", normalize.PlainHref, linkAliases...),
	rule("description", normalize.None, descriptionAliases...),
	rule("guid", normalize.None, "guid", "id"),
	rule("pubDate", normalize.RSS2Date, dateAliases...),
	rule("category", normalize.None, "category"),
	rule("author", normalize.EmailAuthor, "author"),
}}

var atomFeed = Table{name: "atom-feed", rules: []Rule{
	rule("title", normalize.None, "title"),
	rule("id", normalize.AtomID, idAliases...),
	rule("link", normalize.SelfLink, linkAliases...),
	rule("subtitle", normalize.None, descriptionAliases...),
	rule("updated", normalize.AtomDate, dateAliases...),
	rule("category", normalize.None, "category"),
	rule("author", normalize.Person, "author"),
	rule("contributor", normalize.Person, "contributor"),
	rule("generator", normalize.None, "generator"),
	rule("icon", normalize.None, "icon", "image"),
	rule("logo", normalize.None, "logo"),
	rule("rights", normalize.None, "rights"),
}}

var atomEntry = Table{name: "atom-entry", rules: []Rule{
	rule("title", normalize.None, "title"),
	rule("id", normalize.AtomID, idAliases...),
	rule("link", normalize.AlternateLink, linkAliases...),
	rule("summary", normalize.None, descriptionAliases...),
	rule("content", normalize.Content, "content"),
	rule("published", normalize.AtomDate, dateAliases...),
	rule("updated", normalize.AtomDate, "updated"),
	rule("category", normalize.None, "category"),
	rule("author", normalize.Person, "author"),
	rule("contributor", normalize.Person, "contributor"),
	rule("source", normalize.None, "source"),
	rule("rights", normalize.None, "rights"),
}}

// RSS1Channel is the RSS 1.0 channel table.
func RSS1Channel() Table { return rss1Channel }

// RSS1Item is the RSS 1.0 item table.
func RSS1Item() Table { return rss1Item }

// RSS2Channel is the RSS 2.0 channel table.
func RSS2Channel() Table { return rss2Channel }

// RSS2Item is the RSS 2.0 item table.
func RSS2Item() Table { return rss2Item }

// AtomFeed is the Atom 1.0 feed table.
func AtomFeed() Table { return atomFeed }

// AtomEntry is the Atom 1.0 entry table.
func AtomEntry() Table { return atomEntry }
