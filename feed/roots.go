package feed

import (
	"fmt"

	"github.com/theoremus-urban-solutions/feedformatter/mapping"
	"github.com/theoremus-urban-solutions/feedformatter/normalize"
	"github.com/theoremus-urban-solutions/feedformatter/xmltree"
)

const (
	rdfNamespace  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	rss1Namespace = "http://purl.org/rss/1.0/"
	atomNamespace = "http://www.w3.org/2005/Atom"

	xmlDeclaration = `<?xml version="1.0" encoding="UTF-8" ?>` + "\n"
)

// WarningNoAbout: an RSS 1.0 channel or item has no link to use as rdf:about.
const WarningNoAbout = "no_rdf_about"

// builder carries the per-call state shared by the root builders.
type builder struct {
	feed *Feed
	conv normalize.Converter
	rec  mapping.Recorder
}

func (b *builder) apply(parent *xmltree.Element, t mapping.Table, values map[string]any, label string) error {
	if b.rec != nil {
		for _, k := range mapping.Unmapped(values, t) {
			b.rec.Add(mapping.WarningUnmappedKey, t.Name()+"."+k)
		}
	}
	if err := mapping.Apply(parent, t, values, b.conv, b.rec); err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	return nil
}

// about resolves the RSS 1.0 resource URI of a channel or item from the same
// aliases its link element uses.
func (b *builder) about(values map[string]any, t mapping.Table, label string) string {
	for _, r := range t.Rules() {
		if r.Name != "link" {
			continue
		}
		if _, v, ok := mapping.Lookup(values, r); ok {
			if href := normalize.Href(v); href != "" {
				return href
			}
		}
	}
	if b.rec != nil {
		b.rec.Add(WarningNoAbout, label)
	}
	return ""
}

func itemLabel(i int) string {
	return fmt.Sprintf("item %d", i)
}

func (b *builder) rss1() (*xmltree.Element, error) {
	root := xmltree.NewElement("rdf:RDF",
		xmltree.Attr{Name: "xmlns:rdf", Value: rdfNamespace},
		xmltree.Attr{Name: "xmlns", Value: rss1Namespace},
	)
	channel := root.SubElement("channel")
	if about := b.about(b.feed.Channel, mapping.RSS1Channel(), "channel"); about != "" {
		channel.SetAttr("rdf:about", about)
	}
	if err := b.apply(channel, mapping.RSS1Channel(), b.feed.Channel, "channel"); err != nil {
		return nil, err
	}

	abouts := make([]string, len(b.feed.Items))
	for i, item := range b.feed.Items {
		abouts[i] = b.about(item, mapping.RSS1Item(), itemLabel(i))
	}
	seq := channel.SubElement("items").SubElement("rdf:Seq")
	for _, about := range abouts {
		li := seq.SubElement("rdf:li")
		if about != "" {
			li.SetAttr("resource", about)
		}
	}
	for i, item := range b.feed.Items {
		el := root.SubElement("item")
		if abouts[i] != "" {
			el.SetAttr("rdf:about", abouts[i])
		}
		if err := b.apply(el, mapping.RSS1Item(), item, itemLabel(i)); err != nil {
			return nil, err
		}
	}
	return root, nil
}

func (b *builder) rss2() (*xmltree.Element, error) {
	root := xmltree.NewElement("rss", xmltree.Attr{Name: "version", Value: "2.0"})
	channel := root.SubElement("channel")
	if err := b.apply(channel, mapping.RSS2Channel(), b.feed.Channel, "channel"); err != nil {
		return nil, err
	}
	for i, item := range b.feed.Items {
		if err := b.apply(channel.SubElement("item"), mapping.RSS2Item(), item, itemLabel(i)); err != nil {
			return nil, err
		}
	}
	return root, nil
}

func (b *builder) atom() (*xmltree.Element, error) {
	root := xmltree.NewElement("feed", xmltree.Attr{Name: "xmlns", Value: atomNamespace})
	if err := b.apply(root, mapping.AtomFeed(), b.feed.Channel, "feed"); err != nil {
		return nil, err
	}
	for i, entry := range b.feed.Items {
		if err := b.apply(root.SubElement("entry"), mapping.AtomEntry(), entry, fmt.Sprintf("entry %d", i)); err != nil {
			return nil, err
		}
	}
	return root, nil
}
