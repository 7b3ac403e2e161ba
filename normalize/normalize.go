package normalize

import (
	"fmt"
	"time"
)

// Kind selects one normalizer.
type Kind int

const (
	// None leaves the value unchanged.
	None Kind = iota
	// RSS2Date renders an RFC822 timestamp.
	RSS2Date
	// AtomDate renders an RFC3339 timestamp with a numeric offset.
	AtomDate
	// PlainHref reduces a link to its bare URL.
	PlainHref
	// AtomID reduces a link to an identifier string.
	AtomID
	// SelfLink builds an Atom link with rel="self".
	SelfLink
	// AlternateLink builds an Atom link with rel="alternate".
	AlternateLink
	// Person builds an Atom person construct.
	Person
	// EmailAuthor reduces an author to a bare email address.
	EmailAuthor
	// Content builds an Atom content value.
	Content
)

var kindNames = [...]string{
	None:          "none",
	RSS2Date:      "rss2-date",
	AtomDate:      "atom-date",
	PlainHref:     "plain-href",
	AtomID:        "atom-id",
	SelfLink:      "self-link",
	AlternateLink: "alternate-link",
	Person:        "person",
	EmailAuthor:   "email-author",
	Content:       "content",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Func is the uniform normalizer signature. A nil result means the field is omitted.
type Func func(c Converter, raw any) (any, error)

var funcs = [...]Func{
	None:          identity,
	RSS2Date:      func(c Converter, raw any) (any, error) { return c.FormatRSS2(raw) },
	AtomDate:      func(c Converter, raw any) (any, error) { return c.FormatAtom(raw) },
	PlainHref:     func(_ Converter, raw any) (any, error) { return plainHref(raw), nil },
	AtomID:        func(_ Converter, raw any) (any, error) { return plainHref(raw), nil },
	SelfLink:      func(_ Converter, raw any) (any, error) { return Link(raw, "self"), nil },
	AlternateLink: func(_ Converter, raw any) (any, error) { return Link(raw, "alternate"), nil },
	Person:        func(_ Converter, raw any) (any, error) { return AtomPerson(raw), nil },
	EmailAuthor:   func(_ Converter, raw any) (any, error) { return RSSAuthor(raw), nil },
	Content:       func(_ Converter, raw any) (any, error) { return AtomContent(raw), nil },
}

// Converter carries the context normalizers need. The zero value renders
// timestamps in time.Local.
type Converter struct {
	// Location is the zone every timestamp is converted into before formatting.
	Location *time.Location
}

func (c Converter) location() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

// Apply runs the normalizer selected by k on raw.
func (c Converter) Apply(k Kind, raw any) (any, error) {
	if k < 0 || int(k) >= len(funcs) {
		return nil, fmt.Errorf("unknown normalizer %v", k)
	}
	return funcs[k](c, raw)
}

func identity(_ Converter, raw any) (any, error) {
	return raw, nil
}
