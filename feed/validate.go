package feed

import "fmt"

func present(values map[string]any, key string) bool {
	v, ok := values[key]
	return ok && v != nil
}

// Validate checks that f carries the minimum content format requires and
// returns the first violation as a *ValidationError. Checks use the literal
// key names, not aliases.
func (f *Feed) Validate(format Format) error {
	switch format {
	case RSS1:
		return f.validateRSS1()
	case RSS2:
		return f.validateRSS2()
	case Atom:
		return f.validateAtom()
	}
	return fmt.Errorf("validate: unsupported format %v", format)
}

func (f *Feed) validateChannel(format Format) error {
	for _, key := range []string{"title", "link", "description"} {
		if !present(f.Channel, key) {
			return &ValidationError{
				Format: format,
				Field:  key,
				Item:   ChannelLevel,
				Reason: fmt.Sprintf("the channel element of an %s feed must contain a %s subelement", format.Title(), key),
			}
		}
	}
	return nil
}

func (f *Feed) validateRSS1() error {
	if err := f.validateChannel(RSS1); err != nil {
		return err
	}
	for i, item := range f.Items {
		for _, key := range []string{"title", "link"} {
			if !present(item, key) {
				return &ValidationError{
					Format: RSS1,
					Field:  key,
					Item:   i,
					Reason: fmt.Sprintf("each item element in an RSS 1.0 feed must contain a %s subelement", key),
				}
			}
		}
	}
	return nil
}

func (f *Feed) validateRSS2() error {
	if err := f.validateChannel(RSS2); err != nil {
		return err
	}
	for i, item := range f.Items {
		if !present(item, "title") && !present(item, "description") {
			return &ValidationError{
				Format: RSS2,
				Field:  "title|description",
				Item:   i,
				Reason: "each item element in an RSS 2.0 feed must contain at least a title or description subelement",
			}
		}
	}
	return nil
}

func (f *Feed) validateAtom() error {
	if present(f.Channel, "author") {
		return nil
	}
	for i, entry := range f.Items {
		if !present(entry, "author") {
			return &ValidationError{
				Format: Atom,
				Field:  "author",
				Item:   i,
				Reason: "Atom feeds must have either at least one author element in the feed element or at least one author element in each entry element",
			}
		}
	}
	return nil
}
