package feed

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFeed is wrapped by every validation failure.
	ErrInvalidFeed = errors.New("invalid feed")
	// ErrMalformedDocument reports a universal feed document without the
	// expected {feed, items} shape.
	ErrMalformedDocument = errors.New("malformed feed document")
)

// ChannelLevel is the Item index of a ValidationError raised for the channel.
const ChannelLevel = -1

// ValidationError describes the first minimum-content rule a feed breaks.
type ValidationError struct {
	Format Format
	// Field is the missing input key, e.g. "title" or "title|description".
	Field string
	// Item is the offending item index, or ChannelLevel.
	Item   int
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Item == ChannelLevel {
		return fmt.Sprintf("invalid %s feed: %s", e.Format.Title(), e.Reason)
	}
	return fmt.Sprintf("invalid %s feed: item %d: %s", e.Format.Title(), e.Item, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidFeed
}
