// Package feed turns a generic channel/items description into RSS 1.0,
// RSS 2.0 or Atom 1.0 documents.
//
// This package is organized into:
// - feed.go: the Feed model and document constructors
// - format.go: the Format enum and per-format metadata
// - validate.go: minimum-content checks per format
// - roots.go: the root skeleton of each format
// - serialize.go: string and file output
// - warnings.go: consolidated reporting of local degradations
//
// The engine is synchronous and keeps no state between calls. Input maps are
// never modified.
package feed
