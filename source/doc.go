// Package source loads universal feed documents into feed.Feed values.
//
// A document is a mapping with a "feed" object and an "items" (or
// "entries") list, stored as YAML, JSON or a binary google.protobuf.Struct,
// and read from a local path or an http(s) URL. This is collaborator code
// for the CLI and server; library users can build feed.Feed values directly.
package source
