// Package config handles application configuration loading and validation.
//
// Configuration is loaded from feedformatter.yml and validated using struct
// tags. It lists the feeds to publish, each with a source document and an
// output format, plus server, store and logging settings.
package config
