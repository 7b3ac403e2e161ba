package config

// ServerConfig contains server configuration
type ServerConfig struct {
	Port int `yaml:"port" validate:"gt=0,lte=65535"`
	// RefreshIntervalMS re-publishes every feed periodically; zero disables it.
	RefreshIntervalMS int `yaml:"refreshIntervalMS" validate:"gte=0"`
}

// OutputConfig holds the rendering defaults every feed inherits
type OutputConfig struct {
	Format   string `yaml:"format" validate:"omitempty,oneof=rss1 rss2 atom"`
	Pretty   bool   `yaml:"pretty"`
	Validate *bool  `yaml:"validate"`
	// Timezone is an IANA zone name; empty means the host's local zone.
	Timezone string `yaml:"timezone" validate:"omitempty,timezone"`
}

// StoreConfig locates the SQLite document store
type StoreConfig struct {
	Path string `yaml:"path" validate:"required"`
}

// LoggingConfig contains logger settings
type LoggingConfig struct {
	Level   string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error"`
	Console bool   `yaml:"console"`
}

// Feed represents a single published feed
type Feed struct {
	Name string `yaml:"name" validate:"required,hostname_rfc1123"`
	// Source is a local path or an http(s) URL of a universal feed document.
	Source string `yaml:"source" validate:"required"`
	Format string `yaml:"format" validate:"omitempty,oneof=rss1 rss2 atom"`
	// Output, when set, also writes the rendered document to this path.
	Output    string `yaml:"output"`
	Pretty    *bool  `yaml:"pretty"`
	AssignIDs bool   `yaml:"assignIDs"`
	TimeoutMS int    `yaml:"timeoutMS" validate:"gte=0"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server  ServerConfig  `yaml:"server"`
	Output  OutputConfig  `yaml:"output"`
	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
	Feeds   []Feed        `yaml:"feeds" validate:"dive"`
}
