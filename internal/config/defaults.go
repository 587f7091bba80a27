// Package config provides configuration loading and defaults for pspec.
package config

// DefaultConfigDir is the default location for pspec configuration.
const DefaultConfigDir = "~/.config/pspec"

// DefaultDBName is the filename for the SQLite review history.
const DefaultDBName = "pspec.db"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// EnvPrefix prefixes environment overrides, e.g. PSPEC_MAX_CODE_LENGTH.
const EnvPrefix = "PSPEC"

// DefaultMaxCodeLength caps the size of a reviewed snippet, in bytes.
const DefaultMaxCodeLength = 102400

// DefaultFailOn never fails a check on findings.
const DefaultFailOn = "none"

// DefaultPEP8 describes the PEP 8 revision the style map was written against.
var DefaultPEP8 = PEP8{
	URL:           "https://peps.python.org/pep-0008/",
	Date:          "2021-11-01",
	Revision:      "2021-11-01",
	MaxLineLength: 79,
	Ignore:        []string{},
}

// DefaultEngines turns every engine on.
var DefaultEngines = Engines{
	Types:        true,
	Dataflow:     true,
	Errors:       true,
	Security:     true,
	Metrics:      true,
	Insights:     true,
	BestPractice: true,
	Style:        true,
}

// DefaultServer holds the API server defaults.
var DefaultServer = Server{
	Addr:        "127.0.0.1:8000",
	CORSOrigins: []string{"http://localhost:5173", "http://127.0.0.1:5173"},
	RateLimit:   10,
	Burst:       20,
}

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color:  true,
	Format: "text",
}
