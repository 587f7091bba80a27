package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/dhirajnair/pspec/internal/review"
	"github.com/dhirajnair/pspec/internal/style"
)

// Config is the top-level pspec configuration.
type Config struct {
	MaxCodeLength int     `mapstructure:"max_code_length"`
	FailOn        string  `mapstructure:"fail_on"`
	PEP8          PEP8    `mapstructure:"pep8"`
	Engines       Engines `mapstructure:"engines"`
	Server        Server  `mapstructure:"server"`
	Output        Output  `mapstructure:"output"`
}

// PEP8 describes the style reference and checker tuning.
type PEP8 struct {
	URL           string   `mapstructure:"url"`
	Date          string   `mapstructure:"date"`
	Revision      string   `mapstructure:"revision"`
	MaxLineLength int      `mapstructure:"max_line_length"`
	Ignore        []string `mapstructure:"ignore"`
}

// Engines is the default enable map.
type Engines struct {
	Types        bool `mapstructure:"types"`
	Dataflow     bool `mapstructure:"dataflow"`
	Errors       bool `mapstructure:"errors"`
	Security     bool `mapstructure:"security"`
	Metrics      bool `mapstructure:"metrics"`
	Insights     bool `mapstructure:"insights"`
	BestPractice bool `mapstructure:"best_practice"`
	Style        bool `mapstructure:"style"`
}

// Server configures `pspec serve`.
type Server struct {
	Addr        string   `mapstructure:"addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`
	RateLimit   float64  `mapstructure:"rate_limit"`
	Burst       int      `mapstructure:"burst"`
}

// Output defines output preferences.
type Output struct {
	Color  bool   `mapstructure:"color"`
	Format string `mapstructure:"format"`
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location),
// applies PSPEC_* environment overrides and returns a Config with all
// defaults applied.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("max_code_length", DefaultMaxCodeLength)
	v.SetDefault("fail_on", DefaultFailOn)
	v.SetDefault("pep8.url", DefaultPEP8.URL)
	v.SetDefault("pep8.date", DefaultPEP8.Date)
	v.SetDefault("pep8.revision", DefaultPEP8.Revision)
	v.SetDefault("pep8.max_line_length", DefaultPEP8.MaxLineLength)
	v.SetDefault("pep8.ignore", DefaultPEP8.Ignore)
	v.SetDefault("engines.types", DefaultEngines.Types)
	v.SetDefault("engines.dataflow", DefaultEngines.Dataflow)
	v.SetDefault("engines.errors", DefaultEngines.Errors)
	v.SetDefault("engines.security", DefaultEngines.Security)
	v.SetDefault("engines.metrics", DefaultEngines.Metrics)
	v.SetDefault("engines.insights", DefaultEngines.Insights)
	v.SetDefault("engines.best_practice", DefaultEngines.BestPractice)
	v.SetDefault("engines.style", DefaultEngines.Style)
	v.SetDefault("server.addr", DefaultServer.Addr)
	v.SetDefault("server.cors_origins", DefaultServer.CORSOrigins)
	v.SetDefault("server.rate_limit", DefaultServer.RateLimit)
	v.SetDefault("server.burst", DefaultServer.Burst)
	v.SetDefault("output.color", DefaultOutput.Color)
	v.SetDefault("output.format", DefaultOutput.Format)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		v.AddConfigPath(ConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

// ReviewOptions converts the configured enable map and style settings into
// review options.
func (c *Config) ReviewOptions() review.Options {
	return review.Options{
		Types:        c.Engines.Types,
		Dataflow:     c.Engines.Dataflow,
		Errors:       c.Engines.Errors,
		Security:     c.Engines.Security,
		Metrics:      c.Engines.Metrics,
		Insights:     c.Engines.Insights,
		BestPractice: c.Engines.BestPractice,
		Style:        c.Engines.Style,
		StyleOptions: style.Options{
			MaxLineLength: c.PEP8.MaxLineLength,
			Ignore:        c.PEP8.Ignore,
			PEP8URL:       c.PEP8.URL,
		},
		MaxCodeLength: c.MaxCodeLength,
	}
}

// DBPath returns the full path to the SQLite database.
func DBPath() string {
	return filepath.Join(ConfigDir(), DefaultDBName)
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}
