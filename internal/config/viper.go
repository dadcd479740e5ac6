package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"fjacquet/ledger-sync/internal/sinkfmt"
)

// Source types accepted in the sources map.
const (
	SourceTypeStripe = "stripe"
	SourceTypePayPal = "paypal"
	SourceTypeCAMT   = "camt"
)

// Sink backends.
const (
	SinkTypeCSV    = "csv"
	SinkTypeSheets = "sheets"
)

// SourceConfig describes one configured transaction source. APIKey
// supports ${VAR} references resolved from the environment.
type SourceConfig struct {
	Type          string `mapstructure:"type" yaml:"type"`
	BaseURL       string `mapstructure:"base_url" yaml:"base_url"`
	APIKey        string `mapstructure:"api_key" yaml:"-"`
	Account       string `mapstructure:"account" yaml:"account"`
	Ledger        string `mapstructure:"ledger" yaml:"ledger"`
	Strategy      string `mapstructure:"strategy" yaml:"strategy"`
	StatementPath string `mapstructure:"statement_path" yaml:"statement_path"`
}

// Config represents the complete application configuration.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	HTTP struct {
		TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		MaxRetries     int `mapstructure:"max_retries" yaml:"max_retries"`
	} `mapstructure:"http" yaml:"http"`

	Sink struct {
		Type       string `mapstructure:"type" yaml:"type"`
		DateLayout string `mapstructure:"date_layout" yaml:"date_layout"`
		Decimals   int32  `mapstructure:"decimals" yaml:"decimals"`

		CSV struct {
			Directory string `mapstructure:"directory" yaml:"directory"`
		} `mapstructure:"csv" yaml:"csv"`

		Sheets struct {
			SpreadsheetID   string `mapstructure:"spreadsheet_id" yaml:"spreadsheet_id"`
			CredentialsFile string `mapstructure:"credentials_file" yaml:"credentials_file"`
		} `mapstructure:"sheets" yaml:"sheets"`
	} `mapstructure:"sink" yaml:"sink"`

	AI struct {
		Enabled           bool   `mapstructure:"enabled" yaml:"enabled"`
		Model             string `mapstructure:"model" yaml:"model"`
		RequestsPerMinute int    `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
		TimeoutSeconds    int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		FallbackCategory  string `mapstructure:"fallback_category" yaml:"fallback_category"`
		APIKey            string `mapstructure:"api_key" yaml:"-"`
	} `mapstructure:"ai" yaml:"ai"`

	Data struct {
		Directory string `mapstructure:"directory" yaml:"directory"`
	} `mapstructure:"data" yaml:"data"`

	Sources map[string]SourceConfig `mapstructure:"sources" yaml:"sources"`
}

// Rules returns the textual encoding rules shared by every sink backend.
func (c *Config) Rules() sinkfmt.Rules {
	return sinkfmt.Rules{DateLayout: c.Sink.DateLayout, Decimals: c.Sink.Decimals}
}

// InitializeConfig initializes Viper configuration with hierarchical
// loading: defaults, then an optional config.yaml, then LEDGER_*
// environment variables.
func InitializeConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.ledger-sync")
	v.AddConfigPath(".ledger-sync")
	v.AddConfigPath(".")

	v.SetEnvPrefix("LEDGER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	// The Gemini key is always taken from the unprefixed variable.
	if err := v.BindEnv("ai.api_key", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind GEMINI_API_KEY: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	for name, src := range config.Sources {
		src.APIKey = os.ExpandEnv(src.APIKey)
		config.Sources[name] = src
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("http.timeout_seconds", 30)
	v.SetDefault("http.max_retries", 3)

	v.SetDefault("sink.type", SinkTypeCSV)
	v.SetDefault("sink.date_layout", "02/01/2006")
	v.SetDefault("sink.decimals", 2)
	v.SetDefault("sink.csv.directory", "ledgers")

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.requests_per_minute", 10)
	v.SetDefault("ai.timeout_seconds", 30)
	v.SetDefault("ai.fallback_category", "Uncategorized")

	v.SetDefault("data.directory", "")
}

func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}
	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if config.HTTP.TimeoutSeconds < 1 {
		return fmt.Errorf("http.timeout_seconds must be positive, got: %d", config.HTTP.TimeoutSeconds)
	}
	if config.HTTP.MaxRetries < 0 {
		return fmt.Errorf("http.max_retries must not be negative, got: %d", config.HTTP.MaxRetries)
	}

	switch config.Sink.Type {
	case SinkTypeCSV, SinkTypeSheets:
	default:
		return fmt.Errorf("invalid sink type: %s (must be 'csv' or 'sheets')", config.Sink.Type)
	}
	if config.Sink.Type == SinkTypeSheets && config.Sink.Sheets.SpreadsheetID == "" {
		return fmt.Errorf("sink.sheets.spreadsheet_id required when sink type is 'sheets'")
	}
	if config.Sink.Decimals < 0 {
		return fmt.Errorf("sink.decimals must not be negative, got: %d", config.Sink.Decimals)
	}

	if config.AI.Enabled {
		if config.AI.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY required when AI is enabled")
		}
		if config.AI.RequestsPerMinute < 1 || config.AI.RequestsPerMinute > 1000 {
			return fmt.Errorf("ai.requests_per_minute must be between 1 and 1000, got: %d", config.AI.RequestsPerMinute)
		}
		if config.AI.TimeoutSeconds < 1 || config.AI.TimeoutSeconds > 300 {
			return fmt.Errorf("ai.timeout_seconds must be between 1 and 300, got: %d", config.AI.TimeoutSeconds)
		}
	}

	for name, src := range config.Sources {
		if err := validateSource(name, src); err != nil {
			return err
		}
	}
	return nil
}

func validateSource(name string, src SourceConfig) error {
	switch src.Type {
	case SourceTypeStripe, SourceTypePayPal, SourceTypeCAMT:
	default:
		return fmt.Errorf("source %s: unknown type %q", name, src.Type)
	}
	if src.Ledger == "" {
		return fmt.Errorf("source %s: ledger is required", name)
	}
	switch src.Strategy {
	case "identity-set", "temporal-boundary":
	default:
		return fmt.Errorf("source %s: unknown strategy %q", name, src.Strategy)
	}
	if src.Type == SourceTypeCAMT && src.BaseURL == "" {
		return fmt.Errorf("source %s: base_url is required for camt sources", name)
	}
	return nil
}
