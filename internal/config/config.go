package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"yfin/internal/output"
)

// YahooConfig holds the Yahoo Finance endpoints and transport settings.
type YahooConfig struct {
	// Base URLs (configurable for testing)
	Query1URL string `mapstructure:"query1_url"`
	Query2URL string `mapstructure:"query2_url"`
	RootURL   string `mapstructure:"root_url"`
	CookieURL string `mapstructure:"cookie_url"`

	UserAgent         string        `mapstructure:"user_agent"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RetryCount        int           `mapstructure:"retry_count"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

// Config holds all configuration for one yfin invocation.
type Config struct {
	Output      string      `mapstructure:"output"`
	LogLevel    string      `mapstructure:"log_level"`
	Concurrency int         `mapstructure:"concurrency"`
	Yahoo       YahooConfig `mapstructure:"yahoo"`
}

// DefaultUserAgent is sent unless configured otherwise. Yahoo rejects requests
// without a browser user agent.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// flagKeys maps configuration keys to the global flags that override them.
var flagKeys = map[string]string{
	"output":    "output",
	"log_level": "log-level",
}

// Load reads configuration from flags, environment variables, an optional
// config file and defaults, in that order of precedence.
//
// Environment variables use the YFIN_ prefix with dots replaced by
// underscores, e.g. YFIN_OUTPUT or YFIN_YAHOO_QUERY1_URL. The config file is
// the --config flag when given, otherwise config.yaml in the working
// directory or in $HOME/.yfin.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("output", string(output.JSON))
	v.SetDefault("log_level", "warn")
	v.SetDefault("concurrency", 4)
	v.SetDefault("yahoo.query1_url", "https://query1.finance.yahoo.com")
	v.SetDefault("yahoo.query2_url", "https://query2.finance.yahoo.com")
	v.SetDefault("yahoo.root_url", "https://finance.yahoo.com")
	v.SetDefault("yahoo.cookie_url", "https://fc.yahoo.com")
	v.SetDefault("yahoo.user_agent", DefaultUserAgent)
	v.SetDefault("yahoo.timeout", "30s")
	v.SetDefault("yahoo.retry_count", 3)
	v.SetDefault("yahoo.requests_per_second", 5.0)

	v.SetEnvPrefix("yfin")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := readConfigFile(v, flags); err != nil {
		return nil, err
	}

	if flags != nil {
		for key, name := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
				}
			}
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func readConfigFile(v *viper.Viper, flags *pflag.FlagSet) error {
	var path string
	if flags != nil {
		if f := flags.Lookup("config"); f != nil {
			path = f.Value.String()
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.yfin")

	// A missing default config file is fine; a broken one is not.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

// Validate checks every setting, naming the offending key in its error.
func (c *Config) Validate() error {
	var problems []string

	mode, err := output.ParseMode(c.Output)
	if err != nil {
		problems = append(problems, fmt.Sprintf("output: %v", err))
	} else {
		c.Output = string(mode)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, fmt.Sprintf("log_level: invalid level %q", c.LogLevel))
	}
	if c.Concurrency < 1 {
		problems = append(problems, fmt.Sprintf("concurrency: must be at least 1, got %d", c.Concurrency))
	}

	urls := []struct{ key, value string }{
		{"yahoo.query1_url", c.Yahoo.Query1URL},
		{"yahoo.query2_url", c.Yahoo.Query2URL},
		{"yahoo.root_url", c.Yahoo.RootURL},
		{"yahoo.cookie_url", c.Yahoo.CookieURL},
	}
	for _, u := range urls {
		if strings.TrimSpace(u.value) == "" {
			problems = append(problems, fmt.Sprintf("%s: must not be empty", u.key))
		}
	}
	if c.Yahoo.Timeout <= 0 {
		problems = append(problems, fmt.Sprintf("yahoo.timeout: must be positive, got %s", c.Yahoo.Timeout))
	}
	if c.Yahoo.RetryCount < 0 {
		problems = append(problems, fmt.Sprintf("yahoo.retry_count: must not be negative, got %d", c.Yahoo.RetryCount))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
