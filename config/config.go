package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port           int
		AllowedOrigins []string
	}
	Fetcher struct {
		Timeout      string
		UserAgent    string
		MaxBodyBytes int64
	}
	History struct {
		Enabled bool
		Driver  string
		Path    string
		DSN     string
		Limit   int
	}
	Logging struct {
		Dir string
	}
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Default values
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowedorigins", []string{"*"})
	v.SetDefault("fetcher.timeout", "30s")
	v.SetDefault("fetcher.useragent", "Sitemap Pulse Bot v1.0")
	v.SetDefault("fetcher.maxbodybytes", 50*1024*1024)
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.driver", "sqlite")
	v.SetDefault("history.path", "sitemap_pulse.db")
	v.SetDefault("history.dsn", "")
	v.SetDefault("history.limit", 10)
	v.SetDefault("logging.dir", "logs")

	if err := v.ReadInConfig(); err != nil {
		// No config file is fine, the defaults cover everything.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// GetFetchTimeout parses the configured fetch timeout, falling back to the
// 30 second default when the value is missing or unparsable.
func (c *Config) GetFetchTimeout() time.Duration {
	duration, err := time.ParseDuration(c.Fetcher.Timeout)
	if err != nil || duration <= 0 {
		return 30 * time.Second
	}
	return duration
}
