package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/net/idna"
)

type Config struct {
	Site struct {
		Domain string
	}
	Backend struct {
		URL       string
		Timeout   string
		UserAgent string
	}
	Output struct {
		Path string
	}
	Log struct {
		Dir   string
		Debug bool
	}
	Storage struct {
		Driver string // "", "sqlite" or "postgres"
		URL    string
	}
	Server struct {
		Port int
	}
	Metrics struct {
		PushgatewayURL string
		Job            string
	}
	Verify struct {
		UserAgent  string
		SampleSize int
	}
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("sitemap")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Default values
	v.SetDefault("site.domain", "https://starlitjournals.com")
	v.SetDefault("backend.url", "http://localhost:5000")
	v.SetDefault("backend.timeout", "10s")
	v.SetDefault("backend.useragent", "Starlit Sitemap Builder v1.0")
	v.SetDefault("output.path", "public/sitemap.xml")
	v.SetDefault("log.dir", "")
	v.SetDefault("log.debug", false)
	v.SetDefault("storage.driver", "")
	v.SetDefault("storage.url", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("metrics.pushgatewayurl", "")
	v.SetDefault("metrics.job", "starlit_sitemap")
	v.SetDefault("verify.useragent", "Starlit Sitemap Verifier v1.0")
	v.SetDefault("verify.samplesize", 10)

	// The config file is optional; env and defaults cover a bare build step.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	domain, err := NormalizeDomain(config.Site.Domain)
	if err != nil {
		return nil, err
	}
	config.Site.Domain = domain
	config.Backend.URL = strings.TrimRight(config.Backend.URL, "/")

	switch config.Storage.Driver {
	case "", "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", config.Storage.Driver)
	}

	return &config, nil
}

// NormalizeDomain validates an absolute http(s) site URL, converts its host to
// ASCII and strips any trailing slash so paths can be appended directly.
func NormalizeDomain(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid site domain %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid site domain %q: scheme must be http or https", raw)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("invalid site domain %q: missing host", raw)
	}

	host, err := idna.Lookup.ToASCII(u.Hostname())
	if err != nil {
		return "", fmt.Errorf("invalid site domain %q: %w", raw, err)
	}
	if port := u.Port(); port != "" {
		host = host + ":" + port
	}
	u.Host = host

	return strings.TrimRight(u.String(), "/"), nil
}

func (c *Config) GetFetchTimeout() time.Duration {
	timeout, err := time.ParseDuration(c.Backend.Timeout)
	if err != nil || timeout <= 0 {
		return 10 * time.Second
	}
	return timeout
}

// LedgerEnabled reports whether generation runs should be recorded.
func (c *Config) LedgerEnabled() bool {
	return c.Storage.Driver != ""
}
