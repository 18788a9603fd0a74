package httpclient

import (
	"net/http"
	"net/url"
	"time"

	"github.com/kbukum/llmaid/errors"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultMaxErrorBody = 1 << 20
)

// Config configures the HTTP client.
type Config struct {
	// BaseURL is joined with relative request paths. Empty means requests
	// carry full URLs.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout bounds non-streaming requests. Streams are bounded by their
	// context only. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is sent unless a request sets its own.
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`

	// MaxErrorBody caps how much of a failed streaming reply is kept.
	// Defaults to 1 MiB.
	MaxErrorBody int64 `yaml:"max_error_body" mapstructure:"max_error_body"`

	// Auth is applied to requests that do not carry their own.
	Auth *AuthConfig `yaml:"-" mapstructure:"-"`

	// Headers are sent with every request; request headers win.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// Transport defaults to a clone of http.DefaultTransport.
	Transport http.RoundTripper `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults fills zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxErrorBody == 0 {
		c.MaxErrorBody = defaultMaxErrorBody
	}
}

// Validate returns a KindConfig error for the first invalid field.
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return errors.Config("timeout", "must be positive")
	}
	if c.MaxErrorBody < 0 {
		return errors.Config("max_error_body", "must not be negative")
	}
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil {
			return errors.ConfigValue("base_url", c.BaseURL, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return errors.Config("base_url", "scheme must be http or https")
		}
	}
	return nil
}
