package mockbackend

import (
	"fmt"
	"time"
)

// DefaultModel is the model accepted when Config.Models is empty.
const DefaultModel = "mock-model"

// FixtureTokens is the default streamed answer.
var FixtureTokens = []string{"Hello", " world", "!"}

// Config holds mock backend configuration.
type Config struct {
	Host         string `yaml:"host" mapstructure:"host"`
	Port         int    `yaml:"port" mapstructure:"port"`                   // 0 picks a free port
	ReadTimeout  int    `yaml:"read_timeout" mapstructure:"read_timeout"`   // seconds
	WriteTimeout int    `yaml:"write_timeout" mapstructure:"write_timeout"` // seconds
	IdleTimeout  int    `yaml:"idle_timeout" mapstructure:"idle_timeout"`   // seconds

	// Secret, when set, is the only accepted bearer token.
	Secret string `yaml:"secret" mapstructure:"secret"`
	// Models lists accepted model names.
	Models []string `yaml:"models" mapstructure:"models"`
	// Tokens is the answer, streamed one token per event.
	Tokens []string `yaml:"tokens" mapstructure:"tokens"`
	// Echo answers with the received prompt instead of Tokens.
	Echo bool `yaml:"echo" mapstructure:"echo"`
	// TokenDelay is slept between streamed tokens.
	TokenDelay time.Duration `yaml:"token_delay" mapstructure:"token_delay"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 15
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60
	}
	if len(c.Models) == 0 {
		c.Models = []string{DefaultModel}
	}
	if len(c.Tokens) == 0 {
		c.Tokens = FixtureTokens
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("mockbackend.port must be between 0 and 65535 (got: %d)", c.Port)
	}
	if c.ReadTimeout < 0 {
		return fmt.Errorf("mockbackend.read_timeout must be non-negative (got: %d)", c.ReadTimeout)
	}
	if c.WriteTimeout < 0 {
		return fmt.Errorf("mockbackend.write_timeout must be non-negative (got: %d)", c.WriteTimeout)
	}
	if c.IdleTimeout < 0 {
		return fmt.Errorf("mockbackend.idle_timeout must be non-negative (got: %d)", c.IdleTimeout)
	}
	if c.TokenDelay < 0 {
		return fmt.Errorf("mockbackend.token_delay must be non-negative (got: %s)", c.TokenDelay)
	}
	return nil
}
