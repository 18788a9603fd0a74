package config

import "os"

// Environment variable names, one per configurable field.
const (
	EnvPrefix           = "LLMAID_"
	EnvBaseURL          = "LLMAID_BASE_URL"
	EnvSecret           = "LLMAID_SECRET"
	EnvModel            = "LLMAID_MODEL"
	EnvPromptDir        = "LLMAID_PROMPT_DIR"
	EnvStrictTemplate   = "LLMAID_STRICT_TEMPLATE"
	EnvTemperature      = "LLMAID_TEMPERATURE"
	EnvMaxTokens        = "LLMAID_MAX_TOKENS"
	EnvContextLength    = "LLMAID_CONTEXT_LENGTH"
	EnvTopP             = "LLMAID_TOP_P"
	EnvFrequencyPenalty = "LLMAID_FREQUENCY_PENALTY"
	EnvPresencePenalty  = "LLMAID_PRESENCE_PENALTY"
)

// EnvVars lists every variable read by the environment layer.
var EnvVars = []string{
	EnvBaseURL, EnvSecret, EnvModel, EnvPromptDir, EnvStrictTemplate,
	EnvTemperature, EnvMaxTokens, EnvContextLength, EnvTopP,
	EnvFrequencyPenalty, EnvPresencePenalty,
}

// EnvReader looks up environment variables.
type EnvReader interface {
	Lookup(key string) (string, bool)
}

// EnvFunc adapts a lookup function to EnvReader.
type EnvFunc func(key string) (string, bool)

// Lookup implements EnvReader.
func (f EnvFunc) Lookup(key string) (string, bool) { return f(key) }

// OSEnv reads the process environment.
var OSEnv EnvReader = EnvFunc(os.LookupEnv)

// MapEnv is an EnvReader backed by a map, useful in tests.
type MapEnv map[string]string

// Lookup implements EnvReader.
func (m MapEnv) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// NoEnv is an EnvReader that never finds a variable.
var NoEnv EnvReader = MapEnv(nil)
