package config

import "github.com/kbukum/llmaid/util"

// Field names used in errors and config files.
const (
	FieldBaseURL          = "base_url"
	FieldSecret           = "secret"
	FieldModel            = "model"
	FieldPromptDir        = "prompt_dir"
	FieldStrictTemplate   = "strict_template"
	FieldTemperature      = "temperature"
	FieldMaxTokens        = "max_tokens"
	FieldContextLength    = "context_length"
	FieldTopP             = "top_p"
	FieldFrequencyPenalty = "frequency_penalty"
	FieldPresencePenalty  = "presence_penalty"
)

// Settings is the effective configuration of one call. Nil pointer fields
// mean "use the provider default" and are omitted from the request.
type Settings struct {
	BaseURL          string   `json:"base_url" validate:"required"`
	Secret           string   `json:"secret" validate:"required"`
	Model            string   `json:"model" validate:"required"`
	Temperature      *float64 `json:"temperature,omitempty"`
	MaxTokens        *int     `json:"max_tokens,omitempty"`
	ContextLength    *int     `json:"context_length,omitempty"`
	TopP             *float64 `json:"top_p,omitempty"`
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64 `json:"presence_penalty,omitempty"`
	StrictTemplate   bool     `json:"strict_template"`
	PromptDir        string   `json:"prompt_dir,omitempty"`
}

// MaskedSecret returns the secret with all but its last four characters hidden.
func (s Settings) MaskedSecret() string {
	return util.MaskSecret(s.Secret, 4)
}

// Overrides holds optional values for one configuration layer. A nil field
// (or an empty string) is absent and defers to the next layer.
type Overrides struct {
	BaseURL          *string  `yaml:"base_url" mapstructure:"base_url"`
	Secret           *string  `yaml:"secret" mapstructure:"secret"`
	Model            *string  `yaml:"model" mapstructure:"model"`
	Temperature      *float64 `yaml:"temperature" mapstructure:"temperature"`
	MaxTokens        *int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	ContextLength    *int     `yaml:"context_length" mapstructure:"context_length"`
	TopP             *float64 `yaml:"top_p" mapstructure:"top_p"`
	FrequencyPenalty *float64 `yaml:"frequency_penalty" mapstructure:"frequency_penalty"`
	PresencePenalty  *float64 `yaml:"presence_penalty" mapstructure:"presence_penalty"`
	StrictTemplate   *bool    `yaml:"strict_template" mapstructure:"strict_template"`
	PromptDir        *string  `yaml:"prompt_dir" mapstructure:"prompt_dir"`
}

// Merge returns a new Overrides where the fields set in higher win over the
// receiver's. Neither operand is modified.
func (o Overrides) Merge(higher Overrides) Overrides {
	return Overrides{
		BaseURL:          util.FirstNonNil(higher.BaseURL, o.BaseURL),
		Secret:           util.FirstNonNil(higher.Secret, o.Secret),
		Model:            util.FirstNonNil(higher.Model, o.Model),
		Temperature:      util.FirstNonNil(higher.Temperature, o.Temperature),
		MaxTokens:        util.FirstNonNil(higher.MaxTokens, o.MaxTokens),
		ContextLength:    util.FirstNonNil(higher.ContextLength, o.ContextLength),
		TopP:             util.FirstNonNil(higher.TopP, o.TopP),
		FrequencyPenalty: util.FirstNonNil(higher.FrequencyPenalty, o.FrequencyPenalty),
		PresencePenalty:  util.FirstNonNil(higher.PresencePenalty, o.PresencePenalty),
		StrictTemplate:   util.FirstNonNil(higher.StrictTemplate, o.StrictTemplate),
		PromptDir:        util.FirstNonNil(higher.PromptDir, o.PromptDir),
	}
}

// IsZero reports whether no field is set.
func (o Overrides) IsZero() bool {
	return o == Overrides{}
}

// Defaults holds the built-in values of the lowest layer. Only optional
// fields have defaults; base URL, secret and model must come from a higher
// layer.
type Defaults struct {
	Temperature      *float64
	MaxTokens        *int
	ContextLength    *int
	TopP             *float64
	FrequencyPenalty *float64
	PresencePenalty  *float64
	StrictTemplate   bool
	PromptDir        string
}

// DefaultDefaults returns the built-in defaults: strict templates, every
// sampling parameter left to the provider.
func DefaultDefaults() Defaults {
	return Defaults{StrictTemplate: true}
}
