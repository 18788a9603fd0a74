package llm

import (
	"github.com/kbukum/llmaid/config"
)

// CompletionRequest is the JSON body sent to the completions endpoint.
// Nil optional fields are omitted so the provider applies its defaults.
type CompletionRequest struct {
	Model            string   `json:"model"`
	Prompt           string   `json:"prompt"`
	Temperature      *float64 `json:"temperature,omitempty"`
	MaxTokens        *int     `json:"max_tokens,omitempty"`
	TopP             *float64 `json:"top_p,omitempty"`
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64 `json:"presence_penalty,omitempty"`
	Stream           bool     `json:"stream"`
}

// newCompletionRequest builds the wire body from resolved settings.
func newCompletionRequest(s config.Settings, prompt string, stream bool) CompletionRequest {
	return CompletionRequest{
		Model:            s.Model,
		Prompt:           prompt,
		Temperature:      s.Temperature,
		MaxTokens:        s.MaxTokens,
		TopP:             s.TopP,
		FrequencyPenalty: s.FrequencyPenalty,
		PresencePenalty:  s.PresencePenalty,
		Stream:           stream,
	}
}

// CompletionResponse is the non-streaming response body.
type CompletionResponse struct {
	ID      string   `json:"id,omitempty"`
	Object  string   `json:"object,omitempty"`
	Model   string   `json:"model,omitempty"`
	Choices []Choice `json:"choices"`
	Usage   *Usage   `json:"usage,omitempty"`
}

// Choice is one completion alternative.
type Choice struct {
	Text         string  `json:"text"`
	Index        int     `json:"index"`
	FinishReason *string `json:"finish_reason,omitempty"`
}

// Usage reports token consumption, when the provider sends it.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Result is the outcome of an asynchronous completion.
type Result struct {
	Text string
	Err  error
}

// PreparedRequest is the request a call would send, for inspection.
type PreparedRequest struct {
	Method    string
	URL       string
	RequestID string
	Settings  config.Settings
	Body      CompletionRequest
}
