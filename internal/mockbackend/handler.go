package mockbackend

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/llmaid/logger"
	"github.com/kbukum/llmaid/sse"
)

// CompletionRequest is the body accepted by POST /completions.
type CompletionRequest struct {
	Model            string   `json:"model" binding:"required"`
	Prompt           string   `json:"prompt"`
	Temperature      *float64 `json:"temperature,omitempty"`
	MaxTokens        *int     `json:"max_tokens,omitempty"`
	TopP             *float64 `json:"top_p,omitempty"`
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64 `json:"presence_penalty,omitempty"`
	Stream           bool     `json:"stream"`
}

type completionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []choice `json:"choices"`
	Usage   usage    `json:"usage"`
}

type choice struct {
	Text         string `json:"text"`
	Index        int    `json:"index"`
	FinishReason string `json:"finish_reason"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) completions(c *gin.Context) {
	auth := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || token == "" || (s.config.Secret != "" && token != s.config.Secret) {
		c.JSON(http.StatusUnauthorized, errorEnvelope("invalid or missing API key", "invalid_request_error", "invalid_api_key"))
		return
	}

	var req CompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorEnvelope("invalid request body: "+err.Error(), "invalid_request_error", nil))
		return
	}
	s.record(Received{
		RequestID:     c.GetString(ctxRequestID),
		Authorization: auth,
		Body:          req,
	})

	if !slices.Contains(s.config.Models, req.Model) {
		c.JSON(http.StatusNotFound, errorEnvelope("The model `"+req.Model+"` does not exist", "invalid_request_error", "model_not_found"))
		return
	}

	tokens := s.config.Tokens
	if s.config.Echo {
		tokens = []string{req.Prompt}
	}
	if req.Stream {
		s.stream(c, tokens)
		return
	}

	text := strings.Join(tokens, "")
	c.JSON(http.StatusOK, completionResponse{
		ID:      "cmpl-" + c.GetString(ctxRequestID),
		Object:  "text_completion",
		Created: time.Now().Unix(),
		Model:   req.Model,
		Choices: []choice{{Text: text, Index: 0, FinishReason: "stop"}},
		Usage: usage{
			PromptTokens:     len(strings.Fields(req.Prompt)),
			CompletionTokens: len(tokens),
			TotalTokens:      len(strings.Fields(req.Prompt)) + len(tokens),
		},
	})
}

func (s *Server) stream(c *gin.Context, tokens []string) {
	w, err := sse.NewWriter(c.Writer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorEnvelope(err.Error(), "server_error", nil))
		return
	}
	c.Status(http.StatusOK)

	ctx := c.Request.Context()
	for i, tok := range tokens {
		if i > 0 && s.config.TokenDelay > 0 {
			select {
			case <-time.After(s.config.TokenDelay):
			case <-ctx.Done():
				return
			}
		}
		if err := w.Token(tok); err != nil {
			s.log.Debug("client went away", logger.Fields(logger.FieldError, err.Error(), logger.FieldTokens, i))
			return
		}
	}
	_ = w.Done()
}
