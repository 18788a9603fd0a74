package errors

import "encoding/json"

// ErrorResponse is the error envelope used by OpenAI-compatible providers.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody contains the provider's error details.
type ErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
	Code    any    `json:"code,omitempty"`
}

// ToResponse converts an Error to the provider error envelope.
func (e *Error) ToResponse() ErrorResponse {
	typ := "invalid_request_error"
	if e.Kind == KindProvider || e.StatusCode >= 500 {
		typ = "server_error"
	}
	return ErrorResponse{Error: ErrorBody{Message: e.Message, Type: typ}}
}

// ParseResponse decodes a provider error envelope from a raw body.
func ParseResponse(body []byte) (ErrorBody, bool) {
	if len(body) == 0 {
		return ErrorBody{}, false
	}
	var resp ErrorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return ErrorBody{}, false
	}
	return resp.Error, resp.Error.Message != ""
}
