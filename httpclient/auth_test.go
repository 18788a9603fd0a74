package httpclient

import (
	"net/http"
	"testing"
)

func TestAuthConfig_Apply(t *testing.T) {
	tests := []struct {
		name   string
		auth   *AuthConfig
		header string
		want   string
	}{
		{"bearer", BearerAuth("sk-123"), "Authorization", "Bearer sk-123"},
		{"bearer empty token", BearerAuth(""), "Authorization", "Bearer "},
		{"api key header", HeaderAuth("api-key", "sk-123"), "Api-Key", "sk-123"},
		{"custom", CustomAuth(func(r *http.Request) { r.Header.Set("X-Key", "v") }), "X-Key", "v"},
		{"nil", nil, "Authorization", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodPost, "http://example.com/completions", nil)
			tt.auth.apply(req)
			if got := req.Header.Get(tt.header); got != tt.want {
				t.Errorf("%s = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestAuthConfig_Header(t *testing.T) {
	name, value := BearerAuth("tok").Header()
	if name != HeaderAuthorization || value != "Bearer tok" {
		t.Errorf("Header() = %q, %q", name, value)
	}

	var nilAuth *AuthConfig
	if name, value := nilAuth.Header(); name != "" || value != "" {
		t.Errorf("nil Header() = %q, %q", name, value)
	}
	if name, _ := CustomAuth(func(*http.Request) {}).Header(); name != "" {
		t.Errorf("custom Header() name = %q", name)
	}
}
