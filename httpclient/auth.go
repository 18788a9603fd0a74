package httpclient

import "net/http"

// HeaderAuthorization is the header bearer credentials travel in.
const HeaderAuthorization = "Authorization"

// AuthConfig puts credentials on outbound requests. A nil *AuthConfig sends
// none. Build one with BearerAuth, HeaderAuth or CustomAuth.
type AuthConfig struct {
	header string
	value  string
	modify func(*http.Request)
}

// BearerAuth sends token as "Authorization: Bearer <token>". An empty token
// still sends the header so the backend can reject it with its own message.
func BearerAuth(token string) *AuthConfig {
	return &AuthConfig{header: HeaderAuthorization, value: "Bearer " + token}
}

// HeaderAuth sends key verbatim in the named header, for backends that take
// an API key header instead of a bearer token.
func HeaderAuth(header, key string) *AuthConfig {
	return &AuthConfig{header: http.CanonicalHeaderKey(header), value: key}
}

// CustomAuth hands the request to fn before it is sent.
func CustomAuth(fn func(*http.Request)) *AuthConfig {
	return &AuthConfig{modify: fn}
}

// Header returns the header name and value this config sets, or empty
// strings for custom auth.
func (a *AuthConfig) Header() (name, value string) {
	if a == nil {
		return "", ""
	}
	return a.header, a.value
}

func (a *AuthConfig) apply(req *http.Request) {
	if a == nil {
		return
	}
	if a.header != "" {
		req.Header.Set(a.header, a.value)
	}
	if a.modify != nil {
		a.modify(req)
	}
}
