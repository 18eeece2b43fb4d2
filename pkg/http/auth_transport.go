package http

import (
	"fmt"
	"net/http"
)

const tokenTypeHeader = "X-Snowflake-Authorization-Token-Type"

// TokenSource yields the bearer token and its type for each outbound request.
// Implementations may cache and refresh tokens.
type TokenSource interface {
	Token() (token string, tokenType string, err error)
}

// StaticToken is a TokenSource returning a fixed token
type StaticToken struct {
	Value string
	Type  string
}

func (s StaticToken) Token() (string, string, error) {
	return s.Value, s.Type, nil
}

type authTransport struct {
	source    TokenSource
	transport http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqCopy := req.Clone(req.Context())

	token, tokenType, err := t.source.Token()
	if err != nil {
		return nil, fmt.Errorf("obtain auth token: %w", err)
	}

	if token != "" {
		reqCopy.Header.Set("Authorization", "Bearer "+token)
		if tokenType != "" {
			reqCopy.Header.Set(tokenTypeHeader, tokenType)
		}
	}

	return t.transport.RoundTrip(reqCopy)
}

func WithTokenSource(source TokenSource) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &authTransport{
			source:    source,
			transport: rt,
		}
	})
}
