package api

import (
	"context"
	"net/http"
)

func (c *HTTPClient) Login(ctx context.Context, req LoginRequest) (*TokenPair, error) {
	var out *TokenPair
	if err := call(ctx, c, http.MethodPost, "api/v1/systemUser/login", nil, req, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, ErrEmptyData
	}
	return out, nil
}

func (c *HTTPClient) Register(ctx context.Context, req LoginRequest) error {
	var ignored any
	return call(ctx, c, http.MethodPost, "api/v1/systemUser/register", nil, req, &ignored)
}

// Logout invalidates the session server-side. The bearer token is attached
// by the transport.
func (c *HTTPClient) Logout(ctx context.Context) error {
	var ignored any
	return call(ctx, c, http.MethodPost, "api/v1/systemUser/logout", nil, nil, &ignored)
}

func (c *HTTPClient) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	body := map[string]string{"refreshToken": refreshToken}
	var out *TokenPair
	if err := call(ctx, c, http.MethodPost, "api/v1/systemUser/refresh-token", nil, body, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, ErrEmptyData
	}
	return out, nil
}
