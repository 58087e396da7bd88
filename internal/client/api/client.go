package api

import (
	"context"
	"net/http"
	"time"
)

// Client is the backend contract used by the session services.
type Client interface {
	Teams(ctx context.Context) ([]Team, error)
	SwitchTeam(ctx context.Context, sectID int64) error
	SetDefaultTeam(ctx context.Context, sectID int64) error
	GlobalTasks(ctx context.Context, status string, page, size int) (*Page[GlobalTask], error)

	Login(ctx context.Context, req LoginRequest) (*TokenPair, error)
	Register(ctx context.Context, req LoginRequest) error
	Logout(ctx context.Context) error
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)

	UserInfo(ctx context.Context) (*UserProfile, error)
	Permissions(ctx context.Context) ([]Permission, error)

	GetCaptcha(ctx context.Context, captchaType string) (*Captcha, error)
	CheckCaptcha(ctx context.Context, captchaType, token, pointJSON string) error
}

// HTTPClient implements Client over net/http.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

type ClientOption func(*HTTPClient)

// WithTransport sets the round tripper, typically an *AuthTransport.
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *HTTPClient) { c.http.Transport = rt }
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) { c.http.Timeout = d }
}

// NewHTTPClient builds a client rooted at baseURL. Endpoint paths are
// relative, so baseURL should end with "/".
func NewHTTPClient(baseURL string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{baseURL: baseURL, http: &http.Client{}}
	for _, o := range opts {
		o(c)
	}
	return c
}

var _ Client = (*HTTPClient)(nil)
