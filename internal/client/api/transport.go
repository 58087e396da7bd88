package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/clansession/internal/common"
	"github.com/google/uuid"
)

// DefaultPublicPaths are served without a bearer token. An entry ending in
// "/" covers every path below it; other entries match exactly.
var DefaultPublicPaths = []string{
	"/api/v1/systemUser/login",
	"/api/v1/systemUser/register",
	"/api/v1/systemUser/refresh-token",
	"/api/v1/captcha/",
}

// TokenSource yields the Authorization header value, ok=false when signed out.
type TokenSource interface {
	AuthorizationHeader(ctx context.Context) (string, bool, error)
}

// TokenSourceError wraps a failure to read the token store.
type TokenSourceError struct {
	Err error
}

func (e *TokenSourceError) Error() string { return fmt.Sprintf("read token: %v", e.Err) }

func (e *TokenSourceError) Unwrap() error { return e.Err }

// AuthTransport attaches the bearer token to outgoing requests. It never
// refreshes or validates the token.
type AuthTransport struct {
	base     http.RoundTripper
	tokens   TokenSource
	basePath []string
	public   []pathRule
}

type pathRule struct {
	segments []string
	prefix   bool
}

type TransportOption func(*AuthTransport)

// WithBase sets the wrapped round tripper. Defaults to http.DefaultTransport.
func WithBase(rt http.RoundTripper) TransportOption {
	return func(t *AuthTransport) { t.base = rt }
}

// WithBasePath strips a mount prefix from request paths before matching.
func WithBasePath(p string) TransportOption {
	return func(t *AuthTransport) { t.basePath = splitPath(p) }
}

// WithPublicPaths replaces DefaultPublicPaths.
func WithPublicPaths(paths ...string) TransportOption {
	return func(t *AuthTransport) { t.public = compileRules(paths) }
}

func NewAuthTransport(tokens TokenSource, opts ...TransportOption) *AuthTransport {
	t := &AuthTransport{
		base:   http.DefaultTransport,
		tokens: tokens,
		public: compileRules(DefaultPublicPaths),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// RoundTrip implements http.RoundTripper. The incoming request is cloned,
// never modified.
func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())

	if out.Header.Get(common.RequestIDHeaderName) == "" {
		out.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	}

	if !t.IsPublic(req.URL.Path) {
		hdr, ok, err := t.tokens.AuthorizationHeader(req.Context())
		if err != nil {
			if req.Body != nil {
				_ = req.Body.Close()
			}
			return nil, &TokenSourceError{Err: err}
		}
		if ok {
			out.Header.Set(common.AuthorizationHeaderName, hdr)
		}
	}

	return t.base.RoundTrip(out)
}

// IsPublic reports whether path is served without a token.
func (t *AuthTransport) IsPublic(path string) bool {
	segs := splitPath(path)
	if hasPrefix(segs, t.basePath) {
		segs = segs[len(t.basePath):]
	}
	for _, r := range t.public {
		if r.matches(segs) {
			return true
		}
	}
	return false
}

func (r pathRule) matches(segs []string) bool {
	if r.prefix {
		return hasPrefix(segs, r.segments)
	}
	return len(segs) == len(r.segments) && hasPrefix(segs, r.segments)
}

func compileRules(paths []string) []pathRule {
	rules := make([]pathRule, 0, len(paths))
	for _, p := range paths {
		rules = append(rules, pathRule{segments: splitPath(p), prefix: strings.HasSuffix(p, "/")})
	}
	return rules
}

func splitPath(p string) []string {
	var segs []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

func hasPrefix(segs, prefix []string) bool {
	if len(prefix) > len(segs) {
		return false
	}
	for i := range prefix {
		if segs[i] != prefix[i] {
			return false
		}
	}
	return true
}
