// Package apitest runs the development backend in-process for tests. The
// embedded Backend exposes the setup and inspection helpers.
package apitest

import (
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/clansession/internal/client/api"
	"github.com/dmitrijs2005/clansession/internal/devserver"
	"golang.org/x/crypto/bcrypt"
)

type Call = devserver.Call

const (
	CaptchaKey    = devserver.CaptchaKey
	CaptchaToken  = devserver.CaptchaToken
	CaptchaSlideX = devserver.CaptchaSlideX
)

type Server struct {
	*devserver.Backend

	// URL is the server root with a trailing slash.
	URL string

	t   testing.TB
	srv *httptest.Server
}

// New starts a server and stops it when the test ends. Passwords are hashed
// at the minimum bcrypt cost unless opts say otherwise.
func New(t testing.TB, opts ...devserver.Option) *Server {
	t.Helper()
	opts = append([]devserver.Option{devserver.WithHashCost(bcrypt.MinCost)}, opts...)
	b := devserver.NewBackend(opts...)
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	return &Server{Backend: b, URL: srv.URL + "/", t: t, srv: srv}
}

// Close stops the server early, e.g. to simulate an outage.
func (s *Server) Close() { s.srv.Close() }

// IssueTokens registers a token pair for username as if it logged in.
func (s *Server) IssueTokens(username string) api.TokenPair {
	s.t.Helper()
	p, err := s.Backend.IssueTokens(username)
	if err != nil {
		s.t.Fatalf("issue tokens: %v", err)
	}
	return p
}
