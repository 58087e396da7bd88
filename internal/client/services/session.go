package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/clansession/internal/client/api"
	"github.com/dmitrijs2005/clansession/internal/client/team"
	"github.com/dmitrijs2005/clansession/internal/client/tokens"
	"github.com/dmitrijs2005/clansession/internal/client/usercache"
	"github.com/dmitrijs2005/clansession/internal/logging"
)

// SessionService owns the signed-in state as a whole.
type SessionService interface {
	// Teardown logs out server-side (best effort) and clears tokens, the
	// user cache and the team context, in that order. It stops at the first
	// local failure and returns it.
	Teardown(ctx context.Context) error
	// IsAuthenticated requires both a stored access token and a cached
	// identity.
	IsAuthenticated(ctx context.Context) (bool, error)
}

// TeardownError names the stage a teardown stopped at.
type TeardownError struct {
	Stage string
	Err   error
}

func (e *TeardownError) Error() string { return fmt.Sprintf("teardown %s: %v", e.Stage, e.Err) }

func (e *TeardownError) Unwrap() error { return e.Err }

type sessionService struct {
	client api.Client
	tokens *tokens.Store
	users  *usercache.Cache
	teams  *team.Manager
	log    logging.Logger
}

func NewSessionService(client api.Client, tok *tokens.Store, users *usercache.Cache, teams *team.Manager, log logging.Logger) SessionService {
	return &sessionService{client: client, tokens: tok, users: users, teams: teams, log: log}
}

func (s *sessionService) Teardown(ctx context.Context) error {
	has, err := s.tokens.HasToken(ctx)
	if err != nil {
		s.log.Warn(ctx, "reading token before logout failed", "error", err)
	}
	if has {
		if err := s.client.Logout(ctx); err != nil {
			s.log.Warn(ctx, "server logout failed", "error", err)
		}
	}

	// Tokens go first: a teardown that stops early still leaves the client
	// signed out.
	stages := []struct {
		name  string
		clear func(context.Context) error
	}{
		{"tokens", s.tokens.Clear},
		{"user cache", s.users.Clear},
		{"team context", s.teams.Clear},
	}
	for _, st := range stages {
		if err := st.clear(ctx); err != nil {
			return &TeardownError{Stage: st.name, Err: err}
		}
	}
	s.log.Info(ctx, "session cleared")
	return nil
}

func (s *sessionService) IsAuthenticated(ctx context.Context) (bool, error) {
	has, err := s.tokens.HasToken(ctx)
	if err != nil || !has {
		return false, err
	}
	return s.users.IsLoggedIn(ctx)
}
