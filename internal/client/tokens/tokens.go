// Package tokens persists the access/refresh token pair and answers expiry
// questions about it.
//
// Expiry is tracked locally: Save stamps now+TTL, and the pair counts as
// expired once the clock passes expiry minus the refresh margin. The server
// remains the authority; no refresh happens here.
package tokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/clansession/internal/client/prefs"
	"github.com/dmitrijs2005/clansession/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/clansession/internal/clock"
	"github.com/dmitrijs2005/clansession/internal/common"
)

const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyExpireTime   = "token_expire_time"

	DefaultTTL           = 2 * time.Hour
	DefaultRefreshMargin = 5 * time.Minute
)

type Store struct {
	prefs  *prefs.Prefs
	clock  clock.Clock
	ttl    time.Duration
	margin time.Duration
}

type Option func(*Store)

func WithClock(c clock.Clock) Option { return func(s *Store) { s.clock = c } }

func WithTTL(d time.Duration) Option { return func(s *Store) { s.ttl = d } }

func WithRefreshMargin(d time.Duration) Option { return func(s *Store) { s.margin = d } }

// New binds a Store to repo, which should be the auth_token namespace.
func New(repo metadata.Repository, opts ...Option) *Store {
	s := &Store{
		prefs:  prefs.New(repo),
		clock:  clock.System(),
		ttl:    DefaultTTL,
		margin: DefaultRefreshMargin,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Save stores both tokens and stamps a fresh expiry in one write.
func (s *Store) Save(ctx context.Context, access, refresh string) error {
	expiry := s.clock.Now().Add(s.ttl).UnixMilli()
	return s.prefs.Edit(ctx, func(e *prefs.Prefs) error {
		if err := e.SetString(ctx, keyAccessToken, access); err != nil {
			return err
		}
		if err := e.SetString(ctx, keyRefreshToken, refresh); err != nil {
			return err
		}
		return e.SetInt64(ctx, keyExpireTime, expiry)
	})
}

func (s *Store) AccessToken(ctx context.Context) (string, bool, error) {
	return s.prefs.String(ctx, keyAccessToken)
}

func (s *Store) RefreshToken(ctx context.Context) (string, bool, error) {
	return s.prefs.String(ctx, keyRefreshToken)
}

// HasToken reports whether a non-empty access token is stored.
func (s *Store) HasToken(ctx context.Context) (bool, error) {
	tok, _, err := s.AccessToken(ctx)
	if err != nil {
		return false, err
	}
	return tok != "", nil
}

// ExpiresAt returns the locally tracked expiry.
func (s *Store) ExpiresAt(ctx context.Context) (time.Time, bool, error) {
	ms, ok, err := s.prefs.Int64(ctx, keyExpireTime)
	if err != nil || !ok {
		return time.Time{}, false, prefs.IgnoreMalformed(err)
	}
	return time.UnixMilli(ms), true, nil
}

// IsTokenExpired is true when now > expiry - margin, or when no expiry is
// stored.
func (s *Store) IsTokenExpired(ctx context.Context) (bool, error) {
	exp, ok, err := s.ExpiresAt(ctx)
	if err != nil {
		return true, err
	}
	if !ok {
		return true, nil
	}
	return s.clock.Now().UnixMilli() > exp.Add(-s.margin).UnixMilli(), nil
}

// AuthorizationHeader returns "Bearer <access>", or ok=false without a token.
func (s *Store) AuthorizationHeader(ctx context.Context) (string, bool, error) {
	tok, _, err := s.AccessToken(ctx)
	if err != nil || tok == "" {
		return "", false, err
	}
	return common.BearerPrefix + tok, true, nil
}

// Clear removes the pair and its expiry. Calling it twice is fine.
func (s *Store) Clear(ctx context.Context) error {
	return s.prefs.Edit(ctx, func(e *prefs.Prefs) error {
		return e.Remove(ctx, keyAccessToken, keyRefreshToken, keyExpireTime)
	})
}
