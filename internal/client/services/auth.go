package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/clansession/internal/client/api"
	"github.com/dmitrijs2005/clansession/internal/client/team"
	"github.com/dmitrijs2005/clansession/internal/client/tokens"
	"github.com/dmitrijs2005/clansession/internal/client/usercache"
	"github.com/dmitrijs2005/clansession/internal/logging"
)

var ErrNoRefreshToken = errors.New("no refresh token stored")

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: authenticate, store the token pair, then warm the user cache
//     and the team context. Warm-up failures are logged, not returned.
//   - Register: create an account on the server; stores nothing locally.
//   - RefreshToken: trade the stored refresh token for a new pair.
//   - EnsureFresh: refresh only when the stored pair is expired.
//   - RefreshProfile: refetch the profile and permissions into the cache.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	Login(ctx context.Context, username, password, captchaVerification string) error
	Register(ctx context.Context, username, password, captchaVerification string) error
	RefreshToken(ctx context.Context) error
	EnsureFresh(ctx context.Context) (bool, error)
	RefreshProfile(ctx context.Context) error
}

type authService struct {
	client api.Client
	tokens *tokens.Store
	users  *usercache.Cache
	teams  *team.Manager
	log    logging.Logger
}

// NewAuthService constructs an AuthService over the API client and the
// three session stores.
func NewAuthService(client api.Client, tok *tokens.Store, users *usercache.Cache, teams *team.Manager, log logging.Logger) AuthService {
	return &authService{client: client, tokens: tok, users: users, teams: teams, log: log}
}

func (a *authService) Login(ctx context.Context, username, password, captchaVerification string) error {
	pair, err := a.client.Login(ctx, api.LoginRequest{Username: username, Password: password, Code: captchaVerification})
	if err != nil {
		return fmt.Errorf("login error: %w", err)
	}

	if err := a.tokens.Save(ctx, pair.AccessToken, pair.RefreshToken); err != nil {
		return fmt.Errorf("token saving error: %w", err)
	}
	a.log.Info(ctx, "logged in", "username", username)

	if err := a.RefreshProfile(ctx); err != nil {
		a.log.Warn(ctx, "profile refresh after login failed", "error", err)
	}

	if err := a.teams.Init(ctx); err != nil {
		a.log.Warn(ctx, "team context init failed", "error", err)
		return nil
	}
	if _, err := a.teams.LoadTeams(ctx); err != nil {
		a.log.Warn(ctx, "team load after login failed", "error", err)
		return nil
	}
	if cur := a.teams.Current(); cur != nil {
		if err := a.users.SaveCurrentSect(ctx, cur.SectID, cur.SectName); err != nil {
			a.log.Warn(ctx, "saving current sect failed", "error", err)
		}
	}
	return nil
}

func (a *authService) Register(ctx context.Context, username, password, captchaVerification string) error {
	err := a.client.Register(ctx, api.LoginRequest{Username: username, Password: password, Code: captchaVerification})
	if err != nil {
		return fmt.Errorf("register error: %w", err)
	}
	return nil
}

func (a *authService) RefreshToken(ctx context.Context) error {
	rt, ok, err := a.tokens.RefreshToken(ctx)
	if err != nil {
		return err
	}
	if !ok || rt == "" {
		return ErrNoRefreshToken
	}

	pair, err := a.client.RefreshToken(ctx, rt)
	if err != nil {
		return fmt.Errorf("refresh error: %w", err)
	}
	if err := a.tokens.Save(ctx, pair.AccessToken, pair.RefreshToken); err != nil {
		return fmt.Errorf("token saving error: %w", err)
	}
	a.log.Debug(ctx, "token refreshed")
	return nil
}

// EnsureFresh refreshes the pair when it is expired or about to be. It
// reports whether a refresh happened.
func (a *authService) EnsureFresh(ctx context.Context) (bool, error) {
	expired, err := a.tokens.IsTokenExpired(ctx)
	if err != nil {
		return false, err
	}
	if !expired {
		return false, nil
	}
	if err := a.RefreshToken(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (a *authService) RefreshProfile(ctx context.Context) error {
	profile, err := a.client.UserInfo(ctx)
	if err != nil {
		return fmt.Errorf("get user info error: %w", err)
	}
	if err := a.users.Save(ctx, cachedUserFromProfile(profile)); err != nil {
		return err
	}

	perms, err := a.client.Permissions(ctx)
	if err != nil {
		return fmt.Errorf("get permissions error: %w", err)
	}
	codes := make([]string, 0, len(perms))
	for _, p := range perms {
		codes = append(codes, p.PermissionCode)
	}
	return a.users.SavePermissions(ctx, codes)
}

func cachedUserFromProfile(p *api.UserProfile) usercache.CachedUser {
	return usercache.CachedUser{
		CharID:    p.UserID,
		Username:  p.Username,
		Nickname:  p.Nickname,
		Avatar:    p.AvatarURL,
		Email:     p.Email,
		Phone:     p.PhoneNumber,
		Signature: p.Introduction,
	}
}
