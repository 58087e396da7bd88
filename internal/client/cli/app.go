package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/clansession/internal/client/api"
	"github.com/dmitrijs2005/clansession/internal/client/config"
	"github.com/dmitrijs2005/clansession/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/clansession/internal/client/services"
	"github.com/dmitrijs2005/clansession/internal/client/storage"
	"github.com/dmitrijs2005/clansession/internal/client/team"
	"github.com/dmitrijs2005/clansession/internal/client/tokens"
	"github.com/dmitrijs2005/clansession/internal/client/usercache"
	"github.com/dmitrijs2005/clansession/internal/common"
	"github.com/dmitrijs2005/clansession/internal/logging"
)

type App struct {
	config  *config.Config
	log     logging.Logger
	closer  io.Closer
	auth    services.AuthService
	session services.SessionService
	captcha services.CaptchaService
	refresh *services.Refresher
	tokens  *tokens.Store
	users   *usercache.Cache
	teams   *team.Manager
	reader  *bufio.Reader
	out     io.Writer
}

// NewApp opens the configured store and wires the session stores, the API
// client and the services on top of it.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log, err := logging.New(c.LogDriver, c.LogLevel, os.Stderr)
	if err != nil {
		return nil, err
	}

	factory, closer, err := storage.Open(ctx, c)
	if err != nil {
		log.Error(ctx, "error opening session store", "driver", c.StoreDriver, "error", err)
		return nil, err
	}

	a := newApp(c, factory, log)
	a.closer = closer
	return a, nil
}

// newApp builds an App over an already opened store.
func newApp(c *config.Config, factory metadata.Factory, log logging.Logger) *App {
	tok := tokens.New(factory.Namespace(common.NamespaceAuthToken),
		tokens.WithTTL(c.TokenTTL),
		tokens.WithRefreshMargin(c.TokenRefreshMargin))
	users := usercache.New(factory.Namespace(common.NamespaceUserCache),
		usercache.WithTTL(c.UserCacheTTL))

	transport := api.NewAuthTransport(tok, api.WithBasePath(c.BasePath))
	client := api.NewHTTPClient(c.BaseURL, api.WithTransport(transport), api.WithTimeout(c.HTTPTimeout))

	teams := team.New(client, factory.Namespace(common.NamespaceTeam), log.With("component", "team"))

	auth := services.NewAuthService(client, tok, users, teams, log.With("component", "auth"))

	return &App{
		config:  c,
		log:     log,
		auth:    auth,
		refresh: services.NewRefresher(auth, log.With("component", "refresher")),
		session: services.NewSessionService(client, tok, users, teams, log.With("component", "session")),
		captcha: services.NewCaptchaService(client),
		tokens:  tok,
		users:   users,
		teams:   teams,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}
}

// Run restores the previous session, if any, and blocks in the REPL until
// the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	a.restore(ctx)

	if a.config.RefreshSchedule != "" {
		if err := a.refresh.Start(ctx, a.config.RefreshSchedule); err != nil {
			a.log.Warn(ctx, "background refresh disabled", "error", err)
		} else {
			defer a.refresh.Stop()
		}
	}

	printlnFn("Welcome to clansession CLI (type 'help' for commands)")
	runREPL(ctx, a, func() string { return a.getStatus(ctx) }, bufio.NewScanner(a.reader))
}

func (a *App) Close() {
	if a.closer == nil {
		return
	}
	if err := a.closer.Close(); err != nil {
		a.log.Warn(context.Background(), "closing session store failed", "error", err)
	}
}

// restore brings the team context back after a restart when a session is
// still stored.
func (a *App) restore(ctx context.Context) {
	if !a.isLoggedIn(ctx) {
		return
	}
	if err := a.teams.Init(ctx); err != nil {
		a.log.Warn(ctx, "team context init failed", "error", err)
		return
	}
	if _, err := a.auth.EnsureFresh(ctx); err != nil {
		a.log.Warn(ctx, "token refresh failed", "error", err)
	}
	if _, err := a.teams.LoadTeams(ctx); err != nil {
		a.log.Warn(ctx, "team load failed", "error", err)
	}
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	ok, err := a.session.IsAuthenticated(ctx)
	if err != nil {
		a.log.Warn(ctx, "session check failed", "error", err)
		return false
	}
	return ok
}

func (a *App) getStatus(ctx context.Context) string {
	if !a.isLoggedIn(ctx) {
		return "(signed out)"
	}

	name, _, err := a.users.DisplayName(ctx)
	if err != nil {
		a.log.Warn(ctx, "reading display name failed", "error", err)
	}
	s := name
	if cur := a.teams.Current(); cur != nil {
		s = fmt.Sprintf("%s@%s", s, cur.SectName)
	}
	if a.teams.IsGlobalMode() {
		s += " global"
	}
	return fmt.Sprintf("(%s)", s)
}
