package devserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/clansession/internal/devserver/config"
	"github.com/dmitrijs2005/clansession/internal/logging"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	backend *Backend
}

// NewApp builds the backend described by c and applies its seed file.
func NewApp(c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogDriver, c.LogLevel, os.Stdout)
	if err != nil {
		return nil, err
	}

	opts := []Option{WithLogger(logger.With("module", "backend"))}
	if c.SecretKey != "" {
		opts = append(opts, WithJWT([]byte(c.SecretKey), c.AccessTokenValidityDuration))
	}
	b := NewBackend(opts...)

	if c.SeedFile != "" {
		seed, err := LoadSeed(c.SeedFile)
		if err != nil {
			return nil, fmt.Errorf("seed init error: %w", err)
		}
		if err := b.Apply(seed); err != nil {
			return nil, fmt.Errorf("seed init error: %w", err)
		}
	}

	return &App{config: c, logger: logger, backend: b}, nil
}

// Run serves until ctx is cancelled or the listener fails.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	listen, err := net.Listen("tcp", app.config.Address)
	if err != nil {
		return err
	}

	srv := &http.Server{Handler: app.backend, ReadHeaderTimeout: 10 * time.Second}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "shutdown failed", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	err = srv.Serve(listen)
	cancelFunc()
	wg.Wait()

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
