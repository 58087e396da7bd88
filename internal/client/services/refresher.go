package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/clansession/internal/logging"
	"github.com/robfig/cron/v3"
)

// Refresher renews the stored token pair in the background once it enters
// the refresh margin, so an idle CLI session does not lapse.
type Refresher struct {
	cron *cron.Cron
	auth AuthService
	log  logging.Logger
}

func NewRefresher(auth AuthService, log logging.Logger) *Refresher {
	return &Refresher{cron: cron.New(), auth: auth, log: log}
}

// Start schedules the check with a cron spec such as "@every 1m" and starts
// the scheduler. Jobs run with ctx.
func (r *Refresher) Start(ctx context.Context, spec string) error {
	if _, err := r.cron.AddFunc(spec, func() { r.tick(ctx) }); err != nil {
		return fmt.Errorf("schedule token refresh: %w", err)
	}
	r.cron.Start()
	r.log.Debug(ctx, "token refresher started", "schedule", spec)
	return nil
}

// Stop halts the scheduler and waits for a running check to finish.
func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()
}

func (r *Refresher) tick(ctx context.Context) {
	refreshed, err := r.auth.EnsureFresh(ctx)
	switch {
	case errors.Is(err, ErrNoRefreshToken):
		// signed out
	case err != nil:
		r.log.Warn(ctx, "background token refresh failed", "error", err)
	case refreshed:
		r.log.Info(ctx, "token pair refreshed in background")
	}
}
