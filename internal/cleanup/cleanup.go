package cleanup

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/usmanghani/chatbot-api/internal/metrics"
	"github.com/usmanghani/chatbot-api/internal/repository"
)

// retention keeps expired and used reset tokens around for a day so that
// recent activity stays inspectable in the database.
const retention = 24 * time.Hour

// Purger periodically deletes dead password reset tokens on a cron schedule.
type Purger struct {
	resets   repository.ResetTokenRepository
	logger   *slog.Logger
	schedule string
}

func NewPurger(resets repository.ResetTokenRepository, schedule string, logger *slog.Logger) *Purger {
	return &Purger{
		resets:   resets,
		logger:   logger.With("component", "token_purger"),
		schedule: schedule,
	}
}

// Start runs the purge loop until ctx is cancelled. An invalid schedule is
// reported and the purger exits instead of panicking.
func (p *Purger) Start(ctx context.Context) {
	c := cron.New()
	if _, err := c.AddFunc(p.schedule, func() { p.purge(ctx) }); err != nil {
		p.logger.Error("invalid cleanup schedule", "schedule", p.schedule, "error", err)
		return
	}

	c.Start()
	p.logger.Info("token purger started", "schedule", p.schedule)

	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
	p.logger.Info("token purger shut down")
}

func (p *Purger) purge(ctx context.Context) {
	cutoff := time.Now().Add(-retention)

	purged, err := p.resets.PurgeDead(ctx, cutoff)
	if err != nil {
		p.logger.ErrorContext(ctx, "purge reset tokens", "error", err)
		return
	}
	if purged > 0 {
		metrics.ResetTokensPurgedTotal.Add(float64(purged))
		p.logger.InfoContext(ctx, "purged reset tokens", "count", purged)
	}
}
