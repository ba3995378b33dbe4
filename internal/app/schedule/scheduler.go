package schedule

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Refresher is anything that can reload its state on a timer.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefreshScheduler runs Refresher on a cron schedule, e.g. "@every 10m" or
// "0 */15 * * * *".
type RefreshScheduler struct {
	cron    *cron.Cron
	target  Refresher
	expr    string
	timeout time.Duration
	logger  *slog.Logger
}

var ErrNoSchedule = errors.New("schedule: empty refresh schedule")

func NewRefreshScheduler(expr string, target Refresher, timeout time.Duration, logger *slog.Logger) (*RefreshScheduler, error) {
	if expr == "" {
		return nil, ErrNoSchedule
	}
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	s := &RefreshScheduler{
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		target:  target,
		expr:    expr,
		timeout: timeout,
		logger:  logger,
	}
	if _, err := s.cron.AddFunc(expr, s.runOnce); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *RefreshScheduler) Start() {
	s.logger.Info("availability refresh scheduled", "schedule", s.expr)
	s.cron.Start()
}

// Stop waits for a running refresh to finish.
func (s *RefreshScheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *RefreshScheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.target.Refresh(ctx); err != nil {
		s.logger.Warn("scheduled refresh failed", "error", err)
	}
}
