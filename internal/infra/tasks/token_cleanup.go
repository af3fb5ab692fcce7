package tasks

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/msubchak/online-cinema/internal/core/port"
)

// TokenCleanup periodically removes expired activation, password reset, and
// refresh tokens.
type TokenCleanup struct {
	tokens   port.TokenRepository
	interval time.Duration
	logger   *zap.Logger
}

func NewTokenCleanup(tokens port.TokenRepository, interval time.Duration, logger *zap.Logger) *TokenCleanup {
	if interval <= 0 {
		interval = time.Hour
	}
	return &TokenCleanup{tokens: tokens, interval: interval, logger: logger}
}

// Run blocks until the context is canceled, sweeping expired tokens on each
// tick. Failures are logged and retried on the next tick.
func (t *TokenCleanup) Run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.logger.Info("Token cleanup started", zap.Duration("interval", t.interval))

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("Token cleanup stopped")
			return
		case <-ticker.C:
			t.sweep(ctx)
		}
	}
}

func (t *TokenCleanup) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	removed, err := t.tokens.DeleteExpired(sweepCtx, time.Now().UTC())
	if err != nil {
		t.logger.Error("Token cleanup sweep failed", zap.Error(err))
		return
	}

	if removed > 0 {
		t.logger.Info("Expired tokens removed", zap.Int64("count", removed))
	}
}
