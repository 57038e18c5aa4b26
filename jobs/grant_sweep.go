package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/gleeworld/gleeworld/internal/grants"
)

// NewGrantSweepHandler returns the handler for TaskTypeGrantSweep. The
// sweep is idempotent; overlapping runs converge on the same state.
func NewGrantSweepHandler(svc *grants.Service, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		swept, err := svc.SweepExpired(ctx, time.Now().UTC())
		if err != nil {
			if logger != nil {
				logger.Error("grant expiry sweep", slog.Any("error", err))
			}
			return err
		}
		if logger != nil && swept > 0 {
			logger.Info("grant expiry sweep", slog.Int64("deactivated", swept))
		}
		return nil
	}
}
