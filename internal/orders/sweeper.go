package orders

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SweepInterval matches the minute granularity of the storefront's status sweep.
const SweepInterval = time.Minute

// Sweeper periodically evaluates every stored order.
type Sweeper struct {
	manager  *Manager
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func NewSweeper(manager *Manager, interval time.Duration, logger *zap.Logger) *Sweeper {
	if interval <= 0 {
		interval = SweepInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{manager: manager, interval: interval, logger: logger, now: time.Now}
}

func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Sweep runs one evaluation tick over all users and returns how many orders changed.
func (s *Sweeper) Sweep(ctx context.Context) int {
	users, err := s.manager.repo.Users(ctx)
	if err != nil {
		s.logger.Error("failed to list order owners", zap.Error(err))
		return 0
	}

	now := s.now()
	changed := 0
	for _, userID := range users {
		updated, err := s.manager.Tick(ctx, userID, now)
		if err != nil {
			s.logger.Error("order sweep failed", zap.String("user_id", userID), zap.Error(err))
		}
		changed += len(updated)
	}
	if changed > 0 {
		s.logger.Debug("order sweep finished", zap.Int("users", len(users)), zap.Int("changed", changed))
	}
	return changed
}
