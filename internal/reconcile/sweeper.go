// AngelaMos | 2026
// sweeper.go

package reconcile

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/angelamos/gatekeeper/internal/access"
	"github.com/angelamos/gatekeeper/internal/account"
	"github.com/angelamos/gatekeeper/internal/core"
	"github.com/angelamos/gatekeeper/internal/metrics"
)

// Sweeper periodically reconciles roles against entitlement expiry. It only
// ever downgrades: VIP accounts with no active window drop to USER. Upgrades
// happen on the payment path, never here.
type Sweeper struct {
	accounts account.Repository
	access   *access.Service
	locks    *core.KeyedMutex
	interval time.Duration
	now      func() time.Time

	running sync.Mutex
}

func NewSweeper(
	accounts account.Repository,
	roles *access.Service,
	locks *core.KeyedMutex,
	interval time.Duration,
) *Sweeper {
	return &Sweeper{
		accounts: accounts,
		access:   roles,
		locks:    locks,
		interval: interval,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Run sweeps once immediately, then on every tick until ctx is cancelled.
// Blocks; callers run it in its own goroutine.
func (s *Sweeper) Run(ctx context.Context) {
	s.Sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one reconciliation pass. A pass that arrives while another is
// still running is skipped, not queued.
func (s *Sweeper) Sweep(ctx context.Context) {
	if !s.running.TryLock() {
		metrics.SweepsSkipped.Inc()
		slog.Warn("sweep skipped, previous pass still running")
		return
	}
	defer s.running.Unlock()

	metrics.Sweeps.Inc()
	now := s.now()
	started := time.Now()

	vips, err := s.accounts.ListByRole(ctx, account.RoleVIP)
	if err != nil {
		slog.Error("sweep failed to list accounts", "error", err)
		return
	}

	var downgraded int
	for i := range vips {
		if ctx.Err() != nil {
			return
		}
		if s.sweepOne(ctx, &vips[i], now) {
			downgraded++
		}
	}

	slog.Info("sweep finished",
		"scanned", len(vips),
		"downgraded", downgraded,
		"elapsed", time.Since(started),
	)
}

func (s *Sweeper) sweepOne(
	ctx context.Context,
	acct *account.Account,
	now time.Time,
) bool {
	unlock := s.locks.Lock(acct.ID)
	defer unlock()

	// The listing snapshot may be stale by the time the lock is held.
	fresh, err := s.accounts.GetByID(ctx, acct.ID)
	if err != nil {
		slog.Error("sweep reload failed", "account_id", acct.ID, "error", err)
		return false
	}
	if fresh.Role != account.RoleVIP {
		return false
	}

	role, err := s.access.Recompute(ctx, fresh, now)
	if err != nil {
		slog.Error("sweep recompute failed", "account_id", acct.ID, "error", err)
		return false
	}

	if role == account.RoleUser {
		metrics.SweepDowngrades.Inc()
		return true
	}

	return false
}
