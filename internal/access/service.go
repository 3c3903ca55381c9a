// AngelaMos | 2026
// service.go

package access

import (
	"context"
	"log/slog"
	"time"

	"github.com/angelamos/gatekeeper/internal/account"
	"github.com/angelamos/gatekeeper/internal/directory"
	"github.com/angelamos/gatekeeper/internal/metrics"
)

// EntitlementChecker reports whether an account holds at least one active,
// unexpired entitlement. Implemented by the entitlement repositories.
type EntitlementChecker interface {
	HasActive(ctx context.Context, accountID string, now time.Time) (bool, error)
}

// Service is the single choke point for role changes. Every path that
// moves an account's role — payment processing, ban, unban, the expiry
// sweep, operator overrides — persists through Apply, so the directory
// sync contract is honored from exactly one place.
type Service struct {
	repo         account.Repository
	entitlements EntitlementChecker
	syncer       directory.Syncer
}

func NewService(
	repo account.Repository,
	entitlements EntitlementChecker,
	syncer directory.Syncer,
) *Service {
	return &Service{
		repo:         repo,
		entitlements: entitlements,
		syncer:       syncer,
	}
}

// Apply persists role on acct and mirrors it to the directory. The sync is
// best-effort: a failure is logged and counted, never returned, and never
// unwinds the committed local change.
func (s *Service) Apply(
	ctx context.Context,
	acct *account.Account,
	role string,
) error {
	acct.Role = role
	if err := s.repo.Update(ctx, acct); err != nil {
		return err
	}

	s.syncDirectory(ctx, acct.DiscordID, role)
	return nil
}

// Recompute re-derives and applies the role for one account. No-op for
// BANNED/ADMIN/OWNER. Returns the role in effect afterwards.
func (s *Service) Recompute(
	ctx context.Context,
	acct *account.Account,
	now time.Time,
) (string, error) {
	if acct.IsBanned() || acct.IsProtected() {
		return acct.Role, nil
	}

	hasActive, err := s.entitlements.HasActive(ctx, acct.ID, now)
	if err != nil {
		return acct.Role, err
	}

	derived := DeriveRole(acct.Role, hasActive)
	if derived == acct.Role {
		return derived, nil
	}

	metrics.RoleChanges.WithLabelValues("derivation").Inc()
	slog.Info("role derived",
		"account_id", acct.ID,
		"from", acct.Role,
		"to", derived,
	)

	if err := s.Apply(ctx, acct, derived); err != nil {
		return acct.Role, err
	}

	return derived, nil
}

// Resync pushes the stored role to the directory without changing it.
// Used by the startup/admin resync pass.
func (s *Service) Resync(ctx context.Context, acct *account.Account) {
	s.syncDirectory(ctx, acct.DiscordID, acct.Role)
}

// ResyncAll walks every account and pushes the stored role to the
// directory. Used at startup recovery and from the admin surface. Returns
// how many accounts were pushed.
func (s *Service) ResyncAll(ctx context.Context) (int, error) {
	params := account.ListParams{Page: 1, PageSize: 100}
	count := 0

	for {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		accts, total, err := s.repo.List(ctx, params)
		if err != nil {
			return count, err
		}

		for i := range accts {
			s.Resync(ctx, &accts[i])
			count++
		}

		if len(accts) == 0 || params.Page*params.PageSize >= total {
			break
		}
		params.Page++
	}

	slog.Info("directory resync finished", "accounts", count)
	return count, nil
}

func (s *Service) syncDirectory(ctx context.Context, discordID, role string) {
	if err := s.syncer.Sync(ctx, discordID, role); err != nil {
		metrics.RoleSyncFailures.Inc()
		slog.Error("directory role sync failed",
			"discord_id", discordID,
			"role", role,
			"error", err,
		)
	}
}
