// AngelaMos | 2026
// service.go

package ban

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/angelamos/gatekeeper/internal/access"
	"github.com/angelamos/gatekeeper/internal/account"
	"github.com/angelamos/gatekeeper/internal/core"
	"github.com/angelamos/gatekeeper/internal/metrics"
)

// Service is the ban and identity correlation ledger. A ban records how the
// target was identified, the role it held, and the reason, so an unban can
// restore exactly what the ban displaced.
type Service struct {
	accounts account.Repository
	access   *access.Service
	locks    *core.KeyedMutex
}

func NewService(
	accounts account.Repository,
	roles *access.Service,
	locks *core.KeyedMutex,
) *Service {
	return &Service{
		accounts: accounts,
		access:   roles,
		locks:    locks,
	}
}

// Ban resolves the selector and bans every resolved account, one outcome
// per account. ADMIN and OWNER accounts are rejected individually; the rest
// of the batch still applies.
func (s *Service) Ban(
	ctx context.Context,
	sel Selector,
	reason string,
) ([]Outcome, error) {
	accts, notFound, err := s.resolve(ctx, sel)
	if err != nil {
		return nil, err
	}
	if notFound != nil {
		return []Outcome{*notFound}, nil
	}

	source := banSource(sel.Kind)
	outcomes := make([]Outcome, 0, len(accts))

	for i := range accts {
		outcomes = append(outcomes, s.banOne(ctx, &accts[i], reason, source))
	}

	return outcomes, nil
}

func (s *Service) banOne(
	ctx context.Context,
	acct *account.Account,
	reason, source string,
) Outcome {
	unlock := s.locks.Lock(acct.ID)
	defer unlock()

	// The selector resolved outside the lock; re-read so the ledger
	// captures the role actually held at ban time.
	fresh, err := s.accounts.GetByID(ctx, acct.ID)
	if err != nil {
		slog.Error("ban failed", "account_id", acct.ID, "error", err)
		return Outcome{
			AccountID: acct.ID,
			DiscordID: acct.DiscordID,
			Status:    OutcomeNotFound,
		}
	}
	acct = fresh

	if acct.IsProtected() {
		slog.Warn("ban rejected for protected account",
			"account_id", acct.ID, "role", acct.Role)
		return Outcome{
			AccountID: acct.ID,
			DiscordID: acct.DiscordID,
			Status:    OutcomeRejectedProtected,
			Role:      acct.Role,
		}
	}

	// A re-ban keeps the originally displaced role.
	if !acct.IsBanned() {
		previous := acct.Role
		acct.PreviousRole = &previous
	}
	acct.BanReason = &reason
	acct.BanSource = &source

	if err := s.access.Apply(ctx, acct, account.RoleBanned); err != nil {
		slog.Error("ban failed", "account_id", acct.ID, "error", err)
		return Outcome{
			AccountID: acct.ID,
			DiscordID: acct.DiscordID,
			Status:    OutcomeNotFound,
		}
	}

	metrics.RoleChanges.WithLabelValues("ban").Inc()
	slog.Info("account banned",
		"account_id", acct.ID,
		"source", source,
		"reason", reason,
	)

	return Outcome{
		AccountID: acct.ID,
		DiscordID: acct.DiscordID,
		Status:    OutcomeApplied,
		Role:      account.RoleBanned,
	}
}

// Unban restores each resolved account to the role the ban displaced, USER
// when none was recorded, and clears the ban fields.
func (s *Service) Unban(ctx context.Context, sel Selector) ([]Outcome, error) {
	accts, notFound, err := s.resolve(ctx, sel)
	if err != nil {
		return nil, err
	}
	if notFound != nil {
		return []Outcome{*notFound}, nil
	}

	outcomes := make([]Outcome, 0, len(accts))
	for i := range accts {
		outcomes = append(outcomes, s.unbanOne(ctx, &accts[i]))
	}

	return outcomes, nil
}

func (s *Service) unbanOne(ctx context.Context, acct *account.Account) Outcome {
	unlock := s.locks.Lock(acct.ID)
	defer unlock()

	fresh, err := s.accounts.GetByID(ctx, acct.ID)
	if err != nil {
		slog.Error("unban failed", "account_id", acct.ID, "error", err)
		return Outcome{
			AccountID: acct.ID,
			DiscordID: acct.DiscordID,
			Status:    OutcomeNotFound,
		}
	}
	acct = fresh

	if !acct.IsBanned() {
		return Outcome{
			AccountID: acct.ID,
			DiscordID: acct.DiscordID,
			Status:    OutcomeNotBanned,
			Role:      acct.Role,
		}
	}

	restored := account.RoleUser
	if acct.PreviousRole != nil {
		restored = *acct.PreviousRole
	}

	acct.BanReason = nil
	acct.BanSource = nil
	acct.PreviousRole = nil

	if err := s.access.Apply(ctx, acct, restored); err != nil {
		slog.Error("unban failed", "account_id", acct.ID, "error", err)
		return Outcome{
			AccountID: acct.ID,
			DiscordID: acct.DiscordID,
			Status:    OutcomeNotFound,
		}
	}

	metrics.RoleChanges.WithLabelValues("unban").Inc()
	slog.Info("account unbanned", "account_id", acct.ID, "role", restored)

	return Outcome{
		AccountID: acct.ID,
		DiscordID: acct.DiscordID,
		Status:    OutcomeApplied,
		Role:      restored,
	}
}

// resolve maps a selector to target accounts. A miss is reported as an
// outcome, not an error, so batch semantics stay uniform.
func (s *Service) resolve(
	ctx context.Context,
	sel Selector,
) ([]account.Account, *Outcome, error) {
	switch sel.Kind {
	case SelectorPrimaryID:
		acct, err := s.accounts.GetByID(ctx, sel.Value)
		if errors.Is(err, core.ErrNotFound) {
			return nil, &Outcome{Status: OutcomeNotFound}, nil
		}
		if err != nil {
			return nil, nil, err
		}
		return []account.Account{*acct}, nil, nil

	case SelectorDirectoryID:
		acct, err := s.accounts.GetByDiscordID(ctx, sel.Value)
		if errors.Is(err, core.ErrNotFound) {
			return nil, &Outcome{Status: OutcomeNotFound}, nil
		}
		if err != nil {
			return nil, nil, err
		}
		return []account.Account{*acct}, nil, nil

	case SelectorHardwareID:
		accts, err := s.accounts.ListByHWID(ctx, sel.Value)
		if err != nil {
			return nil, nil, err
		}
		if len(accts) == 0 {
			return nil, &Outcome{Status: OutcomeNotFound}, nil
		}
		return accts, nil, nil
	}

	return nil, nil, fmt.Errorf("selector kind %q: %w",
		sel.Kind, core.ErrInvalidInput)
}

func banSource(kind string) string {
	switch kind {
	case SelectorHardwareID:
		return account.BanSourceHWID
	case SelectorDirectoryID:
		return account.BanSourceDirectory
	default:
		return account.BanSourceID
	}
}
