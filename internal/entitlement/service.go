// AngelaMos | 2026
// service.go

package entitlement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/angelamos/gatekeeper/internal/access"
	"github.com/angelamos/gatekeeper/internal/account"
	"github.com/angelamos/gatekeeper/internal/core"
)

// ItemResolver answers whether an item id names a purchasable item.
// Satisfied by the catalog service.
type ItemResolver interface {
	Exists(ctx context.Context, itemID string) (bool, error)
}

// Payment is a validated, first-seen payment ready to be applied to the
// entitlement store.
type Payment struct {
	DiscordID string
	ItemID    string
	Tier      string
}

type Service struct {
	repo     Repository
	accounts account.Repository
	catalog  ItemResolver
	access   *access.Service
	locks    *core.KeyedMutex
	now      func() time.Time
}

// NewService wires the payment processor. locks is the per-account mutex
// shared with every other path that mutates account state.
func NewService(
	repo Repository,
	accounts account.Repository,
	catalog ItemResolver,
	roles *access.Service,
	locks *core.KeyedMutex,
) *Service {
	return &Service{
		repo:     repo,
		accounts: accounts,
		catalog:  catalog,
		access:   roles,
		locks:    locks,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ProcessPayment applies one admitted payment event: resolve the target
// account and item, merge the tier into the account's current window for
// that item, then re-derive the role. The per-account lock serializes the
// read-merge-write, so two concurrent extensions on one account both land;
// the account itself is re-read under the lock before anything mutates.
func (s *Service) ProcessPayment(ctx context.Context, p Payment) (*Entitlement, error) {
	resolved, err := s.accounts.GetByDiscordID(ctx, p.DiscordID)
	if err != nil {
		return nil, fmt.Errorf("process payment: %w", err)
	}

	exists, err := s.catalog.Exists(ctx, p.ItemID)
	if err != nil {
		return nil, fmt.Errorf("process payment: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("process payment: item %q: %w",
			p.ItemID, core.ErrNotFound)
	}

	unlock := s.locks.Lock(resolved.ID)
	defer unlock()

	// The resolve above ran outside the lock, so a ban or role change may
	// have committed in between. Everything from here on works off a fresh
	// read taken under the lock.
	acct, err := s.accounts.GetByID(ctx, resolved.ID)
	if err != nil {
		return nil, fmt.Errorf("process payment: %w", err)
	}

	now := s.now()

	current, err := s.repo.Current(ctx, acct.ID, p.ItemID, now)
	if err != nil {
		return nil, fmt.Errorf("process payment: %w", err)
	}

	merged, err := Merge(current, p.Tier, now)
	if err != nil {
		return nil, fmt.Errorf("process payment: %w", err)
	}

	var ent *Entitlement
	if merged.Extends {
		if err := s.repo.UpdateEnd(ctx, current.ID, merged.EndsAt); err != nil {
			return nil, fmt.Errorf("process payment: %w", err)
		}
		current.EndsAt = merged.EndsAt
		ent = current
	} else {
		ent = &Entitlement{
			ID:        uuid.New().String(),
			AccountID: acct.ID,
			ItemID:    p.ItemID,
			StartsAt:  merged.StartsAt,
			EndsAt:    merged.EndsAt,
			Active:    true,
		}
		if err := s.repo.Create(ctx, ent); err != nil {
			return nil, fmt.Errorf("process payment: %w", err)
		}
	}

	slog.Info("entitlement updated",
		"account_id", acct.ID,
		"item_id", p.ItemID,
		"tier", p.Tier,
		"ends_at", ent.EndsAt,
		"extended", merged.Extends,
	)

	if _, err := s.access.Recompute(ctx, acct, now); err != nil {
		return nil, fmt.Errorf("process payment: %w", err)
	}

	return ent, nil
}

// ListByAccount returns every window the account has ever held, newest
// ending first.
func (s *Service) ListByAccount(
	ctx context.Context,
	accountID string,
) ([]Entitlement, error) {
	return s.repo.ListByAccount(ctx, accountID)
}
