// AngelaMos | 2026
// repository.go

package entitlement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/angelamos/gatekeeper/internal/core"
)

type Repository interface {
	Create(ctx context.Context, ent *Entitlement) error
	UpdateEnd(ctx context.Context, id string, endsAt time.Time) error

	// Current returns the account's active entitlement for one item, the
	// one with the latest EndsAt still ahead of now, or nil when the
	// account holds none for that item. Windows on other items never
	// merge with it.
	Current(ctx context.Context, accountID, itemID string, now time.Time) (*Entitlement, error)
	HasActive(ctx context.Context, accountID string, now time.Time) (bool, error)
	ListByAccount(ctx context.Context, accountID string) ([]Entitlement, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const entitlementColumns = `id, account_id, item_id, starts_at, ends_at,
       active, created_at, updated_at`

func (r *repository) Create(ctx context.Context, ent *Entitlement) error {
	query := `
		INSERT INTO entitlements (id, account_id, item_id, starts_at, ends_at, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, ent, query,
		ent.ID,
		ent.AccountID,
		ent.ItemID,
		ent.StartsAt,
		ent.EndsAt,
		ent.Active,
	)
	if err != nil {
		return fmt.Errorf("create entitlement: %w", err)
	}

	return nil
}

func (r *repository) UpdateEnd(
	ctx context.Context,
	id string,
	endsAt time.Time,
) error {
	query := `
		UPDATE entitlements
		SET ends_at = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, endsAt)
	if err != nil {
		return fmt.Errorf("extend entitlement: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("extend entitlement: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("extend entitlement: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) Current(
	ctx context.Context,
	accountID, itemID string,
	now time.Time,
) (*Entitlement, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM entitlements
		WHERE account_id = $1 AND item_id = $2 AND active AND ends_at > $3
		ORDER BY ends_at DESC
		LIMIT 1`, entitlementColumns)

	var ent Entitlement
	err := r.db.GetContext(ctx, &ent, query, accountID, itemID, now)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("current entitlement: %w", err)
	}

	return &ent, nil
}

func (r *repository) HasActive(
	ctx context.Context,
	accountID string,
	now time.Time,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM entitlements
			WHERE account_id = $1 AND active AND ends_at > $2
		)`

	var active bool
	if err := r.db.GetContext(ctx, &active, query, accountID, now); err != nil {
		return false, fmt.Errorf("check active entitlement: %w", err)
	}

	return active, nil
}

func (r *repository) ListByAccount(
	ctx context.Context,
	accountID string,
) ([]Entitlement, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM entitlements
		WHERE account_id = $1
		ORDER BY ends_at DESC`, entitlementColumns)

	var ents []Entitlement
	if err := r.db.SelectContext(ctx, &ents, query, accountID); err != nil {
		return nil, fmt.Errorf("list entitlements: %w", err)
	}

	return ents, nil
}
