// AngelaMos | 2026
// repository.go

package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/angelamos/gatekeeper/internal/core"
)

type Repository interface {
	Create(ctx context.Context, acct *Account) error
	GetByID(ctx context.Context, id string) (*Account, error)
	GetByDiscordID(ctx context.Context, discordID string) (*Account, error)
	ListByHWID(ctx context.Context, hwid string) ([]Account, error)
	ListByRole(ctx context.Context, role string) ([]Account, error)
	List(ctx context.Context, params ListParams) ([]Account, int, error)
	Update(ctx context.Context, acct *Account) error
	SetHWID(ctx context.Context, id, hwid string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const accountColumns = `id, discord_id, username, hwid, role,
       ban_reason, ban_source, previous_role, last_login,
       created_at, updated_at`

func (r *repository) Create(ctx context.Context, acct *Account) error {
	query := `
		INSERT INTO accounts (id, discord_id, username, hwid, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, acct, query,
		acct.ID,
		acct.DiscordID,
		acct.Username,
		acct.HWID,
		acct.Role,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create account: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create account: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Account, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM accounts WHERE id = $1`, accountColumns)

	var acct Account
	err := r.db.GetContext(ctx, &acct, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get account: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}

	return &acct, nil
}

func (r *repository) GetByDiscordID(
	ctx context.Context,
	discordID string,
) (*Account, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM accounts WHERE discord_id = $1`, accountColumns)

	var acct Account
	err := r.db.GetContext(ctx, &acct, query, discordID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get account by discord id: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get account by discord id: %w", err)
	}

	return &acct, nil
}

func (r *repository) ListByHWID(
	ctx context.Context,
	hwid string,
) ([]Account, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM accounts WHERE hwid = $1 ORDER BY created_at`,
		accountColumns)

	var accts []Account
	if err := r.db.SelectContext(ctx, &accts, query, hwid); err != nil {
		return nil, fmt.Errorf("list accounts by hwid: %w", err)
	}

	return accts, nil
}

func (r *repository) ListByRole(
	ctx context.Context,
	role string,
) ([]Account, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM accounts WHERE role = $1 ORDER BY created_at`,
		accountColumns)

	var accts []Account
	if err := r.db.SelectContext(ctx, &accts, query, role); err != nil {
		return nil, fmt.Errorf("list accounts by role: %w", err)
	}

	return accts, nil
}

func (r *repository) List(
	ctx context.Context,
	params ListParams,
) ([]Account, int, error) {
	params.Normalize()

	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, "TRUE")

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(username ILIKE $%d OR discord_id = $%d)", argIdx, argIdx+1))
		args = append(args, "%"+escapeLike(params.Search)+"%", params.Search)
		argIdx += 2
	}

	if params.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", argIdx))
		args = append(args, params.Role)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM accounts WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count accounts: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM accounts
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		accountColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var accts []Account
	if err := r.db.SelectContext(ctx, &accts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}

	return accts, total, nil
}

func (r *repository) Update(ctx context.Context, acct *Account) error {
	query := `
		UPDATE accounts
		SET username = $2, hwid = $3, role = $4, ban_reason = $5,
		    ban_source = $6, previous_role = $7, last_login = $8,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &acct.UpdatedAt, query,
		acct.ID,
		acct.Username,
		acct.HWID,
		acct.Role,
		acct.BanReason,
		acct.BanSource,
		acct.PreviousRole,
		acct.LastLogin,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update account: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}

	return nil
}

func (r *repository) SetHWID(ctx context.Context, id, hwid string) error {
	query := `
		UPDATE accounts
		SET hwid = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, hwid)
	if err != nil {
		return fmt.Errorf("set hwid: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set hwid: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("set hwid: %w", core.ErrNotFound)
	}

	return nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
