// AngelaMos | 2026
// repository.go

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/angelamos/gatekeeper/internal/core"
)

type Repository interface {
	Create(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, id string) (*Item, error)
	List(ctx context.Context, activeOnly bool) ([]Item, error)
	Update(ctx context.Context, item *Item) error
	CreateSale(ctx context.Context, sale *Sale) error
	ListSales(ctx context.Context, itemID string) ([]Sale, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const itemColumns = `id, name, window_name, description,
       price_daily, price_weekly, price_monthly, price_yearly,
       sale_active, sale_discount, sale_ends_at, active,
       created_at, updated_at`

func (r *repository) Create(ctx context.Context, item *Item) error {
	query := `
		INSERT INTO items (id, name, window_name, description,
		       price_daily, price_weekly, price_monthly, price_yearly, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, item, query,
		item.ID,
		item.Name,
		item.WindowName,
		item.Description,
		item.Daily,
		item.Weekly,
		item.Monthly,
		item.Yearly,
		item.Active,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("create item: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create item: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Item, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM items WHERE id = $1`, itemColumns)

	var item Item
	err := r.db.GetContext(ctx, &item, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get item: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}

	return &item, nil
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]Item, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM items ORDER BY name`, itemColumns)
	if activeOnly {
		query = fmt.Sprintf(
			`SELECT %s FROM items WHERE active ORDER BY name`, itemColumns)
	}

	var items []Item
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	return items, nil
}

func (r *repository) Update(ctx context.Context, item *Item) error {
	query := `
		UPDATE items
		SET name = $2, window_name = $3, description = $4,
		    price_daily = $5, price_weekly = $6, price_monthly = $7,
		    price_yearly = $8, sale_active = $9, sale_discount = $10,
		    sale_ends_at = $11, active = $12, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &item.UpdatedAt, query,
		item.ID,
		item.Name,
		item.WindowName,
		item.Description,
		item.Daily,
		item.Weekly,
		item.Monthly,
		item.Yearly,
		item.SaleActive,
		item.SaleDiscount,
		item.SaleEndsAt,
		item.Active,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update item: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}

	return nil
}

func (r *repository) CreateSale(ctx context.Context, sale *Sale) error {
	query := `
		INSERT INTO sales (id, item_id, discount_percent, starts_at, ends_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &sale.CreatedAt, query,
		sale.ID,
		sale.ItemID,
		sale.DiscountPercent,
		sale.StartsAt,
		sale.EndsAt,
	)
	if err != nil {
		return fmt.Errorf("create sale: %w", err)
	}

	return nil
}

func (r *repository) ListSales(ctx context.Context, itemID string) ([]Sale, error) {
	query := `
		SELECT id, item_id, discount_percent, starts_at, ends_at, created_at
		FROM sales
		WHERE item_id = $1
		ORDER BY starts_at DESC`

	var sales []Sale
	if err := r.db.SelectContext(ctx, &sales, query, itemID); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}

	return sales, nil
}
