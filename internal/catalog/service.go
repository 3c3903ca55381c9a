// AngelaMos | 2026
// service.go

package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/angelamos/gatekeeper/internal/core"
)

type Service struct {
	repo   Repository
	drafts DraftStore
	now    func() time.Time
}

func NewService(repo Repository, drafts DraftStore) *Service {
	return &Service{
		repo:   repo,
		drafts: drafts,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Exists reports whether id names a catalog item. Satisfies the payment
// processor's item check.
func (s *Service) Exists(ctx context.Context, itemID string) (bool, error) {
	_, err := s.repo.GetByID(ctx, itemID)
	if errors.Is(err, core.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) Get(ctx context.Context, itemID string) (*Item, error) {
	return s.repo.GetByID(ctx, itemID)
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]Item, error) {
	return s.repo.List(ctx, activeOnly)
}

// BeginDraft stores step one of item creation and returns the correlation
// id the completing request must present.
func (s *Service) BeginDraft(ctx context.Context, req BeginDraftRequest) (string, error) {
	return s.drafts.Begin(ctx, Draft{
		Name:        req.Name,
		WindowName:  req.WindowName,
		Description: req.Description,
	})
}

// CompleteDraft consumes the draft and creates the item with the supplied
// price table. The draft is gone afterwards even if creation fails on a
// duplicate name; step one must be redone.
func (s *Service) CompleteDraft(
	ctx context.Context,
	draftID string,
	req CompleteDraftRequest,
) (*Item, error) {
	draft, err := s.drafts.Take(ctx, draftID)
	if err != nil {
		return nil, err
	}

	item := &Item{
		ID:          uuid.New().String(),
		Name:        draft.Name,
		WindowName:  draft.WindowName,
		Description: draft.Description,
		PriceTable:  req.Prices.toTable(),
		Active:      true,
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}

	slog.Info("item created", "item_id", item.ID, "name", item.Name)

	return item, nil
}

func (s *Service) UpdatePrices(
	ctx context.Context,
	itemID string,
	req UpdatePricesRequest,
) (*Item, error) {
	item, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	item.PriceTable = req.Prices.toTable()
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

func (s *Service) SetActive(
	ctx context.Context,
	itemID string,
	active bool,
) (*Item, error) {
	item, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	item.Active = active
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

// StartSale puts the discount overlay on the item and appends a history
// record. The item's sale fields stay the source of truth for pricing.
func (s *Service) StartSale(
	ctx context.Context,
	itemID string,
	req StartSaleRequest,
) (*Item, error) {
	now := s.now()
	if !req.EndsAt.After(now) {
		return nil, fmt.Errorf("sale end %s: %w",
			req.EndsAt.Format(time.RFC3339), core.ErrInvalidInput)
	}

	item, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	endsAt := req.EndsAt
	item.SaleActive = true
	item.SaleDiscount = req.DiscountPercent
	item.SaleEndsAt = &endsAt

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}

	sale := &Sale{
		ID:              uuid.New().String(),
		ItemID:          item.ID,
		DiscountPercent: req.DiscountPercent,
		StartsAt:        now,
		EndsAt:          endsAt,
	}
	if err := s.repo.CreateSale(ctx, sale); err != nil {
		return nil, err
	}

	slog.Info("sale started",
		"item_id", item.ID,
		"discount_percent", req.DiscountPercent,
		"ends_at", endsAt,
	)

	return item, nil
}

// EndSale clears the overlay early.
func (s *Service) EndSale(ctx context.Context, itemID string) (*Item, error) {
	item, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	item.SaleActive = false
	item.SaleDiscount = 0
	item.SaleEndsAt = nil

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

func (s *Service) ListSales(ctx context.Context, itemID string) ([]Sale, error) {
	if _, err := s.repo.GetByID(ctx, itemID); err != nil {
		return nil, err
	}
	return s.repo.ListSales(ctx, itemID)
}
