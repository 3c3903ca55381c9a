// AngelaMos | 2026
// service_test.go

package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/gatekeeper/internal/core"
)

func newTestCatalog(t *testing.T) (*Service, time.Time) {
	t.Helper()

	svc := NewService(NewMemoryRepository(), NewMemoryDraftStore(time.Minute))

	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	return svc, now
}

func createItem(t *testing.T, svc *Service, prices PricesRequest) *Item {
	t.Helper()
	ctx := context.Background()

	draftID, err := svc.BeginDraft(ctx, BeginDraftRequest{
		Name:       "loader",
		WindowName: "Loader v2",
	})
	require.NoError(t, err)

	item, err := svc.CompleteDraft(ctx, draftID, CompleteDraftRequest{
		Prices: prices,
	})
	require.NoError(t, err)
	return item
}

func TestDraftFlowCreatesItem(t *testing.T) {
	svc, _ := newTestCatalog(t)

	item := createItem(t, svc, PricesRequest{
		Daily: 500, Weekly: 2000, Monthly: 4000, Yearly: 30000,
	})

	assert.Equal(t, "loader", item.Name)
	assert.Equal(t, "Loader v2", item.WindowName)
	assert.True(t, item.Active)
	assert.Equal(t, int64(4000), item.Monthly)

	exists, err := svc.Exists(context.Background(), item.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestDraftIsSingleUse(t *testing.T) {
	svc, _ := newTestCatalog(t)
	ctx := context.Background()

	draftID, err := svc.BeginDraft(ctx, BeginDraftRequest{
		Name: "loader", WindowName: "Loader v2",
	})
	require.NoError(t, err)

	_, err = svc.CompleteDraft(ctx, draftID, CompleteDraftRequest{
		Prices: PricesRequest{Daily: 500, Weekly: 2000, Monthly: 4000, Yearly: 30000},
	})
	require.NoError(t, err)

	_, err = svc.CompleteDraft(ctx, draftID, CompleteDraftRequest{
		Prices: PricesRequest{Daily: 500, Weekly: 2000, Monthly: 4000, Yearly: 30000},
	})
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestUnknownDraft(t *testing.T) {
	svc, _ := newTestCatalog(t)

	_, err := svc.CompleteDraft(context.Background(), "no-such-draft",
		CompleteDraftRequest{
			Prices: PricesRequest{Daily: -1, Weekly: -1, Monthly: 4000, Yearly: -1},
		})
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestSaleDiscountsEffectivePrices(t *testing.T) {
	svc, now := newTestCatalog(t)
	ctx := context.Background()

	// Monthly $40.00, daily disabled.
	item := createItem(t, svc, PricesRequest{
		Daily: -1, Weekly: 2000, Monthly: 4000, Yearly: 30000,
	})

	updated, err := svc.StartSale(ctx, item.ID, StartSaleRequest{
		DiscountPercent: 25,
		EndsAt:          now.Add(24 * time.Hour),
	})
	require.NoError(t, err)

	effective := updated.EffectivePrices(now)

	// $40.00 at 25% off is $30.00; a disabled tier stays disabled.
	assert.Equal(t, int64(3000), effective.Monthly)
	assert.Equal(t, int64(-1), effective.Daily)
	assert.Equal(t, int64(1500), effective.Weekly)
	assert.Equal(t, int64(22500), effective.Yearly)

	// Base prices are untouched.
	assert.Equal(t, int64(4000), updated.Monthly)
}

func TestExpiredSaleChargesBasePrice(t *testing.T) {
	svc, now := newTestCatalog(t)
	ctx := context.Background()

	item := createItem(t, svc, PricesRequest{
		Daily: 500, Weekly: 2000, Monthly: 4000, Yearly: 30000,
	})

	updated, err := svc.StartSale(ctx, item.ID, StartSaleRequest{
		DiscountPercent: 50,
		EndsAt:          now.Add(time.Hour),
	})
	require.NoError(t, err)

	afterExpiry := now.Add(2 * time.Hour)
	assert.Equal(t, int64(4000), updated.EffectivePrices(afterExpiry).Monthly)
}

func TestStartSaleRecordsHistory(t *testing.T) {
	svc, now := newTestCatalog(t)
	ctx := context.Background()

	item := createItem(t, svc, PricesRequest{
		Daily: 500, Weekly: 2000, Monthly: 4000, Yearly: 30000,
	})

	_, err := svc.StartSale(ctx, item.ID, StartSaleRequest{
		DiscountPercent: 25,
		EndsAt:          now.Add(24 * time.Hour),
	})
	require.NoError(t, err)

	sales, err := svc.ListSales(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, 25, sales[0].DiscountPercent)
	assert.Equal(t, now, sales[0].StartsAt)
}

func TestStartSaleRejectsPastEnd(t *testing.T) {
	svc, now := newTestCatalog(t)
	ctx := context.Background()

	item := createItem(t, svc, PricesRequest{
		Daily: 500, Weekly: 2000, Monthly: 4000, Yearly: 30000,
	})

	_, err := svc.StartSale(ctx, item.ID, StartSaleRequest{
		DiscountPercent: 25,
		EndsAt:          now.Add(-time.Minute),
	})
	require.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestEndSaleClearsOverlay(t *testing.T) {
	svc, now := newTestCatalog(t)
	ctx := context.Background()

	item := createItem(t, svc, PricesRequest{
		Daily: 500, Weekly: 2000, Monthly: 4000, Yearly: 30000,
	})

	_, err := svc.StartSale(ctx, item.ID, StartSaleRequest{
		DiscountPercent: 25,
		EndsAt:          now.Add(24 * time.Hour),
	})
	require.NoError(t, err)

	cleared, err := svc.EndSale(ctx, item.ID)
	require.NoError(t, err)

	assert.False(t, cleared.SaleActive)
	assert.Equal(t, int64(4000), cleared.EffectivePrices(now).Monthly)
}

func TestSetActiveControlsListing(t *testing.T) {
	svc, _ := newTestCatalog(t)
	ctx := context.Background()

	item := createItem(t, svc, PricesRequest{
		Daily: 500, Weekly: 2000, Monthly: 4000, Yearly: 30000,
	})

	_, err := svc.SetActive(ctx, item.ID, false)
	require.NoError(t, err)

	public, err := svc.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, public)

	all, err := svc.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
