// AngelaMos | 2026
// service_test.go

package entitlement

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/gatekeeper/internal/access"
	"github.com/angelamos/gatekeeper/internal/account"
	"github.com/angelamos/gatekeeper/internal/ban"
	"github.com/angelamos/gatekeeper/internal/catalog"
	"github.com/angelamos/gatekeeper/internal/core"
	"github.com/angelamos/gatekeeper/internal/directory"
)

type fixture struct {
	svc      *Service
	accounts *account.MemoryRepository
	ents     *MemoryRepository
	items    *catalog.MemoryRepository
	acct     *account.Account
	item     *catalog.Item
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	accounts := account.NewMemoryRepository()
	ents := NewMemoryRepository()
	items := catalog.NewMemoryRepository()
	catalogSvc := catalog.NewService(items, catalog.NewMemoryDraftStore(time.Minute))
	accessSvc := access.NewService(accounts, ents, directory.Nop{})

	svc := NewService(ents, accounts, catalogSvc, accessSvc, core.NewKeyedMutex())

	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	acct := &account.Account{
		ID:        uuid.New().String(),
		DiscordID: "111222333",
		Username:  "buyer",
		Role:      account.RoleUser,
	}
	require.NoError(t, accounts.Create(context.Background(), acct))

	item := &catalog.Item{
		ID:     uuid.New().String(),
		Name:   "starter",
		Active: true,
		PriceTable: catalog.PriceTable{
			Daily: 500, Weekly: 2000, Monthly: 4000, Yearly: 30000,
		},
	}
	require.NoError(t, items.Create(context.Background(), item))

	return &fixture{
		svc:      svc,
		accounts: accounts,
		ents:     ents,
		items:    items,
		acct:     acct,
		item:     item,
		now:      now,
	}
}

func (f *fixture) payment(tier string) Payment {
	return Payment{
		DiscordID: f.acct.DiscordID,
		ItemID:    f.item.ID,
		Tier:      tier,
	}
}

func TestProcessPaymentCreatesAndPromotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ent, err := f.svc.ProcessPayment(ctx, f.payment(TierMonthly))
	require.NoError(t, err)

	assert.Equal(t, f.now, ent.StartsAt)
	assert.Equal(t, f.now.AddDate(0, 1, 0), ent.EndsAt)
	assert.True(t, ent.Active)

	acct, err := f.accounts.GetByID(ctx, f.acct.ID)
	require.NoError(t, err)
	assert.Equal(t, account.RoleVIP, acct.Role)
}

func TestProcessPaymentExtendsCurrentWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.ProcessPayment(ctx, f.payment(TierMonthly))
	require.NoError(t, err)

	second, err := f.svc.ProcessPayment(ctx, f.payment(TierDaily))
	require.NoError(t, err)

	// Same row, end pushed one day past the previous end.
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, f.now.AddDate(0, 1, 1), second.EndsAt)

	all, err := f.ents.ListByAccount(ctx, f.acct.ID)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestProcessPaymentConcurrentExtensions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	base, err := f.svc.ProcessPayment(ctx, f.payment(TierMonthly))
	require.NoError(t, err)
	baseEnd := base.EndsAt

	const workers = 10
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.ProcessPayment(ctx, f.payment(TierDaily))
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
	}

	current, err := f.ents.Current(ctx, f.acct.ID, f.item.ID, f.now)
	require.NoError(t, err)
	require.NotNil(t, current)

	// Every extension landed, each chained from the previous end.
	assert.Equal(t, baseEnd.AddDate(0, 0, workers), current.EndsAt)
}

func TestProcessPaymentScopesWindowsPerItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := &catalog.Item{
		ID:     uuid.New().String(),
		Name:   "deluxe",
		Active: true,
		PriceTable: catalog.PriceTable{
			Daily: 900, Weekly: 3500, Monthly: 7000, Yearly: 50000,
		},
	}
	require.NoError(t, f.items.Create(ctx, other))

	first, err := f.svc.ProcessPayment(ctx, f.payment(TierMonthly))
	require.NoError(t, err)

	p := f.payment(TierMonthly)
	p.ItemID = other.ID
	second, err := f.svc.ProcessPayment(ctx, p)
	require.NoError(t, err)

	// One window per item; the second purchase opens its own window
	// instead of extending the first item's.
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, other.ID, second.ItemID)
	assert.Equal(t, f.now, second.StartsAt)
	assert.Equal(t, f.now.AddDate(0, 1, 0), second.EndsAt)

	firstCurrent, err := f.ents.Current(ctx, f.acct.ID, f.item.ID, f.now)
	require.NoError(t, err)
	require.NotNil(t, firstCurrent)
	assert.Equal(t, f.now.AddDate(0, 1, 0), firstCurrent.EndsAt)

	all, err := f.ents.ListByAccount(ctx, f.acct.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// A later extension stays on its own item.
	p.Tier = TierDaily
	extended, err := f.svc.ProcessPayment(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, second.ID, extended.ID)
	assert.Equal(t, f.now.AddDate(0, 1, 1), extended.EndsAt)

	firstCurrent, err = f.ents.Current(ctx, f.acct.ID, f.item.ID, f.now)
	require.NoError(t, err)
	require.NotNil(t, firstCurrent)
	assert.Equal(t, f.now.AddDate(0, 1, 0), firstCurrent.EndsAt)
}

func TestProcessPaymentWeeklyFirstPurchase(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ProcessPayment(context.Background(), f.payment(TierWeekly))
	require.ErrorIs(t, err, ErrTierUnavailable)

	all, listErr := f.ents.ListByAccount(context.Background(), f.acct.ID)
	require.NoError(t, listErr)
	assert.Empty(t, all)
}

func TestProcessPaymentUnknownAccount(t *testing.T) {
	f := newFixture(t)

	p := f.payment(TierMonthly)
	p.DiscordID = "999999999"

	_, err := f.svc.ProcessPayment(context.Background(), p)
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestProcessPaymentUnknownItem(t *testing.T) {
	f := newFixture(t)

	p := f.payment(TierMonthly)
	p.ItemID = uuid.New().String()

	_, err := f.svc.ProcessPayment(context.Background(), p)
	require.ErrorIs(t, err, core.ErrNotFound)
}

// resolveHookRepo runs a hook after the first discord-id resolution, so
// state committed between that read and the caller's lock acquisition is
// visible to the test.
type resolveHookRepo struct {
	account.Repository
	once sync.Once
	hook func()
}

func (r *resolveHookRepo) GetByDiscordID(
	ctx context.Context,
	discordID string,
) (*account.Account, error) {
	acct, err := r.Repository.GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, err
	}
	r.once.Do(r.hook)
	return acct, nil
}

func TestProcessPaymentDoesNotRevertConcurrentBan(t *testing.T) {
	ctx := context.Background()

	accounts := account.NewMemoryRepository()
	ents := NewMemoryRepository()
	items := catalog.NewMemoryRepository()
	catalogSvc := catalog.NewService(items, catalog.NewMemoryDraftStore(time.Minute))
	accessSvc := access.NewService(accounts, ents, directory.Nop{})
	locks := core.NewKeyedMutex()
	banSvc := ban.NewService(accounts, accessSvc, locks)

	acct := &account.Account{
		ID:        uuid.New().String(),
		DiscordID: "111222333",
		Username:  "buyer",
		Role:      account.RoleUser,
	}
	require.NoError(t, accounts.Create(ctx, acct))

	item := &catalog.Item{
		ID:     uuid.New().String(),
		Name:   "starter",
		Active: true,
		PriceTable: catalog.PriceTable{
			Daily: 500, Weekly: 2000, Monthly: 4000, Yearly: 30000,
		},
	}
	require.NoError(t, items.Create(ctx, item))

	// A ban commits after the payment resolved its account snapshot but
	// before the per-account lock is taken.
	hooked := &resolveHookRepo{Repository: accounts}
	hooked.hook = func() {
		outcomes, banErr := banSvc.Ban(ctx, ban.Selector{
			Kind:  ban.SelectorPrimaryID,
			Value: acct.ID,
		}, "chargeback abuse")
		require.NoError(t, banErr)
		require.Len(t, outcomes, 1)
		require.Equal(t, ban.OutcomeApplied, outcomes[0].Status)
	}

	svc := NewService(ents, hooked, catalogSvc, accessSvc, locks)
	svc.now = func() time.Time {
		return time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	}

	_, err := svc.ProcessPayment(ctx, Payment{
		DiscordID: acct.DiscordID,
		ItemID:    item.ID,
		Tier:      TierMonthly,
	})
	require.NoError(t, err)

	// The committed ban survives: funds landed, the role did not.
	final, err := accounts.GetByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, account.RoleBanned, final.Role)
	require.NotNil(t, final.BanReason)
	assert.Equal(t, "chargeback abuse", *final.BanReason)
}

func TestProcessPaymentDoesNotTouchProtectedRoles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.acct.Role = account.RoleAdmin
	require.NoError(t, f.accounts.Update(ctx, f.acct))

	_, err := f.svc.ProcessPayment(ctx, f.payment(TierMonthly))
	require.NoError(t, err)

	acct, err := f.accounts.GetByID(ctx, f.acct.ID)
	require.NoError(t, err)
	assert.Equal(t, account.RoleAdmin, acct.Role)
}
