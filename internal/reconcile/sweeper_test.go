// AngelaMos | 2026
// sweeper_test.go

package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/gatekeeper/internal/access"
	"github.com/angelamos/gatekeeper/internal/account"
	"github.com/angelamos/gatekeeper/internal/core"
	"github.com/angelamos/gatekeeper/internal/directory"
	"github.com/angelamos/gatekeeper/internal/entitlement"
)

func newTestSweeper(t *testing.T) (*Sweeper, *account.MemoryRepository, *entitlement.MemoryRepository, time.Time) {
	t.Helper()

	accounts := account.NewMemoryRepository()
	ents := entitlement.NewMemoryRepository()
	accessSvc := access.NewService(accounts, ents, directory.Nop{})

	sweeper := NewSweeper(accounts, accessSvc, core.NewKeyedMutex(), time.Hour)

	now := time.Date(2026, 6, 1, 3, 0, 0, 0, time.UTC)
	sweeper.now = func() time.Time { return now }

	return sweeper, accounts, ents, now
}

func seedAccount(
	t *testing.T,
	accounts *account.MemoryRepository,
	username, role string,
) *account.Account {
	t.Helper()

	acct := &account.Account{
		ID:        uuid.New().String(),
		DiscordID: uuid.New().String()[:18],
		Username:  username,
		Role:      role,
	}
	require.NoError(t, accounts.Create(context.Background(), acct))
	return acct
}

func seedEntitlement(
	t *testing.T,
	ents *entitlement.MemoryRepository,
	accountID string,
	endsAt time.Time,
) {
	t.Helper()

	require.NoError(t, ents.Create(context.Background(), &entitlement.Entitlement{
		ID:        uuid.New().String(),
		AccountID: accountID,
		ItemID:    uuid.New().String(),
		StartsAt:  endsAt.AddDate(0, -1, 0),
		EndsAt:    endsAt,
		Active:    true,
	}))
}

func TestSweepDowngradesExpiredVIP(t *testing.T) {
	sweeper, accounts, ents, now := newTestSweeper(t)
	ctx := context.Background()

	expired := seedAccount(t, accounts, "expired", account.RoleVIP)
	seedEntitlement(t, ents, expired.ID, now.Add(-time.Hour))

	active := seedAccount(t, accounts, "active", account.RoleVIP)
	seedEntitlement(t, ents, active.ID, now.Add(time.Hour))

	sweeper.Sweep(ctx)

	got, err := accounts.GetByID(ctx, expired.ID)
	require.NoError(t, err)
	assert.Equal(t, account.RoleUser, got.Role)

	got, err = accounts.GetByID(ctx, active.ID)
	require.NoError(t, err)
	assert.Equal(t, account.RoleVIP, got.Role)
}

func TestSweepNeverPromotes(t *testing.T) {
	sweeper, accounts, ents, now := newTestSweeper(t)
	ctx := context.Background()

	// A USER holding an active window stays USER until the payment path
	// promotes them.
	user := seedAccount(t, accounts, "lapsed", account.RoleUser)
	seedEntitlement(t, ents, user.ID, now.Add(time.Hour))

	sweeper.Sweep(ctx)

	got, err := accounts.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, account.RoleUser, got.Role)
}

func TestSweepIgnoresProtectedAndBanned(t *testing.T) {
	sweeper, accounts, _, _ := newTestSweeper(t)
	ctx := context.Background()

	admin := seedAccount(t, accounts, "staff", account.RoleAdmin)
	banned := seedAccount(t, accounts, "banned", account.RoleBanned)

	sweeper.Sweep(ctx)

	got, err := accounts.GetByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, account.RoleAdmin, got.Role)

	got, err = accounts.GetByID(ctx, banned.ID)
	require.NoError(t, err)
	assert.Equal(t, account.RoleBanned, got.Role)
}

func TestSweepVIPWithNoEntitlementRows(t *testing.T) {
	sweeper, accounts, _, _ := newTestSweeper(t)
	ctx := context.Background()

	// Role drifted without any entitlement history; the sweep converges it.
	orphan := seedAccount(t, accounts, "orphan", account.RoleVIP)

	sweeper.Sweep(ctx)

	got, err := accounts.GetByID(ctx, orphan.ID)
	require.NoError(t, err)
	assert.Equal(t, account.RoleUser, got.Role)
}
