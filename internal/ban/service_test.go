// AngelaMos | 2026
// service_test.go

package ban

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
	"github.com/angelamos/gatekeeper/internal/core"
)

type noEntitlements struct{}

func (noEntitlements) HasActive(
	ctx context.Context,
	accountID string,
	now time.Time,
) (bool, error) {
	return false, nil
}

type recordingSyncer struct {
	mu     sync.Mutex
	synced []string
}

// promotingRepo mutates the target account after the first read, so the
// snapshot the caller got back is stale by the time it acts on it.
type promotingRepo struct {
	account.Repository
	once sync.Once
	hook func()
}

func (r *promotingRepo) GetByID(
	ctx context.Context,
	id string,
) (*account.Account, error) {
	acct, err := r.Repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.once.Do(r.hook)
	return acct, nil
}

func (r *recordingSyncer) Sync(ctx context.Context, discordID, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.synced = append(r.synced, discordID+":"+role)
	return nil
}

func newTestService(t *testing.T) (*Service, *account.MemoryRepository, *recordingSyncer) {
	t.Helper()

	accounts := account.NewMemoryRepository()
	syncer := &recordingSyncer{}
	accessSvc := access.NewService(accounts, noEntitlements{}, syncer)

	return NewService(accounts, accessSvc, core.NewKeyedMutex()), accounts, syncer
}

func seedAccount(
	t *testing.T,
	accounts *account.MemoryRepository,
	username, role string,
	hwid *string,
) *account.Account {
	t.Helper()

	acct := &account.Account{
		ID:        uuid.New().String(),
		DiscordID: uuid.New().String()[:18],
		Username:  username,
		Role:      role,
		HWID:      hwid,
	}
	require.NoError(t, accounts.Create(context.Background(), acct))
	return acct
}

func TestBanCapturesRoleHeldAtBanTime(t *testing.T) {
	ctx := context.Background()

	accounts := account.NewMemoryRepository()
	accessSvc := access.NewService(accounts, noEntitlements{}, &recordingSyncer{})

	acct := seedAccount(t, accounts, "target", account.RoleUser, nil)

	// Promote the account between the selector resolution and the locked
	// ban write; the ledger must record VIP, not the stale USER snapshot.
	hooked := &promotingRepo{Repository: accounts}
	hooked.hook = func() {
		promoted, err := accounts.GetByID(ctx, acct.ID)
		require.NoError(t, err)
		promoted.Role = account.RoleVIP
		require.NoError(t, accounts.Update(ctx, promoted))
	}

	svc := NewService(hooked, accessSvc, core.NewKeyedMutex())

	outcomes, err := svc.Ban(ctx, Selector{
		Kind:  SelectorPrimaryID,
		Value: acct.ID,
	}, "shared hwid ring")
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, OutcomeApplied, outcomes[0].Status)

	stored, err := accounts.GetByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, account.RoleBanned, stored.Role)
	require.NotNil(t, stored.PreviousRole)
	assert.Equal(t, account.RoleVIP, *stored.PreviousRole)
}

func TestBanByPrimaryID(t *testing.T) {
	svc, accounts, syncer := newTestService(t)
	ctx := context.Background()

	acct := seedAccount(t, accounts, "target", account.RoleVIP, nil)

	outcomes, err := svc.Ban(ctx, Selector{
		Kind:  SelectorPrimaryID,
		Value: acct.ID,
	}, "chargeback abuse")
	require.NoError(t, err)

	require.Len(t, outcomes, 1)
	assert.Equal(t, OutcomeApplied, outcomes[0].Status)
	assert.Equal(t, account.RoleBanned, outcomes[0].Role)

	stored, err := accounts.GetByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, account.RoleBanned, stored.Role)
	require.NotNil(t, stored.PreviousRole)
	assert.Equal(t, account.RoleVIP, *stored.PreviousRole)
	require.NotNil(t, stored.BanReason)
	assert.Equal(t, "chargeback abuse", *stored.BanReason)
	require.NotNil(t, stored.BanSource)
	assert.Equal(t, account.BanSourceID, *stored.BanSource)

	assert.NotEmpty(t, syncer.synced)
}

func TestHWIDMassBanSkipsProtected(t *testing.T) {
	svc, accounts, _ := newTestService(t)
	ctx := context.Background()

	hwid := "HW-ABCDEF0123456789"
	user := seedAccount(t, accounts, "alt1", account.RoleUser, &hwid)
	vip := seedAccount(t, accounts, "alt2", account.RoleVIP, &hwid)
	admin := seedAccount(t, accounts, "staff", account.RoleAdmin, &hwid)

	outcomes, err := svc.Ban(ctx, Selector{
		Kind:  SelectorHardwareID,
		Value: hwid,
	}, "shared hardware ban")
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	byID := make(map[string]Outcome, len(outcomes))
	for _, o := range outcomes {
		byID[o.AccountID] = o
	}

	assert.Equal(t, OutcomeApplied, byID[user.ID].Status)
	assert.Equal(t, OutcomeApplied, byID[vip.ID].Status)
	assert.Equal(t, OutcomeRejectedProtected, byID[admin.ID].Status)

	stored, err := accounts.GetByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, account.RoleAdmin, stored.Role)
	assert.Nil(t, stored.BanReason)

	banned, err := accounts.GetByID(ctx, vip.ID)
	require.NoError(t, err)
	require.NotNil(t, banned.BanSource)
	assert.Equal(t, account.BanSourceHWID, *banned.BanSource)
}

func TestBanNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	outcomes, err := svc.Ban(context.Background(), Selector{
		Kind:  SelectorDirectoryID,
		Value: "000000000000000000",
	}, "no such account")
	require.NoError(t, err)

	require.Len(t, outcomes, 1)
	assert.Equal(t, OutcomeNotFound, outcomes[0].Status)
}

func TestUnbanRestoresPreviousRole(t *testing.T) {
	svc, accounts, _ := newTestService(t)
	ctx := context.Background()

	acct := seedAccount(t, accounts, "target", account.RoleVIP, nil)

	_, err := svc.Ban(ctx, Selector{
		Kind:  SelectorPrimaryID,
		Value: acct.ID,
	}, "temporary")
	require.NoError(t, err)

	outcomes, err := svc.Unban(ctx, Selector{
		Kind:  SelectorPrimaryID,
		Value: acct.ID,
	})
	require.NoError(t, err)

	require.Len(t, outcomes, 1)
	assert.Equal(t, OutcomeApplied, outcomes[0].Status)
	assert.Equal(t, account.RoleVIP, outcomes[0].Role)

	stored, err := accounts.GetByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, account.RoleVIP, stored.Role)
	assert.Nil(t, stored.BanReason)
	assert.Nil(t, stored.BanSource)
	assert.Nil(t, stored.PreviousRole)
}

func TestUnbanWithoutPreviousRoleDefaultsToUser(t *testing.T) {
	svc, accounts, _ := newTestService(t)
	ctx := context.Background()

	// Banned before the ledger recorded displaced roles.
	acct := seedAccount(t, accounts, "legacy", account.RoleBanned, nil)

	outcomes, err := svc.Unban(ctx, Selector{
		Kind:  SelectorPrimaryID,
		Value: acct.ID,
	})
	require.NoError(t, err)

	require.Len(t, outcomes, 1)
	assert.Equal(t, account.RoleUser, outcomes[0].Role)
}

func TestUnbanNotBanned(t *testing.T) {
	svc, accounts, _ := newTestService(t)

	acct := seedAccount(t, accounts, "clean", account.RoleUser, nil)

	outcomes, err := svc.Unban(context.Background(), Selector{
		Kind:  SelectorPrimaryID,
		Value: acct.ID,
	})
	require.NoError(t, err)

	require.Len(t, outcomes, 1)
	assert.Equal(t, OutcomeNotBanned, outcomes[0].Status)
}

func TestRebanKeepsOriginalPreviousRole(t *testing.T) {
	svc, accounts, _ := newTestService(t)
	ctx := context.Background()

	acct := seedAccount(t, accounts, "target", account.RoleVIP, nil)
	sel := Selector{Kind: SelectorPrimaryID, Value: acct.ID}

	_, err := svc.Ban(ctx, sel, "first reason")
	require.NoError(t, err)

	_, err = svc.Ban(ctx, sel, "second reason")
	require.NoError(t, err)

	stored, err := accounts.GetByID(ctx, acct.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.PreviousRole)
	assert.Equal(t, account.RoleVIP, *stored.PreviousRole)
	require.NotNil(t, stored.BanReason)
	assert.Equal(t, "second reason", *stored.BanReason)
}
