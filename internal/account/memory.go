// AngelaMos | 2026
// memory.go

package account

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/angelamos/gatekeeper/internal/core"
)

// MemoryRepository is an in-process Repository used by tests and local
// development. Methods copy on the way in and out so callers never share
// pointers with the store.
type MemoryRepository struct {
	mu    sync.RWMutex
	accts map[string]Account
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{accts: make(map[string]Account)}
}

func (r *MemoryRepository) Create(ctx context.Context, acct *Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.accts {
		if existing.DiscordID == acct.DiscordID ||
			existing.Username == acct.Username {
			return fmt.Errorf("create account: %w", core.ErrDuplicateKey)
		}
	}

	now := time.Now().UTC()
	acct.CreatedAt = now
	acct.UpdatedAt = now
	r.accts[acct.ID] = *acct
	return nil
}

func (r *MemoryRepository) GetByID(
	ctx context.Context,
	id string,
) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acct, ok := r.accts[id]
	if !ok {
		return nil, fmt.Errorf("get account: %w", core.ErrNotFound)
	}
	return &acct, nil
}

func (r *MemoryRepository) GetByDiscordID(
	ctx context.Context,
	discordID string,
) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, acct := range r.accts {
		if acct.DiscordID == discordID {
			out := acct
			return &out, nil
		}
	}
	return nil, fmt.Errorf("get account by discord id: %w", core.ErrNotFound)
}

func (r *MemoryRepository) ListByHWID(
	ctx context.Context,
	hwid string,
) ([]Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Account
	for _, acct := range r.accts {
		if acct.HWID != nil && *acct.HWID == hwid {
			out = append(out, acct)
		}
	}
	sortByCreation(out)
	return out, nil
}

func (r *MemoryRepository) ListByRole(
	ctx context.Context,
	role string,
) ([]Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Account
	for _, acct := range r.accts {
		if acct.Role == role {
			out = append(out, acct)
		}
	}
	sortByCreation(out)
	return out, nil
}

func (r *MemoryRepository) List(
	ctx context.Context,
	params ListParams,
) ([]Account, int, error) {
	params.Normalize()

	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []Account
	for _, acct := range r.accts {
		if params.Role != "" && acct.Role != params.Role {
			continue
		}
		if params.Search != "" &&
			!strings.Contains(acct.Username, params.Search) &&
			acct.DiscordID != params.Search {
			continue
		}
		matched = append(matched, acct)
	}
	sortByCreation(matched)

	total := len(matched)
	start := params.Offset()
	if start > total {
		start = total
	}
	end := start + params.PageSize
	if end > total {
		end = total
	}

	return matched[start:end], total, nil
}

func (r *MemoryRepository) Update(ctx context.Context, acct *Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accts[acct.ID]; !ok {
		return fmt.Errorf("update account: %w", core.ErrNotFound)
	}

	acct.UpdatedAt = time.Now().UTC()
	r.accts[acct.ID] = *acct
	return nil
}

func (r *MemoryRepository) SetHWID(ctx context.Context, id, hwid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	acct, ok := r.accts[id]
	if !ok {
		return fmt.Errorf("set hwid: %w", core.ErrNotFound)
	}

	acct.HWID = &hwid
	acct.UpdatedAt = time.Now().UTC()
	r.accts[id] = acct
	return nil
}

func sortByCreation(accts []Account) {
	sort.Slice(accts, func(i, j int) bool {
		if accts[i].CreatedAt.Equal(accts[j].CreatedAt) {
			return accts[i].ID < accts[j].ID
		}
		return accts[i].CreatedAt.Before(accts[j].CreatedAt)
	})
}

var _ Repository = (*MemoryRepository)(nil)
