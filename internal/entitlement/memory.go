// AngelaMos | 2026
// memory.go

package entitlement

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/angelamos/gatekeeper/internal/core"
)

// MemoryRepository keeps entitlements in process memory. Backs tests and
// carries the same semantics as the Postgres repository.
type MemoryRepository struct {
	mu   sync.RWMutex
	ents map[string]Entitlement
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{ents: make(map[string]Entitlement)}
}

func (m *MemoryRepository) Create(ctx context.Context, ent *Entitlement) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	ent.CreatedAt = now
	ent.UpdatedAt = now
	m.ents[ent.ID] = *ent

	return nil
}

func (m *MemoryRepository) UpdateEnd(
	ctx context.Context,
	id string,
	endsAt time.Time,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ent, ok := m.ents[id]
	if !ok {
		return fmt.Errorf("extend entitlement: %w", core.ErrNotFound)
	}

	ent.EndsAt = endsAt
	ent.UpdatedAt = time.Now().UTC()
	m.ents[id] = ent

	return nil
}

func (m *MemoryRepository) Current(
	ctx context.Context,
	accountID, itemID string,
	now time.Time,
) (*Entitlement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var current *Entitlement
	for id := range m.ents {
		ent := m.ents[id]
		if ent.AccountID != accountID || ent.ItemID != itemID || !ent.Current(now) {
			continue
		}
		if current == nil || ent.EndsAt.After(current.EndsAt) {
			copied := ent
			current = &copied
		}
	}

	return current, nil
}

func (m *MemoryRepository) HasActive(
	ctx context.Context,
	accountID string,
	now time.Time,
) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for id := range m.ents {
		ent := m.ents[id]
		if ent.AccountID == accountID && ent.Current(now) {
			return true, nil
		}
	}

	return false, nil
}

func (m *MemoryRepository) ListByAccount(
	ctx context.Context,
	accountID string,
) ([]Entitlement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ents []Entitlement
	for id := range m.ents {
		ent := m.ents[id]
		if ent.AccountID == accountID {
			ents = append(ents, ent)
		}
	}

	return ents, nil
}
