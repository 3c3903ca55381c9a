// AngelaMos | 2026
// memory.go

package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/angelamos/gatekeeper/internal/core"
)

// MemoryRepository keeps the catalog in process memory for tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]Item
	sales map[string][]Sale
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		items: make(map[string]Item),
		sales: make(map[string][]Sale),
	}
}

func (m *MemoryRepository) Create(ctx context.Context, item *Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id := range m.items {
		if m.items[id].Name == item.Name {
			return fmt.Errorf("create item: %w", core.ErrDuplicateKey)
		}
	}

	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	m.items[item.ID] = *item

	return nil
}

func (m *MemoryRepository) GetByID(ctx context.Context, id string) (*Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("get item: %w", core.ErrNotFound)
	}

	return &item, nil
}

func (m *MemoryRepository) List(ctx context.Context, activeOnly bool) ([]Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var items []Item
	for id := range m.items {
		item := m.items[id]
		if activeOnly && !item.Active {
			continue
		}
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Name < items[j].Name
	})

	return items, nil
}

func (m *MemoryRepository) Update(ctx context.Context, item *Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[item.ID]; !ok {
		return fmt.Errorf("update item: %w", core.ErrNotFound)
	}

	item.UpdatedAt = time.Now().UTC()
	m.items[item.ID] = *item

	return nil
}

func (m *MemoryRepository) CreateSale(ctx context.Context, sale *Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sale.CreatedAt = time.Now().UTC()
	m.sales[sale.ItemID] = append(m.sales[sale.ItemID], *sale)

	return nil
}

func (m *MemoryRepository) ListSales(ctx context.Context, itemID string) ([]Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sales := make([]Sale, len(m.sales[itemID]))
	copy(sales, m.sales[itemID])

	sort.Slice(sales, func(i, j int) bool {
		return sales[i].StartsAt.After(sales[j].StartsAt)
	})

	return sales, nil
}
