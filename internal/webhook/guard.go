// AngelaMos | 2026
// guard.go

package webhook

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Guard admits each event id exactly once. Admission is global across the
// deployment, not per account.
type Guard interface {
	// Admit returns true exactly once per event id, false for every replay
	// inside the retention window.
	Admit(ctx context.Context, eventID string) (bool, error)

	// Forget releases an admitted event id so the provider's next retry is
	// admitted again. Called when processing failed and no state changed;
	// without it a transient failure would burn the id and the retry would
	// be acked as a duplicate.
	Forget(ctx context.Context, eventID string) error
}

// RedisGuard records first-seen event ids with SET NX, so admission is
// atomic across processes. Keys expire after the retention window; a replay
// arriving later than that is admitted again, which the retention config is
// sized to make irrelevant.
type RedisGuard struct {
	client    *redis.Client
	retention time.Duration
}

var _ Guard = (*RedisGuard)(nil)

func NewRedisGuard(client *redis.Client, retention time.Duration) *RedisGuard {
	return &RedisGuard{client: client, retention: retention}
}

func (g *RedisGuard) Admit(ctx context.Context, eventID string) (bool, error) {
	key := "webhook:event:" + eventID

	admitted, err := g.client.SetNX(ctx, key, "1", g.retention).Result()
	if err != nil {
		return false, fmt.Errorf("admit event: %w", err)
	}

	return admitted, nil
}

func (g *RedisGuard) Forget(ctx context.Context, eventID string) error {
	if err := g.client.Del(ctx, "webhook:event:"+eventID).Err(); err != nil {
		return fmt.Errorf("forget event: %w", err)
	}
	return nil
}

// MemoryGuard is the in-process Guard used by tests.
type MemoryGuard struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

var _ Guard = (*MemoryGuard)(nil)

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{seen: make(map[string]struct{})}
}

func (g *MemoryGuard) Admit(ctx context.Context, eventID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.seen[eventID]; ok {
		return false, nil
	}

	g.seen[eventID] = struct{}{}
	return true, nil
}

func (g *MemoryGuard) Forget(ctx context.Context, eventID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.seen, eventID)
	return nil
}
