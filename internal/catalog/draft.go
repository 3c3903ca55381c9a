// AngelaMos | 2026
// draft.go

package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/angelamos/gatekeeper/internal/core"
)

// Draft is the step-one state of item creation: descriptive fields without
// prices. The correlation id returned by Begin references it until step two
// supplies the price table or the TTL expires.
type Draft struct {
	Name        string `json:"name"`
	WindowName  string `json:"window_name"`
	Description string `json:"description"`
}

type DraftStore interface {
	Begin(ctx context.Context, draft Draft) (string, error)
	// Take returns and removes the draft; an unknown or expired id is
	// core.ErrNotFound.
	Take(ctx context.Context, draftID string) (*Draft, error)
}

// RedisDraftStore holds drafts in Redis under a TTL, so half-finished
// creations survive restarts and expire on their own.
type RedisDraftStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ DraftStore = (*RedisDraftStore)(nil)

func NewRedisDraftStore(client *redis.Client, ttl time.Duration) *RedisDraftStore {
	return &RedisDraftStore{client: client, ttl: ttl}
}

func draftKey(id string) string {
	return "catalog:draft:" + id
}

func (s *RedisDraftStore) Begin(ctx context.Context, draft Draft) (string, error) {
	payload, err := json.Marshal(draft)
	if err != nil {
		return "", fmt.Errorf("begin draft: %w", err)
	}

	id := uuid.New().String()
	if err := s.client.Set(ctx, draftKey(id), payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("begin draft: %w", err)
	}

	return id, nil
}

func (s *RedisDraftStore) Take(ctx context.Context, draftID string) (*Draft, error) {
	payload, err := s.client.GetDel(ctx, draftKey(draftID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("take draft: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("take draft: %w", err)
	}

	var draft Draft
	if err := json.Unmarshal(payload, &draft); err != nil {
		return nil, fmt.Errorf("take draft: %w", err)
	}

	return &draft, nil
}

// MemoryDraftStore backs tests. TTL expiry is checked lazily on Take.
type MemoryDraftStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	drafts map[string]memoryDraft
}

type memoryDraft struct {
	draft   Draft
	expires time.Time
}

var _ DraftStore = (*MemoryDraftStore)(nil)

func NewMemoryDraftStore(ttl time.Duration) *MemoryDraftStore {
	return &MemoryDraftStore{
		ttl:    ttl,
		drafts: make(map[string]memoryDraft),
	}
}

func (s *MemoryDraftStore) Begin(ctx context.Context, draft Draft) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	s.drafts[id] = memoryDraft{
		draft:   draft,
		expires: time.Now().Add(s.ttl),
	}

	return id, nil
}

func (s *MemoryDraftStore) Take(ctx context.Context, draftID string) (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.drafts[draftID]
	if !ok || time.Now().After(entry.expires) {
		delete(s.drafts, draftID)
		return nil, fmt.Errorf("take draft: %w", core.ErrNotFound)
	}

	delete(s.drafts, draftID)
	return &entry.draft, nil
}
