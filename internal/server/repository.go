package server

import (
	"context"
	"sync"

	"github.com/theirongolddev/subtrack/internal/model"
)

// Repository stores one subscription list per token.
type Repository interface {
	// Get returns model.ErrTokenNotFound for unknown tokens.
	Get(ctx context.Context, token string) ([]model.Subscription, error)
	Create(ctx context.Context, token string) error
	// Replace stores records under ids 1..n, creating the token if needed.
	Replace(ctx context.Context, token string, records []model.Record) ([]model.Subscription, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// MemoryRepository keeps everything in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	lists map[string][]model.Subscription
}

// NewMemoryRepository returns an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{lists: make(map[string][]model.Subscription)}
}

func (m *MemoryRepository) Get(_ context.Context, token string) ([]model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list, ok := m.lists[token]
	if !ok {
		return nil, model.ErrTokenNotFound
	}
	out := make([]model.Subscription, len(list))
	copy(out, list)
	return out, nil
}

func (m *MemoryRepository) Create(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.lists[token]; !ok {
		m.lists[token] = []model.Subscription{}
	}
	return nil
}

func (m *MemoryRepository) Replace(_ context.Context, token string, records []model.Record) ([]model.Subscription, error) {
	subs := make([]model.Subscription, len(records))
	for i, r := range records {
		subs[i] = model.Subscription{ID: i + 1, Record: r}
	}

	m.mu.Lock()
	m.lists[token] = subs
	m.mu.Unlock()

	out := make([]model.Subscription, len(subs))
	copy(out, subs)
	return out, nil
}

func (m *MemoryRepository) Count(context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.lists), nil
}

func (m *MemoryRepository) Close() error { return nil }
