package cache

import (
	"context"
	"errors"
	"sync"

	"nftmarket/internal/models"
)

var ErrNotFound = errors.New("nft not in cache")

// Storage holds immutable NFT reference data. Invalidation is wholesale.
type Storage interface {
	Get(ctx context.Context, id string) (models.Nft, error)
	Set(ctx context.Context, nft models.Nft) error
	Clear(ctx context.Context) error
}

type Memory struct {
	mu    sync.RWMutex
	items map[string]models.Nft
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string]models.Nft)}
}

func (m *Memory) Get(_ context.Context, id string) (models.Nft, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	nft, ok := m.items[id]
	if !ok {
		return models.Nft{}, ErrNotFound
	}
	return nft, nil
}

func (m *Memory) Set(_ context.Context, nft models.Nft) error {
	m.mu.Lock()
	m.items[nft.ID] = nft
	m.mu.Unlock()
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	m.items = make(map[string]models.Nft)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
