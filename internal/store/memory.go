package store

import (
	"context"
	"fmt"
	"sync"

	"itemsvc/internal/model"
)

// MemoryStore implements Store with in-memory storage. Items are kept in
// creation order; the index map resolves an ID to its slice position.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	items  []model.Item
	index  map[int64]int
}

// NewMemoryStore creates a new MemoryStore instance.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make([]model.Item, 0),
		index: make(map[int64]int),
	}
}

// List returns copies of all items in creation order.
func (s *MemoryStore) List(ctx context.Context) ([]model.Item, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("list items: %w", ctx.Err())
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]model.Item, len(s.items))
	copy(items, s.items)

	return items, nil
}

// Get retrieves a copy of the item with the given ID.
func (s *MemoryStore) Get(ctx context.Context, id int64) (*model.Item, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("get item: %w", ctx.Err())
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	pos, exists := s.index[id]
	if !exists {
		return nil, ErrNotFound
	}

	item := s.items[pos]

	return &item, nil
}

// Create adds a new item and returns it. IDs come from a monotonic counter
// guarded by the store mutex, so concurrent creates never collide and
// deleted IDs are never reused.
func (s *MemoryStore) Create(ctx context.Context, name string) (*model.Item, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("create item: %w", ctx.Err())
	default:
	}

	if name == "" {
		return nil, ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	item := model.Item{
		ID:   s.nextID,
		Name: name,
	}

	s.index[item.ID] = len(s.items)
	s.items = append(s.items, item)

	return &item, nil
}

// Update replaces the name of an existing item in place. The ID is immutable.
func (s *MemoryStore) Update(ctx context.Context, id int64, name string) (*model.Item, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("update item: %w", ctx.Err())
	default:
	}

	if name == "" {
		return nil, ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pos, exists := s.index[id]
	if !exists {
		return nil, ErrNotFound
	}

	s.items[pos].Name = name
	item := s.items[pos]

	return &item, nil
}

// Delete removes the item with the given ID and returns it. The creation
// order of the remaining items is preserved.
func (s *MemoryStore) Delete(ctx context.Context, id int64) (*model.Item, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("delete item: %w", ctx.Err())
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pos, exists := s.index[id]
	if !exists {
		return nil, ErrNotFound
	}

	removed := s.items[pos]

	s.items = append(s.items[:pos], s.items[pos+1:]...)
	delete(s.index, id)

	// Positions after the removed item shift left by one.
	for i := pos; i < len(s.items); i++ {
		s.index[s.items[i].ID] = i
	}

	return &removed, nil
}
