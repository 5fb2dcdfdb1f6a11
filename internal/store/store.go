// Package store provides data storage interfaces and implementations.
package store

import (
	"context"
	"errors"

	"itemsvc/internal/model"
)

// Store errors.
var (
	ErrNotFound  = errors.New("item not found")
	ErrEmptyName = errors.New("item name cannot be empty")
)

// Store defines the interface for item storage operations.
type Store interface {
	// List returns all items in creation order.
	List(ctx context.Context) ([]model.Item, error)

	// Get retrieves an item by its ID.
	Get(ctx context.Context, id int64) (*model.Item, error)

	// Create adds a new item with a freshly assigned ID and returns it.
	Create(ctx context.Context, name string) (*model.Item, error)

	// Update replaces the name of an existing item and returns it.
	Update(ctx context.Context, id int64, name string) (*model.Item, error)

	// Delete removes an item by its ID and returns the removed item.
	Delete(ctx context.Context, id int64) (*model.Item, error)
}
