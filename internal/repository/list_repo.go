// internal/repository/list_repo.go
package repository

import (
	"context"

	"groupcart/internal/domain"
)

// ListRepository defines the interface for personal list item operations.
type ListRepository interface {
	// CreateItem inserts a new item and populates its generated ID.
	CreateItem(ctx context.Context, q DBExecutor, item *domain.ListItem) error
	// GetItem retrieves an item by owner and ID, util.ErrNotFound when absent.
	GetItem(ctx context.Context, q DBExecutor, owner string, id int64) (*domain.ListItem, error)
	// GetItemForUpdate is GetItem with a row lock held for the rest of the
	// transaction. Callers that check fulfillment state before writing must
	// use this variant so concurrent transactions serialize on the row.
	GetItemForUpdate(ctx context.Context, q DBExecutor, owner string, id int64) (*domain.ListItem, error)
	// ListByOwner retrieves the owner's full list in the order items were
	// added (ascending ID).
	ListByOwner(ctx context.Context, q DBExecutor, owner string) ([]domain.ListItem, error)
	// UpdateItem overwrites the item's text, priority and fulfillment fields.
	UpdateItem(ctx context.Context, q DBExecutor, item *domain.ListItem) error
	// DeleteItem removes an item, util.ErrNotFound when absent.
	DeleteItem(ctx context.Context, q DBExecutor, owner string, id int64) error
}
