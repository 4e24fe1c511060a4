// internal/repository/postgres/list_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"groupcart/internal/domain"
	"groupcart/internal/repository"
	"groupcart/internal/util"
)

// ListRepository implements repository.ListRepository for PostgreSQL.
type ListRepository struct{}

// NewListRepository creates a new ListRepository.
func NewListRepository(db *sqlx.DB) repository.ListRepository {
	return &ListRepository{}
}

// CreateItem inserts a new item and populates its generated ID.
func (r *ListRepository) CreateItem(ctx context.Context, q repository.DBExecutor, item *domain.ListItem) error {
	query := `INSERT INTO list_items (owner, item, priority, added, fulfilled)
              VALUES ($1, $2, $3, $4, FALSE) RETURNING id`
	err := q.QueryRowContext(ctx, query, item.Owner, item.Item, item.Priority, item.Added).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("failed to create list item for '%s': %w", item.Owner, err)
	}
	return nil
}

// GetItem retrieves an item by owner and ID.
func (r *ListRepository) GetItem(ctx context.Context, q repository.DBExecutor, owner string, id int64) (*domain.ListItem, error) {
	return r.getItem(ctx, q, owner, id, "")
}

// GetItemForUpdate retrieves an item and locks its row until the enclosing
// transaction ends. A concurrent fulfillment blocks here and then sees the
// committed state instead of the one it raced against.
func (r *ListRepository) GetItemForUpdate(ctx context.Context, q repository.DBExecutor, owner string, id int64) (*domain.ListItem, error) {
	return r.getItem(ctx, q, owner, id, " FOR UPDATE")
}

func (r *ListRepository) getItem(ctx context.Context, q repository.DBExecutor, owner string, id int64, locking string) (*domain.ListItem, error) {
	var item domain.ListItem
	query := `SELECT id, owner, item, priority, added, fulfilled, fulfilled_by, fulfilled_at, favor_id
              FROM list_items WHERE owner = $1 AND id = $2` + locking
	err := q.GetContext(ctx, &item, query, owner, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: list item %d for '%s'", util.ErrNotFound, id, owner)
		}
		return nil, fmt.Errorf("failed to get list item %d for '%s': %w", id, owner, err)
	}
	return &item, nil
}

// ListByOwner retrieves the owner's full list in insertion order.
func (r *ListRepository) ListByOwner(ctx context.Context, q repository.DBExecutor, owner string) ([]domain.ListItem, error) {
	var items []domain.ListItem
	query := `SELECT id, owner, item, priority, added, fulfilled, fulfilled_by, fulfilled_at, favor_id
              FROM list_items WHERE owner = $1 ORDER BY id`
	if err := q.SelectContext(ctx, &items, query, owner); err != nil {
		return nil, fmt.Errorf("failed to list items for '%s': %w", owner, err)
	}
	return items, nil
}

// UpdateItem overwrites the item's text, priority and fulfillment fields.
func (r *ListRepository) UpdateItem(ctx context.Context, q repository.DBExecutor, item *domain.ListItem) error {
	query := `UPDATE list_items
              SET item = $3, priority = $4, fulfilled = $5, fulfilled_by = $6, fulfilled_at = $7, favor_id = $8
              WHERE owner = $1 AND id = $2`
	result, err := q.ExecContext(ctx, query,
		item.Owner, item.ID, item.Item, item.Priority,
		item.Fulfilled, item.FulfilledBy, item.FulfilledAt, item.FavorID)
	if err != nil {
		return fmt.Errorf("failed to update list item %d for '%s': %w", item.ID, item.Owner, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update list item %d for '%s': %w", item.ID, item.Owner, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: list item %d for '%s'", util.ErrNotFound, item.ID, item.Owner)
	}
	return nil
}

// DeleteItem removes an item.
func (r *ListRepository) DeleteItem(ctx context.Context, q repository.DBExecutor, owner string, id int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM list_items WHERE owner = $1 AND id = $2`, owner, id)
	if err != nil {
		return fmt.Errorf("failed to delete list item %d for '%s': %w", id, owner, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete list item %d for '%s': %w", id, owner, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: list item %d for '%s'", util.ErrNotFound, id, owner)
	}
	return nil
}
