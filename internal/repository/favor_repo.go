// internal/repository/favor_repo.go
package repository

import (
	"context"

	"groupcart/internal/domain"
)

// FavorRepository defines the interface for favor ledger records.
type FavorRepository interface {
	// CreateFavor inserts a new favor and populates its generated ID.
	CreateFavor(ctx context.Context, q DBExecutor, favor *domain.Favor) error
	// GetFavor retrieves a favor by ID, util.ErrNotFound when absent.
	GetFavor(ctx context.Context, q DBExecutor, id int64) (*domain.Favor, error)
	// GetFavorForUpdate is GetFavor with a row lock held for the rest of the
	// transaction, so a void and a reimbursement on the same favor serialize.
	GetFavorForUpdate(ctx context.Context, q DBExecutor, id int64) (*domain.Favor, error)
	// ListFor retrieves favors done for the given user, newest first.
	ListFor(ctx context.Context, q DBExecutor, username string) ([]domain.Favor, error)
	// ListBy retrieves favors purchased by the given user, newest first.
	ListBy(ctx context.Context, q DBExecutor, username string) ([]domain.Favor, error)
	// UpdateFavor overwrites the favor's reimbursement fields and amount.
	UpdateFavor(ctx context.Context, q DBExecutor, favor *domain.Favor) error
	// DeleteFavor removes a favor; only legal while it is unreimbursed,
	// which the service layer enforces before calling.
	DeleteFavor(ctx context.Context, q DBExecutor, id int64) error
}
