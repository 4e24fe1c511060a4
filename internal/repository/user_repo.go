// internal/repository/user_repo.go
package repository

import (
	"context"

	"groupcart/internal/domain"
)

// UserRepository defines the interface for user data operations.
// Usernames are expected to be slug-normalized before they reach this layer.
type UserRepository interface {
	// CreateUser inserts a new user. Returns util.ErrConflict when the
	// username is already taken.
	CreateUser(ctx context.Context, q DBExecutor, user *domain.User) error
	// GetUser retrieves a user by username, util.ErrNotFound when absent.
	GetUser(ctx context.Context, q DBExecutor, username string) (*domain.User, error)
	// UpdateUser overwrites the user's mutable fields (names, color, group).
	UpdateUser(ctx context.Context, q DBExecutor, user *domain.User) error
	// ListByGroup retrieves all members of a group, in username order.
	ListByGroup(ctx context.Context, q DBExecutor, groupID string) ([]domain.User, error)
}
