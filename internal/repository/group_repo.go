// internal/repository/group_repo.go
package repository

import (
	"context"

	"groupcart/internal/domain"
)

// GroupRepository defines the interface for group data operations.
// The member list is stored with the group in join order; per-member colors
// live on the user rows and are composed into Group.UserColors by the
// service layer.
type GroupRepository interface {
	// CreateGroup inserts a new group with its initial member list.
	// Returns util.ErrConflict when the group ID is already taken.
	CreateGroup(ctx context.Context, q DBExecutor, group *domain.Group) error
	// GetGroup retrieves a group by ID, util.ErrNotFound when absent.
	// UserColors is left empty; callers compose it from the user rows.
	GetGroup(ctx context.Context, q DBExecutor, id string) (*domain.Group, error)
	// AddMember appends a username to the group's member list if not
	// already present.
	AddMember(ctx context.Context, q DBExecutor, groupID, username string) error
}
