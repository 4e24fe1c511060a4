// internal/repository/postgres/user_pg.go
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

// UserRepository implements repository.UserRepository for PostgreSQL.
type UserRepository struct{}

// NewUserRepository creates a new UserRepository. The executor is passed to
// each method rather than stored, so the same repository serves direct and
// transactional callers.
func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &UserRepository{}
}

// CreateUser inserts a new user.
func (r *UserRepository) CreateUser(ctx context.Context, q repository.DBExecutor, user *domain.User) error {
	query := `INSERT INTO users (username, first_name, last_name, group_id, color)
              VALUES ($1, $2, $3, $4, $5)`
	_, err := q.ExecContext(ctx, query, user.Username, user.FirstName, user.LastName, user.GroupID, user.Color)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: username '%s' already taken", util.ErrConflict, user.Username)
		}
		return fmt.Errorf("failed to create user '%s': %w", user.Username, err)
	}
	return nil
}

// GetUser retrieves a user by username.
func (r *UserRepository) GetUser(ctx context.Context, q repository.DBExecutor, username string) (*domain.User, error) {
	var user domain.User
	query := `SELECT username, first_name, last_name, group_id, color FROM users WHERE username = $1`
	err := q.GetContext(ctx, &user, query, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user '%s'", util.ErrNotFound, username)
		}
		return nil, fmt.Errorf("failed to get user '%s': %w", username, err)
	}
	return &user, nil
}

// UpdateUser overwrites the user's mutable fields.
func (r *UserRepository) UpdateUser(ctx context.Context, q repository.DBExecutor, user *domain.User) error {
	query := `UPDATE users SET first_name = $2, last_name = $3, group_id = $4, color = $5
              WHERE username = $1`
	result, err := q.ExecContext(ctx, query, user.Username, user.FirstName, user.LastName, user.GroupID, user.Color)
	if err != nil {
		return fmt.Errorf("failed to update user '%s': %w", user.Username, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update user '%s': %w", user.Username, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: user '%s'", util.ErrNotFound, user.Username)
	}
	return nil
}

// ListByGroup retrieves all members of a group.
func (r *UserRepository) ListByGroup(ctx context.Context, q repository.DBExecutor, groupID string) ([]domain.User, error) {
	var users []domain.User
	query := `SELECT username, first_name, last_name, group_id, color FROM users
              WHERE group_id = $1 ORDER BY username`
	if err := q.SelectContext(ctx, &users, query, groupID); err != nil {
		return nil, fmt.Errorf("failed to list users in group '%s': %w", groupID, err)
	}
	return users, nil
}
