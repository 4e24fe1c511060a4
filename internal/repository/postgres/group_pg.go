// internal/repository/postgres/group_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"groupcart/internal/domain"
	"groupcart/internal/repository"
	"groupcart/internal/util"
)

// GroupRepository implements repository.GroupRepository for PostgreSQL.
// Members are stored as a TEXT[] column to preserve join order, which the
// aggregator depends on for deterministic cart ordering.
type GroupRepository struct{}

// NewGroupRepository creates a new GroupRepository.
func NewGroupRepository(db *sqlx.DB) repository.GroupRepository {
	return &GroupRepository{}
}

// CreateGroup inserts a new group with its initial member list.
func (r *GroupRepository) CreateGroup(ctx context.Context, q repository.DBExecutor, group *domain.Group) error {
	query := `INSERT INTO groups (id, name, members) VALUES ($1, $2, $3)`
	_, err := q.ExecContext(ctx, query, group.ID, group.Name, pq.StringArray(group.Users))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: group '%s' already exists", util.ErrConflict, group.ID)
		}
		return fmt.Errorf("failed to create group '%s': %w", group.ID, err)
	}
	return nil
}

// GetGroup retrieves a group by ID. UserColors is left for the service
// layer to compose from user rows.
func (r *GroupRepository) GetGroup(ctx context.Context, q repository.DBExecutor, id string) (*domain.Group, error) {
	var row struct {
		ID      string         `db:"id"`
		Name    string         `db:"name"`
		Members pq.StringArray `db:"members"`
	}
	query := `SELECT id, name, members FROM groups WHERE id = $1`
	err := q.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: group '%s'", util.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get group '%s': %w", id, err)
	}
	return &domain.Group{
		ID:    row.ID,
		Name:  row.Name,
		Users: []string(row.Members),
	}, nil
}

// AddMember appends a username to the group's member list if absent.
func (r *GroupRepository) AddMember(ctx context.Context, q repository.DBExecutor, groupID, username string) error {
	query := `UPDATE groups SET members = array_append(members, $2)
              WHERE id = $1 AND NOT ($2 = ANY(members))`
	if _, err := q.ExecContext(ctx, query, groupID, username); err != nil {
		return fmt.Errorf("failed to add member '%s' to group '%s': %w", username, groupID, err)
	}
	return nil
}
