// internal/repository/postgres/favor_pg.go
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

// FavorRepository implements repository.FavorRepository for PostgreSQL.
// Amounts are stored as NUMERIC and scanned into decimal.Decimal, so no
// floating point ever touches the ledger.
type FavorRepository struct{}

// NewFavorRepository creates a new FavorRepository.
func NewFavorRepository(db *sqlx.DB) repository.FavorRepository {
	return &FavorRepository{}
}

// CreateFavor inserts a new favor and populates its generated ID.
func (r *FavorRepository) CreateFavor(ctx context.Context, q repository.DBExecutor, favor *domain.Favor) error {
	query := `INSERT INTO favors (item_id, item, fulfilled_at, for_user, by_user, reimbursed, reimbursed_at, amount)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		favor.ItemID, favor.Item, favor.FulfilledAt, favor.For, favor.By,
		favor.Reimbursed, favor.ReimbursedAt, favor.Amount).Scan(&favor.ID)
	if err != nil {
		return fmt.Errorf("failed to create favor for item %d: %w", favor.ItemID, err)
	}
	return nil
}

// GetFavor retrieves a favor by ID.
func (r *FavorRepository) GetFavor(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Favor, error) {
	return r.getFavor(ctx, q, id, "")
}

// GetFavorForUpdate retrieves a favor and locks its row until the enclosing
// transaction ends.
func (r *FavorRepository) GetFavorForUpdate(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Favor, error) {
	return r.getFavor(ctx, q, id, " FOR UPDATE")
}

func (r *FavorRepository) getFavor(ctx context.Context, q repository.DBExecutor, id int64, locking string) (*domain.Favor, error) {
	var favor domain.Favor
	query := `SELECT id, item_id, item, fulfilled_at, for_user, by_user, reimbursed, reimbursed_at, amount
              FROM favors WHERE id = $1` + locking
	err := q.GetContext(ctx, &favor, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: favor %d", util.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get favor %d: %w", id, err)
	}
	return &favor, nil
}

// ListFor retrieves favors done for the given user, newest first.
func (r *FavorRepository) ListFor(ctx context.Context, q repository.DBExecutor, username string) ([]domain.Favor, error) {
	return r.list(ctx, q, `for_user`, username)
}

// ListBy retrieves favors purchased by the given user, newest first.
func (r *FavorRepository) ListBy(ctx context.Context, q repository.DBExecutor, username string) ([]domain.Favor, error) {
	return r.list(ctx, q, `by_user`, username)
}

func (r *FavorRepository) list(ctx context.Context, q repository.DBExecutor, column, username string) ([]domain.Favor, error) {
	var favors []domain.Favor
	query := fmt.Sprintf(`SELECT id, item_id, item, fulfilled_at, for_user, by_user, reimbursed, reimbursed_at, amount
              FROM favors WHERE %s = $1 ORDER BY fulfilled_at DESC, id DESC`, column)
	if err := q.SelectContext(ctx, &favors, query, username); err != nil {
		return nil, fmt.Errorf("failed to list favors (%s='%s'): %w", column, username, err)
	}
	return favors, nil
}

// UpdateFavor overwrites the favor's reimbursement fields and amount.
func (r *FavorRepository) UpdateFavor(ctx context.Context, q repository.DBExecutor, favor *domain.Favor) error {
	query := `UPDATE favors SET reimbursed = $2, reimbursed_at = $3, amount = $4 WHERE id = $1`
	result, err := q.ExecContext(ctx, query, favor.ID, favor.Reimbursed, favor.ReimbursedAt, favor.Amount)
	if err != nil {
		return fmt.Errorf("failed to update favor %d: %w", favor.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update favor %d: %w", favor.ID, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: favor %d", util.ErrNotFound, favor.ID)
	}
	return nil
}

// DeleteFavor removes a favor.
func (r *FavorRepository) DeleteFavor(ctx context.Context, q repository.DBExecutor, id int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM favors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete favor %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete favor %d: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: favor %d", util.ErrNotFound, id)
	}
	return nil
}
