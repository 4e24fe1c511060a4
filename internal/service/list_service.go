// internal/service/list_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"groupcart/internal/aggregator"
	"groupcart/internal/domain"
	"groupcart/internal/ledger"
	"groupcart/internal/repository"
	"groupcart/internal/util"
	"groupcart/pkg/db"
)

// ListService defines the business logic for personal lists, the merged
// group cart, and the favor ledger.
type ListService interface {
	ListItems(ctx context.Context, owner string) ([]domain.ListItem, error)
	CreateItem(ctx context.Context, owner, item string, priority int) (*domain.ListItem, error)
	UpdateItem(ctx context.Context, owner string, id int64, item string, priority int) (*domain.ListItem, error)
	DeleteItem(ctx context.Context, owner string, id int64) error

	SharedList(ctx context.Context, groupID string) ([]domain.SharedShoppingItem, error)

	FavorsFor(ctx context.Context, username string) ([]domain.Favor, error)
	FavorsBy(ctx context.Context, username string) ([]domain.Favor, error)
	// FulfillItem marks the item purchased and records the favor in ONE
	// database transaction. There is deliberately no endpoint pair for the
	// two halves: a split would allow "item marked done" and "favor
	// recorded" to diverge when the second write fails.
	FulfillItem(ctx context.Context, params FulfillParams) (*domain.Favor, error)
	VoidFavor(ctx context.Context, favorID int64) error
	UpdateFavor(ctx context.Context, favorID int64, reimbursed bool, amount *decimal.Decimal) (*domain.Favor, error)
}

// FulfillParams carries one fulfillment request. The item is addressed by
// beneficiary plus item ID since item IDs are scoped per owner.
type FulfillParams struct {
	ItemID int64
	By     string
	For    string
	Amount decimal.Decimal
}

// listService implements ListService.
type listService struct {
	dbBeginner db.DBTxBeginner
	dbExecutor repository.DBExecutor
	userRepo   repository.UserRepository
	groupRepo  repository.GroupRepository
	listRepo   repository.ListRepository
	favorRepo  repository.FavorRepository
	beginTx    db.BeginTxFunc
	commitTx   db.CommitTxFunc
	rollbackTx db.RollbackTxFunc
}

// NewListService creates a new instance of ListService.
func NewListService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	groupRepo repository.GroupRepository,
	listRepo repository.ListRepository,
	favorRepo repository.FavorRepository,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) ListService {
	return &listService{
		dbBeginner: dbBeginner,
		dbExecutor: dbExecutor,
		userRepo:   userRepo,
		groupRepo:  groupRepo,
		listRepo:   listRepo,
		favorRepo:  favorRepo,
		beginTx:    beginTx,
		commitTx:   commitTx,
		rollbackTx: rollbackTx,
	}
}

// ListItems retrieves the owner's personal list.
func (s *listService) ListItems(ctx context.Context, owner string) ([]domain.ListItem, error) {
	owner = domain.Slugify(owner)
	if _, err := s.userRepo.GetUser(ctx, s.dbExecutor, owner); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	items, err := s.listRepo.ListByOwner(ctx, s.dbExecutor, owner)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// CreateItem adds a want to the owner's list.
func (s *listService) CreateItem(ctx context.Context, owner, item string, priority int) (*domain.ListItem, error) {
	listItem, err := domain.NewListItem(owner, item, priority)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetUser(ctx, s.dbExecutor, listItem.Owner); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	if err := s.listRepo.CreateItem(ctx, s.dbExecutor, listItem); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	return listItem, nil
}

// UpdateItem edits an item's text and priority. Fulfillment fields are
// untouched; those only change through the ledger operations below.
func (s *listService) UpdateItem(ctx context.Context, owner string, id int64, item string, priority int) (*domain.ListItem, error) {
	if err := domain.ValidatePriority(priority); err != nil {
		return nil, err
	}
	owner = domain.Slugify(owner)

	existing, err := s.listRepo.GetItem(ctx, s.dbExecutor, owner, id)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	existing.Item = item
	existing.Priority = priority
	if err := s.listRepo.UpdateItem(ctx, s.dbExecutor, existing); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return existing, nil
}

// DeleteItem removes an item from the owner's list.
func (s *listService) DeleteItem(ctx context.Context, owner string, id int64) error {
	if err := s.listRepo.DeleteItem(ctx, s.dbExecutor, domain.Slugify(owner), id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// SharedList recomputes the merged group cart from every member's current
// list. Members are scanned in the group's stored join order, which fixes
// the cart's row order.
func (s *listService) SharedList(ctx context.Context, groupID string) ([]domain.SharedShoppingItem, error) {
	group, err := s.groupRepo.GetGroup(ctx, s.dbExecutor, domain.Slugify(groupID))
	if err != nil {
		return nil, fmt.Errorf("shared list: %w", err)
	}

	lists := make(map[string][]domain.ListItem, len(group.Users))
	for _, member := range group.Users {
		items, err := s.listRepo.ListByOwner(ctx, s.dbExecutor, member)
		if err != nil {
			return nil, fmt.Errorf("shared list: %w", err)
		}
		lists[member] = items
	}
	return aggregator.Aggregate(group.Users, lists), nil
}

// FavorsFor retrieves favors done for the given user.
func (s *listService) FavorsFor(ctx context.Context, username string) ([]domain.Favor, error) {
	favors, err := s.favorRepo.ListFor(ctx, s.dbExecutor, domain.Slugify(username))
	if err != nil {
		return nil, fmt.Errorf("favors for: %w", err)
	}
	return favors, nil
}

// FavorsBy retrieves favors purchased by the given user.
func (s *listService) FavorsBy(ctx context.Context, username string) ([]domain.Favor, error) {
	favors, err := s.favorRepo.ListBy(ctx, s.dbExecutor, domain.Slugify(username))
	if err != nil {
		return nil, fmt.Errorf("favors by: %w", err)
	}
	return favors, nil
}

// FulfillItem marks the item purchased and records the favor atomically.
func (s *listService) FulfillItem(ctx context.Context, params FulfillParams) (*domain.Favor, error) {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("fulfill item: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("fulfill item: transaction controller does not implement DBExecutor")
	}

	// The row lock serializes concurrent fulfillments of the same item: the
	// loser blocks here, then sees fulfilled=TRUE and fails validation, so at
	// most one favor is ever recorded per fulfillment.
	item, err := s.listRepo.GetItemForUpdate(ctx, txExecutor, domain.Slugify(params.For), params.ItemID)
	if err != nil {
		return nil, fmt.Errorf("fulfill item: %w", err)
	}
	if err := ledger.ValidateFulfillment(*item, params.Amount); err != nil {
		return nil, err
	}

	favor, err := domain.NewFavor(item.ID, item.Item, params.By, params.For, params.Amount)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	favor.FulfilledAt = now
	if err := s.favorRepo.CreateFavor(ctx, txExecutor, favor); err != nil {
		return nil, fmt.Errorf("fulfill item: %w", err)
	}

	ledger.Fulfill(item, favor.By, favor.ID, now)
	if err := s.listRepo.UpdateItem(ctx, txExecutor, item); err != nil {
		return nil, fmt.Errorf("fulfill item: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("fulfill item: failed to commit transaction: %w", err)
	}

	slog.Info("item fulfilled",
		"item_id", item.ID, "favor_id", favor.ID,
		"by", favor.By, "for", favor.For, "amount", favor.Amount)
	return favor, nil
}

// VoidFavor reverses an unreimbursed fulfillment: the source item's
// fulfillment fields are cleared and the favor is removed, atomically.
func (s *listService) VoidFavor(ctx context.Context, favorID int64) error {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return fmt.Errorf("void favor: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return fmt.Errorf("void favor: transaction controller does not implement DBExecutor")
	}

	// Locking the favor row serializes a void against a concurrent
	// reimbursement; whichever waited re-reads the committed state.
	favor, err := s.favorRepo.GetFavorForUpdate(ctx, txExecutor, favorID)
	if err != nil {
		return fmt.Errorf("void favor: %w", err)
	}
	if err := ledger.CanVoid(*favor); err != nil {
		return err
	}

	item, err := s.listRepo.GetItemForUpdate(ctx, txExecutor, favor.For, favor.ItemID)
	switch {
	case err == nil:
		ledger.Unfulfill(item)
		if err := s.listRepo.UpdateItem(ctx, txExecutor, item); err != nil {
			return fmt.Errorf("void favor: %w", err)
		}
	case util.IsError(err, util.ErrNotFound):
		// The source item was deleted after fulfillment; voiding the favor
		// alone is still the right repair.
	default:
		return fmt.Errorf("void favor: %w", err)
	}

	if err := s.favorRepo.DeleteFavor(ctx, txExecutor, favorID); err != nil {
		return fmt.Errorf("void favor: %w", err)
	}
	if err := s.commitTx(txController); err != nil {
		return fmt.Errorf("void favor: failed to commit transaction: %w", err)
	}

	slog.Info("favor voided", "favor_id", favorID, "item_id", favor.ItemID)
	return nil
}

// UpdateFavor toggles reimbursement, optionally correcting the amount.
func (s *listService) UpdateFavor(ctx context.Context, favorID int64, reimbursed bool, amount *decimal.Decimal) (*domain.Favor, error) {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("update favor: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("update favor: transaction controller does not implement DBExecutor")
	}

	favor, err := s.favorRepo.GetFavorForUpdate(ctx, txExecutor, favorID)
	if err != nil {
		return nil, fmt.Errorf("update favor: %w", err)
	}
	if err := ledger.ApplyReimbursement(favor, reimbursed, amount, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := s.favorRepo.UpdateFavor(ctx, txExecutor, favor); err != nil {
		return nil, fmt.Errorf("update favor: %w", err)
	}
	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("update favor: failed to commit transaction: %w", err)
	}
	return favor, nil
}
