// internal/gateway/gateway.go
package gateway

import (
	"context"

	"github.com/shopspring/decimal"

	"groupcart/internal/domain"
)

// Gateway is the remote contract the core depends on. It is a stateless
// translation layer: every operation maps to exactly one request against the
// backing service and resolves with a typed result or one of the util
// sentinel errors (ErrNotFound, ErrConflict, ErrValidation, ErrNetwork).
// No retries, no caching; the session store decides what to do on failure.
type Gateway interface {
	GetUser(ctx context.Context, username string) (*domain.User, error)
	CreateUser(ctx context.Context, user domain.User) (*domain.User, error)
	UpdateUser(ctx context.Context, user domain.User) (*domain.User, error)

	GetGroup(ctx context.Context, id string) (*domain.Group, error)
	CreateGroup(ctx context.Context, id, name string, usernames []string) (*domain.Group, error)

	GetUserList(ctx context.Context, username string) ([]domain.ListItem, error)
	CreateListItem(ctx context.Context, username, item string, priority int) (*domain.ListItem, error)
	UpdateListItem(ctx context.Context, username string, itemID int64, item string, priority int) (*domain.ListItem, error)
	DeleteListItem(ctx context.Context, username string, itemID int64) error

	GetGroupSharedList(ctx context.Context, groupID string) ([]domain.SharedShoppingItem, error)

	GetFavorsFor(ctx context.Context, username string) ([]domain.Favor, error)
	GetFavorsBy(ctx context.Context, username string) ([]domain.Favor, error)
	// FulfillFavor marks the item purchased and records the favor in a single
	// backend transaction, so "item done" and "favor recorded" can never
	// diverge.
	FulfillFavor(ctx context.Context, req FulfillRequest) (*domain.Favor, error)
	VoidFavor(ctx context.Context, favorID int64) error
	UpdateFavor(ctx context.Context, favorID int64, reimbursed bool, amount *decimal.Decimal) (*domain.Favor, error)
}

// FulfillRequest carries everything the backend needs to fulfill a list
// item and record the matching favor in one transaction. The item is
// addressed by beneficiary plus item ID since item IDs are per owner.
type FulfillRequest struct {
	ItemID int64           `json:"itemId"`
	Item   string          `json:"item"`
	By     string          `json:"by"`
	For    string          `json:"for"`
	Amount decimal.Decimal `json:"amount"`
}
