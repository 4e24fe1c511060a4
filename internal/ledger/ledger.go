// internal/ledger/ledger.go
package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"groupcart/internal/domain"
	"groupcart/internal/util"
)

// This package holds the favor lifecycle rules. It is pure: no I/O, no
// clocks of its own, no state. Both the client session store and the
// reference backend apply the same rules through it, so the two sides of
// the wire can never disagree about what a legal transition is.

// ValidateFulfillment rejects fulfilling an already-fulfilled item or a
// non-positive amount.
func ValidateFulfillment(item domain.ListItem, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: fulfillment amount must be positive, got %s", util.ErrValidation, amount)
	}
	if item.Fulfilled {
		return fmt.Errorf("%w: item %d is already fulfilled", util.ErrValidation, item.ID)
	}
	return nil
}

// Fulfill marks the item purchased by the given user. The favor ID ties the
// item to the ledger record created alongside it; callers must persist the
// item and the favor in a single transaction.
func Fulfill(item *domain.ListItem, by string, favorID int64, now time.Time) {
	item.Fulfilled = true
	item.FulfilledBy = &by
	item.FulfilledAt = &now
	item.FavorID = &favorID
}

// Unfulfill clears the fulfillment fields, returning the item to the group
// cart on the next aggregation.
func Unfulfill(item *domain.ListItem) {
	item.Fulfilled = false
	item.FulfilledBy = nil
	item.FulfilledAt = nil
	item.FavorID = nil
}

// CanVoid reports whether the favor may still be reversed. Once reimbursed,
// money has notionally changed hands and the favor is frozen.
func CanVoid(favor domain.Favor) error {
	if favor.Reimbursed {
		return fmt.Errorf("%w: favor %d is already reimbursed", util.ErrConflict, favor.ID)
	}
	return nil
}

// ApplyReimbursement toggles the reimbursement flag, stamping or clearing
// ReimbursedAt, and optionally corrects the amount in the same step. Unlike
// voiding, the toggle is reversible in both directions: it is a bookkeeping
// acknowledgment, not an irreversible business event.
func ApplyReimbursement(favor *domain.Favor, reimbursed bool, amount *decimal.Decimal, now time.Time) error {
	if amount != nil {
		if amount.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%w: favor amount must be positive, got %s", util.ErrValidation, *amount)
		}
		favor.Amount = *amount
	}
	favor.Reimbursed = reimbursed
	if reimbursed {
		favor.ReimbursedAt = &now
	} else {
		favor.ReimbursedAt = nil
	}
	return nil
}

// ComputeBalances derives a user's reimbursement position. favorsFor are
// favors done for the user (they owe the purchasers); favorsBy are favors
// the user purchased (owed back to them). Only unreimbursed favors count.
// The result is recomputed from the inputs on every call, never cached.
func ComputeBalances(favorsFor, favorsBy []domain.Favor) domain.Balance {
	balance := domain.Balance{OwedByMe: decimal.Zero, OwedToMe: decimal.Zero}
	for _, favor := range favorsFor {
		if !favor.Reimbursed {
			balance.OwedByMe = balance.OwedByMe.Add(favor.Amount)
		}
	}
	for _, favor := range favorsBy {
		if !favor.Reimbursed {
			balance.OwedToMe = balance.OwedToMe.Add(favor.Amount)
		}
	}
	return balance
}
