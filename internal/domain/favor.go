// internal/domain/favor.go
package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"groupcart/internal/util"
)

// Favor records one user purchasing a list item on behalf of another.
// It is created exactly once per fulfillment, atomically with marking the
// source item fulfilled, and is the permanent record of the transaction:
// the only mutation ever applied afterwards is the reimbursement toggle
// (with an optional amount correction), and the only removal path is
// voiding before reimbursement.
//
// Invariant: ReimbursedAt is set exactly when Reimbursed is true.
type Favor struct {
	ID           int64           `db:"id" json:"id"`
	ItemID       int64           `db:"item_id" json:"itemId"`
	Item         string          `db:"item" json:"item"` // Snapshot of the item text at fulfillment time
	FulfilledAt  time.Time       `db:"fulfilled_at" json:"fulfilledAt"`
	For          string          `db:"for_user" json:"for"` // Beneficiary: who wanted the item
	By           string          `db:"by_user" json:"by"`   // Purchaser: who bought it
	Reimbursed   bool            `db:"reimbursed" json:"reimbursed"`
	ReimbursedAt *time.Time      `db:"reimbursed_at" json:"reimbursedAt"`
	Amount       decimal.Decimal `db:"amount" json:"amount"`
}

// NewFavor creates an unreimbursed favor. The amount must be positive.
func NewFavor(itemID int64, item, by, forUser string, amount decimal.Decimal) (*Favor, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: favor amount must be positive, got %s", util.ErrValidation, amount)
	}
	return &Favor{
		ItemID:      itemID,
		Item:        item,
		By:          Slugify(by),
		For:         Slugify(forUser),
		FulfilledAt: time.Now().UTC(),
		Amount:      amount,
	}, nil
}
