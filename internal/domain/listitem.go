// internal/domain/listitem.go
package domain

import (
	"fmt"
	"strings"
	"time"

	"groupcart/internal/util"
)

// Item priorities. Anything outside this range is rejected at construction.
const (
	PriorityLow  = 1
	PriorityMid  = 2
	PriorityHigh = 3
)

// ListItem is one entry on a user's personal grocery list. IDs are assigned
// by the backend and unique per owner.
//
// Invariant: Fulfilled is true exactly when FulfilledBy and FavorID are both
// set. The fulfillment fields only change together, through the ledger.
type ListItem struct {
	ID          int64      `db:"id" json:"id"`
	Owner       string     `db:"owner" json:"owner"` // Username of the list the item belongs to
	Item        string     `db:"item" json:"item"`
	Priority    int        `db:"priority" json:"priority"`
	Added       time.Time  `db:"added" json:"added"`
	Fulfilled   bool       `db:"fulfilled" json:"fulfilled"`
	FulfilledBy *string    `db:"fulfilled_by" json:"fulfilledBy"`
	FulfilledAt *time.Time `db:"fulfilled_at" json:"fulfilledAt"`
	FavorID     *int64     `db:"favor_id" json:"favorId"`
}

// ValidatePriority rejects priorities outside {1, 2, 3}.
func ValidatePriority(priority int) error {
	if priority < PriorityLow || priority > PriorityHigh {
		return fmt.Errorf("%w: priority must be between %d and %d, got %d",
			util.ErrValidation, PriorityLow, PriorityHigh, priority)
	}
	return nil
}

// NewListItem creates an unfulfilled item for the given owner.
func NewListItem(owner, item string, priority int) (*ListItem, error) {
	if err := ValidatePriority(priority); err != nil {
		return nil, err
	}
	if strings.TrimSpace(item) == "" {
		return nil, fmt.Errorf("%w: item text is required", util.ErrValidation)
	}
	return &ListItem{
		Owner:    Slugify(owner),
		Item:     item,
		Priority: priority,
		Added:    time.Now().UTC(),
	}, nil
}
