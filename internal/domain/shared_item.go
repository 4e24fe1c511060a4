// internal/domain/shared_item.go
package domain

import "github.com/shopspring/decimal"

// SharedShoppingItem is one row of the merged group cart: a distinct item
// text, the list item IDs contributing to it, and the members who still need
// it, both in first-seen order. It is a view recomputed from the current
// unfulfilled list items and is never persisted.
type SharedShoppingItem struct {
	Item     string   `json:"item"`
	ItemIDs  []int64  `json:"itemIds"`
	NeededBy []string `json:"neededBy"`
}

// Balance is the derived reimbursement position for one user: what they owe
// for unreimbursed favors done for them, and what they are owed for
// unreimbursed favors they purchased.
type Balance struct {
	OwedByMe decimal.Decimal `json:"owedByMe"`
	OwedToMe decimal.Decimal `json:"owedToMe"`
}

// Requester pairs a cart entry's member with display info for rendering.
type Requester struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Color       string `json:"color"`
}
