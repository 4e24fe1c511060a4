// internal/aggregator/aggregator.go
package aggregator

import (
	"slices"

	"groupcart/internal/domain"
)

// FallbackColor is used when a member has no entry in Group.UserColors yet,
// which can happen in the window between joining a group and the color map
// catching up. A missing color must never fail the view.
const FallbackColor = "#808080"

// Aggregate folds the members' currently unfulfilled list items into the
// merged group cart, grouping by exact item text (case-sensitive, no fuzzy
// matching). Members are scanned in the given order; output rows appear in
// the order their item text was first encountered, ItemIDs preserve
// per-member then member order, and NeededBy preserves first-seen requester
// order. The result is fully determined by the inputs: identical inputs
// yield identical output, ordering included.
//
// Fulfilled items are skipped, so an item drops out of the cart on the
// aggregation after its fulfillment. The cart is always recomputed from
// scratch, never patched incrementally.
func Aggregate(members []string, lists map[string][]domain.ListItem) []domain.SharedShoppingItem {
	var cart []domain.SharedShoppingItem
	index := make(map[string]int)

	for _, member := range members {
		for _, item := range lists[member] {
			if item.Fulfilled {
				continue
			}
			i, seen := index[item.Item]
			if !seen {
				i = len(cart)
				index[item.Item] = i
				cart = append(cart, domain.SharedShoppingItem{Item: item.Item})
			}
			entry := &cart[i]
			entry.ItemIDs = append(entry.ItemIDs, item.ID)
			if !slices.Contains(entry.NeededBy, member) {
				entry.NeededBy = append(entry.NeededBy, member)
			}
		}
	}
	return cart
}

// ResolveColor returns the member's color from the group's color map, or
// FallbackColor when the group or the entry is missing.
func ResolveColor(group *domain.Group, username string) string {
	if group != nil {
		if color, ok := group.UserColors[username]; ok && color != "" {
			return color
		}
	}
	return FallbackColor
}
