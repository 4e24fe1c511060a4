// internal/aggregator/aggregator_test.go
package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groupcart/internal/domain"
)

func unfulfilled(id int64, owner, item string) domain.ListItem {
	return domain.ListItem{ID: id, Owner: owner, Item: item, Priority: domain.PriorityMid}
}

func fulfilled(id int64, owner, item string) domain.ListItem {
	li := unfulfilled(id, owner, item)
	li.Fulfilled = true
	return li
}

func TestAggregate(t *testing.T) {
	t.Run("MergesSharedItems", func(t *testing.T) {
		members := []string{"alice", "bob"}
		lists := map[string][]domain.ListItem{
			"alice": {unfulfilled(1, "alice", "Milk"), unfulfilled(2, "alice", "Eggs")},
			"bob":   {unfulfilled(3, "bob", "Milk")},
		}

		cart := Aggregate(members, lists)

		require.Len(t, cart, 2)
		assert.Equal(t, "Milk", cart[0].Item)
		assert.Equal(t, []int64{1, 3}, cart[0].ItemIDs)
		assert.Equal(t, []string{"alice", "bob"}, cart[0].NeededBy)
		assert.Equal(t, "Eggs", cart[1].Item)
		assert.Equal(t, []int64{2}, cart[1].ItemIDs)
		assert.Equal(t, []string{"alice"}, cart[1].NeededBy)
	})

	t.Run("CaseSensitiveGrouping", func(t *testing.T) {
		members := []string{"alice", "bob"}
		lists := map[string][]domain.ListItem{
			"alice": {unfulfilled(1, "alice", "milk")},
			"bob":   {unfulfilled(2, "bob", "Milk")},
		}

		cart := Aggregate(members, lists)

		require.Len(t, cart, 2)
		assert.Equal(t, "milk", cart[0].Item)
		assert.Equal(t, "Milk", cart[1].Item)
	})

	t.Run("SkipsFulfilledItems", func(t *testing.T) {
		members := []string{"alice", "bob"}
		lists := map[string][]domain.ListItem{
			"alice": {fulfilled(1, "alice", "Milk"), unfulfilled(2, "alice", "Eggs")},
			"bob":   {unfulfilled(3, "bob", "Milk")},
		}

		cart := Aggregate(members, lists)

		require.Len(t, cart, 2)
		assert.Equal(t, "Milk", cart[0].Item)
		assert.Equal(t, []int64{3}, cart[0].ItemIDs)
		assert.Equal(t, []string{"bob"}, cart[0].NeededBy)
	})

	t.Run("DuplicateWithinOneList", func(t *testing.T) {
		members := []string{"alice"}
		lists := map[string][]domain.ListItem{
			"alice": {unfulfilled(1, "alice", "Milk"), unfulfilled(2, "alice", "Milk")},
		}

		cart := Aggregate(members, lists)

		require.Len(t, cart, 1)
		assert.Equal(t, []int64{1, 2}, cart[0].ItemIDs)
		// The member appears once even with two entries for the same text.
		assert.Equal(t, []string{"alice"}, cart[0].NeededBy)
	})

	t.Run("MemberWithoutList", func(t *testing.T) {
		members := []string{"alice", "carol"}
		lists := map[string][]domain.ListItem{
			"alice": {unfulfilled(1, "alice", "Milk")},
		}

		cart := Aggregate(members, lists)

		require.Len(t, cart, 1)
		assert.Equal(t, []string{"alice"}, cart[0].NeededBy)
	})

	t.Run("EmptyInputs", func(t *testing.T) {
		assert.Empty(t, Aggregate(nil, nil))
		assert.Empty(t, Aggregate([]string{"alice"}, map[string][]domain.ListItem{"alice": {}}))
	})

	t.Run("Deterministic", func(t *testing.T) {
		members := []string{"bob", "alice", "carol"}
		lists := map[string][]domain.ListItem{
			"alice": {unfulfilled(1, "alice", "Milk"), unfulfilled(2, "alice", "Bread")},
			"bob":   {unfulfilled(3, "bob", "Milk"), unfulfilled(4, "bob", "Butter")},
			"carol": {unfulfilled(5, "carol", "Bread")},
		}

		first := Aggregate(members, lists)
		for i := 0; i < 50; i++ {
			assert.Equal(t, first, Aggregate(members, lists))
		}
	})
}

func TestResolveColor(t *testing.T) {
	group := &domain.Group{
		ID:         "flat",
		Users:      []string{"alice", "bob"},
		UserColors: map[string]string{"alice": "#ff0000", "bob": ""},
	}

	assert.Equal(t, "#ff0000", ResolveColor(group, "alice"))
	assert.Equal(t, FallbackColor, ResolveColor(group, "bob"), "empty entry falls back")
	assert.Equal(t, FallbackColor, ResolveColor(group, "carol"), "missing entry falls back")
	assert.Equal(t, FallbackColor, ResolveColor(nil, "alice"), "nil group falls back")
}
