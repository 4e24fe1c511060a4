// internal/session/session_test.go
package session

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"groupcart/internal/domain"
	"groupcart/internal/gateway"
	"groupcart/internal/util"
)

// MockGateway is a mock implementation of gateway.Gateway.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) GetUser(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockGateway) CreateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockGateway) UpdateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockGateway) GetGroup(ctx context.Context, id string) (*domain.Group, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Group), args.Error(1)
}

func (m *MockGateway) CreateGroup(ctx context.Context, id, name string, usernames []string) (*domain.Group, error) {
	args := m.Called(ctx, id, name, usernames)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Group), args.Error(1)
}

func (m *MockGateway) GetUserList(ctx context.Context, username string) ([]domain.ListItem, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ListItem), args.Error(1)
}

func (m *MockGateway) CreateListItem(ctx context.Context, username, item string, priority int) (*domain.ListItem, error) {
	args := m.Called(ctx, username, item, priority)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ListItem), args.Error(1)
}

func (m *MockGateway) UpdateListItem(ctx context.Context, username string, itemID int64, item string, priority int) (*domain.ListItem, error) {
	args := m.Called(ctx, username, itemID, item, priority)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ListItem), args.Error(1)
}

func (m *MockGateway) DeleteListItem(ctx context.Context, username string, itemID int64) error {
	args := m.Called(ctx, username, itemID)
	return args.Error(0)
}

func (m *MockGateway) GetGroupSharedList(ctx context.Context, groupID string) ([]domain.SharedShoppingItem, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SharedShoppingItem), args.Error(1)
}

func (m *MockGateway) GetFavorsFor(ctx context.Context, username string) ([]domain.Favor, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Favor), args.Error(1)
}

func (m *MockGateway) GetFavorsBy(ctx context.Context, username string) ([]domain.Favor, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Favor), args.Error(1)
}

func (m *MockGateway) FulfillFavor(ctx context.Context, req gateway.FulfillRequest) (*domain.Favor, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Favor), args.Error(1)
}

func (m *MockGateway) VoidFavor(ctx context.Context, favorID int64) error {
	args := m.Called(ctx, favorID)
	return args.Error(0)
}

func (m *MockGateway) UpdateFavor(ctx context.Context, favorID int64, reimbursed bool, amount *decimal.Decimal) (*domain.Favor, error) {
	args := m.Called(ctx, favorID, reimbursed, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Favor), args.Error(1)
}

func TestSessionInit(t *testing.T) {
	t.Run("UserWithGroup", func(t *testing.T) {
		ctx := context.Background()
		gw := new(MockGateway)
		bob := &domain.User{Username: "bob", FirstName: "Bob", GroupID: "flat", Color: "#00ff00"}
		flat := &domain.Group{ID: "flat", Name: "The Flat", Users: []string{"alice", "bob"},
			UserColors: map[string]string{"alice": "#ff0000", "bob": "#00ff00"}}
		cart := []domain.SharedShoppingItem{{Item: "Bread", ItemIDs: []int64{5}, NeededBy: []string{"alice"}}}

		gw.On("GetUser", mock.Anything, "bob").Return(bob, nil).Once()
		gw.On("GetGroup", mock.Anything, "flat").Return(flat, nil).Once()
		gw.On("GetUserList", mock.Anything, "bob").Return([]domain.ListItem{}, nil).Once()
		gw.On("GetGroupSharedList", mock.Anything, "flat").Return(cart, nil).Once()
		gw.On("GetFavorsFor", mock.Anything, "bob").Return([]domain.Favor{}, nil).Once()
		gw.On("GetFavorsBy", mock.Anything, "bob").Return([]domain.Favor{}, nil).Once()

		s := New(gw)
		require.NoError(t, s.Init(ctx, "bob"))

		assert.Equal(t, "bob", s.User().Username)
		assert.Equal(t, "flat", s.Group().ID)
		assert.Equal(t, cart, s.GroupCart())
		gw.AssertExpectations(t)
	})

	t.Run("UserWithoutGroup", func(t *testing.T) {
		ctx := context.Background()
		gw := new(MockGateway)
		solo := &domain.User{Username: "carol", Color: domain.DefaultColor}

		gw.On("GetUser", mock.Anything, "carol").Return(solo, nil).Once()
		gw.On("GetUserList", mock.Anything, "carol").Return([]domain.ListItem{}, nil).Once()

		s := New(gw)
		require.NoError(t, s.Init(ctx, "carol"))

		assert.Nil(t, s.Group())
		gw.AssertNotCalled(t, "GetGroup", mock.Anything, mock.Anything)
		gw.AssertExpectations(t)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		ctx := context.Background()
		gw := new(MockGateway)
		gw.On("GetUser", mock.Anything, "ghost").Return(nil, util.ErrNotFound).Once()

		s := New(gw)
		err := s.Init(ctx, "ghost")

		assert.ErrorIs(t, err, util.ErrNotFound)
		assert.Nil(t, s.User())
		gw.AssertExpectations(t)
	})
}

// Bob sees Bread on the cart needed by alice, buys it for 2.20, and after
// the refresh the cart no longer lists Bread while bob's side of the ledger
// shows 2.20 owed to him.
func TestSessionFulfillItem(t *testing.T) {
	ctx := context.Background()
	amount := decimal.NewFromFloat(2.20)

	newSession := func(gw *MockGateway) *Session {
		s := New(gw)
		s.user = &domain.User{Username: "bob", GroupID: "flat"}
		s.group = &domain.Group{ID: "flat", Users: []string{"alice", "bob"}}
		s.groupCart = []domain.SharedShoppingItem{{Item: "Bread", ItemIDs: []int64{5}, NeededBy: []string{"alice"}}}
		return s
	}

	t.Run("Success", func(t *testing.T) {
		gw := new(MockGateway)
		s := newSession(gw)

		favor := &domain.Favor{ID: 9, ItemID: 5, Item: "Bread", By: "bob", For: "alice", Amount: amount}
		gw.On("FulfillFavor", mock.Anything, gateway.FulfillRequest{
			ItemID: 5, Item: "Bread", By: "bob", For: "alice", Amount: amount,
		}).Return(favor, nil).Once()
		gw.On("GetGroupSharedList", mock.Anything, "flat").Return([]domain.SharedShoppingItem{}, nil).Once()
		gw.On("GetFavorsFor", mock.Anything, "bob").Return([]domain.Favor{}, nil).Once()
		gw.On("GetFavorsBy", mock.Anything, "bob").Return([]domain.Favor{*favor}, nil).Once()

		require.NoError(t, s.FulfillItem(ctx, 5, "Bread", "Alice", amount))

		assert.Empty(t, s.GroupCart(), "fulfilled item left the cart")
		balance := s.Balances()
		assert.True(t, balance.OwedToMe.Equal(amount))
		assert.True(t, balance.OwedByMe.IsZero())
		gw.AssertExpectations(t)
	})

	// Buying something off one's own list changes the personal list too, so
	// the refresh must include it, not just the cart and the favors.
	t.Run("SelfFulfillmentRefreshesOwnList", func(t *testing.T) {
		gw := new(MockGateway)
		s := newSession(gw)
		by := "bob"
		s.userList = []domain.ListItem{{ID: 7, Owner: "bob", Item: "Coffee", Priority: 1}}

		favor := &domain.Favor{ID: 11, ItemID: 7, Item: "Coffee", By: "bob", For: "bob", Amount: amount}
		gw.On("FulfillFavor", mock.Anything, gateway.FulfillRequest{
			ItemID: 7, Item: "Coffee", By: "bob", For: "bob", Amount: amount,
		}).Return(favor, nil).Once()
		gw.On("GetUserList", mock.Anything, "bob").Return([]domain.ListItem{
			{ID: 7, Owner: "bob", Item: "Coffee", Priority: 1, Fulfilled: true, FulfilledBy: &by},
		}, nil).Once()
		gw.On("GetGroupSharedList", mock.Anything, "flat").Return([]domain.SharedShoppingItem{}, nil).Once()
		gw.On("GetFavorsFor", mock.Anything, "bob").Return([]domain.Favor{*favor}, nil).Once()
		gw.On("GetFavorsBy", mock.Anything, "bob").Return([]domain.Favor{*favor}, nil).Once()

		require.NoError(t, s.FulfillItem(ctx, 7, "Coffee", "Bob", amount))

		require.Len(t, s.UserList(), 1)
		assert.True(t, s.UserList()[0].Fulfilled, "own list reflects the purchase immediately")
		gw.AssertExpectations(t)
	})

	t.Run("NonPositiveAmount", func(t *testing.T) {
		gw := new(MockGateway)
		s := newSession(gw)

		err := s.FulfillItem(ctx, 5, "Bread", "alice", decimal.Zero)

		assert.ErrorIs(t, err, util.ErrValidation)
		gw.AssertNotCalled(t, "FulfillFavor", mock.Anything, mock.Anything)
	})

	t.Run("BackendRejectionLeavesStateUntouched", func(t *testing.T) {
		gw := new(MockGateway)
		s := newSession(gw)
		before := s.GroupCart()

		gw.On("FulfillFavor", mock.Anything, mock.Anything).Return(nil, util.ErrValidation).Once()

		err := s.FulfillItem(ctx, 5, "Bread", "alice", amount)

		assert.ErrorIs(t, err, util.ErrValidation)
		assert.Equal(t, before, s.GroupCart(), "no refresh after a failed mutation")
		gw.AssertNotCalled(t, "GetGroupSharedList", mock.Anything, mock.Anything)
		gw.AssertExpectations(t)
	})
}

func TestSessionUnfulfillItem(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		gw := new(MockGateway)
		s := New(gw)
		s.user = &domain.User{Username: "alice", GroupID: "flat"}
		s.group = &domain.Group{ID: "flat", Users: []string{"alice", "bob"}}
		s.favorsFor = []domain.Favor{{ID: 9, ItemID: 5, Item: "Bread", By: "bob", For: "alice", Amount: decimal.NewFromFloat(2.20)}}

		gw.On("VoidFavor", mock.Anything, int64(9)).Return(nil).Once()
		gw.On("GetUserList", mock.Anything, "alice").Return([]domain.ListItem{{ID: 5, Owner: "alice", Item: "Bread", Priority: 2}}, nil).Once()
		gw.On("GetGroupSharedList", mock.Anything, "flat").Return([]domain.SharedShoppingItem{
			{Item: "Bread", ItemIDs: []int64{5}, NeededBy: []string{"alice"}},
		}, nil).Once()
		gw.On("GetFavorsFor", mock.Anything, "alice").Return([]domain.Favor{}, nil).Once()
		gw.On("GetFavorsBy", mock.Anything, "alice").Return([]domain.Favor{}, nil).Once()

		require.NoError(t, s.UnfulfillItem(ctx, 9))

		require.Len(t, s.GroupCart(), 1)
		assert.Equal(t, "Bread", s.GroupCart()[0].Item)
		assert.True(t, s.Balances().OwedByMe.IsZero())
		gw.AssertExpectations(t)
	})

	t.Run("ReimbursedFavorRefusedLocally", func(t *testing.T) {
		gw := new(MockGateway)
		s := New(gw)
		s.user = &domain.User{Username: "alice"}
		s.favorsFor = []domain.Favor{{ID: 9, Reimbursed: true, Amount: decimal.NewFromFloat(2.20)}}

		err := s.UnfulfillItem(ctx, 9)

		assert.ErrorIs(t, err, util.ErrConflict)
		gw.AssertNotCalled(t, "VoidFavor", mock.Anything, mock.Anything)
	})
}

func TestSessionSetReimbursed(t *testing.T) {
	ctx := context.Background()
	gw := new(MockGateway)
	s := New(gw)
	s.user = &domain.User{Username: "alice"}
	amount := decimal.NewFromFloat(2.20)
	s.favorsFor = []domain.Favor{{ID: 9, By: "bob", For: "alice", Amount: amount}}

	reimbursed := domain.Favor{ID: 9, By: "bob", For: "alice", Amount: amount, Reimbursed: true}
	gw.On("UpdateFavor", mock.Anything, int64(9), true, (*decimal.Decimal)(nil)).Return(&reimbursed, nil).Once()
	gw.On("GetFavorsFor", mock.Anything, "alice").Return([]domain.Favor{reimbursed}, nil).Once()
	gw.On("GetFavorsBy", mock.Anything, "alice").Return([]domain.Favor{}, nil).Once()

	require.NoError(t, s.SetReimbursed(ctx, 9, true, nil))

	// The reimbursed favor stays in history but drops out of the balance.
	require.Len(t, s.FavorsFor(), 1)
	assert.True(t, s.FavorsFor()[0].Reimbursed)
	assert.True(t, s.Balances().OwedByMe.IsZero())
	gw.AssertExpectations(t)
}

func TestSessionRejectsConcurrentMutationOnSameEntity(t *testing.T) {
	ctx := context.Background()
	gw := new(MockGateway)
	s := New(gw)
	s.user = &domain.User{Username: "bob", GroupID: "flat"}
	s.group = &domain.Group{ID: "flat"}

	entered := make(chan struct{})
	release := make(chan struct{})
	favor := &domain.Favor{ID: 9, ItemID: 5, Amount: decimal.NewFromFloat(1)}
	gw.On("FulfillFavor", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		close(entered)
		<-release
	}).Return(favor, nil).Once()
	gw.On("GetGroupSharedList", mock.Anything, "flat").Return([]domain.SharedShoppingItem{}, nil).Once()
	gw.On("GetFavorsFor", mock.Anything, "bob").Return([]domain.Favor{}, nil).Once()
	gw.On("GetFavorsBy", mock.Anything, "bob").Return([]domain.Favor{}, nil).Once()

	done := make(chan error, 1)
	go func() {
		done <- s.FulfillItem(ctx, 5, "Bread", "alice", decimal.NewFromFloat(1))
	}()
	<-entered

	// Same item, mutation still in flight: fail fast instead of racing.
	err := s.FulfillItem(ctx, 5, "Bread", "alice", decimal.NewFromFloat(1))
	assert.ErrorIs(t, err, util.ErrConflict)

	close(release)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("first mutation never finished")
	}
	gw.AssertExpectations(t)
}

func TestSessionRequesters(t *testing.T) {
	ctx := context.Background()
	gw := new(MockGateway)
	s := New(gw)
	s.group = &domain.Group{ID: "flat", Users: []string{"alice", "bob"},
		UserColors: map[string]string{"alice": "#ff0000"}}

	gw.On("GetUser", mock.Anything, "alice").Return(
		&domain.User{Username: "alice", FirstName: "Alice", LastName: "Smith", Color: "#ff0000"}, nil).Once()
	// bob's lookup fails; the view degrades instead of erroring.
	gw.On("GetUser", mock.Anything, "bob").Return(nil, util.ErrNetwork).Once()

	requesters := s.Requesters(ctx, domain.SharedShoppingItem{
		Item: "Milk", ItemIDs: []int64{1, 3}, NeededBy: []string{"alice", "bob"},
	})

	require.Len(t, requesters, 2)
	assert.Equal(t, domain.Requester{Username: "alice", DisplayName: "Alice Smith", Color: "#ff0000"}, requesters[0])
	assert.Equal(t, domain.Requester{Username: "bob", DisplayName: "bob", Color: "#808080"}, requesters[1])
	gw.AssertExpectations(t)
}

func TestSessionCreateItem(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		gw := new(MockGateway)
		s := New(gw)
		s.user = &domain.User{Username: "alice"}

		created := &domain.ListItem{ID: 1, Owner: "alice", Item: "Milk", Priority: domain.PriorityHigh}
		gw.On("CreateListItem", mock.Anything, "alice", "Milk", domain.PriorityHigh).Return(created, nil).Once()
		gw.On("GetUserList", mock.Anything, "alice").Return([]domain.ListItem{*created}, nil).Once()

		require.NoError(t, s.CreateItem(ctx, "Milk", domain.PriorityHigh))

		require.Len(t, s.UserList(), 1)
		assert.Equal(t, "Milk", s.UserList()[0].Item)
		gw.AssertExpectations(t)
	})

	t.Run("BadPriority", func(t *testing.T) {
		gw := new(MockGateway)
		s := New(gw)
		s.user = &domain.User{Username: "alice"}

		err := s.CreateItem(ctx, "Milk", 0)
		assert.ErrorIs(t, err, util.ErrValidation)
		gw.AssertNotCalled(t, "CreateListItem", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("NoUserLoaded", func(t *testing.T) {
		gw := new(MockGateway)
		s := New(gw)

		err := s.CreateItem(ctx, "Milk", domain.PriorityLow)
		assert.ErrorIs(t, err, util.ErrValidation)
	})
}
