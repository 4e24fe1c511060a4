// internal/session/session.go
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"groupcart/internal/aggregator"
	"groupcart/internal/domain"
	"groupcart/internal/gateway"
	"groupcart/internal/ledger"
	"groupcart/internal/util"
)

// Session owns the in-memory state for one signed-in user: the user, their
// group, their personal list, the merged group cart, and the favors in both
// directions. It is an explicit object with a constructor rather than
// package-level state; create one per signed-in user and drop it on logout.
//
// Every mutation calls the gateway first and only refreshes local state
// after the backend confirms, so the view never runs ahead of what was
// actually persisted: an operation either fully succeeds and refreshes, or
// fully fails, leaves state as it was, and returns the typed error.
type Session struct {
	gw gateway.Gateway

	mu       sync.Mutex
	inFlight map[string]struct{} // entity keys with an outstanding mutation

	user      *domain.User
	group     *domain.Group
	userList  []domain.ListItem
	groupCart []domain.SharedShoppingItem
	favorsFor []domain.Favor
	favorsBy  []domain.Favor
}

// New creates an empty session backed by the given gateway.
func New(gw gateway.Gateway) *Session {
	return &Session{
		gw:       gw,
		inFlight: make(map[string]struct{}),
	}
}

// begin reserves the entity key for a mutation. A second mutation against
// the same entity while one is outstanding fails fast instead of racing.
func (s *Session) begin(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[key]; busy {
		return fmt.Errorf("%w: a mutation is already in flight for %s", util.ErrConflict, key)
	}
	s.inFlight[key] = struct{}{}
	return nil
}

func (s *Session) end(key string) {
	s.mu.Lock()
	delete(s.inFlight, key)
	s.mu.Unlock()
}

func (s *Session) currentUsername() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return "", fmt.Errorf("%w: no user loaded in session", util.ErrValidation)
	}
	return s.user.Username, nil
}

// Init loads the user and, when they belong to a group, everything derived
// from it. The group must load first (the cart needs it); the remaining
// reads are independent and run concurrently.
func (s *Session) Init(ctx context.Context, username string) error {
	if err := s.LoadUser(ctx, username); err != nil {
		return err
	}

	s.mu.Lock()
	groupID := s.user.GroupID
	s.mu.Unlock()
	if groupID == "" {
		return s.LoadUserList(ctx)
	}
	if err := s.LoadGroup(ctx, groupID); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.LoadUserList(gctx) })
	g.Go(func() error { return s.LoadGroupCart(gctx) })
	g.Go(func() error { return s.LoadFavors(gctx) })
	return g.Wait()
}

// LoadUser fetches the user and makes them the session's current user.
func (s *Session) LoadUser(ctx context.Context, username string) error {
	user, err := s.gw.GetUser(ctx, username)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return nil
}

// LoadGroup fetches the group and makes it the session's current group.
func (s *Session) LoadGroup(ctx context.Context, groupID string) error {
	group, err := s.gw.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.group = group
	s.mu.Unlock()
	return nil
}

// LoadUserList refreshes the current user's personal list.
func (s *Session) LoadUserList(ctx context.Context) error {
	username, err := s.currentUsername()
	if err != nil {
		return err
	}
	items, err := s.gw.GetUserList(ctx, username)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.userList = items
	s.mu.Unlock()
	return nil
}

// LoadGroupCart refreshes the merged group cart from the backend, which
// computes it with the same aggregation the rest of this module uses.
func (s *Session) LoadGroupCart(ctx context.Context) error {
	s.mu.Lock()
	group := s.group
	s.mu.Unlock()
	if group == nil {
		return fmt.Errorf("%w: no group loaded in session", util.ErrValidation)
	}
	cart, err := s.gw.GetGroupSharedList(ctx, group.ID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.groupCart = cart
	s.mu.Unlock()
	return nil
}

// LoadFavors refreshes both favor directions for the current user. The two
// reads are independent, so they are issued concurrently.
func (s *Session) LoadFavors(ctx context.Context) error {
	username, err := s.currentUsername()
	if err != nil {
		return err
	}

	var forUser, byUser []domain.Favor
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		forUser, err = s.gw.GetFavorsFor(gctx, username)
		return err
	})
	g.Go(func() error {
		var err error
		byUser, err = s.gw.GetFavorsBy(gctx, username)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	s.mu.Lock()
	s.favorsFor = forUser
	s.favorsBy = byUser
	s.mu.Unlock()
	return nil
}

// CreateUser registers a new account and makes it the current user.
func (s *Session) CreateUser(ctx context.Context, username, firstName, lastName string) error {
	user := domain.NewUser(username, firstName, lastName)
	if user.Username == "" {
		return fmt.Errorf("%w: username is required", util.ErrValidation)
	}
	created, err := s.gw.CreateUser(ctx, *user)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.user = created
	s.mu.Unlock()
	return nil
}

// CreateGroup creates a group and loads it if the current user is a member.
func (s *Session) CreateGroup(ctx context.Context, id, name string, usernames []string) error {
	created, err := s.gw.CreateGroup(ctx, id, name, usernames)
	if err != nil {
		return err
	}
	username, err := s.currentUsername()
	if err != nil {
		return nil // no current user; nothing local to refresh
	}
	for _, member := range created.Users {
		if member == username {
			return s.LoadGroup(ctx, created.ID)
		}
	}
	return nil
}

// UpdateUserColor changes the current user's cart color.
func (s *Session) UpdateUserColor(ctx context.Context, color string) error {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: no user loaded in session", util.ErrValidation)
	}
	updated := *s.user
	s.mu.Unlock()

	updated.Color = color
	key := "user/" + updated.Username
	if err := s.begin(key); err != nil {
		return err
	}
	defer s.end(key)

	user, err := s.gw.UpdateUser(ctx, updated)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return nil
}

// CreateItem adds a want to the current user's personal list.
func (s *Session) CreateItem(ctx context.Context, item string, priority int) error {
	username, err := s.currentUsername()
	if err != nil {
		return err
	}
	if err := domain.ValidatePriority(priority); err != nil {
		return err
	}
	key := "list/" + username
	if err := s.begin(key); err != nil {
		return err
	}
	defer s.end(key)

	if _, err := s.gw.CreateListItem(ctx, username, item, priority); err != nil {
		return err
	}
	return s.LoadUserList(ctx)
}

// UpdateItem edits the text or priority of one of the user's items.
func (s *Session) UpdateItem(ctx context.Context, itemID int64, item string, priority int) error {
	username, err := s.currentUsername()
	if err != nil {
		return err
	}
	if err := domain.ValidatePriority(priority); err != nil {
		return err
	}
	key := fmt.Sprintf("item/%s/%d", username, itemID)
	if err := s.begin(key); err != nil {
		return err
	}
	defer s.end(key)

	if _, err := s.gw.UpdateListItem(ctx, username, itemID, item, priority); err != nil {
		return err
	}
	return s.LoadUserList(ctx)
}

// DeleteItem removes one of the user's items.
func (s *Session) DeleteItem(ctx context.Context, itemID int64) error {
	username, err := s.currentUsername()
	if err != nil {
		return err
	}
	key := fmt.Sprintf("item/%s/%d", username, itemID)
	if err := s.begin(key); err != nil {
		return err
	}
	defer s.end(key)

	if err := s.gw.DeleteListItem(ctx, username, itemID); err != nil {
		return err
	}
	return s.LoadUserList(ctx)
}

// FulfillItem marks another member's list item purchased by the current
// user and records the favor, in one backend transaction. On success the
// cart and both favor directions are refreshed.
func (s *Session) FulfillItem(ctx context.Context, itemID int64, item, forUser string, amount decimal.Decimal) error {
	username, err := s.currentUsername()
	if err != nil {
		return err
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: fulfillment amount must be positive, got %s", util.ErrValidation, amount)
	}

	beneficiary := domain.Slugify(forUser)
	key := fmt.Sprintf("item/%s/%d", beneficiary, itemID)
	if err := s.begin(key); err != nil {
		return err
	}
	defer s.end(key)

	_, err = s.gw.FulfillFavor(ctx, gateway.FulfillRequest{
		ItemID: itemID,
		Item:   item,
		By:     username,
		For:    beneficiary,
		Amount: amount,
	})
	if err != nil {
		return err
	}
	// A self-fulfillment changes the user's own list too.
	if beneficiary == username {
		if err := s.LoadUserList(ctx); err != nil {
			return err
		}
	}
	return s.refreshAfterLedgerChange(ctx)
}

// UnfulfillItem reverses a fulfillment: the item returns to the cart and
// the favor is voided. Fails with ErrConflict once the favor is reimbursed.
func (s *Session) UnfulfillItem(ctx context.Context, favorID int64) error {
	if favor := s.findFavor(favorID); favor != nil {
		if err := ledger.CanVoid(*favor); err != nil {
			return err
		}
	}
	key := fmt.Sprintf("favor/%d", favorID)
	if err := s.begin(key); err != nil {
		return err
	}
	defer s.end(key)

	if err := s.gw.VoidFavor(ctx, favorID); err != nil {
		return err
	}
	if err := s.LoadUserList(ctx); err != nil {
		return err
	}
	return s.refreshAfterLedgerChange(ctx)
}

// SetReimbursed toggles a favor's reimbursement flag, optionally correcting
// the amount in the same call.
func (s *Session) SetReimbursed(ctx context.Context, favorID int64, reimbursed bool, amount *decimal.Decimal) error {
	if amount != nil && amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: favor amount must be positive, got %s", util.ErrValidation, *amount)
	}
	key := fmt.Sprintf("favor/%d", favorID)
	if err := s.begin(key); err != nil {
		return err
	}
	defer s.end(key)

	if _, err := s.gw.UpdateFavor(ctx, favorID, reimbursed, amount); err != nil {
		return err
	}
	return s.LoadFavors(ctx)
}

// refreshAfterLedgerChange re-derives everything a fulfillment or voiding
// touches: the merged cart and both favor directions.
func (s *Session) refreshAfterLedgerChange(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.LoadGroupCart(gctx) })
	g.Go(func() error { return s.LoadFavors(gctx) })
	return g.Wait()
}

func (s *Session) findFavor(favorID int64) *domain.Favor {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.favorsFor {
		if s.favorsFor[i].ID == favorID {
			favor := s.favorsFor[i]
			return &favor
		}
	}
	for i := range s.favorsBy {
		if s.favorsBy[i].ID == favorID {
			favor := s.favorsBy[i]
			return &favor
		}
	}
	return nil
}

// User returns the current user, or nil before LoadUser.
func (s *Session) User() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Group returns the current group, or nil before LoadGroup.
func (s *Session) Group() *domain.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.group
}

// UserList returns the last loaded personal list.
func (s *Session) UserList() []domain.ListItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userList
}

// GroupCart returns the last loaded merged cart.
func (s *Session) GroupCart() []domain.SharedShoppingItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.groupCart
}

// FavorsFor returns favors done for the current user.
func (s *Session) FavorsFor() []domain.Favor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.favorsFor
}

// FavorsBy returns favors the current user purchased.
func (s *Session) FavorsBy() []domain.Favor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.favorsBy
}

// Balances recomputes the user's position from the currently loaded favors.
// Always derived on read, never cached across mutations.
func (s *Session) Balances() domain.Balance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ledger.ComputeBalances(s.favorsFor, s.favorsBy)
}

// Requesters resolves display names and colors for every member needing a
// cart entry. Lookups for distinct users run concurrently; a failed lookup
// degrades to the raw username with the group color fallback rather than
// failing the whole view, since that failure is cosmetic.
func (s *Session) Requesters(ctx context.Context, item domain.SharedShoppingItem) []domain.Requester {
	s.mu.Lock()
	group := s.group
	s.mu.Unlock()

	requesters := make([]domain.Requester, len(item.NeededBy))
	var wg sync.WaitGroup
	for i, username := range item.NeededBy {
		requesters[i] = domain.Requester{
			Username:    username,
			DisplayName: username,
			Color:       aggregator.ResolveColor(group, username),
		}
		wg.Add(1)
		go func(i int, username string) {
			defer wg.Done()
			user, err := s.gw.GetUser(ctx, username)
			if err != nil {
				slog.Debug("requester lookup failed, showing raw identifier",
					"username", username, "error", err)
				return
			}
			requesters[i].DisplayName = user.DisplayName()
			if user.Color != "" {
				requesters[i].Color = user.Color
			}
		}(i, username)
	}
	wg.Wait()
	return requesters
}
