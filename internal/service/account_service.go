// internal/service/account_service.go
package service

import (
	"context"
	"fmt"

	"groupcart/internal/domain"
	"groupcart/internal/repository"
	"groupcart/internal/util"
	"groupcart/pkg/db"
)

// AccountService defines the business logic for users and groups.
// All usernames and group IDs are slug-normalized here, at the boundary,
// so every layer below works with comparable keys.
type AccountService interface {
	CreateUser(ctx context.Context, username, firstName, lastName, color string) (*domain.User, error)
	GetUser(ctx context.Context, username string) (*domain.User, error)
	UpdateUser(ctx context.Context, user domain.User) (*domain.User, error)
	CreateGroup(ctx context.Context, id, name string, usernames []string) (*domain.Group, error)
	GetGroup(ctx context.Context, id string) (*domain.Group, error)
}

// accountService implements AccountService.
type accountService struct {
	dbBeginner db.DBTxBeginner
	dbExecutor repository.DBExecutor
	userRepo   repository.UserRepository
	groupRepo  repository.GroupRepository
	beginTx    db.BeginTxFunc
	commitTx   db.CommitTxFunc
	rollbackTx db.RollbackTxFunc
}

// NewAccountService creates a new instance of AccountService.
func NewAccountService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	groupRepo repository.GroupRepository,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) AccountService {
	return &accountService{
		dbBeginner: dbBeginner,
		dbExecutor: dbExecutor,
		userRepo:   userRepo,
		groupRepo:  groupRepo,
		beginTx:    beginTx,
		commitTx:   commitTx,
		rollbackTx: rollbackTx,
	}
}

// CreateUser registers a new account under the slugified username.
func (s *accountService) CreateUser(ctx context.Context, username, firstName, lastName, color string) (*domain.User, error) {
	user := domain.NewUser(username, firstName, lastName)
	if user.Username == "" {
		return nil, fmt.Errorf("%w: username is required", util.ErrValidation)
	}
	if color != "" {
		user.Color = color
	}
	if err := s.userRepo.CreateUser(ctx, s.dbExecutor, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// GetUser retrieves a user by username.
func (s *accountService) GetUser(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.userRepo.GetUser(ctx, s.dbExecutor, domain.Slugify(username))
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdateUser applies a partial update to the user's names, color and group
// membership; empty fields keep their stored values. Joining a group updates
// the user row and the group's member list in one transaction so the two can
// never disagree.
func (s *accountService) UpdateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	user.Username = domain.Slugify(user.Username)
	user.GroupID = domain.Slugify(user.GroupID)

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("update user: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("update user: transaction controller does not implement DBExecutor")
	}

	existing, err := s.userRepo.GetUser(ctx, txExecutor, user.Username)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	// Partial update: fields omitted from the request arrive empty and must
	// keep their stored values, or a color-only change would blank the names
	// and silently drop the user from their group.
	if user.FirstName == "" {
		user.FirstName = existing.FirstName
	}
	if user.LastName == "" {
		user.LastName = existing.LastName
	}
	if user.Color == "" {
		user.Color = existing.Color
	}
	if user.GroupID == "" {
		user.GroupID = existing.GroupID
	}

	if user.GroupID != "" && user.GroupID != existing.GroupID {
		if _, err := s.groupRepo.GetGroup(ctx, txExecutor, user.GroupID); err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
		if err := s.groupRepo.AddMember(ctx, txExecutor, user.GroupID, user.Username); err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
	}

	if err := s.userRepo.UpdateUser(ctx, txExecutor, &user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("update user: failed to commit transaction: %w", err)
	}
	return &user, nil
}

// CreateGroup creates a group and, in the same transaction, points every
// named member that already has an account at it.
func (s *accountService) CreateGroup(ctx context.Context, id, name string, usernames []string) (*domain.Group, error) {
	group := domain.NewGroup(id, name, usernames)
	if group.ID == "" {
		return nil, fmt.Errorf("%w: group id is required", util.ErrValidation)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: group name is required", util.ErrValidation)
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("create group: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("create group: transaction controller does not implement DBExecutor")
	}

	if err := s.groupRepo.CreateGroup(ctx, txExecutor, group); err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}

	for _, username := range group.Users {
		member, err := s.userRepo.GetUser(ctx, txExecutor, username)
		if err != nil {
			if util.IsError(err, util.ErrNotFound) {
				continue // member without an account yet; they keep the seeded default color
			}
			return nil, fmt.Errorf("create group: %w", err)
		}
		member.GroupID = group.ID
		if err := s.userRepo.UpdateUser(ctx, txExecutor, member); err != nil {
			return nil, fmt.Errorf("create group: %w", err)
		}
		group.UserColors[member.Username] = member.Color
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("create group: failed to commit transaction: %w", err)
	}
	return group, nil
}

// GetGroup retrieves a group with UserColors composed from the member rows.
// A member without a user row simply has no color entry; readers fall back.
func (s *accountService) GetGroup(ctx context.Context, id string) (*domain.Group, error) {
	group, err := s.groupRepo.GetGroup(ctx, s.dbExecutor, domain.Slugify(id))
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}

	members, err := s.userRepo.ListByGroup(ctx, s.dbExecutor, group.ID)
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	group.UserColors = make(map[string]string, len(members))
	for _, member := range members {
		group.UserColors[member.Username] = member.Color
	}
	return group, nil
}
