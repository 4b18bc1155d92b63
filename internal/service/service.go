// Package service holds the business rules between the HTTP layer and the store:
// registration and login, profile updates, and every list, item and sharing
// operation gated by the access package.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/patric-chuzhbe/shoplist/internal/access"
	"github.com/patric-chuzhbe/shoplist/internal/db/storage"
	"github.com/patric-chuzhbe/shoplist/internal/models"
	"github.com/patric-chuzhbe/shoplist/internal/user"
)

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrUserNotFound        = fmt.Errorf("user not found: %w", storage.ErrNotFound)
	ErrItemNotFound        = fmt.Errorf("list item not found: %w", storage.ErrNotFound)
	ErrParticipantNotFound = fmt.Errorf("participant not found: %w", storage.ErrNotFound)
	ErrUsernameTaken       = fmt.Errorf("username already taken: %w", storage.ErrConflict)
	ErrEmailTaken          = fmt.Errorf("email already taken: %w", storage.ErrConflict)
	ErrSelfShare           = fmt.Errorf("a list cannot be shared with its owner: %w", storage.ErrConflict)
	ErrAlreadyShared       = fmt.Errorf("the list is already shared with this user: %w", storage.ErrConflict)
	ErrNothingToUpdate     = fmt.Errorf("nothing to update: %w", storage.ErrInvalidArgument)
)

type Service struct {
	db           storage.Storage
	passwordCost int
}

type initOptions struct {
	passwordCost int
}

type InitOption func(*initOptions)

// WithPasswordCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func WithPasswordCost(cost int) InitOption {
	return func(options *initOptions) {
		options.passwordCost = cost
	}
}

func New(db storage.Storage, optionsProto ...InitOption) *Service {
	options := &initOptions{
		passwordCost: bcrypt.DefaultCost,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	return &Service{
		db:           db,
		passwordCost: options.passwordCost,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account and returns it. Username and email must be unused.
func (s *Service) Register(ctx context.Context, request models.RegisterRequest) (*user.User, error) {
	username := strings.TrimSpace(request.Username)
	email := normalizeEmail(request.Email)

	_, found, err := s.db.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if found {
		return nil, ErrUsernameTaken
	}

	_, found, err = s.db.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if found {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(request.Password), s.passwordCost)
	if err != nil {
		return nil, fmt.Errorf("in internal/service/service.go/Register(): error while `bcrypt.GenerateFromPassword()` calling: %w", err)
	}

	return s.db.CreateUser(ctx, &user.User{
		Username:  username,
		Password:  string(hash),
		Name:      strings.TrimSpace(request.Name),
		Email:     email,
		AvatarURL: user.NullIfEmpty(request.AvatarURL),
	})
}

// Login checks the credentials. Unknown email and wrong password are indistinguishable.
func (s *Service) Login(ctx context.Context, request models.LoginRequest) (*user.User, error) {
	usr, found, err := s.db.GetUserByEmail(ctx, normalizeEmail(request.Email))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(usr.Password), []byte(request.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return usr, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (*user.User, error) {
	usr, found, err := s.db.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrUserNotFound
	}

	return usr, nil
}

// UpdateProfile lets a user change their own profile only.
func (s *Service) UpdateProfile(ctx context.Context, actorID, targetID int64, patch user.Patch) (*user.User, error) {
	if actorID != targetID {
		return nil, access.ErrForbidden
	}
	if patch.IsEmpty() {
		return nil, ErrNothingToUpdate
	}
	if patch.Email != nil {
		email := normalizeEmail(*patch.Email)
		patch.Email = &email
	}

	usr, err := s.db.UpdateUser(ctx, targetID, patch)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUserNotFound
	}

	return usr, err
}

func (s *Service) GetUserLists(ctx context.Context, userID int64) ([]models.ShoppingList, error) {
	return s.db.GetUserLists(ctx, userID)
}

func (s *Service) CreateList(ctx context.Context, userID int64, request models.CreateListRequest) (*models.ShoppingList, error) {
	return s.db.CreateList(ctx, request.List(userID))
}

func (s *Service) GetList(ctx context.Context, userID, listID int64) (*models.ShoppingList, error) {
	return access.RequireAccess(ctx, s.db, userID, listID)
}

func (s *Service) UpdateList(
	ctx context.Context,
	userID, listID int64,
	patch models.ListPatch,
) (*models.ShoppingList, error) {
	if _, err := access.RequireOwner(ctx, s.db, userID, listID); err != nil {
		return nil, err
	}

	return s.db.UpdateList(ctx, listID, patch)
}

func (s *Service) DeleteList(ctx context.Context, userID, listID int64) error {
	if _, err := access.RequireOwner(ctx, s.db, userID, listID); err != nil {
		return err
	}

	return s.db.DeleteList(ctx, listID)
}

func (s *Service) GetListItems(ctx context.Context, userID, listID int64) ([]models.ListItem, error) {
	if _, err := access.RequireAccess(ctx, s.db, userID, listID); err != nil {
		return nil, err
	}

	return s.db.GetListItems(ctx, listID)
}

func (s *Service) CreateListItem(
	ctx context.Context,
	userID, listID int64,
	request models.CreateItemRequest,
) (*models.ListItem, error) {
	if _, err := access.RequireAccess(ctx, s.db, userID, listID); err != nil {
		return nil, err
	}

	return s.db.CreateListItem(ctx, request.Item(listID))
}

// listItem returns the item only when it belongs to listID.
func (s *Service) listItem(ctx context.Context, listID, itemID int64) (*models.ListItem, bool, error) {
	item, found, err := s.db.GetListItem(ctx, itemID)
	if err != nil || !found {
		return nil, false, err
	}
	if item.ListID != listID {
		return nil, false, nil
	}

	return item, true, nil
}

func (s *Service) UpdateListItem(
	ctx context.Context,
	userID, listID, itemID int64,
	patch models.ItemPatch,
) (*models.ListItem, error) {
	if _, err := access.RequireAccess(ctx, s.db, userID, listID); err != nil {
		return nil, err
	}

	_, found, err := s.listItem(ctx, listID, itemID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrItemNotFound
	}

	item, err := s.db.UpdateListItem(ctx, itemID, patch)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrItemNotFound
	}

	return item, err
}

// DeleteListItem is idempotent: a missing item is not an error.
// An item of another list is reported as not found.
func (s *Service) DeleteListItem(ctx context.Context, userID, listID, itemID int64) error {
	if _, err := access.RequireAccess(ctx, s.db, userID, listID); err != nil {
		return err
	}

	item, found, err := s.db.GetListItem(ctx, itemID)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	if item.ListID != listID {
		return ErrItemNotFound
	}

	return s.db.DeleteListItem(ctx, itemID)
}

func (s *Service) GetListParticipants(ctx context.Context, userID, listID int64) ([]user.User, error) {
	if _, err := access.RequireAccess(ctx, s.db, userID, listID); err != nil {
		return nil, err
	}

	return s.db.GetListParticipants(ctx, listID)
}

// ShareList grants the user registered with email access to the list.
func (s *Service) ShareList(ctx context.Context, ownerID, listID int64, email string) (*models.ListParticipant, error) {
	list, err := access.RequireOwner(ctx, s.db, ownerID, listID)
	if err != nil {
		return nil, err
	}

	target, found, err := s.db.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrUserNotFound
	}
	if access.IsOwner(list, target.ID) {
		return nil, ErrSelfShare
	}

	shared, err := s.db.IsListSharedWithUser(ctx, listID, target.ID)
	if err != nil {
		return nil, err
	}
	if shared {
		return nil, ErrAlreadyShared
	}

	participant, err := s.db.AddListParticipant(ctx, &models.ListParticipant{
		ListID: listID,
		UserID: target.ID,
	})
	if errors.Is(err, storage.ErrConflict) {
		// Lost a race with a concurrent share of the same pair.
		return nil, ErrAlreadyShared
	}

	return participant, err
}

// RemoveParticipant revokes the access of participantUserID to the list.
func (s *Service) RemoveParticipant(ctx context.Context, ownerID, listID, participantUserID int64) error {
	if _, err := access.RequireOwner(ctx, s.db, ownerID, listID); err != nil {
		return err
	}

	participant, found, err := s.db.GetListParticipant(ctx, listID, participantUserID)
	if err != nil {
		return err
	}
	if !found {
		return ErrParticipantNotFound
	}

	return s.db.RemoveListParticipant(ctx, participant.ID)
}

// GetStats returns entity counters for the internal stats endpoint.
func (s *Service) GetStats(ctx context.Context) (models.Stats, error) {
	return s.db.GetStats(ctx)
}

// Ping checks the health of the storage layer.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
