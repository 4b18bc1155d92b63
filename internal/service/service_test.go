package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/patric-chuzhbe/shoplist/internal/access"
	"github.com/patric-chuzhbe/shoplist/internal/db/memorystorage"
	"github.com/patric-chuzhbe/shoplist/internal/db/storage"
	"github.com/patric-chuzhbe/shoplist/internal/mockstorage"
	"github.com/patric-chuzhbe/shoplist/internal/models"
	"github.com/patric-chuzhbe/shoplist/internal/user"
)

func ptr[T any](value T) *T {
	return &value
}

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := memorystorage.New()
	require.NoError(t, err)

	return New(db, WithPasswordCost(bcrypt.MinCost))
}

func register(t *testing.T, s *Service, username string) *user.User {
	t.Helper()

	usr, err := s.Register(context.Background(), models.RegisterRequest{
		Username: username,
		Password: "password-" + username,
		Name:     "Name " + username,
		Email:    username + "@example.com",
	})
	require.NoError(t, err)

	return usr
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	registered, err := s.Register(ctx, models.RegisterRequest{
		Username: " alice ",
		Password: "secret123",
		Name:     "Alice",
		Email:    " Alice@Example.COM ",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", registered.Username)
	assert.Equal(t, "alice@example.com", registered.Email)
	assert.NotEqual(t, "secret123", registered.Password, "the password must be hashed")
	assert.Nil(t, registered.AvatarURL)

	loggedIn, err := s.Login(ctx, models.LoginRequest{Email: "ALICE@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, loggedIn.ID)

	_, err = s.Login(ctx, models.LoginRequest{Email: "alice@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Login(ctx, models.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Register(ctx, models.RegisterRequest{
		Username: "alice",
		Password: "secret123",
		Name:     "Other",
		Email:    "other@example.com",
	})
	assert.ErrorIs(t, err, ErrUsernameTaken)
	assert.ErrorIs(t, err, storage.ErrConflict)

	_, err = s.Register(ctx, models.RegisterRequest{
		Username: "other",
		Password: "secret123",
		Name:     "Other",
		Email:    "alice@example.com",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	alice := register(t, s, "alice")
	bob := register(t, s, "bob")

	updated, err := s.UpdateProfile(ctx, alice.ID, alice.ID, user.Patch{
		Name:      ptr("Alice Cooper"),
		AvatarURL: ptr("https://example.com/a.png"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice Cooper", updated.Name)
	assert.Equal(t, "https://example.com/a.png", *updated.AvatarURL)

	_, err = s.UpdateProfile(ctx, alice.ID, bob.ID, user.Patch{Name: ptr("Hacked")})
	assert.ErrorIs(t, err, access.ErrForbidden)

	_, err = s.UpdateProfile(ctx, alice.ID, alice.ID, user.Patch{})
	assert.ErrorIs(t, err, ErrNothingToUpdate)

	got, err := s.GetUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "Name bob", got.Name)

	_, err = s.GetUser(ctx, 999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestListOwnership(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	alice := register(t, s, "alice")
	bob := register(t, s, "bob")

	list, err := s.CreateList(ctx, alice.ID, models.CreateListRequest{Name: "Groceries"})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultListColor, list.Color)
	assert.Equal(t, alice.ID, list.OwnerID)

	_, err = s.GetList(ctx, bob.ID, list.ID)
	assert.ErrorIs(t, err, access.ErrForbidden)

	_, err = s.UpdateList(ctx, bob.ID, list.ID, models.ListPatch{Name: ptr("Mine")})
	assert.ErrorIs(t, err, access.ErrForbidden)

	_, err = s.ShareList(ctx, alice.ID, list.ID, bob.Email)
	require.NoError(t, err)

	got, err := s.GetList(ctx, bob.ID, list.ID)
	require.NoError(t, err)
	assert.Equal(t, list.ID, got.ID)

	_, err = s.UpdateList(ctx, bob.ID, list.ID, models.ListPatch{Name: ptr("Mine")})
	assert.ErrorIs(t, err, access.ErrForbidden, "participants cannot edit the list itself")

	assert.ErrorIs(t, s.DeleteList(ctx, bob.ID, list.ID), access.ErrForbidden)

	updated, err := s.UpdateList(ctx, alice.ID, list.ID, models.ListPatch{Name: ptr("Weekend")})
	require.NoError(t, err)
	assert.Equal(t, "Weekend", updated.Name)

	require.NoError(t, s.DeleteList(ctx, alice.ID, list.ID))

	_, err = s.GetList(ctx, alice.ID, list.ID)
	assert.ErrorIs(t, err, access.ErrListNotFound)
}

func TestItemsBelongToTheirList(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	alice := register(t, s, "alice")
	mallory := register(t, s, "mallory")

	alicesList, err := s.CreateList(ctx, alice.ID, models.CreateListRequest{Name: "Groceries", Color: "blue"})
	require.NoError(t, err)
	mallorysList, err := s.CreateList(ctx, mallory.ID, models.CreateListRequest{Name: "Mine"})
	require.NoError(t, err)

	item, err := s.CreateListItem(ctx, alice.ID, alicesList.ID, models.CreateItemRequest{Name: "Milk"})
	require.NoError(t, err)
	assert.Equal(t, "blue", item.Color)

	_, err = s.UpdateListItem(ctx, mallory.ID, mallorysList.ID, item.ID, models.ItemPatch{Name: ptr("Stolen")})
	assert.ErrorIs(t, err, ErrItemNotFound)

	err = s.DeleteListItem(ctx, mallory.ID, mallorysList.ID, item.ID)
	assert.ErrorIs(t, err, ErrItemNotFound)

	_, err = s.GetListItems(ctx, mallory.ID, alicesList.ID)
	assert.ErrorIs(t, err, access.ErrForbidden)

	items, err := s.GetListItems(ctx, alice.ID, alicesList.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Milk", items[0].Name)

	require.NoError(t, s.DeleteListItem(ctx, alice.ID, alicesList.ID, item.ID))
	assert.NoError(t, s.DeleteListItem(ctx, alice.ID, alicesList.ID, item.ID), "deleting twice is fine")
}

func TestShareList(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	alice := register(t, s, "alice")
	bob := register(t, s, "bob")
	carol := register(t, s, "carol")

	list, err := s.CreateList(ctx, alice.ID, models.CreateListRequest{Name: "Groceries"})
	require.NoError(t, err)

	participant, err := s.ShareList(ctx, alice.ID, list.ID, " BOB@example.com")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, participant.UserID)
	assert.Equal(t, list.ID, participant.ListID)

	_, err = s.ShareList(ctx, alice.ID, list.ID, bob.Email)
	assert.ErrorIs(t, err, ErrAlreadyShared)
	assert.ErrorIs(t, err, storage.ErrConflict)

	_, err = s.ShareList(ctx, alice.ID, list.ID, alice.Email)
	assert.ErrorIs(t, err, ErrSelfShare)
	assert.ErrorIs(t, err, storage.ErrConflict)

	_, err = s.ShareList(ctx, alice.ID, list.ID, "ghost@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = s.ShareList(ctx, bob.ID, list.ID, carol.Email)
	assert.ErrorIs(t, err, access.ErrForbidden, "only the owner shares")

	participants, err := s.GetListParticipants(ctx, bob.ID, list.ID)
	require.NoError(t, err)
	require.Len(t, participants, 1)
	assert.Equal(t, bob.ID, participants[0].ID)

	assert.ErrorIs(t, s.RemoveParticipant(ctx, bob.ID, list.ID, bob.ID), access.ErrForbidden)
	require.NoError(t, s.RemoveParticipant(ctx, alice.ID, list.ID, bob.ID))
	assert.ErrorIs(t, s.RemoveParticipant(ctx, alice.ID, list.ID, bob.ID), ErrParticipantNotFound)

	_, err = s.GetList(ctx, bob.ID, list.ID)
	assert.ErrorIs(t, err, access.ErrForbidden)
}

func TestStoreFailuresPropagate(t *testing.T) {
	ctx := context.Background()
	failure := errors.New("database is down")

	store := &mockstorage.StorageMock{}
	store.On("GetUserLists", mock.Anything, int64(1)).Return(nil, failure)
	store.On("Ping", mock.Anything).Return(failure)
	store.OnGetStats = func(ctx context.Context) (models.Stats, error) {
		return models.Stats{Users: 5}, nil
	}

	s := New(store)

	_, err := s.GetUserLists(ctx, 1)
	assert.ErrorIs(t, err, failure)
	assert.ErrorIs(t, s.Ping(ctx), failure)

	stats, err := s.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.Users)

	store.AssertExpectations(t)
}
