// Package mockstorage provides a testify-based mock implementation
// of storage.Storage. It is used for unit testing the service and HTTP layers
// by simulating storage behavior, including failures a real backend rarely produces.
package mockstorage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/patric-chuzhbe/shoplist/internal/models"
	"github.com/patric-chuzhbe/shoplist/internal/user"
)

// StorageMock is a testify mock that implements storage.Storage.
//
// Use it in tests to simulate database behavior.
type StorageMock struct {
	mock.Mock

	// OnGetStats is an optional function field that can be assigned
	// to define custom mock behavior for GetStats in tests.
	//
	// If set, GetStats will delegate to this function instead of
	// using testify's generic mock handler.
	OnGetStats func(ctx context.Context) (models.Stats, error)
}

func userOrNil(value interface{}) *user.User {
	usr, _ := value.(*user.User)
	return usr
}

func listOrNil(value interface{}) *models.ShoppingList {
	list, _ := value.(*models.ShoppingList)
	return list
}

func itemOrNil(value interface{}) *models.ListItem {
	item, _ := value.(*models.ListItem)
	return item
}

// Ping mocks the storage health check.
func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close mocks releasing the storage.
func (m *StorageMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

// GetStats returns the result of OnGetStats when it is set.
func (m *StorageMock) GetStats(ctx context.Context) (models.Stats, error) {
	if m.OnGetStats != nil {
		return m.OnGetStats(ctx)
	}
	args := m.Called(ctx)
	stats, _ := args.Get(0).(models.Stats)
	return stats, args.Error(1)
}

func (m *StorageMock) GetUser(ctx context.Context, id int64) (*user.User, bool, error) {
	args := m.Called(ctx, id)
	return userOrNil(args.Get(0)), args.Bool(1), args.Error(2)
}

func (m *StorageMock) GetUserByUsername(ctx context.Context, username string) (*user.User, bool, error) {
	args := m.Called(ctx, username)
	return userOrNil(args.Get(0)), args.Bool(1), args.Error(2)
}

func (m *StorageMock) GetUserByEmail(ctx context.Context, email string) (*user.User, bool, error) {
	args := m.Called(ctx, email)
	return userOrNil(args.Get(0)), args.Bool(1), args.Error(2)
}

func (m *StorageMock) CreateUser(ctx context.Context, usr *user.User) (*user.User, error) {
	args := m.Called(ctx, usr)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *StorageMock) UpdateUser(ctx context.Context, id int64, patch user.Patch) (*user.User, error) {
	args := m.Called(ctx, id, patch)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *StorageMock) GetListByID(ctx context.Context, id int64) (*models.ShoppingList, bool, error) {
	args := m.Called(ctx, id)
	return listOrNil(args.Get(0)), args.Bool(1), args.Error(2)
}

func (m *StorageMock) GetUserLists(ctx context.Context, userID int64) ([]models.ShoppingList, error) {
	args := m.Called(ctx, userID)
	lists, _ := args.Get(0).([]models.ShoppingList)
	return lists, args.Error(1)
}

func (m *StorageMock) CreateList(ctx context.Context, list *models.ShoppingList) (*models.ShoppingList, error) {
	args := m.Called(ctx, list)
	return listOrNil(args.Get(0)), args.Error(1)
}

func (m *StorageMock) UpdateList(
	ctx context.Context,
	id int64,
	patch models.ListPatch,
) (*models.ShoppingList, error) {
	args := m.Called(ctx, id, patch)
	return listOrNil(args.Get(0)), args.Error(1)
}

func (m *StorageMock) DeleteList(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *StorageMock) CanUserAccessList(ctx context.Context, userID, listID int64) (bool, error) {
	args := m.Called(ctx, userID, listID)
	return args.Bool(0), args.Error(1)
}

func (m *StorageMock) GetListItems(ctx context.Context, listID int64) ([]models.ListItem, error) {
	args := m.Called(ctx, listID)
	items, _ := args.Get(0).([]models.ListItem)
	return items, args.Error(1)
}

func (m *StorageMock) GetListItem(ctx context.Context, id int64) (*models.ListItem, bool, error) {
	args := m.Called(ctx, id)
	return itemOrNil(args.Get(0)), args.Bool(1), args.Error(2)
}

func (m *StorageMock) CreateListItem(ctx context.Context, item *models.ListItem) (*models.ListItem, error) {
	args := m.Called(ctx, item)
	return itemOrNil(args.Get(0)), args.Error(1)
}

func (m *StorageMock) UpdateListItem(
	ctx context.Context,
	id int64,
	patch models.ItemPatch,
) (*models.ListItem, error) {
	args := m.Called(ctx, id, patch)
	return itemOrNil(args.Get(0)), args.Error(1)
}

func (m *StorageMock) DeleteListItem(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *StorageMock) GetListParticipants(ctx context.Context, listID int64) ([]user.User, error) {
	args := m.Called(ctx, listID)
	participants, _ := args.Get(0).([]user.User)
	return participants, args.Error(1)
}

func (m *StorageMock) GetListParticipant(
	ctx context.Context,
	listID, userID int64,
) (*models.ListParticipant, bool, error) {
	args := m.Called(ctx, listID, userID)
	participant, _ := args.Get(0).(*models.ListParticipant)
	return participant, args.Bool(1), args.Error(2)
}

func (m *StorageMock) IsListSharedWithUser(ctx context.Context, listID, userID int64) (bool, error) {
	args := m.Called(ctx, listID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *StorageMock) AddListParticipant(
	ctx context.Context,
	participant *models.ListParticipant,
) (*models.ListParticipant, error) {
	args := m.Called(ctx, participant)
	created, _ := args.Get(0).(*models.ListParticipant)
	return created, args.Error(1)
}

func (m *StorageMock) RemoveListParticipant(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
