// Package storage declares the persistence contract shared by every backend
// and the error kinds callers can tell apart with errors.Is.
package storage

import (
	"context"
	"errors"

	"github.com/patric-chuzhbe/shoplist/internal/models"
	"github.com/patric-chuzhbe/shoplist/internal/user"
)

var (
	// ErrNotFound is returned when a mutation targets a missing entity.
	ErrNotFound = errors.New("entity not found")

	// ErrConflict is returned when a write breaks a uniqueness rule.
	ErrConflict = errors.New("entity conflicts with an existing one")

	// ErrInvalidArgument is returned for writes that can never succeed,
	// such as a list without an owner.
	ErrInvalidArgument = errors.New("invalid argument")
)

type UserKeeper interface {
	GetUser(ctx context.Context, id int64) (*user.User, bool, error)
	GetUserByUsername(ctx context.Context, username string) (*user.User, bool, error)
	GetUserByEmail(ctx context.Context, email string) (*user.User, bool, error)
	CreateUser(ctx context.Context, usr *user.User) (*user.User, error)
	UpdateUser(ctx context.Context, id int64, patch user.Patch) (*user.User, error)
}

type ListKeeper interface {
	GetListByID(ctx context.Context, id int64) (*models.ShoppingList, bool, error)
	GetUserLists(ctx context.Context, userID int64) ([]models.ShoppingList, error)
	CreateList(ctx context.Context, list *models.ShoppingList) (*models.ShoppingList, error)
	UpdateList(ctx context.Context, id int64, patch models.ListPatch) (*models.ShoppingList, error)
	DeleteList(ctx context.Context, id int64) error
	CanUserAccessList(ctx context.Context, userID, listID int64) (bool, error)
}

type ItemKeeper interface {
	GetListItems(ctx context.Context, listID int64) ([]models.ListItem, error)
	GetListItem(ctx context.Context, id int64) (*models.ListItem, bool, error)
	CreateListItem(ctx context.Context, item *models.ListItem) (*models.ListItem, error)
	UpdateListItem(ctx context.Context, id int64, patch models.ItemPatch) (*models.ListItem, error)
	DeleteListItem(ctx context.Context, id int64) error
}

type ParticipantKeeper interface {
	GetListParticipants(ctx context.Context, listID int64) ([]user.User, error)
	GetListParticipant(ctx context.Context, listID, userID int64) (*models.ListParticipant, bool, error)
	IsListSharedWithUser(ctx context.Context, listID, userID int64) (bool, error)
	AddListParticipant(ctx context.Context, participant *models.ListParticipant) (*models.ListParticipant, error)
	RemoveListParticipant(ctx context.Context, id int64) error
}

// Storage is implemented by memorystorage, jsondb, sqlitedb and postgresdb.
// All implementations must be indistinguishable to callers.
type Storage interface {
	UserKeeper
	ListKeeper
	ItemKeeper
	ParticipantKeeper

	GetStats(ctx context.Context) (models.Stats, error)
	Ping(ctx context.Context) error
	Close() error
}
