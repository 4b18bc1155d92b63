// Package access decides who may read and who may modify a shopping list.
// Decisions are recomputed from the store on every call.
package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/patric-chuzhbe/shoplist/internal/db/storage"
	"github.com/patric-chuzhbe/shoplist/internal/models"
)

var (
	ErrListNotFound = fmt.Errorf("shopping list not found: %w", storage.ErrNotFound)
	ErrForbidden    = errors.New("access to the shopping list is forbidden")
)

type listReader interface {
	GetListByID(ctx context.Context, id int64) (*models.ShoppingList, bool, error)
	CanUserAccessList(ctx context.Context, userID, listID int64) (bool, error)
}

// IsOwner reports whether userID owns list.
func IsOwner(list *models.ShoppingList, userID int64) bool {
	return list != nil && list.OwnerID == userID
}

// RequireAccess returns the list when userID owns it or is one of its participants.
func RequireAccess(ctx context.Context, lists listReader, userID, listID int64) (*models.ShoppingList, error) {
	list, err := getList(ctx, lists, listID)
	if err != nil {
		return nil, err
	}
	if IsOwner(list, userID) {
		return list, nil
	}

	allowed, err := lists.CanUserAccessList(ctx, userID, listID)
	if err != nil {
		return nil, fmt.Errorf("in internal/access/access.go/RequireAccess(): error while `lists.CanUserAccessList()` calling: %w", err)
	}
	if !allowed {
		return nil, ErrForbidden
	}

	return list, nil
}

// RequireOwner returns the list only when userID owns it.
func RequireOwner(ctx context.Context, lists listReader, userID, listID int64) (*models.ShoppingList, error) {
	list, err := getList(ctx, lists, listID)
	if err != nil {
		return nil, err
	}
	if !IsOwner(list, userID) {
		return nil, ErrForbidden
	}

	return list, nil
}

func getList(ctx context.Context, lists listReader, listID int64) (*models.ShoppingList, error) {
	list, found, err := lists.GetListByID(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("in internal/access/access.go/getList(): error while `lists.GetListByID()` calling: %w", err)
	}
	if !found {
		return nil, ErrListNotFound
	}

	return list, nil
}
