package jsondb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/shoplist/internal/db/storage"
	"github.com/patric-chuzhbe/shoplist/internal/db/storagetest"
	"github.com/patric-chuzhbe/shoplist/internal/models"
	"github.com/patric-chuzhbe/shoplist/internal/user"
)

const (
	testDBFileName = "db_test.json"
)

func ptr[T any](value T) *T {
	return &value
}

func TestContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Storage {
		theStorage, err := New(filepath.Join(t.TempDir(), testDBFileName))
		require.NoError(t, err)
		t.Cleanup(func() {
			require.NoError(t, theStorage.Close())
		})

		return theStorage
	})
}

func TestInMemoryContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Storage {
		return NewInMemory()
	})
}

func Test(t *testing.T) {
	t.Run("The data survives reopening the file", func(t *testing.T) {
		ctx := context.Background()
		fileName := filepath.Join(t.TempDir(), testDBFileName)

		theStorage, err := New(fileName)
		require.NoError(t, err)
		require.FileExists(t, fileName, "New() should create a missing file")

		owner, err := theStorage.CreateUser(ctx, &user.User{
			Username: "alice",
			Password: "hash",
			Name:     "Alice",
			Email:    "alice@example.com",
		})
		require.NoError(t, err)

		list, err := theStorage.CreateList(ctx, &models.ShoppingList{Name: "Groceries", OwnerID: owner.ID})
		require.NoError(t, err)

		item, err := theStorage.CreateListItem(ctx, &models.ListItem{Name: "Milk", ListID: list.ID})
		require.NoError(t, err)
		require.NoError(t, theStorage.Close())

		reopened, err := New(fileName)
		require.NoError(t, err)
		defer func() {
			require.NoError(t, reopened.Close())
		}()

		gotOwner, found, err := reopened.GetUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, owner, gotOwner)
		assert.Equal(t, "hash", gotOwner.Password, "the password hash must be persisted")

		gotList, found, err := reopened.GetListByID(ctx, list.ID)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, list, gotList)

		gotItem, found, err := reopened.GetListItem(ctx, item.ID)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, item, gotItem)

		next, err := reopened.CreateList(ctx, &models.ShoppingList{Name: "Next", OwnerID: owner.ID})
		require.NoError(t, err)
		assert.Greater(t, next.ID, list.ID, "id sequences must continue after reload")
	})

	t.Run("A failed write leaves the cache untouched", func(t *testing.T) {
		ctx := context.Background()
		dir := filepath.Join(t.TempDir(), "data")
		require.NoError(t, os.Mkdir(dir, 0o700))

		theStorage, err := New(filepath.Join(dir, testDBFileName))
		require.NoError(t, err)

		owner, err := theStorage.CreateUser(ctx, &user.User{
			Username: "alice",
			Password: "hash",
			Name:     "Alice",
			Email:    "alice@example.com",
		})
		require.NoError(t, err)
		list, err := theStorage.CreateList(ctx, &models.ShoppingList{Name: "Groceries", OwnerID: owner.ID})
		require.NoError(t, err)

		require.NoError(t, os.RemoveAll(dir))

		bob := &user.User{Username: "bob", Password: "hash", Name: "Bob", Email: "bob@example.com"}
		_, err = theStorage.CreateUser(ctx, bob)
		require.Error(t, err)

		_, found, err := theStorage.GetUserByUsername(ctx, "bob")
		require.NoError(t, err)
		assert.False(t, found, "a user that was not written must not be visible")

		_, err = theStorage.UpdateList(ctx, list.ID, models.ListPatch{Name: ptr("Renamed")})
		require.Error(t, err)
		require.Error(t, theStorage.DeleteList(ctx, list.ID))

		got, found, err := theStorage.GetListByID(ctx, list.ID)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "Groceries", got.Name)

		require.NoError(t, os.Mkdir(dir, 0o700))

		created, err := theStorage.CreateUser(ctx, bob)
		require.NoError(t, err, "the retry must not hit a phantom conflict")
		assert.Equal(t, owner.ID+1, created.ID, "the failed write must not consume an id")

		stats, err := theStorage.GetStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.Stats{Users: 2, Lists: 1}, stats)
	})

	t.Run("A broken file is reported", func(t *testing.T) {
		fileName := filepath.Join(t.TempDir(), testDBFileName)
		require.NoError(t, os.WriteFile(fileName, []byte("{not json"), 0o600))

		_, err := New(fileName)
		assert.Error(t, err)
	})

	t.Run("Callers get copies", func(t *testing.T) {
		ctx := context.Background()
		theStorage := NewInMemory()

		created, err := theStorage.CreateUser(ctx, &user.User{
			Username: "alice",
			Password: "hash",
			Name:     "Alice",
			Email:    "alice@example.com",
		})
		require.NoError(t, err)
		created.Name = "Mallory"

		stored, _, err := theStorage.GetUser(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Alice", stored.Name)
	})
}
