// Package storagetest is the behavioural contract every storage backend must
// pass. Backends call Run from their own tests with a factory returning a
// fresh, empty storage.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/shoplist/internal/db/storage"
	"github.com/patric-chuzhbe/shoplist/internal/models"
	"github.com/patric-chuzhbe/shoplist/internal/user"
)

// Factory returns an empty storage. It should register its own cleanup.
type Factory func(t *testing.T) storage.Storage

func ptr[T any](value T) *T {
	return &value
}

// Run executes the whole contract against storages built by newStorage.
func Run(t *testing.T, newStorage Factory) {
	tests := []struct {
		name string
		run  func(t *testing.T, db storage.Storage)
	}{
		{"users", testUsers},
		{"user uniqueness", testUserUniqueness},
		{"update user", testUpdateUser},
		{"create and get list", testCreateAndGetList},
		{"list owner enrichment", testListOwnerEnrichment},
		{"update list whitelist", testUpdateListWhitelist},
		{"user lists order", testUserListsOrder},
		{"access predicate", testAccessPredicate},
		{"items", testItems},
		{"item defaults", testItemDefaults},
		{"item errors", testItemErrors},
		{"participants", testParticipants},
		{"duplicate participant", testDuplicateParticipant},
		{"missing references", testMissingReferences},
		{"delete list cascades", testDeleteListCascades},
		{"shared list scenario", testSharedListScenario},
		{"stats", testStats},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.run(t, newStorage(t))
		})
	}
}

func createUser(t *testing.T, db storage.Storage, username string) *user.User {
	t.Helper()

	usr, err := db.CreateUser(context.Background(), &user.User{
		Username: username,
		Password: "hash-" + username,
		Name:     "Name " + username,
		Email:    username + "@example.com",
	})
	require.NoError(t, err)
	require.NotZero(t, usr.ID)

	return usr
}

func createList(t *testing.T, db storage.Storage, ownerID int64, name string) *models.ShoppingList {
	t.Helper()

	list, err := db.CreateList(context.Background(), &models.ShoppingList{
		Name:    name,
		OwnerID: ownerID,
	})
	require.NoError(t, err)
	require.NotZero(t, list.ID)

	return list
}

func testUsers(t *testing.T, db storage.Storage) {
	ctx := context.Background()

	created, err := db.CreateUser(ctx, &user.User{
		Username:  "alice",
		Password:  "secret-hash",
		Name:      "Alice",
		Email:     "alice@example.com",
		AvatarURL: ptr("https://example.com/a.png"),
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	byID, found, err := db.GetUser(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, created, byID)
	assert.Equal(t, "secret-hash", byID.Password)

	byName, found, err := db.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, created.ID, byName.ID)

	byEmail, found, err := db.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, created.ID, byEmail.ID)

	_, found, err = db.GetUser(ctx, created.ID+100)
	assert.NoError(t, err)
	assert.False(t, found)

	_, found, err = db.GetUserByUsername(ctx, "nobody")
	assert.NoError(t, err)
	assert.False(t, found)

	_, found, err = db.GetUserByEmail(ctx, "nobody@example.com")
	assert.NoError(t, err)
	assert.False(t, found)

	second := createUser(t, db, "bob")
	assert.NotEqual(t, created.ID, second.ID)
}

func testUserUniqueness(t *testing.T, db storage.Storage) {
	ctx := context.Background()
	createUser(t, db, "alice")

	_, err := db.CreateUser(ctx, &user.User{
		Username: "alice",
		Password: "x",
		Name:     "Other",
		Email:    "other@example.com",
	})
	assert.ErrorIs(t, err, storage.ErrConflict)

	_, err = db.CreateUser(ctx, &user.User{
		Username: "other",
		Password: "x",
		Name:     "Other",
		Email:    "alice@example.com",
	})
	assert.ErrorIs(t, err, storage.ErrConflict)

	stats, err := db.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Users)
}

func testUpdateUser(t *testing.T, db storage.Storage) {
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	updated, err := db.UpdateUser(ctx, alice.ID, user.Patch{
		Name:      ptr("Alice Cooper"),
		AvatarURL: ptr("https://example.com/alice.png"),
	})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, updated.ID)
	assert.Equal(t, "Alice Cooper", updated.Name)
	assert.Equal(t, "alice", updated.Username)
	assert.Equal(t, alice.Email, updated.Email)
	require.NotNil(t, updated.AvatarURL)
	assert.Equal(t, "https://example.com/alice.png", *updated.AvatarURL)

	reread, _, err := db.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, reread)

	cleared, err := db.UpdateUser(ctx, alice.ID, user.Patch{AvatarURL: ptr("")})
	require.NoError(t, err)
	assert.Nil(t, cleared.AvatarURL)

	unchanged, err := db.UpdateUser(ctx, alice.ID, user.Patch{})
	require.NoError(t, err)
	assert.Equal(t, "Alice Cooper", unchanged.Name)

	_, err = db.UpdateUser(ctx, alice.ID, user.Patch{Email: ptr(bob.Email)})
	assert.ErrorIs(t, err, storage.ErrConflict)

	_, err = db.UpdateUser(ctx, bob.ID+100, user.Patch{Name: ptr("ghost")})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testCreateAndGetList(t *testing.T, db storage.Storage) {
	ctx := context.Background()
	owner := createUser(t, db, "alice")

	created, err := db.CreateList(ctx, &models.ShoppingList{
		Name:        "Groceries",
		Description: ptr("weekly"),
		DatePlanned: ptr("2024-05-01"),
		TimePlanned: ptr("18:30"),
		OwnerID:     owner.ID,
		Color:       "#3b82f6",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Groceries", created.Name)
	assert.Equal(t, "#3b82f6", created.Color)
	assert.Equal(t, owner.ID, created.OwnerID)

	got, found, err := db.GetListByID(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, created, got)
	require.NotNil(t, got.DatePlanned)
	assert.Equal(t, "2024-05-01", *got.DatePlanned)
	require.NotNil(t, got.TimePlanned)
	assert.Equal(t, "18:30", *got.TimePlanned)

	defaulted := createList(t, db, owner.ID, "Party")
	assert.Equal(t, models.DefaultListColor, defaulted.Color)
	assert.Nil(t, defaulted.Description)

	_, found, err = db.GetListByID(ctx, defaulted.ID+100)
	assert.NoError(t, err)
	assert.False(t, found)

	_, err = db.CreateList(ctx, &models.ShoppingList{Name: "orphan"})
	assert.ErrorIs(t, err, storage.ErrInvalidArgument)
}

func testListOwnerEnrichment(t *testing.T, db storage.Storage) {
	ctx := context.Background()
	owner, err := db.CreateUser(ctx, &user.User{
		Username:  "alice",
		Password:  "x",
		Name:      "Alice",
		Email:     "alice@example.com",
		AvatarURL: ptr("https://example.com/a.png"),
	})
	require.NoError(t, err)
	list := createList(t, db, owner.ID, "Groceries")

	got, found, err := db.GetListByID(ctx, list.ID)
	require.NoError(t, err)
	require.True(t, found)
	require.NotNil(t, got.OwnerName)
	assert.Equal(t, "Alice", *got.OwnerName)
	require.NotNil(t, got.OwnerAvatarURL)
	assert.Equal(t, "https://example.com/a.png", *got.OwnerAvatarURL)

	_, err = db.UpdateUser(ctx, owner.ID, user.Patch{Name: ptr("Alice B.")})
	require.NoError(t, err)

	got, _, err = db.GetListByID(ctx, list.ID)
	require.NoError(t, err)
	require.NotNil(t, got.OwnerName)
	assert.Equal(t, "Alice B.", *got.OwnerName)

	lists, err := db.GetUserLists(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, lists, 1)
	require.NotNil(t, lists[0].OwnerName)
	assert.Equal(t, "Alice B.", *lists[0].OwnerName)
}

func testUpdateListWhitelist(t *testing.T, db storage.Storage) {
	ctx := context.Background()
	owner := createUser(t, db, "alice")
	list := createList(t, db, owner.ID, "Groceries")

	updated, err := db.UpdateList(ctx, list.ID, models.ListPatch{
		Name:        ptr("Weekend"),
		Description: ptr("bbq"),
		DatePlanned: ptr("2024-06-01"),
		TimePlanned: ptr("10:00"),
		Color:       ptr("#ef4444"),
	})
	require.NoError(t, err)
	assert.Equal(t, list.ID, updated.ID)
	assert.Equal(t, owner.ID, updated.OwnerID)
	assert.Equal(t, "Weekend", updated.Name)
	assert.Equal(t, "bbq", *updated.Description)
	assert.Equal(t, "2024-06-01", *updated.DatePlanned)
	assert.Equal(t, "10:00", *updated.TimePlanned)
	assert.Equal(t, "#ef4444", updated.Color)

	onlyTime, err := db.UpdateList(ctx, list.ID, models.ListPatch{TimePlanned: ptr("11:15")})
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", *onlyTime.DatePlanned)
	assert.Equal(t, "11:15", *onlyTime.TimePlanned)
	assert.Equal(t, "Weekend", onlyTime.Name)

	cleared, err := db.UpdateList(ctx, list.ID, models.ListPatch{Description: ptr("")})
	require.NoError(t, err)
	assert.Nil(t, cleared.Description)

	same, err := db.UpdateList(ctx, list.ID, models.ListPatch{})
	require.NoError(t, err)
	assert.Equal(t, cleared, same)

	got, _, err := db.GetListByID(ctx, list.ID)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, got.OwnerID)
	assert.Equal(t, list.ID, got.ID)

	_, err = db.UpdateList(ctx, list.ID+100, models.ListPatch{Name: ptr("ghost")})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testUserListsOrder(t *testing.T, db storage.Storage) {
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	bobFirst := createList(t, db, bob.ID, "bob first")
	aliceFirst := createList(t, db, alice.ID, "alice first")
	bobSecond := createList(t, db, bob.ID, "bob second")
	aliceSecond := createList(t, db, alice.ID, "alice second")

	_, err := db.AddListParticipant(ctx, &models.ListParticipant{ListID: bobSecond.ID, UserID: alice.ID})
	require.NoError(t, err)
	_, err = db.AddListParticipant(ctx, &models.ListParticipant{ListID: bobFirst.ID, UserID: alice.ID})
	require.NoError(t, err)

	lists, err := db.GetUserLists(ctx, alice.ID)
	require.NoError(t, err)

	ids := make([]int64, 0, len(lists))
	for _, list := range lists {
		ids = append(ids, list.ID)
	}
	assert.Equal(t, []int64{aliceFirst.ID, aliceSecond.ID, bobSecond.ID, bobFirst.ID}, ids)

	none, err := db.GetUserLists(ctx, bob.ID+100)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testAccessPredicate(t *testing.T, db storage.Storage) {
	ctx := context.Background()
	owner := createUser(t, db, "alice")
	participant := createUser(t, db, "bob")
	stranger := createUser(t, db, "carol")
	list := createList(t, db, owner.ID, "Groceries")

	_, err := db.AddListParticipant(ctx, &models.ListParticipant{ListID: list.ID, UserID: participant.ID})
	require.NoError(t, err)

	for _, tc := range []struct {
		name   string
		userID int64
		listID int64
		want   bool
	}{
		{"owner", owner.ID, list.ID, true},
		{"participant", participant.ID, list.ID, true},
		{"stranger", stranger.ID, list.ID, false},
		{"missing list", owner.ID, list.ID + 100, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := db.CanUserAccessList(ctx, tc.userID, tc.listID)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	shared, err := db.IsListSharedWithUser(ctx, list.ID, participant.ID)
	require.NoError(t, err)
	assert.True(t, shared)

	shared, err = db.IsListSharedWithUser(ctx, list.ID, owner.ID)
	require.NoError(t, err)
	assert.False(t, shared, "the owner is never stored as a participant")
}

func testItems(t *testing.T, db storage.Storage) {
	ctx := context.Background()
	owner := createUser(t, db, "alice")
	list := createList(t, db, owner.ID, "Groceries")
	other := createList(t, db, owner.ID, "Other")

	milk, err := db.CreateListItem(ctx, &models.ListItem{
		Name:     "Milk",
		Quantity: 2,
		Unit:     ptr("l"),
		Category: ptr("DAIRY"),
		ListID:   list.ID,
	})
	require.NoError(t, err)
	assert.NotZero(t, milk.ID)
	assert.Equal(t, 2, milk.Quantity)
	assert.Equal(t, "l", *milk.Unit)
	assert.Equal(t, "DAIRY", *milk.Category)

	bread, err := db.CreateListItem(ctx, &models.ListItem{Name: "Bread", ListID: list.ID})
	require.NoError(t, err)
	_, err = db.CreateListItem(ctx, &models.ListItem{Name: "Soap", ListID: other.ID})
	require.NoError(t, err)

	items, err := db.GetListItems(ctx, list.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, *milk, items[0])
	assert.Equal(t, *bread, items[1])

	got, found, err := db.GetListItem(ctx, milk.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, milk, got)

	updated, err := db.UpdateListItem(ctx, milk.ID, models.ItemPatch{
		Status:   ptr(models.ItemStatusPurchased),
		Quantity: ptr(3),
		Unit:     ptr(""),
	})
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusPurchased, updated.Status)
	assert.Equal(t, 3, updated.Quantity)
	assert.Nil(t, updated.Unit)
	assert.Equal(t, "Milk", updated.Name)
	assert.Equal(t, list.ID, updated.ListID)

	require.NoError(t, db.DeleteListItem(ctx, milk.ID))
	_, found, err = db.GetListItem(ctx, milk.ID)
	require.NoError(t, err)
	assert.False(t, found)

	items, err = db.GetListItems(ctx, list.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	empty, err := db.GetListItems(ctx, other.ID+100)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func testItemDefaults(t *testing.T, db storage.Storage) {
	ctx := context.Background()
	owner := createUser(t, db, "alice")
	list, err := db.CreateList(ctx, &models.ShoppingList{
		Name:    "Groceries",
		OwnerID: owner.ID,
		Color:   "#a855f7",
	})
	require.NoError(t, err)

	item, err := db.CreateListItem(ctx, &models.ListItem{Name: "Eggs", ListID: list.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)
	assert.Equal(t, models.ItemStatusPending, item.Status)
	assert.Equal(t, "#a855f7", item.Color)
	assert.Nil(t, item.Unit)
	assert.Nil(t, item.Category)

	colored, err := db.CreateListItem(ctx, &models.ListItem{Name: "Salt", ListID: list.ID, Color: "#000000"})
	require.NoError(t, err)
	assert.Equal(t, "#000000", colored.Color)
}

func testItemErrors(t *testing.T, db storage.Storage) {
	ctx := context.Background()
	owner := createUser(t, db, "alice")
	list := createList(t, db, owner.ID, "Groceries")

	_, err := db.CreateListItem(ctx, &models.ListItem{Name: "Ghost", ListID: list.ID + 100})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = db.CreateListItem(ctx, &models.ListItem{Name: "Negative", Quantity: -1, ListID: list.ID})
	assert.ErrorIs(t, err, storage.ErrInvalidArgument)

	_, err = db.UpdateListItem(ctx, 12345, models.ItemPatch{Name: ptr("nothing")})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.NoError(t, db.DeleteListItem(ctx, 12345), "deleting a missing item is not an error")

	items, err := db.GetListItems(ctx, list.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func testParticipants(t *testing.T, db storage.Storage) {
	ctx := context.Background()
	owner := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")
	list := createList(t, db, owner.ID, "Groceries")

	bobShare, err := db.AddListParticipant(ctx, &models.ListParticipant{ListID: list.ID, UserID: bob.ID})
	require.NoError(t, err)
	assert.NotZero(t, bobShare.ID)
	assert.Equal(t, list.ID, bobShare.ListID)
	assert.Equal(t, bob.ID, bobShare.UserID)

	_, err = db.AddListParticipant(ctx, &models.ListParticipant{ListID: list.ID, UserID: carol.ID})
	require.NoError(t, err)

	participants, err := db.GetListParticipants(ctx, list.ID)
	require.NoError(t, err)
	require.Len(t, participants, 2)
	assert.Equal(t, *bob, participants[0])
	assert.Equal(t, *carol, participants[1])

	got, found, err := db.GetListParticipant(ctx, list.ID, bob.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, bobShare, got)

	_, found, err = db.GetListParticipant(ctx, list.ID, owner.ID)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = db.AddListParticipant(ctx, &models.ListParticipant{ListID: list.ID, UserID: owner.ID})
	assert.ErrorIs(t, err, storage.ErrConflict, "the owner cannot be added as a participant")

	_, err = db.AddListParticipant(ctx, &models.ListParticipant{ListID: list.ID + 100, UserID: bob.ID})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, db.RemoveListParticipant(ctx, bobShare.ID))
	require.NoError(t, db.RemoveListParticipant(ctx, bobShare.ID), "removal is idempotent")

	canAccess, err := db.CanUserAccessList(ctx, bob.ID, list.ID)
	require.NoError(t, err)
	assert.False(t, canAccess)

	participants, err = db.GetListParticipants(ctx, list.ID)
	require.NoError(t, err)
	require.Len(t, participants, 1)
	assert.Equal(t, carol.ID, participants[0].ID)
}

func testDuplicateParticipant(t *testing.T, db storage.Storage) {
	ctx := context.Background()
	owner := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	list := createList(t, db, owner.ID, "Groceries")

	_, err := db.AddListParticipant(ctx, &models.ListParticipant{ListID: list.ID, UserID: bob.ID})
	require.NoError(t, err)

	_, err = db.AddListParticipant(ctx, &models.ListParticipant{ListID: list.ID, UserID: bob.ID})
	assert.ErrorIs(t, err, storage.ErrConflict)

	participants, err := db.GetListParticipants(ctx, list.ID)
	require.NoError(t, err)
	assert.Len(t, participants, 1)

	stats, err := db.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Participants)
}

func testMissingReferences(t *testing.T, db storage.Storage) {
	ctx := context.Background()
	owner := createUser(t, db, "alice")
	list := createList(t, db, owner.ID, "Groceries")

	_, err := db.CreateList(ctx, &models.ShoppingList{Name: "Orphan", OwnerID: owner.ID + 100})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = db.AddListParticipant(ctx, &models.ListParticipant{ListID: list.ID, UserID: owner.ID + 100})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	stats, err := db.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Stats{Users: 1, Lists: 1}, stats)
}

func testDeleteListCascades(t *testing.T, db storage.Storage) {
	ctx := context.Background()
	owner := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	doomed := createList(t, db, owner.ID, "Doomed")
	kept := createList(t, db, owner.ID, "Kept")

	for _, list := range []*models.ShoppingList{doomed, kept} {
		_, err := db.CreateListItem(ctx, &models.ListItem{Name: "Milk", ListID: list.ID})
		require.NoError(t, err)
		_, err = db.AddListParticipant(ctx, &models.ListParticipant{ListID: list.ID, UserID: bob.ID})
		require.NoError(t, err)
	}

	require.NoError(t, db.DeleteList(ctx, doomed.ID))

	_, found, err := db.GetListByID(ctx, doomed.ID)
	require.NoError(t, err)
	assert.False(t, found)

	items, err := db.GetListItems(ctx, doomed.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	participants, err := db.GetListParticipants(ctx, doomed.ID)
	require.NoError(t, err)
	assert.Empty(t, participants)

	items, err = db.GetListItems(ctx, kept.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	participants, err = db.GetListParticipants(ctx, kept.ID)
	require.NoError(t, err)
	assert.Len(t, participants, 1)

	stats, err := db.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Stats{Users: 2, Lists: 1, Items: 1, Participants: 1}, stats)

	assert.NoError(t, db.DeleteList(ctx, doomed.ID), "deleting twice is harmless")
}

func testSharedListScenario(t *testing.T, db storage.Storage) {
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	list, err := db.CreateList(ctx, &models.ShoppingList{
		Name:    "Groceries",
		OwnerID: alice.ID,
		Color:   "#22c55e",
	})
	require.NoError(t, err)

	canAccess, err := db.CanUserAccessList(ctx, bob.ID, list.ID)
	require.NoError(t, err)
	assert.False(t, canAccess)

	target, found, err := db.GetUserByEmail(ctx, bob.Email)
	require.NoError(t, err)
	require.True(t, found)
	_, err = db.AddListParticipant(ctx, &models.ListParticipant{ListID: list.ID, UserID: target.ID})
	require.NoError(t, err)

	canAccess, err = db.CanUserAccessList(ctx, bob.ID, list.ID)
	require.NoError(t, err)
	assert.True(t, canAccess)

	milk, err := db.CreateListItem(ctx, &models.ListItem{
		Name:     "Milk",
		Quantity: 2,
		Unit:     ptr("l"),
		ListID:   list.ID,
	})
	require.NoError(t, err)

	items, err := db.GetListItems(ctx, list.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.ItemStatusPending, items[0].Status)

	_, err = db.UpdateListItem(ctx, milk.ID, models.ItemPatch{Status: ptr(models.ItemStatusPurchased)})
	require.NoError(t, err)

	bobLists, err := db.GetUserLists(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, bobLists, 1)
	assert.Equal(t, list.ID, bobLists[0].ID)

	require.NoError(t, db.DeleteList(ctx, list.ID))

	items, err = db.GetListItems(ctx, list.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	bobLists, err = db.GetUserLists(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, bobLists)
}

func testStats(t *testing.T, db storage.Storage) {
	ctx := context.Background()

	stats, err := db.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Stats{}, stats)

	owner := createUser(t, db, "alice")
	list := createList(t, db, owner.ID, "Groceries")
	_, err = db.CreateListItem(ctx, &models.ListItem{Name: "Milk", ListID: list.ID})
	require.NoError(t, err)

	stats, err = db.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Stats{Users: 1, Lists: 1, Items: 1}, stats)

	assert.NoError(t, db.Ping(ctx))
}
