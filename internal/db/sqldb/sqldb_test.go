package sqldb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/shoplist/internal/db/storage"
	"github.com/patric-chuzhbe/shoplist/internal/models"
	"github.com/patric-chuzhbe/shoplist/internal/user"
)

var (
	errDuplicate  = errors.New("duplicate key value violates unique constraint")
	errMissingRef = errors.New("violates foreign key constraint")
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	db := New(
		sqlx.NewDb(mockDB, "pgx"),
		time.Second,
		Violations{
			Unique:     func(err error) bool { return errors.Is(err, errDuplicate) },
			ForeignKey: func(err error) bool { return errors.Is(err, errMissingRef) },
		},
	)

	return db, mock
}

func TestDeleteListCommitsAllStatements(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM list_items WHERE list_id = \$1`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM list_participants WHERE list_id = \$1`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM shopping_lists WHERE id = \$1`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, db.DeleteList(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteListRollsBackOnFailure(t *testing.T) {
	db, mock := newMockDB(t)
	failure := errors.New("connection reset")

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM list_items`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM list_participants`).
		WithArgs(int64(7)).
		WillReturnError(failure)
	mock.ExpectRollback()

	err := db.DeleteList(context.Background(), 7)
	assert.ErrorIs(t, err, failure)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserMapsUniqueViolation(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("alice", "hash", "Alice", "alice@example.com", nil).
		WillReturnError(errDuplicate)

	_, err := db.CreateUser(context.Background(), &user.User{
		Username: "alice",
		Password: "hash",
		Name:     "Alice",
		Email:    "alice@example.com",
	})
	assert.ErrorIs(t, err, storage.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserReturnsAssignedID(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	created, err := db.CreateUser(context.Background(), &user.User{
		Username: "alice",
		Password: "hash",
		Name:     "Alice",
		Email:    "alice@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), created.ID)
	assert.Equal(t, "alice", created.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddListParticipantRejectsOwner(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT owner_id FROM shopping_lists WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow(int64(5)))
	mock.ExpectRollback()

	_, err := db.AddListParticipant(context.Background(), &models.ListParticipant{ListID: 3, UserID: 5})
	assert.ErrorIs(t, err, storage.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMissingReferenceIsNotFound(t *testing.T) {
	t.Run("list owner", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO shopping_lists`).
			WillReturnError(errMissingRef)
		mock.ExpectRollback()

		_, err := db.CreateList(context.Background(), &models.ShoppingList{Name: "Groceries", OwnerID: 999})
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("participant", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT owner_id FROM shopping_lists WHERE id = \$1`).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow(int64(5)))
		mock.ExpectQuery(`INSERT INTO list_participants`).
			WithArgs(int64(3), int64(777)).
			WillReturnError(errMissingRef)
		mock.ExpectRollback()

		_, err := db.AddListParticipant(context.Background(), &models.ListParticipant{ListID: 3, UserID: 777})
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCreateListItemUnknownList(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT color FROM shopping_lists WHERE id = \$1`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"color"}))
	mock.ExpectRollback()

	_, err := db.CreateListItem(context.Background(), &models.ListItem{Name: "Milk", ListID: 9})
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetStats(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT`).
		WillReturnRows(
			sqlmock.NewRows([]string{"users", "lists", "items", "participants"}).
				AddRow(int64(3), int64(2), int64(10), int64(1)),
		)

	stats, err := db.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.Stats{Users: 3, Lists: 2, Items: 10, Participants: 1}, stats)
	assert.NoError(t, mock.ExpectationsWereMet())
}
