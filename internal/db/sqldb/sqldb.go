// Package sqldb implements the storage contract on top of database/sql via sqlx.
// Queries are written with `?` placeholders and rebound for the driver in use,
// so the same code serves SQLite and PostgreSQL. The concrete backends only
// open the connection, run their migrations and tell DB how to recognise
// constraint violations.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/patric-chuzhbe/shoplist/internal/db/storage"
	"github.com/patric-chuzhbe/shoplist/internal/models"
	"github.com/patric-chuzhbe/shoplist/internal/user"
)

// Violations tells DB how the driver reports constraint failures.
// A nil predicate never matches.
type Violations struct {
	Unique     func(err error) bool
	ForeignKey func(err error) bool
}

type DB struct {
	database          *sqlx.DB
	connectionTimeout time.Duration
	violations        Violations
}

const selectListQuery = `
	SELECT
		l.id, l.name, l.description, l.date_planned, l.time_planned, l.owner_id, l.color,
		u.name AS owner_name, u.avatar_url AS owner_avatar_url
	FROM shopping_lists l
	LEFT JOIN users u ON u.id = l.owner_id
`

const selectUserQuery = `SELECT id, username, password, name, email, avatar_url FROM users`

const selectItemQuery = `SELECT id, name, quantity, unit, category, status, list_id, color FROM list_items`

func New(database *sqlx.DB, connectionTimeout time.Duration, violations Violations) *DB {
	never := func(error) bool { return false }
	if violations.Unique == nil {
		violations.Unique = never
	}
	if violations.ForeignKey == nil {
		violations.ForeignKey = never
	}

	return &DB{
		database:          database,
		connectionTimeout: connectionTimeout,
		violations:        violations,
	}
}

func (db *DB) Ping(ctx context.Context) error {
	if db.connectionTimeout <= 0 {
		return db.database.PingContext(ctx)
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()

	return db.database.PingContext(ctxWithTimeout)
}

func (db *DB) Close() error {
	return db.database.Close()
}

// inTransaction runs fn in a transaction, committing when fn succeeds.
// fn must only talk to the database through tx.
func (db *DB) inTransaction(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	transaction, err := db.database.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("in internal/db/sqldb/sqldb.go/inTransaction(): error while `db.database.BeginTxx()` calling: %w", err)
	}

	if err := fn(transaction); err != nil {
		if rollbackErr := transaction.Rollback(); rollbackErr != nil {
			return errors.Join(err, rollbackErr)
		}
		return err
	}

	if err := transaction.Commit(); err != nil {
		return fmt.Errorf("in internal/db/sqldb/sqldb.go/inTransaction(): error while `transaction.Commit()` calling: %w", err)
	}

	return nil
}

// constraintErr turns a UNIQUE violation into ErrConflict and a reference to
// a missing row into ErrNotFound. Other errors are returned as is.
func (db *DB) constraintErr(err error, message string) error {
	switch {
	case db.violations.Unique(err):
		return fmt.Errorf("%s: %w", message, storage.ErrConflict)
	case db.violations.ForeignKey(err):
		return fmt.Errorf("%s: %w", message, storage.ErrNotFound)
	}

	return err
}

// getOne scans a single row into dest and reports whether the row existed.
func getOne(ctx context.Context, q sqlx.ExtContext, dest interface{}, query string, args ...interface{}) (bool, error) {
	err := sqlx.GetContext(ctx, q, dest, q.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

func (db *DB) getUser(ctx context.Context, q sqlx.ExtContext, where string, arg interface{}) (*user.User, bool, error) {
	var usr user.User
	found, err := getOne(ctx, q, &usr, selectUserQuery+" WHERE "+where, arg)
	if err != nil || !found {
		return nil, found, err
	}

	return &usr, true, nil
}

func (db *DB) GetUser(ctx context.Context, id int64) (*user.User, bool, error) {
	return db.getUser(ctx, db.database, "id = ?", id)
}

func (db *DB) GetUserByUsername(ctx context.Context, username string) (*user.User, bool, error) {
	return db.getUser(ctx, db.database, "username = ?", username)
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (*user.User, bool, error) {
	return db.getUser(ctx, db.database, "email = ?", email)
}

func (db *DB) CreateUser(ctx context.Context, usr *user.User) (*user.User, error) {
	var id int64
	err := db.database.QueryRowxContext(
		ctx,
		db.database.Rebind(`
			INSERT INTO users (username, password, name, email, avatar_url)
			VALUES (?, ?, ?, ?, ?)
			RETURNING id
		`),
		usr.Username,
		usr.Password,
		usr.Name,
		usr.Email,
		usr.AvatarURL,
	).Scan(&id)
	if err != nil {
		return nil, db.constraintErr(err, "username or email already taken")
	}

	created := *usr
	created.ID = id

	return &created, nil
}

func (db *DB) UpdateUser(ctx context.Context, id int64, patch user.Patch) (*user.User, error) {
	var result *user.User
	err := db.inTransaction(ctx, func(tx *sqlx.Tx) error {
		existing, found, err := db.getUser(ctx, tx, "id = ?", id)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("user %d: %w", id, storage.ErrNotFound)
		}

		patch.Apply(existing)
		_, err = tx.ExecContext(
			ctx,
			tx.Rebind(`UPDATE users SET name = ?, email = ?, avatar_url = ? WHERE id = ?`),
			existing.Name,
			existing.Email,
			existing.AvatarURL,
			id,
		)
		if err != nil {
			return db.constraintErr(err, "email already taken")
		}
		result = existing

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (db *DB) getList(ctx context.Context, q sqlx.ExtContext, id int64) (*models.ShoppingList, bool, error) {
	var list models.ShoppingList
	found, err := getOne(ctx, q, &list, selectListQuery+" WHERE l.id = ?", id)
	if err != nil || !found {
		return nil, found, err
	}

	return &list, true, nil
}

func (db *DB) GetListByID(ctx context.Context, id int64) (*models.ShoppingList, bool, error) {
	return db.getList(ctx, db.database, id)
}

// GetUserLists returns the lists owned by userID ordered by id, followed by
// the lists shared with userID in the order they were shared.
func (db *DB) GetUserLists(ctx context.Context, userID int64) ([]models.ShoppingList, error) {
	owned := []models.ShoppingList{}
	err := db.database.SelectContext(
		ctx,
		&owned,
		db.database.Rebind(selectListQuery+" WHERE l.owner_id = ? ORDER BY l.id"),
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("in internal/db/sqldb/sqldb.go/GetUserLists(): error while selecting owned lists: %w", err)
	}

	shared := []models.ShoppingList{}
	err = db.database.SelectContext(
		ctx,
		&shared,
		db.database.Rebind(selectListQuery+`
			JOIN list_participants p ON p.list_id = l.id
			WHERE p.user_id = ? AND l.owner_id <> ?
			ORDER BY p.id
		`),
		userID,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("in internal/db/sqldb/sqldb.go/GetUserLists(): error while selecting shared lists: %w", err)
	}

	return append(owned, shared...), nil
}

func (db *DB) CreateList(ctx context.Context, list *models.ShoppingList) (*models.ShoppingList, error) {
	if list.OwnerID == 0 {
		return nil, fmt.Errorf("list without owner: %w", storage.ErrInvalidArgument)
	}

	color := list.Color
	if color == "" {
		color = models.DefaultListColor
	}

	var result *models.ShoppingList
	err := db.inTransaction(ctx, func(tx *sqlx.Tx) error {
		var id int64
		err := tx.QueryRowxContext(
			ctx,
			tx.Rebind(`
				INSERT INTO shopping_lists (name, description, date_planned, time_planned, owner_id, color)
				VALUES (?, ?, ?, ?, ?, ?)
				RETURNING id
			`),
			list.Name,
			list.Description,
			list.DatePlanned,
			list.TimePlanned,
			list.OwnerID,
			color,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf(
				"in internal/db/sqldb/sqldb.go/CreateList(): error while inserting list: %w",
				db.constraintErr(err, fmt.Sprintf("owner %d", list.OwnerID)),
			)
		}

		created, _, err := db.getList(ctx, tx, id)
		result = created

		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (db *DB) UpdateList(ctx context.Context, id int64, patch models.ListPatch) (*models.ShoppingList, error) {
	var result *models.ShoppingList
	err := db.inTransaction(ctx, func(tx *sqlx.Tx) error {
		existing, found, err := db.getList(ctx, tx, id)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("list %d: %w", id, storage.ErrNotFound)
		}

		patch.Apply(existing)
		_, err = tx.ExecContext(
			ctx,
			tx.Rebind(`
				UPDATE shopping_lists
				SET name = ?, description = ?, date_planned = ?, time_planned = ?, color = ?
				WHERE id = ?
			`),
			existing.Name,
			existing.Description,
			existing.DatePlanned,
			existing.TimePlanned,
			existing.Color,
			id,
		)
		if err != nil {
			return fmt.Errorf("in internal/db/sqldb/sqldb.go/UpdateList(): error while updating list: %w", err)
		}
		result = existing

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// DeleteList removes the list together with its items and participants.
func (db *DB) DeleteList(ctx context.Context, id int64) error {
	return db.inTransaction(ctx, func(tx *sqlx.Tx) error {
		for _, query := range []string{
			`DELETE FROM list_items WHERE list_id = ?`,
			`DELETE FROM list_participants WHERE list_id = ?`,
			`DELETE FROM shopping_lists WHERE id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, tx.Rebind(query), id); err != nil {
				return fmt.Errorf("in internal/db/sqldb/sqldb.go/DeleteList(): error while `tx.ExecContext()` calling: %w", err)
			}
		}

		return nil
	})
}

func (db *DB) count(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var result int64
	err := db.database.GetContext(ctx, &result, db.database.Rebind(query), args...)

	return result, err
}

func (db *DB) CanUserAccessList(ctx context.Context, userID, listID int64) (bool, error) {
	matches, err := db.count(
		ctx,
		`
			SELECT COUNT(*) FROM shopping_lists l
			WHERE l.id = ?
				AND (
					l.owner_id = ?
					OR EXISTS (SELECT 1 FROM list_participants p WHERE p.list_id = l.id AND p.user_id = ?)
				)
		`,
		listID,
		userID,
		userID,
	)
	if err != nil {
		return false, err
	}

	return matches > 0, nil
}

func (db *DB) GetListItems(ctx context.Context, listID int64) ([]models.ListItem, error) {
	items := []models.ListItem{}
	err := db.database.SelectContext(
		ctx,
		&items,
		db.database.Rebind(selectItemQuery+" WHERE list_id = ? ORDER BY id"),
		listID,
	)
	if err != nil {
		return nil, err
	}

	return items, nil
}

func (db *DB) getItem(ctx context.Context, q sqlx.ExtContext, id int64) (*models.ListItem, bool, error) {
	var item models.ListItem
	found, err := getOne(ctx, q, &item, selectItemQuery+" WHERE id = ?", id)
	if err != nil || !found {
		return nil, found, err
	}

	return &item, true, nil
}

func (db *DB) GetListItem(ctx context.Context, id int64) (*models.ListItem, bool, error) {
	return db.getItem(ctx, db.database, id)
}

func (db *DB) CreateListItem(ctx context.Context, item *models.ListItem) (*models.ListItem, error) {
	if item.Quantity < 0 {
		return nil, fmt.Errorf("quantity %d: %w", item.Quantity, storage.ErrInvalidArgument)
	}

	created := *item
	if created.Quantity == 0 {
		created.Quantity = 1
	}
	if created.Status == "" {
		created.Status = models.ItemStatusPending
	}

	err := db.inTransaction(ctx, func(tx *sqlx.Tx) error {
		var listColor string
		found, err := getOne(ctx, tx, &listColor, `SELECT color FROM shopping_lists WHERE id = ?`, item.ListID)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("list %d: %w", item.ListID, storage.ErrNotFound)
		}
		if created.Color == "" {
			created.Color = listColor
		}

		return tx.QueryRowxContext(
			ctx,
			tx.Rebind(`
				INSERT INTO list_items (name, quantity, unit, category, status, list_id, color)
				VALUES (?, ?, ?, ?, ?, ?, ?)
				RETURNING id
			`),
			created.Name,
			created.Quantity,
			created.Unit,
			created.Category,
			created.Status,
			created.ListID,
			created.Color,
		).Scan(&created.ID)
	})
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (db *DB) UpdateListItem(ctx context.Context, id int64, patch models.ItemPatch) (*models.ListItem, error) {
	if patch.Quantity != nil && *patch.Quantity < 1 {
		return nil, fmt.Errorf("quantity %d: %w", *patch.Quantity, storage.ErrInvalidArgument)
	}

	var result *models.ListItem
	err := db.inTransaction(ctx, func(tx *sqlx.Tx) error {
		existing, found, err := db.getItem(ctx, tx, id)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("item %d: %w", id, storage.ErrNotFound)
		}

		patch.Apply(existing)
		_, err = tx.ExecContext(
			ctx,
			tx.Rebind(`
				UPDATE list_items
				SET name = ?, quantity = ?, unit = ?, category = ?, status = ?, color = ?
				WHERE id = ?
			`),
			existing.Name,
			existing.Quantity,
			existing.Unit,
			existing.Category,
			existing.Status,
			existing.Color,
			id,
		)
		if err != nil {
			return fmt.Errorf("in internal/db/sqldb/sqldb.go/UpdateListItem(): error while updating item: %w", err)
		}
		result = existing

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (db *DB) DeleteListItem(ctx context.Context, id int64) error {
	_, err := db.database.ExecContext(ctx, db.database.Rebind(`DELETE FROM list_items WHERE id = ?`), id)

	return err
}

func (db *DB) GetListParticipants(ctx context.Context, listID int64) ([]user.User, error) {
	participants := []user.User{}
	err := db.database.SelectContext(
		ctx,
		&participants,
		db.database.Rebind(`
			SELECT u.id, u.username, u.password, u.name, u.email, u.avatar_url
			FROM list_participants p
			JOIN users u ON u.id = p.user_id
			WHERE p.list_id = ?
			ORDER BY p.id
		`),
		listID,
	)
	if err != nil {
		return nil, err
	}

	return participants, nil
}

func (db *DB) getParticipant(
	ctx context.Context,
	q sqlx.ExtContext,
	listID, userID int64,
) (*models.ListParticipant, bool, error) {
	var participant models.ListParticipant
	found, err := getOne(
		ctx,
		q,
		&participant,
		`SELECT id, list_id, user_id FROM list_participants WHERE list_id = ? AND user_id = ?`,
		listID,
		userID,
	)
	if err != nil || !found {
		return nil, found, err
	}

	return &participant, true, nil
}

func (db *DB) GetListParticipant(ctx context.Context, listID, userID int64) (*models.ListParticipant, bool, error) {
	return db.getParticipant(ctx, db.database, listID, userID)
}

func (db *DB) IsListSharedWithUser(ctx context.Context, listID, userID int64) (bool, error) {
	_, found, err := db.getParticipant(ctx, db.database, listID, userID)

	return found, err
}

func (db *DB) AddListParticipant(
	ctx context.Context,
	participant *models.ListParticipant,
) (*models.ListParticipant, error) {
	created := *participant
	err := db.inTransaction(ctx, func(tx *sqlx.Tx) error {
		var ownerID int64
		found, err := getOne(ctx, tx, &ownerID, `SELECT owner_id FROM shopping_lists WHERE id = ?`, participant.ListID)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("list %d: %w", participant.ListID, storage.ErrNotFound)
		}
		if ownerID == participant.UserID {
			return fmt.Errorf("owner cannot be a participant: %w", storage.ErrConflict)
		}

		err = tx.QueryRowxContext(
			ctx,
			tx.Rebind(`INSERT INTO list_participants (list_id, user_id) VALUES (?, ?) RETURNING id`),
			participant.ListID,
			participant.UserID,
		).Scan(&created.ID)
		if err != nil {
			return db.constraintErr(
				err,
				fmt.Sprintf("sharing list %d with user %d", participant.ListID, participant.UserID),
			)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (db *DB) RemoveListParticipant(ctx context.Context, id int64) error {
	_, err := db.database.ExecContext(ctx, db.database.Rebind(`DELETE FROM list_participants WHERE id = ?`), id)

	return err
}

func (db *DB) GetStats(ctx context.Context) (models.Stats, error) {
	var stats models.Stats
	err := db.database.GetContext(
		ctx,
		&stats,
		`
			SELECT
				(SELECT COUNT(*) FROM users) AS users,
				(SELECT COUNT(*) FROM shopping_lists) AS lists,
				(SELECT COUNT(*) FROM list_items) AS items,
				(SELECT COUNT(*) FROM list_participants) AS participants
		`,
	)
	if err != nil {
		return models.Stats{}, fmt.Errorf("in internal/db/sqldb/sqldb.go/GetStats(): error while `db.database.GetContext()` calling: %w", err)
	}

	return stats, nil
}
