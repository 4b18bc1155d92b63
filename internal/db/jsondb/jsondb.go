// Package jsondb provides a map-based implementation of the storage contract.
// When created with a file name the whole cache is mirrored to that file as JSON
// after every mutation, so the data survives restarts.
package jsondb

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/shoplist/internal/db/storage"
	"github.com/patric-chuzhbe/shoplist/internal/models"
	"github.com/patric-chuzhbe/shoplist/internal/user"
)

// JSONDB keeps all entities in memory. Access is serialized by mu.
type JSONDB struct {
	fileName string
	mu       sync.RWMutex
	Cache    CacheStruct
}

// CacheStruct is the persisted shape of the database.
type CacheStruct struct {
	Users        map[int64]*user.User
	Lists        map[int64]*models.ShoppingList
	Items        map[int64]*models.ListItem
	Participants map[int64]*models.ListParticipant

	NextUserID        int64
	NextListID        int64
	NextItemID        int64
	NextParticipantID int64
}

// NewCache returns an empty cache with id sequences starting at 1.
func NewCache() CacheStruct {
	return CacheStruct{
		Users:             map[int64]*user.User{},
		Lists:             map[int64]*models.ShoppingList{},
		Items:             map[int64]*models.ListItem{},
		Participants:      map[int64]*models.ListParticipant{},
		NextUserID:        1,
		NextListID:        1,
		NextItemID:        1,
		NextParticipantID: 1,
	}
}

// NewInMemory returns a JSONDB that never touches the file system.
func NewInMemory() *JSONDB {
	return &JSONDB{Cache: NewCache()}
}

// New loads fileName, creating it when it does not exist yet.
func New(fileName string) (*JSONDB, error) {
	db := &JSONDB{
		fileName: fileName,
		Cache:    NewCache(),
	}

	err := parseJSONFile(fileName, &db.Cache)
	if err == nil {
		db.Cache.fillGaps()
		return db, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("in internal/db/jsondb/jsondb.go/New(): error while `parseJSONFile()` calling: %w", err)
	}

	if err := writeToJSONFile(fileName, db.Cache); err != nil {
		return nil, fmt.Errorf("in internal/db/jsondb/jsondb.go/New(): error while `writeToJSONFile()` calling: %w", err)
	}

	return db, nil
}

func (c *CacheStruct) fillGaps() {
	empty := NewCache()
	if c.Users == nil {
		c.Users = empty.Users
	}
	if c.Lists == nil {
		c.Lists = empty.Lists
	}
	if c.Items == nil {
		c.Items = empty.Items
	}
	if c.Participants == nil {
		c.Participants = empty.Participants
	}
	c.NextUserID = max(c.NextUserID, 1)
	c.NextListID = max(c.NextListID, 1)
	c.NextItemID = max(c.NextItemID, 1)
	c.NextParticipantID = max(c.NextParticipantID, 1)
}

func writeToJSONFile(fileName string, cache interface{}) error {
	jsonData, err := json.MarshalIndent(cache, "", "\t")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(fileName), filepath.Base(fileName)+".*.tmp")
	if err != nil {
		return fmt.Errorf("error creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(jsonData); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing to file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error closing file: %w", err)
	}

	return os.Rename(tmp.Name(), fileName)
}

func parseJSONFile(fileName string, cache *CacheStruct) error {
	file, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewDecoder(file).Decode(cache)
}

// userRecord is how a user is stored on disk. user.User hides the password
// hash from JSON, the file must keep it.
type userRecord struct {
	user.User
	PasswordHash string `json:"passwordHash"`
}

type cacheAlias CacheStruct

func (c CacheStruct) MarshalJSON() ([]byte, error) {
	users := make(map[int64]userRecord, len(c.Users))
	for id, usr := range c.Users {
		users[id] = userRecord{User: *usr, PasswordHash: usr.Password}
	}

	return json.Marshal(struct {
		cacheAlias
		Users map[int64]userRecord
	}{
		cacheAlias: cacheAlias(c),
		Users:      users,
	})
}

func (c *CacheStruct) UnmarshalJSON(data []byte) error {
	snapshot := struct {
		*cacheAlias
		Users map[int64]userRecord
	}{
		cacheAlias: (*cacheAlias)(c),
	}
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return err
	}

	c.Users = make(map[int64]*user.User, len(snapshot.Users))
	for id, record := range snapshot.Users {
		usr := record.User
		usr.Password = record.PasswordHash
		c.Users[id] = &usr
	}

	return nil
}

// persist must be called with mu held for writing.
func (db *JSONDB) persist() error {
	if db.fileName == "" {
		return nil
	}

	return writeToJSONFile(db.fileName, db.Cache)
}

// draft returns the cache a mutation works on. File-backed databases get a
// copy of the maps, so nothing changes until commit has written it out.
// Stored entities are never modified in place, only replaced.
func (db *JSONDB) draft() CacheStruct {
	next := db.Cache
	if db.fileName == "" {
		return next
	}

	next.Users = maps.Clone(db.Cache.Users)
	next.Lists = maps.Clone(db.Cache.Lists)
	next.Items = maps.Clone(db.Cache.Items)
	next.Participants = maps.Clone(db.Cache.Participants)

	return next
}

// commit must be called with mu held for writing.
func (db *JSONDB) commit(next CacheStruct) error {
	if db.fileName != "" {
		if err := writeToJSONFile(db.fileName, next); err != nil {
			return fmt.Errorf("in internal/db/jsondb/jsondb.go/commit(): error while `writeToJSONFile()` calling: %w", err)
		}
	}
	db.Cache = next

	return nil
}

// Ping always succeeds: there is no connection to check.
func (db *JSONDB) Ping(ctx context.Context) error {
	return nil
}

// Close flushes the cache to disk.
func (db *JSONDB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	return db.persist()
}

func (db *JSONDB) GetUser(ctx context.Context, id int64) (*user.User, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	usr, found := db.Cache.Users[id]
	if !found {
		return nil, false, nil
	}
	result := *usr

	return &result, true, nil
}

func (db *JSONDB) GetUserByUsername(ctx context.Context, username string) (*user.User, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	usr := db.findUser(func(usr *user.User) bool { return usr.Username == username })
	if usr == nil {
		return nil, false, nil
	}
	result := *usr

	return &result, true, nil
}

func (db *JSONDB) GetUserByEmail(ctx context.Context, email string) (*user.User, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	usr := db.findUser(func(usr *user.User) bool { return usr.Email == email })
	if usr == nil {
		return nil, false, nil
	}
	result := *usr

	return &result, true, nil
}

func (db *JSONDB) findUser(predicate func(*user.User) bool) *user.User {
	found := funk.Find(funk.Values(db.Cache.Users), predicate)
	if found == nil {
		return nil
	}

	return found.(*user.User)
}

func (db *JSONDB) CreateUser(ctx context.Context, usr *user.User) (*user.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	clash := db.findUser(func(existing *user.User) bool {
		return existing.Username == usr.Username || existing.Email == usr.Email
	})
	if clash != nil {
		return nil, fmt.Errorf("username or email already taken: %w", storage.ErrConflict)
	}

	next := db.draft()
	created := *usr
	created.ID = next.NextUserID
	next.NextUserID++
	next.Users[created.ID] = &created

	if err := db.commit(next); err != nil {
		return nil, err
	}
	result := created

	return &result, nil
}

func (db *JSONDB) UpdateUser(ctx context.Context, id int64, patch user.Patch) (*user.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	existing, found := db.Cache.Users[id]
	if !found {
		return nil, fmt.Errorf("user %d: %w", id, storage.ErrNotFound)
	}

	if patch.Email != nil {
		clash := db.findUser(func(other *user.User) bool {
			return other.ID != id && other.Email == *patch.Email
		})
		if clash != nil {
			return nil, fmt.Errorf("email already taken: %w", storage.ErrConflict)
		}
	}

	next := db.draft()
	updated := *existing
	patch.Apply(&updated)
	next.Users[id] = &updated

	if err := db.commit(next); err != nil {
		return nil, err
	}
	result := updated

	return &result, nil
}

// enrich must be called with mu held.
func (db *JSONDB) enrich(list *models.ShoppingList) models.ShoppingList {
	result := *list
	result.OwnerName = nil
	result.OwnerAvatarURL = nil
	if owner, found := db.Cache.Users[list.OwnerID]; found {
		name := owner.Name
		result.OwnerName = &name
		if owner.AvatarURL != nil {
			avatar := *owner.AvatarURL
			result.OwnerAvatarURL = &avatar
		}
	}

	return result
}

func (db *JSONDB) GetListByID(ctx context.Context, id int64) (*models.ShoppingList, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	list, found := db.Cache.Lists[id]
	if !found {
		return nil, false, nil
	}
	result := db.enrich(list)

	return &result, true, nil
}

func (db *JSONDB) GetUserLists(ctx context.Context, userID int64) ([]models.ShoppingList, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	owned := funk.Filter(
		funk.Values(db.Cache.Lists),
		func(list *models.ShoppingList) bool { return list.OwnerID == userID },
	).([]*models.ShoppingList)
	sort.Slice(owned, func(i, j int) bool { return owned[i].ID < owned[j].ID })

	shares := funk.Filter(
		funk.Values(db.Cache.Participants),
		func(p *models.ListParticipant) bool { return p.UserID == userID },
	).([]*models.ListParticipant)
	sort.Slice(shares, func(i, j int) bool { return shares[i].ID < shares[j].ID })

	result := make([]models.ShoppingList, 0, len(owned)+len(shares))
	for _, list := range owned {
		result = append(result, db.enrich(list))
	}
	for _, share := range shares {
		if list, found := db.Cache.Lists[share.ListID]; found {
			result = append(result, db.enrich(list))
		}
	}

	return result, nil
}

func (db *JSONDB) CreateList(ctx context.Context, list *models.ShoppingList) (*models.ShoppingList, error) {
	if list.OwnerID == 0 {
		return nil, fmt.Errorf("list without owner: %w", storage.ErrInvalidArgument)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if _, found := db.Cache.Users[list.OwnerID]; !found {
		return nil, fmt.Errorf("owner %d: %w", list.OwnerID, storage.ErrNotFound)
	}

	next := db.draft()
	created := *list
	created.ID = next.NextListID
	created.OwnerName = nil
	created.OwnerAvatarURL = nil
	if created.Color == "" {
		created.Color = models.DefaultListColor
	}
	next.NextListID++
	next.Lists[created.ID] = &created

	if err := db.commit(next); err != nil {
		return nil, err
	}
	result := db.enrich(&created)

	return &result, nil
}

func (db *JSONDB) UpdateList(ctx context.Context, id int64, patch models.ListPatch) (*models.ShoppingList, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	existing, found := db.Cache.Lists[id]
	if !found {
		return nil, fmt.Errorf("list %d: %w", id, storage.ErrNotFound)
	}

	next := db.draft()
	updated := *existing
	patch.Apply(&updated)
	next.Lists[id] = &updated

	if err := db.commit(next); err != nil {
		return nil, err
	}
	result := db.enrich(&updated)

	return &result, nil
}

func (db *JSONDB) DeleteList(ctx context.Context, id int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, found := db.Cache.Lists[id]; !found {
		return nil
	}

	next := db.draft()
	delete(next.Lists, id)
	for itemID, item := range next.Items {
		if item.ListID == id {
			delete(next.Items, itemID)
		}
	}
	for participantID, participant := range next.Participants {
		if participant.ListID == id {
			delete(next.Participants, participantID)
		}
	}

	return db.commit(next)
}

func (db *JSONDB) CanUserAccessList(ctx context.Context, userID, listID int64) (bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	list, found := db.Cache.Lists[listID]
	if !found {
		return false, nil
	}
	if list.OwnerID == userID {
		return true, nil
	}

	return db.findParticipant(listID, userID) != nil, nil
}

func (db *JSONDB) GetListItems(ctx context.Context, listID int64) ([]models.ListItem, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	items := funk.Filter(
		funk.Values(db.Cache.Items),
		func(item *models.ListItem) bool { return item.ListID == listID },
	).([]*models.ListItem)
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	result := make([]models.ListItem, 0, len(items))
	for _, item := range items {
		result = append(result, *item)
	}

	return result, nil
}

func (db *JSONDB) GetListItem(ctx context.Context, id int64) (*models.ListItem, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	item, found := db.Cache.Items[id]
	if !found {
		return nil, false, nil
	}
	result := *item

	return &result, true, nil
}

func (db *JSONDB) CreateListItem(ctx context.Context, item *models.ListItem) (*models.ListItem, error) {
	if item.Quantity < 0 {
		return nil, fmt.Errorf("quantity %d: %w", item.Quantity, storage.ErrInvalidArgument)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	list, found := db.Cache.Lists[item.ListID]
	if !found {
		return nil, fmt.Errorf("list %d: %w", item.ListID, storage.ErrNotFound)
	}

	next := db.draft()
	created := *item
	created.ID = next.NextItemID
	if created.Quantity == 0 {
		created.Quantity = 1
	}
	if created.Status == "" {
		created.Status = models.ItemStatusPending
	}
	if created.Color == "" {
		created.Color = list.Color
	}
	next.NextItemID++
	next.Items[created.ID] = &created

	if err := db.commit(next); err != nil {
		return nil, err
	}
	result := created

	return &result, nil
}

func (db *JSONDB) UpdateListItem(ctx context.Context, id int64, patch models.ItemPatch) (*models.ListItem, error) {
	if patch.Quantity != nil && *patch.Quantity < 1 {
		return nil, fmt.Errorf("quantity %d: %w", *patch.Quantity, storage.ErrInvalidArgument)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	existing, found := db.Cache.Items[id]
	if !found {
		return nil, fmt.Errorf("item %d: %w", id, storage.ErrNotFound)
	}

	next := db.draft()
	updated := *existing
	patch.Apply(&updated)
	next.Items[id] = &updated

	if err := db.commit(next); err != nil {
		return nil, err
	}
	result := updated

	return &result, nil
}

func (db *JSONDB) DeleteListItem(ctx context.Context, id int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, found := db.Cache.Items[id]; !found {
		return nil
	}
	next := db.draft()
	delete(next.Items, id)

	return db.commit(next)
}

func (db *JSONDB) findParticipant(listID, userID int64) *models.ListParticipant {
	found := funk.Find(
		funk.Values(db.Cache.Participants),
		func(p *models.ListParticipant) bool { return p.ListID == listID && p.UserID == userID },
	)
	if found == nil {
		return nil
	}

	return found.(*models.ListParticipant)
}

func (db *JSONDB) GetListParticipants(ctx context.Context, listID int64) ([]user.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	shares := funk.Filter(
		funk.Values(db.Cache.Participants),
		func(p *models.ListParticipant) bool { return p.ListID == listID },
	).([]*models.ListParticipant)
	sort.Slice(shares, func(i, j int) bool { return shares[i].ID < shares[j].ID })

	result := make([]user.User, 0, len(shares))
	for _, share := range shares {
		if usr, found := db.Cache.Users[share.UserID]; found {
			result = append(result, *usr)
		}
	}

	return result, nil
}

func (db *JSONDB) GetListParticipant(ctx context.Context, listID, userID int64) (*models.ListParticipant, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	participant := db.findParticipant(listID, userID)
	if participant == nil {
		return nil, false, nil
	}
	result := *participant

	return &result, true, nil
}

func (db *JSONDB) IsListSharedWithUser(ctx context.Context, listID, userID int64) (bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.findParticipant(listID, userID) != nil, nil
}

func (db *JSONDB) AddListParticipant(
	ctx context.Context,
	participant *models.ListParticipant,
) (*models.ListParticipant, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	list, found := db.Cache.Lists[participant.ListID]
	if !found {
		return nil, fmt.Errorf("list %d: %w", participant.ListID, storage.ErrNotFound)
	}
	if _, found := db.Cache.Users[participant.UserID]; !found {
		return nil, fmt.Errorf("user %d: %w", participant.UserID, storage.ErrNotFound)
	}
	if list.OwnerID == participant.UserID {
		return nil, fmt.Errorf("owner cannot be a participant: %w", storage.ErrConflict)
	}
	if db.findParticipant(participant.ListID, participant.UserID) != nil {
		return nil, fmt.Errorf("list %d already shared with user %d: %w",
			participant.ListID, participant.UserID, storage.ErrConflict)
	}

	next := db.draft()
	created := *participant
	created.ID = next.NextParticipantID
	next.NextParticipantID++
	next.Participants[created.ID] = &created

	if err := db.commit(next); err != nil {
		return nil, err
	}
	result := created

	return &result, nil
}

func (db *JSONDB) RemoveListParticipant(ctx context.Context, id int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, found := db.Cache.Participants[id]; !found {
		return nil
	}
	next := db.draft()
	delete(next.Participants, id)

	return db.commit(next)
}

func (db *JSONDB) GetStats(ctx context.Context) (models.Stats, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return models.Stats{
		Users:        int64(len(db.Cache.Users)),
		Lists:        int64(len(db.Cache.Lists)),
		Items:        int64(len(db.Cache.Items)),
		Participants: int64(len(db.Cache.Participants)),
	}, nil
}
