// Package models holds the shopping-list entities, their typed patches and
// the request/response payloads of the HTTP API.
package models

import "github.com/patric-chuzhbe/shoplist/internal/user"

const (
	StorageTypeUnknown = iota
	StorageTypePostgresql
	StorageTypeSQLite
	StorageTypeFile
	StorageTypeMemory
)

// DefaultListColor is used when a list is created without a colour.
const DefaultListColor = "#22c55e"

const (
	ItemStatusPending   = "pending"
	ItemStatusPurchased = "purchased"
)

// ShoppingList is a list owned by one user and optionally shared with others.
// OwnerName and OwnerAvatarURL are resolved from the owner's user record on read.
type ShoppingList struct {
	ID             int64   `json:"id" db:"id"`
	Name           string  `json:"name" db:"name"`
	Description    *string `json:"description" db:"description"`
	DatePlanned    *string `json:"datePlanned" db:"date_planned"`
	TimePlanned    *string `json:"timePlanned" db:"time_planned"`
	OwnerID        int64   `json:"ownerId" db:"owner_id"`
	Color          string  `json:"color" db:"color"`
	OwnerName      *string `json:"ownerName,omitempty" db:"owner_name"`
	OwnerAvatarURL *string `json:"ownerAvatarUrl,omitempty" db:"owner_avatar_url"`
}

// ListPatch is the set of list fields an owner may change.
// A nil field is left untouched; an empty optional string clears the field.
type ListPatch struct {
	Name        *string
	Description *string
	DatePlanned *string
	TimePlanned *string
	Color       *string
}

// IsEmpty reports whether the patch changes nothing.
func (p ListPatch) IsEmpty() bool {
	return p.Name == nil &&
		p.Description == nil &&
		p.DatePlanned == nil &&
		p.TimePlanned == nil &&
		p.Color == nil
}

// Apply merges the patch into list.
func (p ListPatch) Apply(list *ShoppingList) {
	if p.Name != nil {
		list.Name = *p.Name
	}
	if p.Description != nil {
		list.Description = user.NullIfEmpty(*p.Description)
	}
	if p.DatePlanned != nil {
		list.DatePlanned = user.NullIfEmpty(*p.DatePlanned)
	}
	if p.TimePlanned != nil {
		list.TimePlanned = user.NullIfEmpty(*p.TimePlanned)
	}
	if p.Color != nil && *p.Color != "" {
		list.Color = *p.Color
	}
}

// ListItem is a single entry of a shopping list.
type ListItem struct {
	ID       int64   `json:"id" db:"id"`
	Name     string  `json:"name" db:"name"`
	Quantity int     `json:"quantity" db:"quantity"`
	Unit     *string `json:"unit" db:"unit"`
	Category *string `json:"category" db:"category"`
	Status   string  `json:"status" db:"status"`
	ListID   int64   `json:"listId" db:"list_id"`
	Color    string  `json:"color" db:"color"`
}

// ItemPatch is the set of item fields any list member may change.
// The parent list of an item never changes.
type ItemPatch struct {
	Name     *string
	Quantity *int
	Unit     *string
	Category *string
	Status   *string
	Color    *string
}

// IsEmpty reports whether the patch changes nothing.
func (p ItemPatch) IsEmpty() bool {
	return p.Name == nil &&
		p.Quantity == nil &&
		p.Unit == nil &&
		p.Category == nil &&
		p.Status == nil &&
		p.Color == nil
}

// Apply merges the patch into item.
func (p ItemPatch) Apply(item *ListItem) {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Quantity != nil {
		item.Quantity = *p.Quantity
	}
	if p.Unit != nil {
		item.Unit = user.NullIfEmpty(*p.Unit)
	}
	if p.Category != nil {
		item.Category = user.NullIfEmpty(*p.Category)
	}
	if p.Status != nil && *p.Status != "" {
		item.Status = *p.Status
	}
	if p.Color != nil && *p.Color != "" {
		item.Color = *p.Color
	}
}

// ListParticipant grants a non-owner access to a list.
type ListParticipant struct {
	ID     int64 `json:"id" db:"id"`
	ListID int64 `json:"listId" db:"list_id"`
	UserID int64 `json:"userId" db:"user_id"`
}

// Stats holds entity counters exposed by the internal stats endpoint.
type Stats struct {
	Users        int64 `json:"users" db:"users"`
	Lists        int64 `json:"lists" db:"lists"`
	Items        int64 `json:"items" db:"items"`
	Participants int64 `json:"participants" db:"participants"`
}

type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=64"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
	Name      string `json:"name" validate:"required,min=2,max=100"`
	Email     string `json:"email" validate:"required,email"`
	AvatarURL string `json:"avatarUrl" validate:"omitempty,url"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateUserRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=2,max=100"`
	AvatarURL *string `json:"avatarUrl" validate:"omitempty,url"`
}

// Patch converts the request into a user patch.
func (r UpdateUserRequest) Patch() user.Patch {
	return user.Patch{
		Name:      r.Name,
		AvatarURL: r.AvatarURL,
	}
}

type CreateListRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	DatePlanned string `json:"datePlanned" validate:"omitempty,datetime=2006-01-02"`
	TimePlanned string `json:"timePlanned" validate:"omitempty,datetime=15:04"`
	Color       string `json:"color" validate:"omitempty,listcolor"`
}

// List converts the request into a new list owned by ownerID.
func (r CreateListRequest) List(ownerID int64) *ShoppingList {
	return &ShoppingList{
		Name:        r.Name,
		Description: user.NullIfEmpty(r.Description),
		DatePlanned: user.NullIfEmpty(r.DatePlanned),
		TimePlanned: user.NullIfEmpty(r.TimePlanned),
		OwnerID:     ownerID,
		Color:       r.Color,
	}
}

// UpdateListRequest accepts any JSON object; only the fields below are read.
type UpdateListRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	DatePlanned *string `json:"datePlanned" validate:"omitempty,datetime=2006-01-02"`
	TimePlanned *string `json:"timePlanned" validate:"omitempty,datetime=15:04"`
	Color       *string `json:"color" validate:"omitempty,listcolor"`
}

// Patch converts the request into a list patch.
func (r UpdateListRequest) Patch() ListPatch {
	patch := ListPatch{
		Description: r.Description,
		DatePlanned: r.DatePlanned,
		TimePlanned: r.TimePlanned,
		Color:       r.Color,
	}
	if r.Name != nil && *r.Name != "" {
		patch.Name = r.Name
	}

	return patch
}

type CreateItemRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Quantity int    `json:"quantity" validate:"omitempty,min=1,max=100000"`
	Unit     string `json:"unit" validate:"omitempty,oneof=units kg g l ml pack"`
	Category string `json:"category" validate:"omitempty,oneof=DAIRY FRUITS VEGETABLES MEAT BAKERY FROZEN CLEANING CANNED DRINKS SNACKS CONDIMENTS OTHER"`
	Status   string `json:"status" validate:"omitempty,oneof=pending purchased"`
	Color    string `json:"color" validate:"omitempty,listcolor"`
}

// Item converts the request into a new item of the list listID.
func (r CreateItemRequest) Item(listID int64) *ListItem {
	return &ListItem{
		Name:     r.Name,
		Quantity: r.Quantity,
		Unit:     user.NullIfEmpty(r.Unit),
		Category: user.NullIfEmpty(r.Category),
		Status:   r.Status,
		ListID:   listID,
		Color:    r.Color,
	}
}

type UpdateItemRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=100"`
	Quantity *int    `json:"quantity" validate:"omitempty,min=1,max=100000"`
	Unit     *string `json:"unit" validate:"omitempty,oneof=units kg g l ml pack"`
	Category *string `json:"category" validate:"omitempty,oneof=DAIRY FRUITS VEGETABLES MEAT BAKERY FROZEN CLEANING CANNED DRINKS SNACKS CONDIMENTS OTHER"`
	Status   *string `json:"status" validate:"omitempty,oneof=pending purchased"`
	Color    *string `json:"color" validate:"omitempty,listcolor"`
}

// Patch converts the request into an item patch.
func (r UpdateItemRequest) Patch() ItemPatch {
	return ItemPatch{
		Name:     r.Name,
		Quantity: r.Quantity,
		Unit:     r.Unit,
		Category: r.Category,
		Status:   r.Status,
		Color:    r.Color,
	}
}

type ShareListRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
