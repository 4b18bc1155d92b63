// Package user defines the user model used throughout the application,
// particularly for authentication, list ownership and sharing.
package user

// User represents a registered account.
type User struct {
	// ID is the unique identifier of the user, assigned by the storage.
	ID int64 `json:"id" db:"id"`

	Username string `json:"username" db:"username"`

	// Password holds the bcrypt hash. It never leaves the server.
	Password string `json:"-" db:"password"`

	Name      string  `json:"name" db:"name"`
	Email     string  `json:"email" db:"email"`
	AvatarURL *string `json:"avatarUrl" db:"avatar_url"`
}

// Patch lists the user fields that may change after registration.
// A nil field is left untouched.
type Patch struct {
	Name      *string
	Email     *string
	AvatarURL *string
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.AvatarURL == nil
}

// Apply merges the patch into usr.
func (p Patch) Apply(usr *User) {
	if p.Name != nil {
		usr.Name = *p.Name
	}
	if p.Email != nil {
		usr.Email = *p.Email
	}
	if p.AvatarURL != nil {
		usr.AvatarURL = NullIfEmpty(*p.AvatarURL)
	}
}

// NullIfEmpty maps an empty optional string to nil so that "cleared" and
// "never set" look the same in every storage.
func NullIfEmpty(value string) *string {
	if value == "" {
		return nil
	}

	return &value
}
