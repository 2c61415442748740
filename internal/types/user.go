package types

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed classification of a user controlling its default trust
// level. Roles are serialized with explicit string tags, never positionally.
type Role string

const (
	// RoleAdmin has direct access to the platform and to other users.
	RoleAdmin Role = "ADMIN"
	// RoleRegistered has direct access to the platform.
	RoleRegistered Role = "REGISTERED"
	// RoleUnregistered interacts only through the messaging platform and has
	// no credentials of its own.
	RoleUnregistered Role = "UNREGISTERED"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleRegistered, RoleUnregistered:
		return true
	}
	return false
}

// User is the core identity entity. Email and PasswordHash are optional for
// unregistered users, which exist only through their Telegram identity.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        *string   `json:"email,omitempty"`
	PasswordHash *string   `json:"-"`
	TelegramID   string    `json:"telegram_id"`
	FirstName    *string   `json:"first_name,omitempty"`
	LastName     *string   `json:"last_name,omitempty"`
	Role         Role      `json:"role"`
	IsStaff      bool      `json:"is_staff"`
	IsSuperuser  bool      `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsRegistered reports whether the user may access the platform directly.
func (u *User) IsRegistered() bool {
	return u.Role != RoleUnregistered
}

// IsAdmin reports whether the user holds administrative privileges, either
// through the superuser flag or the ADMIN role.
func (u *User) IsAdmin() bool {
	return u.IsSuperuser || u.Role == RoleAdmin
}

// Validate checks the role/credential invariant and returns every violation
// at once. Called before any persistence write; a nil result means valid.
func (u *User) Validate() *ValidationError {
	ve := NewValidationError()

	if !u.Role.Valid() {
		ve.Add("role", "must be one of ADMIN, REGISTERED, UNREGISTERED")
	}
	if u.Username == "" {
		ve.Add("username", "must not be empty")
	}
	if u.TelegramID == "" {
		ve.Add("telegram_id", "must not be empty")
	}

	if u.Role == RoleRegistered || u.Role == RoleAdmin {
		if u.Email == nil || *u.Email == "" {
			ve.Add("email", "registered users must have an email")
		}
		if u.PasswordHash == nil || *u.PasswordHash == "" {
			ve.Add("password", "registered users must have a password")
		}
	}

	if ve.HasErrors() {
		return ve
	}
	return nil
}

// UserAdminView is the full field projection returned to admin callers.
type UserAdminView struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	Email      *string   `json:"email"`
	TelegramID string    `json:"telegram_id"`
	FirstName  *string   `json:"first_name"`
	LastName   *string   `json:"last_name"`
	Role       Role      `json:"role"`
	IsStaff    bool      `json:"is_staff"`
	CreatedAt  time.Time `json:"date_joined"`
}

// UserView is the restricted projection returned to the user themself and
// from public sign-up. It never exposes role or staff status.
type UserView struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	Email      *string   `json:"email"`
	TelegramID string    `json:"telegram_id"`
	FirstName  *string   `json:"first_name"`
	LastName   *string   `json:"last_name"`
}

// AdminView projects the user onto the full admin field set.
func (u *User) AdminView() UserAdminView {
	return UserAdminView{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		TelegramID: u.TelegramID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Role:       u.Role,
		IsStaff:    u.IsStaff,
		CreatedAt:  u.CreatedAt,
	}
}

// View projects the user onto the restricted field set.
func (u *User) View() UserView {
	return UserView{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		TelegramID: u.TelegramID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
	}
}

// CreateUserParams carries the full field set accepted by the admin create
// endpoint. Password is plain text here; the service hashes it before the
// repository ever sees it.
type CreateUserParams struct {
	Username   string  `json:"username"`
	Email      *string `json:"email,omitempty"`
	Password   *string `json:"password,omitempty"`
	TelegramID string  `json:"telegram_id"`
	FirstName  *string `json:"first_name,omitempty"`
	LastName   *string `json:"last_name,omitempty"`
	Role       Role    `json:"role"`
	IsStaff    bool    `json:"is_staff"`
}

// UpdateUserParams carries the admin-mutable field set. Pointers distinguish
// "not provided" from zero values, allowing partial updates.
type UpdateUserParams struct {
	Username   *string `json:"username,omitempty"`
	Email      *string `json:"email,omitempty"`
	Password   *string `json:"password,omitempty"`
	TelegramID *string `json:"telegram_id,omitempty"`
	FirstName  *string `json:"first_name,omitempty"`
	LastName   *string `json:"last_name,omitempty"`
	Role       *Role   `json:"role,omitempty"`
	IsStaff    *bool   `json:"is_staff,omitempty"`
}

// UpdateAccountParams carries the non-privileged fields a registered user may
// change on their own record. Email and telegram id are read-only here.
type UpdateAccountParams struct {
	Username  *string `json:"username,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

// SignUpParams is the public self-registration payload. Role and staff flags
// are deliberately absent: sign-up always produces a REGISTERED user.
type SignUpParams struct {
	Username   string  `json:"username"`
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	TelegramID string  `json:"telegram_id"`
	FirstName  *string `json:"first_name,omitempty"`
	LastName   *string `json:"last_name,omitempty"`
}
