package auth

import (
	"time"

	"github.com/uptrace/bun"
)

// User is the identity record. Email is unique across every role and is
// compared exactly as stored. Role never changes after registration.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id"`
	Name          string     `bun:"name,notnull" json:"name"`
	Email         string     `bun:"email,notnull,unique" json:"email"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	Role          Role       `bun:"role,notnull" json:"role"`
	Phone         string     `bun:"phone,nullzero" json:"phone,omitempty"`
	City          string     `bun:"city,nullzero" json:"city,omitempty"`
	Age           *int       `bun:"age" json:"age,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Public returns the fields that are safe to hand to a client
func (u *User) Public() PublicUser {
	if u == nil {
		return PublicUser{}
	}
	return PublicUser{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}

// Profile returns the self-service view of the record
func (u *User) Profile() ProfileView {
	if u == nil {
		return ProfileView{}
	}
	return ProfileView{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Phone: u.Phone,
		City:  u.City,
		Age:   u.Age,
	}
}

// Summary returns the admin listing view of the record
func (u *User) Summary() UserSummary {
	if u == nil {
		return UserSummary{}
	}
	return UserSummary{
		PublicUser: u.Public(),
		CreatedAt:  u.CreatedAt,
	}
}

// PublicUser is the identity shape returned by register and login
type PublicUser struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// ProfileView is returned by the per-role profile endpoints
type ProfileView struct {
	ID    int64  `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	City  string `json:"city,omitempty"`
	Age   *int   `json:"age,omitempty"`
}

// UserSummary is one row of the admin user listing
type UserSummary struct {
	PublicUser
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// Profile holds the mutable profile fields. Updates overwrite every field,
// an empty phone or city clears it.
type Profile struct {
	Name  string
	Email string
	Phone string
	City  string
	Age   *int
}

// AuthResult is the outcome of a successful registration or login
type AuthResult struct {
	User  PublicUser `json:"user"`
	Token string     `json:"token"`
}

type authIdentity struct {
	id    int64
	name  string
	email string
	role  Role
}

func (a authIdentity) ID() int64 {
	return a.id
}

func (a authIdentity) Name() string {
	return a.name
}

func (a authIdentity) Email() string {
	return a.email
}

func (a authIdentity) Role() Role {
	return a.role
}

var _ Identity = authIdentity{}

// IdentityFromUser adapts a stored record to the Identity interface
func IdentityFromUser(u *User) Identity {
	return authIdentity{
		id:    u.ID,
		name:  u.Name,
		email: u.Email,
		role:  u.Role,
	}
}
