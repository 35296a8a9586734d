package auth

import (
	"encoding/json"

	"github.com/ostiary-dev/ostiary/internal/shared"
)

// AdminUsername names the bootstrap account that can never be edited or
// deleted through the admin surface.
const AdminUsername = "admin"

// User is an account with credentials plus role and permission assignments.
// The username is the primary key.
type User struct {
	Username    string
	Password    PasswordHash
	Roles       shared.StringSet
	Permissions shared.StringSet
}

// NewUser constructs a User with a freshly derived password hash.
func NewUser(username, password string, iterations int, algorithm string) (User, error) {
	hash, err := NewPasswordHash(password, iterations, algorithm)
	if err != nil {
		return User{}, err
	}
	return User{
		Username:    username,
		Password:    hash,
		Roles:       shared.NewStringSet(),
		Permissions: shared.NewStringSet(),
	}, nil
}

// Clone returns an independent copy of the user.
func (u User) Clone() User {
	c := u
	c.Roles = u.Roles.Clone()
	c.Permissions = u.Permissions.Clone()
	c.Password.Hash = append([]byte(nil), u.Password.Hash...)
	c.Password.Salt = append([]byte(nil), u.Password.Salt...)
	return c
}

type userJSON struct {
	Username    string           `json:"username"`
	Roles       shared.StringSet `json:"roles"`
	Permissions shared.StringSet `json:"permissions"`
}

// MarshalJSON encodes the user without its password hash.
func (u User) MarshalJSON() ([]byte, error) {
	return json.Marshal(userJSON{Username: u.Username, Roles: u.Roles, Permissions: u.Permissions})
}
