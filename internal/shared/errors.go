package shared

import "errors"

var (
	// ErrNotFound indicates the referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrProtected indicates an attempt to edit or delete a built-in entity.
	ErrProtected = errors.New("entity is protected")
	// ErrInvalidValue indicates a value outside a variable's allowed set.
	ErrInvalidValue = errors.New("value not allowed")
)
