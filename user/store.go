package user

import (
	"context"
	"errors"
)

var (
	// ErrUserNotFound is returned when no record has the requested uid.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateUID is returned when a record with the same uid already exists.
	ErrDuplicateUID = errors.New("uid already exists")

	// ErrMissingUID is returned when a record without a uid is stored.
	ErrMissingUID = errors.New("uid is required")
)

// Store defines the interface for user persistence operations.
type Store interface {
	// List returns every record in collection order.
	List(ctx context.Context) ([]User, error)

	// Get retrieves a record by uid.
	Get(ctx context.Context, uid string) (*User, error)

	// Create inserts a record at the front of the collection.
	Create(ctx context.Context, user *User) error

	// Update applies the setters to the record with the given uid, keeping
	// its position and uid.
	Update(ctx context.Context, uid string, setters ...UpdateSetter) error

	// Delete removes the record with the given uid.
	Delete(ctx context.Context, uid string) error
}

// UpdateSetter is a function that updates a user field.
type UpdateSetter func(*User) error
