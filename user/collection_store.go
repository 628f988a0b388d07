package user

import (
	"context"
	"errors"

	"github.com/hairizuan-noorazman/user-registry/collection"
	"github.com/hairizuan-noorazman/user-registry/logger"
)

// CollectionStore implements Store over a single persisted collection. Every
// mutation rewrites the whole collection.
type CollectionStore struct {
	records *collection.Collection[User]
	logger  logger.Logger
}

// NewCollectionStore creates a store backed by the given collection.
func NewCollectionStore(records *collection.Collection[User], log logger.Logger) *CollectionStore {
	return &CollectionStore{
		records: records,
		logger:  log,
	}
}

// List returns every record in collection order.
func (s *CollectionStore) List(ctx context.Context) ([]User, error) {
	return s.records.Load(ctx), nil
}

// Get retrieves a record by uid.
func (s *CollectionStore) Get(ctx context.Context, uid string) (*User, error) {
	for _, u := range s.records.Load(ctx) {
		if u.UID == uid {
			found := u
			return &found, nil
		}
	}
	return nil, ErrUserNotFound
}

// Create prepends the record to the collection.
func (s *CollectionStore) Create(ctx context.Context, user *User) error {
	if user.UID == "" {
		return ErrMissingUID
	}

	err := s.records.Modify(ctx, func(users []User) ([]User, error) {
		if indexOf(users, user.UID) >= 0 {
			return nil, ErrDuplicateUID
		}
		out := make([]User, 0, len(users)+1)
		out = append(out, *user)
		return append(out, users...), nil
	})
	if err != nil {
		s.logger.Error(ctx, "failed to create user", logger.Fields{
			"error": err.Error(),
			"uid":   user.UID,
		})
		return err
	}

	s.logger.Info(ctx, "user created", logger.Fields{
		"uid":   user.UID,
		"email": user.Email,
	})
	return nil
}

// Update applies the setters to the matching record in place.
func (s *CollectionStore) Update(ctx context.Context, uid string, setters ...UpdateSetter) error {
	err := s.records.Modify(ctx, func(users []User) ([]User, error) {
		i := indexOf(users, uid)
		if i < 0 {
			return nil, ErrUserNotFound
		}

		updated := users[i]
		for _, setter := range setters {
			if err := setter(&updated); err != nil {
				return nil, err
			}
		}
		// Setters cannot re-key a record.
		updated.UID = uid

		out := make([]User, len(users))
		copy(out, users)
		out[i] = updated
		return out, nil
	})
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			s.logger.Error(ctx, "failed to update user", logger.Fields{
				"error": err.Error(),
				"uid":   uid,
			})
		}
		return err
	}

	s.logger.Info(ctx, "user updated", logger.Fields{"uid": uid})
	return nil
}

// Delete removes the matching record.
func (s *CollectionStore) Delete(ctx context.Context, uid string) error {
	err := s.records.Modify(ctx, func(users []User) ([]User, error) {
		i := indexOf(users, uid)
		if i < 0 {
			return nil, ErrUserNotFound
		}
		out := make([]User, 0, len(users)-1)
		out = append(out, users[:i]...)
		return append(out, users[i+1:]...), nil
	})
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			s.logger.Error(ctx, "failed to delete user", logger.Fields{
				"error": err.Error(),
				"uid":   uid,
			})
		}
		return err
	}

	s.logger.Info(ctx, "user deleted", logger.Fields{"uid": uid})
	return nil
}

func indexOf(users []User, uid string) int {
	for i, u := range users {
		if u.UID == uid {
			return i
		}
	}
	return -1
}
