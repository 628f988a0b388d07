// Package directory coordinates edits to the user collection with the view
// state of the client making them.
package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hairizuan-noorazman/user-registry/listview"
	"github.com/hairizuan-noorazman/user-registry/logger"
	"github.com/hairizuan-noorazman/user-registry/session"
	"github.com/hairizuan-noorazman/user-registry/user"
)

// Options configures a Service.
type Options struct {
	// Now is the clock used to bound dates of birth. Defaults to time.Now.
	Now func() time.Time
	// CaseSensitive switches search to a literal substring match.
	CaseSensitive bool
}

// Service implements the create, update, delete and editor operations.
type Service struct {
	store     user.Store
	validator *user.Validator
	mode      listview.MatchMode
	logger    logger.Logger
}

// NewService creates a Service over store.
func NewService(store user.Store, opts Options, log logger.Logger) *Service {
	mode := listview.MatchCaseInsensitive
	if opts.CaseSensitive {
		mode = listview.MatchCaseSensitive
	}
	return &Service{
		store:     store,
		validator: user.NewValidator(opts.Now),
		mode:      mode,
		logger:    log.WithFields(logger.Fields{"component": "directory"}),
	}
}

// Create validates in and prepends a new record. On success the editor of st
// is closed; st may be nil for callers without view state. Validation
// failures return user.FieldErrors and leave the collection and the editor
// as they were.
func (s *Service) Create(ctx context.Context, st *session.State, in user.Input) (*user.User, error) {
	values, err := s.validator.Validate(in)
	if err != nil {
		s.logValidation(ctx, "create", err)
		return nil, err
	}

	u := user.New(values)
	if err := s.store.Create(ctx, &u); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if st != nil {
		st.CloseEditor()
	}
	return &u, nil
}

// Update validates in and replaces the fields of the record with the given
// uid, keeping its position. A missing uid returns user.ErrUserNotFound and
// changes nothing.
func (s *Service) Update(ctx context.Context, st *session.State, uid string, in user.Input) (*user.User, error) {
	values, err := s.validator.Validate(in)
	if err != nil {
		s.logValidation(ctx, "update", err)
		return nil, err
	}

	if err := s.store.Update(ctx, uid, user.SetValues(values)); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if st != nil {
		st.CloseEditor()
	}
	return &user.User{UID: uid, Values: values}, nil
}

// Submit saves the editor of st: an edit session updates the selected
// record, anything else creates a new one.
func (s *Service) Submit(ctx context.Context, st *session.State, in user.Input) (*user.User, error) {
	if uid, editing := st.Editing(); editing {
		return s.Update(ctx, st, uid, in)
	}
	return s.Create(ctx, st, in)
}

// Delete removes the record with the given uid. There is no confirmation
// step.
func (s *Service) Delete(ctx context.Context, uid string) error {
	if err := s.store.Delete(ctx, uid); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// Get returns the record with the given uid.
func (s *Service) Get(ctx context.Context, uid string) (*user.User, error) {
	return s.store.Get(ctx, uid)
}

// OpenForCreate opens an empty editor.
func (s *Service) OpenForCreate(st *session.State) {
	st.OpenEditor(nil)
}

// OpenForEdit loads the record with the given uid into the editor.
func (s *Service) OpenForEdit(ctx context.Context, st *session.State, uid string) (*user.User, error) {
	u, err := s.store.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	st.OpenEditor(u)
	return u, nil
}

// Close hides the editor and clears the selection.
func (s *Service) Close(st *session.State) {
	st.CloseEditor()
}

// ToggleSort advances the sort direction of field for st.
func (s *Service) ToggleSort(st *session.State, field listview.Field) listview.Direction {
	return st.ToggleSort(field)
}

// SetSearch records search text for st. The list follows once typing
// pauses.
func (s *Service) SetSearch(st *session.State, text string) {
	st.SetSearchText(text)
}

func (s *Service) logValidation(ctx context.Context, op string, err error) {
	fields := logger.Fields{"op": op}
	if fe, ok := user.AsFieldErrors(err); ok {
		fields["fields"] = len(fe)
	}
	s.logger.Debug(ctx, "validation failed", fields)
}
