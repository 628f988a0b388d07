package session

import (
	"errors"
	"sync"
	"time"

	"github.com/hairizuan-noorazman/user-registry/debounce"
	"github.com/hairizuan-noorazman/user-registry/listview"
	"github.com/hairizuan-noorazman/user-registry/user"
)

var (
	// ErrSessionNotFound is returned when a session is not found.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired is returned when a session has expired.
	ErrSessionExpired = errors.New("session expired")
)

// State is the view state of one client: the search text, the sort spec and
// the editor. It is safe for concurrent use.
type State struct {
	ID        string
	CreatedAt time.Time
	ExpiresAt time.Time

	mu         sync.Mutex
	typed      string
	search     string
	sort       listview.SortSpec
	editorOpen bool
	selected   *user.User
	debouncer  *debounce.Debouncer[string]
}

// Snapshot is a point-in-time copy of a State.
type Snapshot struct {
	ID         string            `json:"id"`
	Typed      string            `json:"typed"`
	Search     string            `json:"search"`
	Sort       listview.SortSpec `json:"sort"`
	EditorOpen bool              `json:"editorOpen"`
	Selected   *user.User        `json:"selected"`
}

// NewState creates an empty view state. Search text settles after
// searchDelay; see debounce.New for the default.
func NewState(id string, now time.Time, duration, searchDelay time.Duration) *State {
	st := &State{
		ID:        id,
		CreatedAt: now,
		ExpiresAt: now.Add(duration),
	}
	st.debouncer = debounce.New(searchDelay, st.applySearch)
	return st
}

// IsExpired checks if the session has expired.
func (s *State) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// SetSearchText records typed text. The search used for filtering follows
// once typing pauses.
func (s *State) SetSearchText(text string) {
	s.mu.Lock()
	s.typed = text
	s.mu.Unlock()
	s.debouncer.Push(text)
}

// FlushSearch applies pending search text immediately.
func (s *State) FlushSearch() {
	s.debouncer.Flush()
}

func (s *State) applySearch(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = text
}

// Search returns the settled search text.
func (s *State) Search() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.search
}

// Sort returns a copy of the sort spec.
func (s *State) Sort() listview.SortSpec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sort.Clone()
}

// ToggleSort advances the direction of f and returns it.
func (s *State) ToggleSort(f listview.Field) listview.Direction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sort.Toggle(f)
}

// OpenEditor opens the editor. A nil record means a create session.
func (s *State) OpenEditor(selected *user.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editorOpen = true
	if selected != nil {
		u := *selected
		s.selected = &u
	} else {
		s.selected = nil
	}
}

// CloseEditor closes the editor and clears the selection.
func (s *State) CloseEditor() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editorOpen = false
	s.selected = nil
}

// Editing returns the uid of the record being edited, if any.
func (s *State) Editing() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.editorOpen || s.selected == nil {
		return "", false
	}
	return s.selected.UID, true
}

// EditorOpen reports whether the editor is showing.
func (s *State) EditorOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editorOpen
}

// Snapshot copies the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:         s.ID,
		Typed:      s.typed,
		Search:     s.search,
		Sort:       s.sort.Clone(),
		EditorOpen: s.editorOpen,
	}
	if s.selected != nil {
		u := *s.selected
		snap.Selected = &u
	}
	return snap
}

// Close stops the search timer. Pending search text is dropped.
func (s *State) Close() {
	s.debouncer.Stop()
}

// Store is an in-memory session store.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*State
}

// NewStore creates a new in-memory session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*State),
	}
}

// Set stores a session in the store.
func (s *Store) Set(st *State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[st.ID] = st
}

// Get retrieves a session from the store.
func (s *Store) Get(id string) (*State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, exists := s.sessions[id]
	if !exists {
		return nil, ErrSessionNotFound
	}

	if st.IsExpired() {
		return nil, ErrSessionExpired
	}

	return st, nil
}

// Delete removes a session from the store.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.sessions[id]; ok {
		st.Close()
		delete(s.sessions, id)
	}
}

// Len returns the number of stored sessions, expired ones included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Cleanup removes expired sessions from the store.
func (s *Store) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	now := time.Now()
	for id, st := range s.sessions {
		if now.After(st.ExpiresAt) {
			st.Close()
			delete(s.sessions, id)
			removed++
		}
	}

	return removed
}
