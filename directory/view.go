package directory

import (
	"context"
	"fmt"

	"github.com/hairizuan-noorazman/user-registry/listview"
	"github.com/hairizuan-noorazman/user-registry/session"
	"github.com/hairizuan-noorazman/user-registry/user"
)

// Result is a derived list together with its rendered table.
type Result struct {
	Users []user.User       `json:"users"`
	Table listview.Table    `json:"table"`
	Sort  listview.SortSpec `json:"sort"`
	Total int               `json:"total"`
}

// EditorMode says what a submit of the editor does.
type EditorMode string

const (
	EditorClosed EditorMode = "closed"
	EditorCreate EditorMode = "create"
	EditorEdit   EditorMode = "edit"
)

// Editor is the editor state exposed to the presentation layer.
type Editor struct {
	Mode     EditorMode  `json:"mode"`
	Selected *user.User  `json:"selected,omitempty"`
	Values   *user.Input `json:"values,omitempty"`
}

// View is everything a client needs to draw its screen.
type View struct {
	Result
	Search string `json:"search"`
	Typed  string `json:"typed"`
	Editor Editor `json:"editor"`
}

// Query derives the list for search and spec without any view state.
func (s *Service) Query(ctx context.Context, search string, spec listview.SortSpec) (*Result, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := listview.Derive(all, search, spec, s.mode)
	return &Result{
		Users: users,
		Table: listview.BuildTable(users, spec),
		Sort:  spec,
		Total: len(all),
	}, nil
}

// View derives the list for the settled search and sort of st.
func (s *Service) View(ctx context.Context, st *session.State) (*View, error) {
	snap := st.Snapshot()

	res, err := s.Query(ctx, snap.Search, snap.Sort)
	if err != nil {
		return nil, err
	}

	v := &View{
		Result: *res,
		Search: snap.Search,
		Typed:  snap.Typed,
		Editor: Editor{Mode: EditorClosed},
	}
	switch {
	case snap.EditorOpen && snap.Selected != nil:
		in := snap.Selected.Input()
		v.Editor = Editor{Mode: EditorEdit, Selected: snap.Selected, Values: &in}
	case snap.EditorOpen:
		v.Editor = Editor{Mode: EditorCreate}
	}
	return v, nil
}
