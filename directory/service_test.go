package directory

import (
	"context"
	"testing"
	"time"

	"github.com/hairizuan-noorazman/user-registry/collection"
	"github.com/hairizuan-noorazman/user-registry/listview"
	"github.com/hairizuan-noorazman/user-registry/logger"
	"github.com/hairizuan-noorazman/user-registry/session"
	"github.com/hairizuan-noorazman/user-registry/storage"
	"github.com/hairizuan-noorazman/user-registry/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func fixedNow() time.Time {
	return time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
}

func input(name, email string, age int) user.Input {
	return user.Input{
		Name:        name,
		Email:       email,
		DOB:         "1994-03-02",
		Gender:      "male",
		Age:         intPtr(age),
		Country:     "Singapore",
		PhoneNumber: "0123456789",
		IsActive:    "true",
	}
}

type fixture struct {
	svc     *Service
	store   *user.CollectionStore
	backend *storage.MemoryBackend
	state   *session.State
}

func setup(t *testing.T) *fixture {
	t.Helper()
	backend := storage.NewMemoryBackend()
	log := logger.NewTestLogger()
	store := user.NewCollectionStore(collection.New[user.User](backend, "data", log), log)
	st := session.NewState("test", time.Now(), time.Hour, time.Hour)
	t.Cleanup(st.Close)
	return &fixture{
		svc:     NewService(store, Options{Now: fixedNow}, log),
		store:   store,
		backend: backend,
		state:   st,
	}
}

func (f *fixture) list(t *testing.T) []user.User {
	t.Helper()
	users, err := f.store.List(context.Background())
	require.NoError(t, err)
	return users
}

func uids(users []user.User) []string {
	out := make([]string, len(users))
	for i, u := range users {
		out[i] = u.UID
	}
	return out
}

func TestService_CreateThenLookup(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	tests := []user.Input{
		input("Al", "al@x.com", 30),
		input("Bo", "bo@x.com", 25),
		{
			Name: "Cy", Email: "cy@y.org", DOB: "2024-06-01", Gender: "other", Age: intPtr(1),
			Country: "Malaysia", PhoneNumber: "9876543210", IsActive: "false",
		},
	}

	for _, in := range tests {
		t.Run(in.Name, func(t *testing.T) {
			created, err := f.svc.Create(ctx, nil, in)
			require.NoError(t, err)

			got, err := f.svc.Get(ctx, created.UID)
			require.NoError(t, err)

			want, err := user.NewValidator(fixedNow).Validate(in)
			require.NoError(t, err)
			assert.Equal(t, user.User{UID: created.UID, Values: want}, *got)
		})
	}
}

func TestService_CreatePrependsAndClosesEditor(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, nil, input("Al", "al@x.com", 30))
	require.NoError(t, err)

	f.svc.OpenForCreate(f.state)
	second, err := f.svc.Submit(ctx, f.state, input("Bo", "bo@x.com", 25))
	require.NoError(t, err)

	assert.Equal(t, []string{second.UID, first.UID}, uids(f.list(t)))
	snap := f.state.Snapshot()
	assert.False(t, snap.EditorOpen)
	assert.Nil(t, snap.Selected)
}

func TestService_RejectsInvalidPhone(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, nil, input("Al", "al@x.com", 30))
	require.NoError(t, err)
	before, err := f.backend.Get(ctx, "data")
	require.NoError(t, err)

	f.svc.OpenForCreate(f.state)
	in := input("Bo", "bo@x.com", 25)
	in.PhoneNumber = "12345"

	_, err = f.svc.Submit(ctx, f.state, in)
	fe, ok := user.AsFieldErrors(err)
	require.True(t, ok, "expected field errors, got %v", err)
	assert.Equal(t, user.FieldErrors{"phoneNumber": "Phone number must be 10 digits"}, fe)

	after, err := f.backend.Get(ctx, "data")
	require.NoError(t, err)
	assert.Equal(t, before, after, "collection must not change")
	assert.True(t, f.state.EditorOpen(), "editor stays open")
}

func TestService_Update(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	a, err := f.svc.Create(ctx, nil, input("Al", "al@x.com", 30))
	require.NoError(t, err)
	b, err := f.svc.Create(ctx, nil, input("Bo", "bo@x.com", 25))
	require.NoError(t, err)
	c, err := f.svc.Create(ctx, nil, input("Cy", "cy@x.com", 41))
	require.NoError(t, err)

	_, err = f.svc.OpenForEdit(ctx, f.state, b.UID)
	require.NoError(t, err)

	changed := input("Bob", "bob@x.com", 26)
	updated, err := f.svc.Submit(ctx, f.state, changed)
	require.NoError(t, err)
	assert.Equal(t, b.UID, updated.UID)

	res, err := f.svc.Query(ctx, "", listview.SortSpec{})
	require.NoError(t, err)
	require.Len(t, res.Users, 3)
	assert.Equal(t, []string{c.UID, b.UID, a.UID}, uids(res.Users))
	assert.Equal(t, "Bob", res.Users[1].Name)
	assert.Equal(t, 26, res.Users[1].Age)

	snap := f.state.Snapshot()
	assert.False(t, snap.EditorOpen)
	assert.Nil(t, snap.Selected)
}

func TestService_UpdateMissingUID(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, nil, input("Al", "al@x.com", 30))
	require.NoError(t, err)
	before := f.list(t)

	f.svc.OpenForCreate(f.state)
	_, err = f.svc.Update(ctx, f.state, "missing", input("Bo", "bo@x.com", 25))
	assert.ErrorIs(t, err, user.ErrUserNotFound)
	assert.Equal(t, before, f.list(t))
	assert.True(t, f.state.EditorOpen())
}

func TestService_UpdateInvalidKeepsRecord(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	a, err := f.svc.Create(ctx, nil, input("Al", "al@x.com", 30))
	require.NoError(t, err)

	in := input("", "not-an-email", 0)
	_, err = f.svc.Update(ctx, nil, a.UID, in)
	fe, ok := user.AsFieldErrors(err)
	require.True(t, ok)
	assert.Equal(t, "required", fe["name"])
	assert.Equal(t, "invalid", fe["email"])
	assert.Equal(t, "required", fe["age"])

	got, err := f.svc.Get(ctx, a.UID)
	require.NoError(t, err)
	assert.Equal(t, "Al", got.Name)
}

func TestService_Delete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	var created []*user.User
	for _, name := range []string{"Al", "Bo", "Cy"} {
		u, err := f.svc.Create(ctx, nil, input(name, name+"@x.com", 30))
		require.NoError(t, err)
		created = append(created, u)
	}

	require.NoError(t, f.svc.Delete(ctx, created[1].UID))

	users := f.list(t)
	assert.Len(t, users, 2)
	assert.NotContains(t, uids(users), created[1].UID)

	assert.ErrorIs(t, f.svc.Delete(ctx, created[1].UID), user.ErrUserNotFound)
	assert.Len(t, f.list(t), 2)
}

func TestService_Editor(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	a, err := f.svc.Create(ctx, nil, input("Al", "al@x.com", 30))
	require.NoError(t, err)

	t.Run("open for edit loads the record", func(t *testing.T) {
		got, err := f.svc.OpenForEdit(ctx, f.state, a.UID)
		require.NoError(t, err)
		assert.Equal(t, *a, *got)
		assert.Equal(t, 1994, got.DOB.Year())

		view, err := f.svc.View(ctx, f.state)
		require.NoError(t, err)
		assert.Equal(t, EditorEdit, view.Editor.Mode)
		require.NotNil(t, view.Editor.Values)
		assert.Equal(t, "Al", view.Editor.Values.Name)
		assert.Equal(t, "1994-03-02T00:00:00.000Z", view.Editor.Values.DOB)
	})

	t.Run("close clears selection", func(t *testing.T) {
		f.svc.Close(f.state)
		view, err := f.svc.View(ctx, f.state)
		require.NoError(t, err)
		assert.Equal(t, EditorClosed, view.Editor.Mode)
		assert.Nil(t, view.Editor.Selected)
	})

	t.Run("open for create has no selection", func(t *testing.T) {
		f.svc.OpenForCreate(f.state)
		view, err := f.svc.View(ctx, f.state)
		require.NoError(t, err)
		assert.Equal(t, EditorCreate, view.Editor.Mode)
		assert.Nil(t, view.Editor.Selected)

		f.svc.Close(f.state)
		_, editing := f.state.Editing()
		assert.False(t, editing)
	})

	t.Run("open for edit of a missing record", func(t *testing.T) {
		_, err := f.svc.OpenForEdit(ctx, f.state, "missing")
		assert.ErrorIs(t, err, user.ErrUserNotFound)
		assert.False(t, f.state.EditorOpen())
	})
}

func TestService_View(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	a, err := f.svc.Create(ctx, nil, input("Al", "al@x.com", 30))
	require.NoError(t, err)
	b, err := f.svc.Create(ctx, nil, input("Bo", "bo@x.com", 25))
	require.NoError(t, err)

	view, err := f.svc.View(ctx, f.state)
	require.NoError(t, err)
	assert.Equal(t, []string{b.UID, a.UID}, uids(view.Users))

	assert.Equal(t, listview.Ascending, f.svc.ToggleSort(f.state, listview.FieldAge))
	assert.Equal(t, listview.Descending, f.svc.ToggleSort(f.state, listview.FieldAge))
	view, err = f.svc.View(ctx, f.state)
	require.NoError(t, err)
	assert.Equal(t, []string{a.UID, b.UID}, uids(view.Users))
	assert.Equal(t, "55", view.Table.Columns[6].Footer)

	f.svc.SetSearch(f.state, "BO")
	view, err = f.svc.View(ctx, f.state)
	require.NoError(t, err)
	assert.Len(t, view.Users, 2, "search has not settled yet")
	assert.Equal(t, "BO", view.Typed)

	f.state.FlushSearch()
	view, err = f.svc.View(ctx, f.state)
	require.NoError(t, err)
	assert.Equal(t, []string{b.UID}, uids(view.Users))
	assert.Equal(t, 2, view.Total)
	assert.Equal(t, "25", view.Table.Columns[6].Footer)

	f.svc.SetSearch(f.state, "nobody")
	f.state.FlushSearch()
	view, err = f.svc.View(ctx, f.state)
	require.NoError(t, err)
	assert.True(t, view.Table.Empty)
	assert.Empty(t, view.Users)
}

func TestService_CaseSensitiveSearch(t *testing.T) {
	backend := storage.NewMemoryBackend()
	log := logger.NewTestLogger()
	store := user.NewCollectionStore(collection.New[user.User](backend, "data", log), log)
	svc := NewService(store, Options{Now: fixedNow, CaseSensitive: true}, log)
	ctx := context.Background()

	_, err := svc.Create(ctx, nil, input("Bo", "bo@x.com", 25))
	require.NoError(t, err)

	res, err := svc.Query(ctx, "BO", listview.SortSpec{})
	require.NoError(t, err)
	assert.Empty(t, res.Users)

	res, err = svc.Query(ctx, "Bo", listview.SortSpec{})
	require.NoError(t, err)
	assert.Len(t, res.Users, 1)
}
