package handlers

import (
	"net/http"
	"testing"

	"github.com/hairizuan-noorazman/user-registry/directory"
	"github.com/hairizuan-noorazman/user-registry/listview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func viewUIDs(v directory.View) []string {
	out := make([]string, len(v.Users))
	for i, u := range v.Users {
		out[i] = u.UID
	}
	return out
}

func TestViewHandler_StateFollowsCookie(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodGet, "/api/v1/view", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, s.cookies, "reads do not start a stored state")

	w = s.do(t, http.MethodPost, "/api/v1/view/sort/age", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, s.cookies, 1)
	assert.True(t, s.cookies[0].HttpOnly)
	first := s.cookies[0].Value

	w = s.do(t, http.MethodPost, "/api/v1/view/sort/name", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Result().Cookies(), "known state keeps its cookie")
	assert.Equal(t, first, s.cookies[0].Value)

	v := decode[directory.View](t, s.do(t, http.MethodGet, "/api/v1/view", nil))
	assert.Equal(t, listview.Ascending, v.Sort.Direction(listview.FieldAge))
	assert.Equal(t, listview.Ascending, v.Sort.Direction(listview.FieldName))
	assert.Equal(t, 1, s.manager.Len())
}

func TestViewHandler_ReadsWithoutCookieStoreNothing(t *testing.T) {
	s := newTestServer(t, nil)

	for i := 0; i < 20; i++ {
		w := s.do(t, http.MethodGet, "/api/v1/view", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Result().Cookies())
	}
	assert.Zero(t, s.manager.Len())
}

func TestViewHandler_TamperedCookieStartsFresh(t *testing.T) {
	s := newTestServer(t, nil)

	s.do(t, http.MethodPost, "/api/v1/view/sort/name", nil)
	require.Len(t, s.cookies, 1)
	s.cookies[0].Value += "x"

	w := s.do(t, http.MethodGet, "/api/v1/view", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[directory.View](t, w).Sort.IsZero())

	w = s.do(t, http.MethodPost, "/api/v1/view/sort/age", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Result().Cookies())
	v := decode[directory.View](t, w)
	assert.Equal(t, listview.None, v.Sort.Direction(listview.FieldName))
	assert.Equal(t, 2, s.manager.Len())
}

func TestViewHandler_Sort(t *testing.T) {
	s := newTestServer(t, nil)
	al := createUser(t, s, validInput("Al", "al@x.com", 30))
	bo := createUser(t, s, validInput("Bo", "bo@x.com", 25))

	steps := []struct {
		icon string
		want []string
	}{
		{icon: "sort-down", want: []string{bo.UID, al.UID}},
		{icon: "sort-up", want: []string{al.UID, bo.UID}},
		{icon: "sort", want: []string{bo.UID, al.UID}},
	}
	for _, step := range steps {
		w := s.do(t, http.MethodPost, "/api/v1/view/sort/age", nil)
		require.Equal(t, http.StatusOK, w.Code)
		v := decode[directory.View](t, w)
		assert.Equal(t, step.want, viewUIDs(v))
		assert.Equal(t, step.icon, v.Table.Columns[6].Icon)
	}

	w := s.do(t, http.MethodPost, "/api/v1/view/sort/uid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestViewHandler_Search(t *testing.T) {
	s := newTestServer(t, nil)
	createUser(t, s, validInput("Al", "al@x.com", 30))
	bo := createUser(t, s, validInput("Bo", "bo@x.com", 25))

	w := s.do(t, http.MethodPut, "/api/v1/view/search", SearchRequest{Search: "bo"})
	require.Equal(t, http.StatusAccepted, w.Code)
	v := decode[directory.View](t, w)
	assert.Equal(t, "bo", v.Typed)
	assert.Empty(t, v.Search)
	assert.Len(t, v.Users, 2)

	w = s.do(t, http.MethodPut, "/api/v1/view/search", SearchRequest{Search: "bo", Flush: true})
	require.Equal(t, http.StatusAccepted, w.Code)
	v = decode[directory.View](t, w)
	assert.Equal(t, "bo", v.Search)
	assert.Equal(t, []string{bo.UID}, viewUIDs(v))
}

func TestViewHandler_EditorCreateFlow(t *testing.T) {
	s := newTestServer(t, nil)

	v := decode[directory.View](t, s.do(t, http.MethodPost, "/api/v1/view/editor", nil))
	assert.Equal(t, directory.EditorCreate, v.Editor.Mode)

	bad := validInput("Al", "al@x.com", 30)
	bad.PhoneNumber = "12345"
	w := s.do(t, http.MethodPost, "/api/v1/view/submit", bad)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decode[ErrorResponse](t, w).Fields, "phoneNumber")

	v = decode[directory.View](t, s.do(t, http.MethodGet, "/api/v1/view", nil))
	assert.Equal(t, directory.EditorCreate, v.Editor.Mode, "editor stays open after a failed submit")
	assert.Empty(t, v.Users)

	w = s.do(t, http.MethodPost, "/api/v1/view/submit", validInput("Al", "al@x.com", 30))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[SubmitResponse](t, w)
	require.NotNil(t, resp.User)
	assert.Equal(t, directory.EditorClosed, resp.View.Editor.Mode)
	assert.Equal(t, []string{resp.User.UID}, viewUIDs(*resp.View))
}

func TestViewHandler_EditorEditFlow(t *testing.T) {
	s := newTestServer(t, nil)
	al := createUser(t, s, validInput("Al", "al@x.com", 30))
	bo := createUser(t, s, validInput("Bo", "bo@x.com", 25))

	w := s.do(t, http.MethodPost, "/api/v1/view/editor/"+al.UID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	v := decode[directory.View](t, w)
	assert.Equal(t, directory.EditorEdit, v.Editor.Mode)
	require.NotNil(t, v.Editor.Values)
	assert.Equal(t, "al@x.com", v.Editor.Values.Email)

	w = s.do(t, http.MethodPost, "/api/v1/view/submit", validInput("Alice", "alice@x.com", 31))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[SubmitResponse](t, w)
	assert.Equal(t, al.UID, resp.User.UID)
	assert.Equal(t, []string{bo.UID, al.UID}, viewUIDs(*resp.View))
	assert.Equal(t, "Alice", resp.View.Users[1].Name)
	assert.Equal(t, directory.EditorClosed, resp.View.Editor.Mode)
}

func TestViewHandler_EditorClose(t *testing.T) {
	s := newTestServer(t, nil)
	al := createUser(t, s, validInput("Al", "al@x.com", 30))

	s.do(t, http.MethodPost, "/api/v1/view/editor/"+al.UID, nil)
	w := s.do(t, http.MethodDelete, "/api/v1/view/editor", nil)
	require.Equal(t, http.StatusOK, w.Code)
	v := decode[directory.View](t, w)
	assert.Equal(t, directory.EditorClosed, v.Editor.Mode)
	assert.Nil(t, v.Editor.Selected)

	w = s.do(t, http.MethodPost, "/api/v1/view/editor/7a1b2c3d-0000-4000-8000-000000000000", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
