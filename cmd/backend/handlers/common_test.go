package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hairizuan-noorazman/user-registry/collection"
	"github.com/hairizuan-noorazman/user-registry/directory"
	"github.com/hairizuan-noorazman/user-registry/logger"
	"github.com/hairizuan-noorazman/user-registry/session"
	"github.com/hairizuan-noorazman/user-registry/storage"
	"github.com/hairizuan-noorazman/user-registry/user"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-cookie-secret-that-is-long-enough"

type testServer struct {
	handler http.Handler
	manager *session.Manager
	backend *storage.MemoryBackend
	log     *logger.TestLogger
	cookies []*http.Cookie
}

func newTestServer(t *testing.T, limiter *RateLimiter) *testServer {
	t.Helper()

	log := logger.NewTestLogger()
	backend := storage.NewMemoryBackend()
	store := user.NewCollectionStore(collection.New[user.User](backend, "data", log), log)
	svc := directory.NewService(store, directory.Options{
		Now: func() time.Time { return time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC) },
	}, log)

	manager := session.NewManager(time.Hour, time.Hour, log)
	codec, err := NewCookieCodec(testSecret, time.Hour)
	require.NoError(t, err)

	return &testServer{
		handler: NewRouter(RouterConfig{
			Service:     svc,
			State:       NewStateMiddleware(manager, codec, "view_state", false, log),
			RateLimiter: limiter,
			CORSOrigins: []string{"http://localhost:5173"},
			Logger:      log,
		}),
		manager: manager,
		backend: backend,
		log:     log,
	}
}

// do sends a request, replaying cookies from earlier responses.
func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range s.cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)

	if cookies := w.Result().Cookies(); len(cookies) > 0 {
		s.cookies = cookies
	}
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func intPtr(i int) *int { return &i }

func validInput(name, email string, age int) user.Input {
	return user.Input{
		Name:        name,
		Email:       email,
		DOB:         "1994-03-02",
		Gender:      "female",
		Age:         intPtr(age),
		Country:     "Singapore",
		PhoneNumber: "0123456789",
		IsActive:    "true",
	}
}
