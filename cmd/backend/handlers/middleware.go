package handlers

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/hairizuan-noorazman/user-registry/internal/uuidutil"
	"github.com/hairizuan-noorazman/user-registry/logger"
	"github.com/hairizuan-noorazman/user-registry/session"
	"golang.org/x/crypto/hkdf"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	// StateKey is the context key for the caller's view state.
	StateKey ContextKey = "view_state"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// MinCookieSecretLength is the shortest accepted cookie secret.
const MinCookieSecretLength = 32

// ErrWeakCookieSecret is returned for cookie secrets shorter than
// MinCookieSecretLength.
var ErrWeakCookieSecret = fmt.Errorf("cookie secret must be at least %d bytes", MinCookieSecretLength)

// NewCookieCodec derives signing and encryption keys from secret and returns
// a codec for the view-state cookie.
func NewCookieCodec(secret string, maxAge time.Duration) (*securecookie.SecureCookie, error) {
	if len(secret) < MinCookieSecretLength {
		return nil, ErrWeakCookieSecret
	}

	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("user-registry view-state cookie"))
	hashKey := make([]byte, 32)
	blockKey := make([]byte, 32)
	if _, err := io.ReadFull(kdf, hashKey); err != nil {
		return nil, fmt.Errorf("failed to derive hash key: %w", err)
	}
	if _, err := io.ReadFull(kdf, blockKey); err != nil {
		return nil, fmt.Errorf("failed to derive block key: %w", err)
	}

	codec := securecookie.New(hashKey, blockKey)
	codec.MaxAge(int(maxAge.Seconds()))
	return codec, nil
}

// RequestID tags each request with an id, reusing a well-formed incoming one.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if !uuidutil.IsValid(id) {
			id = uuidutil.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// AccessLog logs one line per request.
func AccessLog(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			log.Info(r.Context(), "request handled", logger.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      rec.status,
				"duration_ms": time.Since(start).Milliseconds(),
			})
		})
	}
}

// CORS adds Access-Control headers for allowed origins and short-circuits
// OPTIONS requests.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAll := false
	normalized := make([]string, 0, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
			break
		}
		normalized = append(normalized, strings.ToLower(origin))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowAll || containsOrigin(normalized, origin)) {
				// Credentialed requests cannot use a literal "*".
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)
				w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func containsOrigin(allowed []string, origin string) bool {
	origin = strings.ToLower(origin)
	for _, candidate := range allowed {
		if candidate == origin {
			return true
		}
	}
	return false
}

// StateMiddleware binds each request to a view state through a signed
// cookie. A missing, tampered or expired cookie starts a fresh state; reads
// get a throwaway one, and only mutating requests store a state and set the
// cookie.
type StateMiddleware struct {
	sessionManager *session.Manager
	codec          *securecookie.SecureCookie
	cookieName     string
	cookieSecure   bool
	logger         logger.Logger
}

// NewStateMiddleware creates a new view-state middleware.
func NewStateMiddleware(sessionManager *session.Manager, codec *securecookie.SecureCookie, cookieName string, cookieSecure bool, log logger.Logger) *StateMiddleware {
	return &StateMiddleware{
		sessionManager: sessionManager,
		codec:          codec,
		cookieName:     cookieName,
		cookieSecure:   cookieSecure,
		logger:         log,
	}
}

// Handler wraps an HTTP handler with view-state lookup.
func (m *StateMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st, err := m.lookup(r)
		switch {
		case err == nil:
		case !isMutating(r.Method):
			st = m.sessionManager.Transient()
			defer st.Close()
		default:
			m.logger.Debug(r.Context(), "starting new view state", logger.Fields{
				"reason": err.Error(),
			})
			st = m.sessionManager.Create(r.Context())
			if err := m.setCookie(w, st.ID); err != nil {
				m.logger.Error(r.Context(), "failed to encode state cookie", logger.Fields{
					"error": err.Error(),
				})
				respondError(w, http.StatusInternalServerError, "failed to create view state")
				return
			}
		}

		ctx := context.WithValue(r.Context(), StateKey, st)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *StateMiddleware) lookup(r *http.Request) (*session.State, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return nil, err
	}

	var id string
	if err := m.codec.Decode(m.cookieName, cookie.Value, &id); err != nil {
		return nil, err
	}
	return m.sessionManager.Get(id)
}

func (m *StateMiddleware) setCookie(w http.ResponseWriter, id string) error {
	encoded, err := m.codec.Encode(m.cookieName, id)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int(m.sessionManager.Duration().Seconds()),
		HttpOnly: true,
		Secure:   m.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// GetState extracts the view state from the request context.
func GetState(ctx context.Context) (*session.State, bool) {
	st, ok := ctx.Value(StateKey).(*session.State)
	return st, ok
}

var errNoState = errors.New("no view state in request context")

// MustState is GetState for handlers mounted behind StateMiddleware.
func MustState(ctx context.Context) *session.State {
	st, ok := GetState(ctx)
	if !ok {
		panic(errNoState)
	}
	return st
}
