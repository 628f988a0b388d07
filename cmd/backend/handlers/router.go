package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/hairizuan-noorazman/user-registry/directory"
	"github.com/hairizuan-noorazman/user-registry/logger"
)

// RouterConfig holds what the HTTP routes are built from.
type RouterConfig struct {
	Service     *directory.Service
	State       *StateMiddleware
	RateLimiter *RateLimiter // nil disables rate limiting
	CORSOrigins []string
	Logger      logger.Logger
}

// NewRouter builds the HTTP handler for the API.
func NewRouter(cfg RouterConfig) http.Handler {
	router := mux.NewRouter()
	router.Use(RequestID, AccessLog(cfg.Logger))

	router.HandleFunc("/health", HealthHandler).Methods("GET")

	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	if cfg.RateLimiter != nil {
		apiRouter.Use(cfg.RateLimiter.Middleware(cfg.Logger))
	}

	userHandler := NewUserHandler(cfg.Service, cfg.Logger)
	apiRouter.HandleFunc("/users", userHandler.List).Methods("GET")
	apiRouter.HandleFunc("/users", userHandler.Create).Methods("POST")
	apiRouter.HandleFunc("/users/{uid}", userHandler.Get).Methods("GET")
	apiRouter.HandleFunc("/users/{uid}", userHandler.Update).Methods("PUT")
	apiRouter.HandleFunc("/users/{uid}", userHandler.Delete).Methods("DELETE")

	viewHandler := NewViewHandler(cfg.Service, cfg.Logger)
	viewRouter := apiRouter.PathPrefix("/view").Subrouter()
	viewRouter.Use(cfg.State.Handler)
	viewRouter.HandleFunc("", viewHandler.Get).Methods("GET")
	viewRouter.HandleFunc("/search", viewHandler.SetSearch).Methods("PUT")
	viewRouter.HandleFunc("/sort/{field}", viewHandler.ToggleSort).Methods("POST")
	viewRouter.HandleFunc("/editor", viewHandler.OpenForCreate).Methods("POST")
	viewRouter.HandleFunc("/editor", viewHandler.Close).Methods("DELETE")
	viewRouter.HandleFunc("/editor/{uid}", viewHandler.OpenForEdit).Methods("POST")
	viewRouter.HandleFunc("/submit", viewHandler.Submit).Methods("POST")

	return CORS(cfg.CORSOrigins)(router)
}
