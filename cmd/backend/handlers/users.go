package handlers

import (
	"net/http"

	"github.com/hairizuan-noorazman/user-registry/directory"
	"github.com/hairizuan-noorazman/user-registry/listview"
	"github.com/hairizuan-noorazman/user-registry/logger"
	"github.com/hairizuan-noorazman/user-registry/user"
)

// UserHandler serves the stateless record endpoints.
type UserHandler struct {
	service *directory.Service
	logger  logger.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(service *directory.Service, log logger.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  log,
	}
}

// List handles listing users filtered by ?search= and ordered by ?sort=.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	spec, err := listview.ParseSort(q.Get("sort"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.service.Query(r.Context(), q.Get("search"), spec)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "list users")
		return
	}

	respondJSON(w, http.StatusOK, res)
}

// Get handles getting a single user by uid.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, ok := parseUIDOrRespond(w, r, "uid")
	if !ok {
		return
	}

	u, err := h.service.Get(r.Context(), uid)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "get user")
		return
	}

	respondJSON(w, http.StatusOK, u)
}

// Create handles creating a user.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in user.Input
	if err := parseJSON(r, &in, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.service.Create(r.Context(), nil, in)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "create user")
		return
	}

	respondJSON(w, http.StatusCreated, u)
}

// Update handles replacing the fields of a user.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, ok := parseUIDOrRespond(w, r, "uid")
	if !ok {
		return
	}

	var in user.Input
	if err := parseJSON(r, &in, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.service.Update(r.Context(), nil, uid, in)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "update user")
		return
	}

	respondJSON(w, http.StatusOK, u)
}

// Delete handles deleting a user.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, ok := parseUIDOrRespond(w, r, "uid")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), uid); err != nil {
		respondServiceError(w, r, h.logger, err, "delete user")
		return
	}

	respondSuccess(w, "user deleted successfully")
}
