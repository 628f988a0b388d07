package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/hairizuan-noorazman/user-registry/directory"
	"github.com/hairizuan-noorazman/user-registry/listview"
	"github.com/hairizuan-noorazman/user-registry/logger"
	"github.com/hairizuan-noorazman/user-registry/user"
)

// ViewHandler serves the endpoints bound to the caller's view state.
type ViewHandler struct {
	service *directory.Service
	logger  logger.Logger
}

// NewViewHandler creates a new view handler.
func NewViewHandler(service *directory.Service, log logger.Logger) *ViewHandler {
	return &ViewHandler{
		service: service,
		logger:  log,
	}
}

// SearchRequest represents a search text update. Flush applies the text
// without waiting for typing to pause.
type SearchRequest struct {
	Search string `json:"search"`
	Flush  bool   `json:"flush"`
}

// SubmitResponse is returned after the editor has been saved.
type SubmitResponse struct {
	User *user.User      `json:"user"`
	View *directory.View `json:"view"`
}

// Get renders the caller's current view.
func (h *ViewHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.respondView(w, r, http.StatusOK)
}

// SetSearch records search text.
func (h *ViewHandler) SetSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := parseJSON(r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	st := MustState(r.Context())
	h.service.SetSearch(st, req.Search)
	if req.Flush {
		st.FlushSearch()
	}

	h.respondView(w, r, http.StatusAccepted)
}

// ToggleSort advances the sort direction of the {field} column.
func (h *ViewHandler) ToggleSort(w http.ResponseWriter, r *http.Request) {
	field, err := listview.ParseField(mux.Vars(r)["field"])
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.service.ToggleSort(MustState(r.Context()), field)
	h.respondView(w, r, http.StatusOK)
}

// OpenForCreate opens an empty editor.
func (h *ViewHandler) OpenForCreate(w http.ResponseWriter, r *http.Request) {
	h.service.OpenForCreate(MustState(r.Context()))
	h.respondView(w, r, http.StatusOK)
}

// OpenForEdit opens the editor on the {uid} record.
func (h *ViewHandler) OpenForEdit(w http.ResponseWriter, r *http.Request) {
	uid, ok := parseUIDOrRespond(w, r, "uid")
	if !ok {
		return
	}

	if _, err := h.service.OpenForEdit(r.Context(), MustState(r.Context()), uid); err != nil {
		respondServiceError(w, r, h.logger, err, "open editor")
		return
	}
	h.respondView(w, r, http.StatusOK)
}

// Close hides the editor.
func (h *ViewHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.service.Close(MustState(r.Context()))
	h.respondView(w, r, http.StatusOK)
}

// Submit saves the editor. Validation failures keep the editor open.
func (h *ViewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var in user.Input
	if err := parseJSON(r, &in, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	st := MustState(r.Context())
	u, err := h.service.Submit(r.Context(), st, in)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "save user")
		return
	}

	view, err := h.service.View(r.Context(), st)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "render view")
		return
	}
	respondJSON(w, http.StatusOK, SubmitResponse{User: u, View: view})
}

func (h *ViewHandler) respondView(w http.ResponseWriter, r *http.Request, status int) {
	view, err := h.service.View(r.Context(), MustState(r.Context()))
	if err != nil {
		respondServiceError(w, r, h.logger, err, "render view")
		return
	}
	respondJSON(w, status, view)
}
