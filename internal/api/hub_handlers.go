package api

import (
	"encoding/json"
	"errors"
	"html"
	"log/slog"
	"net/http"
	"strings"

	"github.com/openscholar/paperhub/internal/hub"
	"github.com/openscholar/paperhub/internal/middleware"
)

// MaxHubNameLength caps hub names.
const MaxHubNameLength = 100

// CreateHubRequest represents the request body for creating a hub.
type CreateHubRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// HubHandlers holds dependencies for hub HTTP handlers.
type HubHandlers struct {
	repo hub.Repository
}

// NewHubHandlers creates a new HubHandlers instance.
func NewHubHandlers(repo hub.Repository) *HubHandlers {
	return &HubHandlers{
		repo: repo,
	}
}

// CreateHub handles POST /hubs.
func (h *HubHandlers) CreateHub(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeForbidden)
		WriteError(w, ctx, http.StatusForbidden, ErrCodeForbidden, "Identity required to create a hub")
		return
	}

	var req CreateHubRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "name is required")
		return
	}
	if len(name) > MaxHubNameLength {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "name must not exceed 100 characters")
		return
	}

	newHub := &hub.Hub{
		Name: html.EscapeString(name),
		Slug: strings.TrimSpace(req.Slug),
	}
	if err := h.repo.Create(newHub); err != nil {
		if errors.Is(err, hub.ErrDuplicateHub) {
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeConflict)
			WriteError(w, ctx, http.StatusConflict, ErrCodeConflict, "A hub with this slug already exists")
			return
		}
		slog.ErrorContext(r.Context(), "failed to create hub", "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to create hub")
		return
	}

	writeJSON(w, r, http.StatusCreated, newHub)
}

// GetHub handles GET /hubs/{id}.
func (h *HubHandlers) GetHub(w http.ResponseWriter, r *http.Request) {
	hubID, err := ExtractPathID(r.URL.Path, "/hubs/")
	if err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Hub ID is required")
		return
	}

	found, err := h.repo.GetByID(hubID)
	if err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeNotFound)
		WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "Hub not found")
		return
	}

	writeJSON(w, r, http.StatusOK, found)
}

// ListHubs handles GET /hubs.
func (h *HubHandlers) ListHubs(w http.ResponseWriter, r *http.Request) {
	hubs, err := h.repo.List()
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list hubs", "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to list hubs")
		return
	}

	writeJSON(w, r, http.StatusOK, hubs)
}
