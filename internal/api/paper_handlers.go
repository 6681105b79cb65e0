package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"strings"

	"github.com/openscholar/paperhub/internal/middleware"
	"github.com/openscholar/paperhub/internal/paper"
)

// Paper validation constraints.
const (
	MaxTitleLength    = 500
	MaxAbstractLength = 10000
	MaxHubsPerPaper   = 10
)

// CreatePaperRequest represents the request body for creating a paper.
type CreatePaperRequest struct {
	Title    string   `json:"title"`
	DOI      string   `json:"doi,omitempty"`
	Abstract string   `json:"abstract,omitempty"`
	HubIDs   []string `json:"hub_ids,omitempty"`
}

// UpdatePaperRequest represents the request body for updating a paper.
type UpdatePaperRequest struct {
	Title    *string   `json:"title,omitempty"`
	Abstract *string   `json:"abstract,omitempty"`
	HubIDs   *[]string `json:"hub_ids,omitempty"`
}

// PaperHandlers holds dependencies for paper HTTP handlers.
type PaperHandlers struct {
	service *paper.Service
}

// NewPaperHandlers creates a new PaperHandlers instance.
func NewPaperHandlers(service *paper.Service) *PaperHandlers {
	return &PaperHandlers{
		service: service,
	}
}

// validatePaperInput validates title and abstract constraints.
// Returns error message if validation fails, empty string if valid.
func validatePaperInput(title, abstract string, hubCount int) string {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "title is required"
	}
	if len(trimmed) > MaxTitleLength {
		return fmt.Sprintf("title must not exceed %d characters", MaxTitleLength)
	}
	if len(abstract) > MaxAbstractLength {
		return fmt.Sprintf("abstract must not exceed %d characters", MaxAbstractLength)
	}
	if hubCount > MaxHubsPerPaper {
		return fmt.Sprintf("a paper can belong to at most %d hubs", MaxHubsPerPaper)
	}
	return ""
}

// ExtractPathID extracts the resource ID segment that follows prefix in the
// URL path, e.g. ExtractPathID("/papers/abc/upvote", "/papers/") == "abc".
func ExtractPathID(path, prefix string) (string, error) {
	parts := strings.Split(strings.TrimPrefix(path, prefix), "/")
	if len(parts) == 0 || parts[0] == "" {
		return "", fmt.Errorf("resource ID is required")
	}
	return parts[0], nil
}

// CreatePaper handles POST /papers - uploads a new paper.
func (h *PaperHandlers) CreatePaper(w http.ResponseWriter, r *http.Request) {
	var req CreatePaperRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	if errMsg := validatePaperInput(req.Title, req.Abstract, len(req.HubIDs)); errMsg != "" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, errMsg)
		return
	}

	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeForbidden)
		WriteError(w, ctx, http.StatusForbidden, ErrCodeForbidden, "Identity required to upload a paper")
		return
	}

	p := &paper.Paper{
		Title:      html.EscapeString(strings.TrimSpace(req.Title)),
		DOI:        strings.TrimSpace(req.DOI),
		Abstract:   html.EscapeString(req.Abstract),
		HubIDs:     req.HubIDs,
		UploadedBy: userID,
	}

	if err := h.service.Create(r.Context(), p); err != nil {
		switch {
		case errors.Is(err, paper.ErrDuplicateDOI):
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeDuplicateDOI)
			WriteError(w, ctx, http.StatusConflict, ErrCodeDuplicateDOI, "A paper with this DOI already exists")
		case errors.Is(err, paper.ErrTitleRequired):
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
			WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "title is required")
		default:
			slog.ErrorContext(r.Context(), "failed to create paper", "error", err)
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
			WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to create paper")
		}
		return
	}

	writeJSON(w, r, http.StatusCreated, p)
}

// GetPaper handles GET /papers/{id}.
func (h *PaperHandlers) GetPaper(w http.ResponseWriter, r *http.Request) {
	paperID, err := ExtractPathID(r.URL.Path, "/papers/")
	if err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Paper ID is required")
		return
	}

	p, err := h.service.Get(paperID)
	if err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeNotFound)
		WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "Paper not found")
		return
	}

	writeJSON(w, r, http.StatusOK, p)
}

// UpdatePaper handles PATCH /papers/{id}.
func (h *PaperHandlers) UpdatePaper(w http.ResponseWriter, r *http.Request) {
	paperID, err := ExtractPathID(r.URL.Path, "/papers/")
	if err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Paper ID is required")
		return
	}

	var req UpdatePaperRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	existing, err := h.service.Get(paperID)
	if err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeNotFound)
		WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "Paper not found")
		return
	}

	if req.Title != nil {
		existing.Title = html.EscapeString(strings.TrimSpace(*req.Title))
	}
	if req.Abstract != nil {
		existing.Abstract = html.EscapeString(*req.Abstract)
	}
	if req.HubIDs != nil {
		existing.HubIDs = *req.HubIDs
	}

	if errMsg := validatePaperInput(existing.Title, existing.Abstract, len(existing.HubIDs)); errMsg != "" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, errMsg)
		return
	}

	if err := h.service.Update(r.Context(), existing); err != nil {
		slog.ErrorContext(r.Context(), "failed to update paper", "paper_id", paperID, "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to update paper")
		return
	}

	updated, err := h.service.Get(paperID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to reload paper", "paper_id", paperID, "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to load updated paper")
		return
	}

	writeJSON(w, r, http.StatusOK, updated)
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode response", "error", err)
	}
}
