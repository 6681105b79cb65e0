package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/openscholar/paperhub/internal/figure"
	"github.com/openscholar/paperhub/internal/middleware"
)

// CreateFigureRequest represents the request body for attaching a figure.
// The bytes live in external object storage; only metadata is recorded here.
type CreateFigureRequest struct {
	Key       string `json:"key"`
	Type      string `json:"type"`
	SizeBytes int64  `json:"size_bytes"`
	Width     *int   `json:"width,omitempty"`
	Height    *int   `json:"height,omitempty"`
}

// FigureHandlers holds dependencies for figure HTTP handlers.
type FigureHandlers struct {
	repo   figure.Repository
	papers PaperChecker
}

// NewFigureHandlers creates a new FigureHandlers instance.
func NewFigureHandlers(repo figure.Repository, papers PaperChecker) *FigureHandlers {
	return &FigureHandlers{
		repo:   repo,
		papers: papers,
	}
}

// CreateFigure handles POST /papers/{id}/figures.
func (h *FigureHandlers) CreateFigure(w http.ResponseWriter, r *http.Request) {
	paperID, err := ExtractPathID(r.URL.Path, "/papers/")
	if err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Paper ID is required")
		return
	}

	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeForbidden)
		WriteError(w, ctx, http.StatusForbidden, ErrCodeForbidden, "Identity required to attach a figure")
		return
	}

	var req CreateFigureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	if err := h.papers.Exists(paperID); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeNotFound)
		WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "Paper not found")
		return
	}

	f := &figure.Figure{
		PaperID:   paperID,
		Key:       strings.TrimSpace(req.Key),
		Type:      req.Type,
		SizeBytes: req.SizeBytes,
		Width:     req.Width,
		Height:    req.Height,
	}
	if err := h.repo.Create(f); err != nil {
		switch {
		case errors.Is(err, figure.ErrUnsupportedType):
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeUnsupportedType)
			WriteError(w, ctx, http.StatusBadRequest, ErrCodeUnsupportedType, "Unsupported figure content type")
		case errors.Is(err, figure.ErrFileTooLarge):
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
			WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "Figure exceeds the maximum allowed size")
		case errors.Is(err, figure.ErrInvalidKey):
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
			WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "Figure storage key is required")
		default:
			slog.ErrorContext(r.Context(), "failed to create figure", "paper_id", paperID, "error", err)
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
			WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to create figure")
		}
		return
	}

	writeJSON(w, r, http.StatusCreated, f)
}

// ListFigures handles GET /papers/{id}/figures.
func (h *FigureHandlers) ListFigures(w http.ResponseWriter, r *http.Request) {
	paperID, err := ExtractPathID(r.URL.Path, "/papers/")
	if err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Paper ID is required")
		return
	}

	figures, err := h.repo.ListByPaper(paperID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list figures", "paper_id", paperID, "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to list figures")
		return
	}
	if figures == nil {
		figures = []*figure.Figure{}
	}

	writeJSON(w, r, http.StatusOK, figures)
}
