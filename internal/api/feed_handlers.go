package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/openscholar/paperhub/internal/feed"
	"github.com/openscholar/paperhub/internal/middleware"
)

// FeedHandlers holds dependencies for feed HTTP handlers.
type FeedHandlers struct {
	service *feed.Service
}

// NewFeedHandlers creates a new FeedHandlers instance.
func NewFeedHandlers(service *feed.Service) *FeedHandlers {
	return &FeedHandlers{
		service: service,
	}
}

// GetFeed handles GET /papers/feed.
//
// Query parameters:
//   - hub_id: hub scope; absent or "0" means the global feed
//   - ordering: hot, top_rated (alias score), most_discussed (alias
//     discussed), newest; unrecognized values fall back to all-time score
//   - start, end: RFC 3339 window bounds; both optional
//   - page: 1-based page number
func (h *FeedHandlers) GetFeed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	window, errMsg := parseWindow(q.Get("start"), q.Get("end"))
	if errMsg != "" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInvalidTimeRange)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeInvalidTimeRange, errMsg)
		return
	}

	page := 1
	if raw := q.Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
			WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "page must be a positive integer")
			return
		}
		page = parsed
	}

	req := feed.Request{
		HubID:    q.Get("hub_id"),
		Ordering: feed.ParseOrdering(q.Get("ordering")),
		Window:   window,
		Page:     page,
	}

	result, outcome, err := h.service.GetFeed(r.Context(), req)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to build feed",
			"hub_id", req.HubID,
			"ordering", req.Ordering.String(),
			"error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to build feed")
		return
	}

	w.Header().Set("X-Cache", string(outcome))
	writeJSON(w, r, http.StatusOK, result)
}

// parseWindow parses optional RFC 3339 start/end parameters. Returns an
// error message for unparseable values; absent values yield the all-time
// window.
func parseWindow(start, end string) (feed.Window, string) {
	var window feed.Window

	if start != "" {
		ts, err := time.Parse(time.RFC3339, start)
		if err != nil {
			return feed.Window{}, "start must be an RFC 3339 timestamp"
		}
		window.Start = ts
	}
	if end != "" {
		ts, err := time.Parse(time.RFC3339, end)
		if err != nil {
			return feed.Window{}, "end must be an RFC 3339 timestamp"
		}
		window.End = ts
	}
	return window, ""
}
