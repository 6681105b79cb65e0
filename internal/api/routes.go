package api

import (
	"net/http"
	"strings"

	"github.com/openscholar/paperhub/internal/middleware"
)

// Router bundles the handler groups and dispatches requests to them.
// Registered on a plain ServeMux; method and sub-path dispatch happens here.
type Router struct {
	Papers      *PaperHandlers
	Votes       *VoteHandlers
	Feed        *FeedHandlers
	Discussions *DiscussionHandlers
	Moderation  *ModerationHandlers
	Bookmarks   *BookmarkHandlers
	Figures     *FigureHandlers
	Hubs        *HubHandlers
	Health      *HealthHandlers

	// VoteLimiter, when set, wraps the vote endpoints with a stricter
	// per-user rate limit than the global one.
	VoteLimiter func(http.Handler) http.Handler
}

// Mux returns a ServeMux with every API route registered.
func (rt *Router) Mux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", rt.Health.Health)
	mux.HandleFunc("/ready", rt.Health.Ready)

	mux.HandleFunc("/papers", rt.papersRoot)
	mux.HandleFunc("/papers/", rt.papers)
	mux.HandleFunc("/threads/", rt.threads)
	mux.HandleFunc("/hubs", rt.hubsRoot)
	mux.HandleFunc("/hubs/", rt.hubByID)
	mux.HandleFunc("/bookmarks", rt.bookmarks)
	mux.HandleFunc("/moderation/flags", rt.flagsRoot)
	mux.HandleFunc("/moderation/flags/", rt.flags)

	return mux
}

// papersRoot handles the bare /papers collection.
func (rt *Router) papersRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r)
		return
	}
	rt.Papers.CreatePaper(w, r)
}

// papers dispatches /papers/feed, /papers/{id} and its sub-resources.
func (rt *Router) papers(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/papers/"), "/")

	if parts[0] == "feed" {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r)
			return
		}
		rt.Feed.GetFeed(w, r)
		return
	}

	switch {
	case len(parts) == 1 && parts[0] != "":
		switch r.Method {
		case http.MethodGet:
			rt.Papers.GetPaper(w, r)
		case http.MethodPatch:
			rt.Papers.UpdatePaper(w, r)
		default:
			methodNotAllowed(w, r)
		}

	case len(parts) == 2:
		rt.paperSubresource(w, r, parts[1])

	default:
		notFound(w, r)
	}
}

// paperSubresource dispatches /papers/{id}/{action}.
func (rt *Router) paperSubresource(w http.ResponseWriter, r *http.Request, action string) {
	switch action {
	case "upvote":
		rt.limitedVote(w, r, rt.Votes.Upvote)
	case "downvote":
		rt.limitedVote(w, r, rt.Votes.Downvote)
	case "user_vote":
		switch r.Method {
		case http.MethodGet:
			rt.Votes.GetUserVote(w, r)
		case http.MethodDelete:
			rt.Votes.RemoveVote(w, r)
		default:
			methodNotAllowed(w, r)
		}
	case "flag":
		switch r.Method {
		case http.MethodPost:
			rt.Moderation.FlagPaper(w, r)
		case http.MethodDelete:
			rt.Moderation.DeleteFlag(w, r)
		default:
			methodNotAllowed(w, r)
		}
	case "threads":
		switch r.Method {
		case http.MethodPost:
			rt.Discussions.CreateThread(w, r)
		case http.MethodGet:
			rt.Discussions.ListThreads(w, r)
		default:
			methodNotAllowed(w, r)
		}
	case "figures":
		switch r.Method {
		case http.MethodPost:
			rt.Figures.CreateFigure(w, r)
		case http.MethodGet:
			rt.Figures.ListFigures(w, r)
		default:
			methodNotAllowed(w, r)
		}
	case "bookmark":
		switch r.Method {
		case http.MethodPost:
			rt.Bookmarks.AddBookmark(w, r)
		case http.MethodDelete:
			rt.Bookmarks.RemoveBookmark(w, r)
		default:
			methodNotAllowed(w, r)
		}
	default:
		notFound(w, r)
	}
}

// threads dispatches /threads/{id}/comments.
func (rt *Router) threads(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/threads/"), "/")
	if len(parts) != 2 || parts[1] != "comments" {
		notFound(w, r)
		return
	}
	requireMethod(w, r, http.MethodPost, rt.Discussions.CreateComment)
}

// hubsRoot handles the bare /hubs collection.
func (rt *Router) hubsRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		rt.Hubs.CreateHub(w, r)
	case http.MethodGet:
		rt.Hubs.ListHubs(w, r)
	default:
		methodNotAllowed(w, r)
	}
}

// hubByID handles /hubs/{id}.
func (rt *Router) hubByID(w http.ResponseWriter, r *http.Request) {
	requireMethod(w, r, http.MethodGet, rt.Hubs.GetHub)
}

// bookmarks handles GET /bookmarks.
func (rt *Router) bookmarks(w http.ResponseWriter, r *http.Request) {
	requireMethod(w, r, http.MethodGet, rt.Bookmarks.ListBookmarks)
}

// flagsRoot handles GET /moderation/flags.
func (rt *Router) flagsRoot(w http.ResponseWriter, r *http.Request) {
	requireMethod(w, r, http.MethodGet, rt.Moderation.ListFlags)
}

// flags dispatches /moderation/flags/count and /moderation/flags/{id}/{verb}.
func (rt *Router) flags(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/moderation/flags/"), "/")

	if parts[0] == "count" {
		requireMethod(w, r, http.MethodGet, rt.Moderation.CountFlags)
		return
	}

	if len(parts) != 2 {
		notFound(w, r)
		return
	}
	switch parts[1] {
	case "remove":
		requireMethod(w, r, http.MethodPost, rt.Moderation.RemoveContent)
	case "dismiss":
		requireMethod(w, r, http.MethodPost, rt.Moderation.DismissFlag)
	default:
		notFound(w, r)
	}
}

// limitedVote dispatches a POST vote endpoint through the vote rate limiter.
func (rt *Router) limitedVote(w http.ResponseWriter, r *http.Request, handler http.HandlerFunc) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r)
		return
	}
	if rt.VoteLimiter != nil {
		rt.VoteLimiter(handler).ServeHTTP(w, r)
		return
	}
	handler(w, r)
}

// requireMethod invokes handler only for the given method.
func requireMethod(w http.ResponseWriter, r *http.Request, method string, handler http.HandlerFunc) {
	if r.Method != method {
		methodNotAllowed(w, r)
		return
	}
	handler(w, r)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
	WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
}

func notFound(w http.ResponseWriter, r *http.Request) {
	ctx := middleware.SetErrorCode(r.Context(), ErrCodeNotFound)
	WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "The requested resource was not found")
}
