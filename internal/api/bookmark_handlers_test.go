package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/openscholar/paperhub/internal/bookmark"
)

func TestAddBookmark(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedPaper(t, "Saved For Later")

	w := env.do(t, http.MethodPost, "/papers/"+p.ID+"/bookmark", "user-1", nil)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", w.Code, w.Body.String())
	}
	var b bookmark.Bookmark
	if err := json.Unmarshal(w.Body.Bytes(), &b); err != nil {
		t.Fatal(err)
	}
	if b.PaperID != p.ID || b.UserID != "user-1" {
		t.Errorf("bookmark = %+v", b)
	}
}

func TestAddBookmark_UnknownPaper(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/papers/missing/bookmark", "user-1", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestRemoveBookmark(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedPaper(t, "Unsaved")

	if w := env.do(t, http.MethodPost, "/papers/"+p.ID+"/bookmark", "user-1", nil); w.Code != http.StatusCreated {
		t.Fatal("seeding bookmark failed")
	}

	w := env.do(t, http.MethodDelete, "/papers/"+p.ID+"/bookmark", "user-1", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}

	w = env.do(t, http.MethodDelete, "/papers/"+p.ID+"/bookmark", "user-1", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("second remove status = %d, want 404", w.Code)
	}
}

func TestListBookmarks(t *testing.T) {
	env := newTestEnv(t)
	p1 := env.seedPaper(t, "Saved One")
	p2 := env.seedPaper(t, "Saved Two")
	for _, p := range []string{p1.ID, p2.ID} {
		if w := env.do(t, http.MethodPost, "/papers/"+p+"/bookmark", "user-1", nil); w.Code != http.StatusCreated {
			t.Fatal("seeding bookmark failed")
		}
	}

	w := env.do(t, http.MethodGet, "/bookmarks", "user-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var bookmarks []*bookmark.Bookmark
	if err := json.Unmarshal(w.Body.Bytes(), &bookmarks); err != nil {
		t.Fatal(err)
	}
	if len(bookmarks) != 2 {
		t.Errorf("got %d bookmarks, want 2", len(bookmarks))
	}

	// Another user's list is empty, never null.
	w = env.do(t, http.MethodGet, "/bookmarks", "user-2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var empty []*bookmark.Bookmark
	if err := json.Unmarshal(w.Body.Bytes(), &empty); err != nil {
		t.Fatal(err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("other user's bookmarks = %v, want []", empty)
	}
}

func TestListBookmarks_RequiresIdentity(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/bookmarks", "", nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}
