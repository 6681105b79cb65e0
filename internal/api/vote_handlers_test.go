package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/openscholar/paperhub/internal/vote"
)

func TestUpvote(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedPaper(t, "Upvotable Paper")

	w := env.do(t, http.MethodPost, "/papers/"+p.ID+"/upvote", "user-1", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	var v vote.Vote
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatal(err)
	}
	if v.VoteType != vote.TypeUpvote {
		t.Errorf("VoteType = %v, want upvote", v.VoteType)
	}
	if v.PaperID != p.ID || v.CreatedBy != "user-1" {
		t.Errorf("vote = %+v", v)
	}
}

func TestUpvote_SameDirectionConflicts(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedPaper(t, "Voted Once")

	if w := env.do(t, http.MethodPost, "/papers/"+p.ID+"/upvote", "user-1", nil); w.Code != http.StatusOK {
		t.Fatalf("first upvote status = %d", w.Code)
	}

	w := env.do(t, http.MethodPost, "/papers/"+p.ID+"/upvote", "user-1", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("repeat upvote status = %d, want 409", w.Code)
	}
	if detail := decodeError(t, w); detail.Code != ErrCodeVoteExists {
		t.Errorf("error code = %q, want %q", detail.Code, ErrCodeVoteExists)
	}
}

func TestDownvote_FlipsExistingVote(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedPaper(t, "Controversial Paper")

	if w := env.do(t, http.MethodPost, "/papers/"+p.ID+"/upvote", "user-1", nil); w.Code != http.StatusOK {
		t.Fatalf("upvote status = %d", w.Code)
	}

	w := env.do(t, http.MethodPost, "/papers/"+p.ID+"/downvote", "user-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("flip status = %d, want 200", w.Code)
	}
	var v vote.Vote
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatal(err)
	}
	if v.VoteType != vote.TypeDownvote {
		t.Errorf("VoteType after flip = %v, want downvote", v.VoteType)
	}
}

func TestVote_UnknownPaper(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/papers/missing/upvote", "user-1", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if detail := decodeError(t, w); detail.Code != ErrCodeNotFound {
		t.Errorf("error code = %q", detail.Code)
	}
}

func TestVote_RequiresIdentity(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedPaper(t, "Anonymous Voting")

	for _, path := range []string{
		"/papers/" + p.ID + "/upvote",
		"/papers/" + p.ID + "/downvote",
	} {
		w := env.do(t, http.MethodPost, path, "", nil)
		if w.Code != http.StatusForbidden {
			t.Errorf("%s status = %d, want 403", path, w.Code)
		}
	}
}

func TestRemoveVote(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedPaper(t, "Changed My Mind")

	if w := env.do(t, http.MethodPost, "/papers/"+p.ID+"/upvote", "user-1", nil); w.Code != http.StatusOK {
		t.Fatalf("upvote status = %d", w.Code)
	}

	w := env.do(t, http.MethodDelete, "/papers/"+p.ID+"/user_vote", "user-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("remove status = %d, want 200", w.Code)
	}

	// Nothing left to remove.
	w = env.do(t, http.MethodDelete, "/papers/"+p.ID+"/user_vote", "user-1", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("second remove status = %d, want 404", w.Code)
	}
}

func TestGetUserVote(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedPaper(t, "Looked Up")

	w := env.do(t, http.MethodGet, "/papers/"+p.ID+"/user_vote", "user-1", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("vote before voting status = %d, want 404", w.Code)
	}

	if w := env.do(t, http.MethodPost, "/papers/"+p.ID+"/downvote", "user-1", nil); w.Code != http.StatusOK {
		t.Fatalf("downvote status = %d", w.Code)
	}

	w = env.do(t, http.MethodGet, "/papers/"+p.ID+"/user_vote", "user-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var v vote.Vote
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatal(err)
	}
	if v.VoteType != vote.TypeDownvote {
		t.Errorf("VoteType = %v, want downvote", v.VoteType)
	}
}
