package score

import (
	"math"
	"testing"
	"time"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name      string
		upvotes   int
		downvotes int
		want      int
	}{
		{"no votes", 0, 0, 0},
		{"only upvotes", 10, 0, 10},
		{"only downvotes", 0, 7, -7},
		{"mixed votes", 15, 4, 11},
		{"net negative", 3, 9, -6},
		{"equal votes", 5, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.upvotes, tt.downvotes); got != tt.want {
				t.Errorf("Score(%d, %d) = %d, want %d", tt.upvotes, tt.downvotes, got, tt.want)
			}
		})
	}
}

func TestHotScore_Formula(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	uploadedAt := now.Add(-6 * time.Hour)

	// (10 + 2.0*5) / (6 + 2)^2 = 20 / 64 = 0.3125
	got := HotScore(10, 5, uploadedAt, now, nil)
	want := 0.3125
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("HotScore = %f, want %f", got, want)
	}
}

func TestHotScore_DecreasesWithAge(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	ages := []time.Duration{
		0,
		time.Hour,
		6 * time.Hour,
		24 * time.Hour,
		7 * 24 * time.Hour,
		30 * 24 * time.Hour,
	}

	prev := math.Inf(1)
	for _, age := range ages {
		got := HotScore(50, 10, now.Add(-age), now, nil)
		if got >= prev {
			t.Errorf("hot score at age %v (%f) should be lower than at previous age (%f)", age, got, prev)
		}
		prev = got
	}
}

func TestHotScore_FutureUploadClamped(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// A paper "uploaded in the future" behaves as if uploaded right now.
	future := HotScore(10, 0, now.Add(2*time.Hour), now, nil)
	fresh := HotScore(10, 0, now, now, nil)

	if future != fresh {
		t.Errorf("future upload = %f, want same as fresh upload %f", future, fresh)
	}
}

func TestHotScore_NegativeScore(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	uploadedAt := now.Add(-2 * time.Hour)

	// Heavy downvotes with no discussion go negative.
	got := HotScore(-10, 0, uploadedAt, now, nil)
	if got >= 0 {
		t.Errorf("expected negative hot score, got %f", got)
	}

	// Discussion activity can pull a downvoted paper back above zero.
	// (-10 + 2.0*8) = 6 > 0
	got = HotScore(-10, 8, uploadedAt, now, nil)
	if got <= 0 {
		t.Errorf("expected positive hot score with heavy discussion, got %f", got)
	}
}

func TestHotScore_DiscussionWeight(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	uploadedAt := now.Add(-4 * time.Hour)

	// With the default weight of 2.0, one comment is worth two net upvotes.
	withComment := HotScore(10, 1, uploadedAt, now, nil)
	withVotes := HotScore(12, 0, uploadedAt, now, nil)

	if math.Abs(withComment-withVotes) > 1e-9 {
		t.Errorf("one comment (%f) should equal two upvotes (%f)", withComment, withVotes)
	}
}

func TestHotScore_CustomParams(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	uploadedAt := now.Add(-6 * time.Hour)

	params := &Params{
		DiscussionWeight: 1.0,
		Gravity:          1.0,
		AgeOffsetHours:   2.0,
	}

	// (10 + 1.0*4) / (6 + 2)^1 = 14 / 8 = 1.75
	got := HotScore(10, 4, uploadedAt, now, params)
	want := 1.75
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("HotScore with custom params = %f, want %f", got, want)
	}
}

func TestHotScore_ZeroActivity(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	got := HotScore(0, 0, now.Add(-10*time.Hour), now, nil)
	if got != 0 {
		t.Errorf("hot score with no activity = %f, want 0", got)
	}
}
