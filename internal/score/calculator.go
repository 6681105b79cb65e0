// Package score derives paper ranking scores from vote and discussion
// activity, with calibration support for the hot score formula.
package score

import (
	"math"
	"time"
)

// Score computes the net vote score for a paper.
// Always upvotes - downvotes, never clamped: a heavily downvoted paper
// goes negative.
func Score(upvotes, downvotes int) int {
	return upvotes - downvotes
}

// HotScore computes the time-decayed ranking score for a paper.
//
// Formula: (score + discussion_weight * discussion_count) / (age_hours + age_offset)^gravity
//
// Age is measured from the paper's upload time, not its last activity, so
// late votes cannot resurrect an old paper indefinitely. With fixed
// activity the result is strictly decreasing in age.
//
// Parameters:
//   - netScore: The paper's net vote score (may be negative)
//   - discussionCount: Total threads plus comments on the paper
//   - uploadedAt: When the paper was uploaded
//   - now: The evaluation time (injected for testability)
//   - params: The calibrated parameters (optional, uses defaults if nil)
func HotScore(netScore, discussionCount int, uploadedAt, now time.Time, params *Params) float64 {
	if params == nil {
		params = DefaultParams()
	}

	ageHours := now.Sub(uploadedAt).Hours()
	if ageHours < 0 {
		ageHours = 0 // Clamp clock skew on future upload timestamps
	}

	numerator := float64(netScore) + params.DiscussionWeight*float64(discussionCount)
	denominator := math.Pow(ageHours+params.AgeOffsetHours, params.Gravity)

	return numerator / denominator
}
