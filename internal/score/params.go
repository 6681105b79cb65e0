package score

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

// Params holds the tunable constants of the hot score formula.
type Params struct {
	DiscussionWeight float64 `json:"discussion_weight"` // Weight of discussion activity vs raw votes (default: 2.0)
	Gravity          float64 `json:"gravity"`           // Exponent controlling decay speed (default: 2.0)
	AgeOffsetHours   float64 `json:"age_offset_hours"`  // Hours added to age to dampen brand-new papers (default: 2.0)
}

// CalibrationConfig represents the JSON structure of the calibration file.
type CalibrationConfig struct {
	Version string `json:"version"` // Config version for future compatibility
	Params  Params `json:"params"`  // Hot score parameters
}

// DefaultParams returns the default hot score parameters.
//
// Formula: hot = (score + discussion_weight * discussion_count) / (age_hours + age_offset_hours)^gravity
//   - DiscussionWeight 2.0 counts a comment as worth two net upvotes
//   - Gravity 2.0 halves a paper's rank advantage roughly every doubling of age
//   - AgeOffsetHours 2.0 keeps papers younger than a couple of hours from
//     dividing by a near-zero age and dominating the feed
func DefaultParams() *Params {
	return &Params{
		DiscussionWeight: 2.0,
		Gravity:          2.0,
		AgeOffsetHours:   2.0,
	}
}

// LoadCalibration loads hot score parameters from a JSON calibration file.
// If the file doesn't exist or can't be parsed, returns default parameters
// with an error so the caller can log and continue. Partial configurations
// are merged with defaults.
func LoadCalibration(filePath string) (*Params, error) {
	if filePath == "" {
		return DefaultParams(), nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		slog.Warn("failed to read calibration file, using defaults",
			"path", filePath,
			"error", err)
		return DefaultParams(), fmt.Errorf("failed to read calibration file: %w", err)
	}

	var config CalibrationConfig
	if err := json.Unmarshal(data, &config); err != nil {
		slog.Warn("failed to parse calibration file, using defaults",
			"path", filePath,
			"error", err)
		return DefaultParams(), fmt.Errorf("failed to parse calibration file: %w", err)
	}

	defaults := DefaultParams()
	merged := MergeCalibration(defaults, &config.Params)
	logCalibrationOverrides(defaults, merged)

	return merged, nil
}

// MergeCalibration merges override parameters with base parameters.
// Only non-zero values from the override are applied, which allows partial
// overrides in the calibration file.
func MergeCalibration(base *Params, override *Params) *Params {
	if base == nil {
		return DefaultParams()
	}
	if override == nil {
		result := *base
		return &result
	}

	result := *base

	if override.DiscussionWeight != 0 {
		result.DiscussionWeight = override.DiscussionWeight
	}
	if override.Gravity != 0 {
		result.Gravity = override.Gravity
	}
	if override.AgeOffsetHours != 0 {
		result.AgeOffsetHours = override.AgeOffsetHours
	}

	return &result
}

// logCalibrationOverrides logs which parameters were overridden from defaults.
func logCalibrationOverrides(defaults *Params, loaded *Params) {
	var overrides []string

	if loaded.DiscussionWeight != defaults.DiscussionWeight {
		overrides = append(overrides, fmt.Sprintf("discussion_weight: %.2f -> %.2f",
			defaults.DiscussionWeight, loaded.DiscussionWeight))
	}
	if loaded.Gravity != defaults.Gravity {
		overrides = append(overrides, fmt.Sprintf("gravity: %.2f -> %.2f",
			defaults.Gravity, loaded.Gravity))
	}
	if loaded.AgeOffsetHours != defaults.AgeOffsetHours {
		overrides = append(overrides, fmt.Sprintf("age_offset_hours: %.2f -> %.2f",
			defaults.AgeOffsetHours, loaded.AgeOffsetHours))
	}

	if len(overrides) > 0 {
		slog.Info("loaded score calibration with overrides",
			"overrides", overrides)
	} else {
		slog.Info("loaded score calibration (using all defaults)")
	}
}
