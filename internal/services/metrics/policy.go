package metrics

import (
	"fmt"
	"math"

	"github.com/j-veylop/leap-dashboard-tui/internal/models"
)

// Policy holds the weights and thresholds used to classify participants.
type Policy struct {
	CompletionWeight       float64 `json:"completionWeight"`
	EngagementWeight       float64 `json:"engagementWeight"`
	HighThreshold          float64 `json:"highThreshold"`
	MediumThreshold        float64 `json:"mediumThreshold"`
	FlagCompletionBelow    int     `json:"flagCompletionBelow"`
	FlagEngagementBelow    int     `json:"flagEngagementBelow"`
	CertificationThreshold int     `json:"certificationThreshold"`
}

// DefaultPolicy returns the program's standard classification policy.
func DefaultPolicy() Policy {
	return Policy{
		CompletionWeight:       0.6,
		EngagementWeight:       0.4,
		HighThreshold:          85,
		MediumThreshold:        60,
		FlagCompletionBelow:    60,
		FlagEngagementBelow:    50,
		CertificationThreshold: 90,
	}
}

// Validate checks that weights form a convex combination and thresholds are percentages.
func (p Policy) Validate() error {
	if p.CompletionWeight < 0 || p.EngagementWeight < 0 {
		return fmt.Errorf("%w: weights must not be negative", ErrInvalidArgument)
	}
	if math.Abs(p.CompletionWeight+p.EngagementWeight-1) > 1e-9 {
		return fmt.Errorf("%w: weights must sum to 1, got %.3f",
			ErrInvalidArgument, p.CompletionWeight+p.EngagementWeight)
	}
	for name, v := range map[string]float64{
		"high threshold":          p.HighThreshold,
		"medium threshold":        p.MediumThreshold,
		"flag completion":         float64(p.FlagCompletionBelow),
		"flag engagement":         float64(p.FlagEngagementBelow),
		"certification threshold": float64(p.CertificationThreshold),
	} {
		if v < 0 || v > 100 {
			return fmt.Errorf("%w: %s must be within 0..100, got %v", ErrInvalidArgument, name, v)
		}
	}
	if p.MediumThreshold > p.HighThreshold {
		return fmt.Errorf("%w: medium threshold %.0f above high threshold %.0f",
			ErrInvalidArgument, p.MediumThreshold, p.HighThreshold)
	}
	return nil
}

// Level maps a blended score to an engagement level.
func (p Policy) Level(blended float64) models.EngagementLevel {
	switch {
	case blended >= p.HighThreshold:
		return models.EngagementHigh
	case blended >= p.MediumThreshold:
		return models.EngagementMedium
	default:
		return models.EngagementLow
	}
}

// Blend combines completion and engagement into a single score.
func (p Policy) Blend(completionRate, engagementScore int) float64 {
	return float64(completionRate)*p.CompletionWeight + float64(engagementScore)*p.EngagementWeight
}

// Flagged reports whether the rates warrant manual attention.
func (p Policy) Flagged(completionRate, engagementScore int) bool {
	return completionRate < p.FlagCompletionBelow || engagementScore < p.FlagEngagementBelow
}
