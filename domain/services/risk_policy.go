package services

import (
	"lineage-backend/domain/core/entities"
)

// RiskLevel grades the blast radius of a change
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RiskPolicy derives a risk level from the set of affected nodes. It is a
// policy over the collected set, not part of the traversal, so callers can
// swap in their own grading.
type RiskPolicy func(affected []AffectedNode) RiskLevel

// Default thresholds for the built-in policy
const (
	defaultMediumThreshold = 3
	defaultHighThreshold   = 10
)

// DefaultRiskPolicy grades by affected count, elevated when a report is in
// the blast radius: a broken report is immediately user-visible no matter how
// small the affected set is.
func DefaultRiskPolicy(affected []AffectedNode) RiskLevel {
	reportAffected := false
	for _, node := range affected {
		if node.Category == entities.CategoryReport {
			reportAffected = true
			break
		}
	}

	switch {
	case len(affected) >= defaultHighThreshold:
		return RiskHigh
	case reportAffected:
		if len(affected) >= defaultMediumThreshold {
			return RiskHigh
		}
		return RiskMedium
	case len(affected) >= defaultMediumThreshold:
		return RiskMedium
	default:
		return RiskLow
	}
}
