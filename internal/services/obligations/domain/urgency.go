package domain

import "time"

// Priority is the attention proxy fed into urgency scoring.
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

const (
	urgencyBase = 50
	urgencyMin  = 0
	urgencyMax  = 100

	recentInteractionWindow = 24 * time.Hour
)

// ComputeUrgency scores one obligation's need for attention on a 0-100 scale.
//
// The due-date proximity bonus dominates, a priority flag and recurrence add
// smaller boosts, and an interaction within the last 24 hours discounts the
// score so recently touched items rank lower.
func ComputeUrgency(daysUntilDue int, priority Priority, recurring bool, lastInteraction *time.Time, now time.Time) int {
	score := urgencyBase

	switch {
	case daysUntilDue < 0:
		score += 50
	case daysUntilDue == 0:
		score += 45
	case daysUntilDue == 1:
		score += 40
	case daysUntilDue <= 3:
		score += 30
	case daysUntilDue <= 7:
		score += 20
	case daysUntilDue <= 14:
		score += 10
	}

	switch priority {
	case PriorityUrgent:
		score += 20
	case PriorityHigh:
		score += 10
	}

	if recurring {
		score += 5
	}

	if lastInteraction != nil && now.Sub(*lastInteraction) < recentInteractionWindow {
		score -= 10
	}

	if score > urgencyMax {
		return urgencyMax
	}
	if score < urgencyMin {
		return urgencyMin
	}
	return score
}
