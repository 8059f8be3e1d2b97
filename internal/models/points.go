package models

import "time"

// PointsProfile is a read-only snapshot of the gamification state.
// Level is derived from Points on every snapshot and never stored.
type PointsProfile struct {
	Points         int      `json:"points"`
	Level          int      `json:"level"`
	Streak         int      `json:"streak"`
	LastActiveDate string   `json:"lastActiveDate,omitempty"`
	Badges         []string `json:"badges"`
	ActionHistory  []string `json:"actionHistory"`
}

// AwardResult is returned by a points award
type AwardResult struct {
	Profile   PointsProfile `json:"profile"`
	Awarded   int           `json:"awarded"`
	NewBadges []string      `json:"newBadges"`
}

// AwardEvent is one entry of the activity ledger
type AwardEvent struct {
	Action      string    `json:"action"`
	Amount      int       `json:"amount"`
	TotalPoints int       `json:"totalPoints"`
	NewBadges   []string  `json:"newBadges"`
	OccurredAt  time.Time `json:"occurredAt"`
}
