package goals

import "time"

// Goal — цель сбора. В любой момент активна не больше одной.
type Goal struct {
	ID            int64
	Title         string
	Description   string
	TargetAmount  float64
	CurrentAmount float64
	IsActive      bool
	CreatedAt     time.Time
}

type GetCriteria struct {
	ID       *int64
	IsActive *bool
}

// Progress is the active goal together with its donation aggregates,
// computed against committed donations at query time.
type Progress struct {
	Goal          *Goal
	DonationCount int
	DonorCount    int
}
