package dto

import (
	"time"

	"github.com/google/uuid"
)

type SpinRanking struct {
	Position   int       `json:"position"`
	SpinID     uuid.UUID `json:"spin_id"`
	AccountID  uuid.UUID `json:"account_id"`
	Category   string    `json:"category"`
	Descriptor string    `json:"descriptor"`
	IsRare     bool      `json:"is_rare"`
	VoteCount  int       `json:"vote_count"`
	ShareCount int       `json:"share_count"`
	CreatedAt  time.Time `json:"created_at"`
}

type StreakRanking struct {
	Position       int       `json:"position"`
	AccountID      uuid.UUID `json:"account_id"`
	CurrentStreak  int       `json:"current_streak"`
	LongestStreak  int       `json:"longest_streak"`
	TotalSpins     int       `json:"total_spins"`
	LastActionDate time.Time `json:"last_action_date"`
}
