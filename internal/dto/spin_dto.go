package dto

import (
	"time"

	"github.com/google/uuid"
)

type SpinRequest struct {
	Category   string `json:"category" binding:"required,max=50"`
	Descriptor string `json:"descriptor" binding:"required,max=255"`
}

type StreakSummary struct {
	Current        int      `json:"current"`
	Longest        int      `json:"longest"`
	CategoriesSeen []string `json:"categories_seen"`
	TotalSpins     int      `json:"total_spins"`
	RareCount      int      `json:"rare_count"`
}

type QuotaSummary struct {
	Remaining int       `json:"remaining"`
	ResetsAt  time.Time `json:"resets_at"`
}

type UnlockedAchievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	RewardSpins int    `json:"reward_spins"`
}

type SpinResponse struct {
	SpinID     uuid.UUID             `json:"spin_id"`
	Category   string                `json:"category"`
	Descriptor string                `json:"descriptor"`
	IsRare     bool                  `json:"is_rare"`
	Streak     StreakSummary         `json:"streak"`
	Quota      QuotaSummary          `json:"quota"`
	Unlocked   []UnlockedAchievement `json:"unlocked"`
	CreatedAt  time.Time             `json:"created_at"`
}

type VoteRequest struct {
	Kind string `json:"kind" binding:"required,oneof=funny chaotic stunning cursed"`
}
