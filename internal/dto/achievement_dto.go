package dto

import "time"

// AchievementStatus merges one catalog entry with the account's unlock state.
type AchievementStatus struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Requirement string     `json:"requirement"`
	Threshold   int        `json:"threshold"`
	RewardSpins int        `json:"reward_spins"`
	Unlocked    bool       `json:"unlocked"`
	UnlockedAt  *time.Time `json:"unlocked_at,omitempty"`
}
