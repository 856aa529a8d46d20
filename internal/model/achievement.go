package model

import (
	"time"

	"github.com/google/uuid"
)

// AchievementUnlock is append-only: at most one row per account and
// achievement id, enforced by the unique index. The conditional insert on that
// index is the serialization point that keeps rewards single-grant under
// concurrent evaluation.
type AchievementUnlock struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	AccountID     uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_account_achievement,priority:1;not null" json:"account_id"`
	AchievementID string    `gorm:"size:50;uniqueIndex:idx_account_achievement,priority:2;not null" json:"achievement_id"`
	UnlockedAt    time.Time `gorm:"not null" json:"unlocked_at"`
}
