package model

import (
	"time"

	"github.com/google/uuid"
)

// Tier is the account subscription level. Only the free tier is numerically
// limited by this service; paid tiers unlock models/features elsewhere.
type Tier string

const (
	TierFree   Tier = "free"
	TierPro    Tier = "pro"
	TierStudio Tier = "studio"
)

// Unlimited reports whether the tier bypasses the daily spin ceiling.
func (t Tier) Unlimited() bool {
	return t == TierPro || t == TierStudio
}

// QuotaRecord tracks one account's daily spin consumption. Count is owned
// exclusively by the quota tracker; the achievement engine only touches it
// through Grant. LastReset anchors the rolling 24h window and only ever moves
// forward.
type QuotaRecord struct {
	AccountID uuid.UUID `gorm:"type:uuid;primaryKey" json:"account_id"`
	Count     int       `gorm:"not null;default:0" json:"count"`
	LastReset time.Time `gorm:"not null" json:"last_reset"`
	Tier      Tier      `gorm:"size:20;not null;default:'free'" json:"tier"`
	UpdatedAt time.Time `json:"updated_at"`
}
