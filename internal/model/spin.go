package model

import (
	"time"

	"github.com/google/uuid"
)

// SpinRecord is one gamified transformation request. Rows are immutable after
// creation except for the share/vote counters, which are bumped with SQL
// expressions rather than read-modify-write.
type SpinRecord struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AccountID  uuid.UUID `gorm:"type:uuid;index;not null" json:"account_id"`
	Category   string    `gorm:"size:50;not null" json:"category"`
	Descriptor string    `gorm:"size:255;not null" json:"descriptor"`
	IsRare     bool      `gorm:"not null;default:false" json:"is_rare"`
	ShareCount int       `gorm:"not null;default:0" json:"share_count"`
	VoteCount  int       `gorm:"not null;default:0" json:"vote_count"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

type VoteKind string

const (
	VoteFunny    VoteKind = "funny"
	VoteChaotic  VoteKind = "chaotic"
	VoteStunning VoteKind = "stunning"
	VoteCursed   VoteKind = "cursed"
)

// VoteRecord holds one account's vote on one spin. The unique index makes a
// repeat vote an overwrite of Kind instead of a duplicate row.
type VoteRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SpinID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_spin_voter,priority:1;not null" json:"spin_id"`
	AccountID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_spin_voter,priority:2;not null" json:"account_id"`
	Kind      VoteKind  `gorm:"size:20;not null" json:"kind"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
