package model

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StreakRecord accumulates one account's progression stats. LastActionDate is
// a calendar date (UTC midnight), not a timestamp. CategoriesSeen is stored as
// a sorted comma-joined label list.
type StreakRecord struct {
	AccountID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"account_id"`
	CurrentStreak  int       `gorm:"not null;default:0" json:"current_streak"`
	LongestStreak  int       `gorm:"not null;default:0" json:"longest_streak"`
	LastActionDate time.Time `json:"last_action_date"`
	CategoriesSeen string    `gorm:"size:1024" json:"-"`
	TotalActions   int       `gorm:"not null;default:0" json:"total_actions"`
	RareCount      int       `gorm:"not null;default:0" json:"rare_count"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Categories returns the seen category labels as a slice.
func (r *StreakRecord) Categories() []string {
	if r.CategoriesSeen == "" {
		return nil
	}
	return strings.Split(r.CategoriesSeen, ",")
}

// AddCategory inserts a label into the seen set, keeping storage sorted so
// the serialized form is deterministic.
func (r *StreakRecord) AddCategory(category string) {
	existing := r.Categories()
	for _, c := range existing {
		if c == category {
			return
		}
	}
	existing = append(existing, category)
	sort.Strings(existing)
	r.CategoriesSeen = strings.Join(existing, ",")
}
