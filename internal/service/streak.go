package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pixelspin/pixelspin/internal/model"
	"github.com/pixelspin/pixelspin/internal/repository"
	"github.com/pixelspin/pixelspin/pkg/apperror"
	"gorm.io/gorm"
)

// rareDescriptors is the curated membership set for rare spins. Rarity is
// deterministic exact-match classification; how often these styles are offered
// upstream decides how rare they feel.
var rareDescriptors = map[string]struct{}{
	"golden hour renaissance":      {},
	"holographic vaporwave":        {},
	"ukiyo-e woodblock print":      {},
	"bioluminescent forest spirit": {},
	"stained glass cathedral":      {},
	"cosmic nebula overlay":        {},
	"art deco travel poster":       {},
	"iridescent oil slick":         {},
}

// streakState is the explicit transition model for streak continuation.
type streakState int

const (
	streakNoPrior streakState = iota
	streakSameDay
	streakConsecutiveDay
	streakBroken
)

// classifyStreak maps the stored last-action date and today's date to a
// transition state. Dates are UTC-midnight truncated.
func classifyStreak(hasPrior bool, lastActionDate, today time.Time) streakState {
	if !hasPrior {
		return streakNoPrior
	}
	switch {
	case lastActionDate.Equal(today):
		return streakSameDay
	case lastActionDate.Equal(today.AddDate(0, 0, -1)):
		return streakConsecutiveDay
	default:
		return streakBroken
	}
}

// nextStreak applies the transition. Same-day repeats increment the counter,
// matching the product's live behavior: streak counts actions, not distinct
// days. Changing that is a product decision, not a bug fix.
func nextStreak(state streakState, current int) int {
	switch state {
	case streakSameDay, streakConsecutiveDay:
		return current + 1
	default:
		return 1
	}
}

// ActionResult is the freshly computed progression state after one recorded
// spin, consumed by the achievement engine and the response payload.
type ActionResult struct {
	IsRare         bool
	CurrentStreak  int
	LongestStreak  int
	CategoriesSeen []string
	TotalActions   int
	RareCount      int
}

type StreakEngine interface {
	// RecordAction folds one spin into the account's streak record and
	// returns the updated snapshot.
	RecordAction(ctx context.Context, accountID uuid.UUID, category, descriptor string) (*ActionResult, error)

	Get(ctx context.Context, accountID uuid.UUID) (*model.StreakRecord, error)
}

type streakEngine struct {
	repo repository.StreakRepository
	now  func() time.Time
}

func NewStreakEngine(repo repository.StreakRepository) StreakEngine {
	return &streakEngine{
		repo: repo,
		now:  time.Now,
	}
}

// IsRareDescriptor reports whether descriptor belongs to the curated rare set.
func IsRareDescriptor(descriptor string) bool {
	_, ok := rareDescriptors[descriptor]
	return ok
}

func (e *streakEngine) RecordAction(ctx context.Context, accountID uuid.UUID, category, descriptor string) (*ActionResult, error) {
	isRare := IsRareDescriptor(descriptor)
	today := e.today()

	for attempt := 0; attempt < casRetries; attempt++ {
		rec, err := e.repo.Find(ctx, accountID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("read streak: %w", err)
			}

			rec = &model.StreakRecord{
				AccountID:      accountID,
				CurrentStreak:  1,
				LongestStreak:  1,
				LastActionDate: today,
				TotalActions:   1,
			}
			rec.AddCategory(category)
			if isRare {
				rec.RareCount = 1
			}

			created, err := e.repo.Create(ctx, rec)
			if err != nil {
				return nil, fmt.Errorf("create streak: %w", err)
			}
			if !created {
				continue
			}
			return resultFrom(rec, isRare), nil
		}

		prevTotal := rec.TotalActions

		state := classifyStreak(true, dateOnly(rec.LastActionDate), today)
		rec.CurrentStreak = nextStreak(state, rec.CurrentStreak)
		if rec.CurrentStreak > rec.LongestStreak {
			rec.LongestStreak = rec.CurrentStreak
		}
		rec.LastActionDate = today
		rec.AddCategory(category)
		rec.TotalActions++
		if isRare {
			rec.RareCount++
		}

		swapped, err := e.repo.Update(ctx, rec, prevTotal)
		if err != nil {
			return nil, fmt.Errorf("update streak: %w", err)
		}
		if !swapped {
			continue
		}

		return resultFrom(rec, isRare), nil
	}

	return nil, fmt.Errorf("record action for %s: %w", accountID, apperror.ErrConflict)
}

func (e *streakEngine) Get(ctx context.Context, accountID uuid.UUID) (*model.StreakRecord, error) {
	rec, err := e.repo.Find(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.StreakRecord{AccountID: accountID}, nil
		}
		return nil, err
	}
	return rec, nil
}

func (e *streakEngine) today() time.Time {
	return dateOnly(e.now().UTC())
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func resultFrom(rec *model.StreakRecord, isRare bool) *ActionResult {
	return &ActionResult{
		IsRare:         isRare,
		CurrentStreak:  rec.CurrentStreak,
		LongestStreak:  rec.LongestStreak,
		CategoriesSeen: rec.Categories(),
		TotalActions:   rec.TotalActions,
		RareCount:      rec.RareCount,
	}
}
