package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pixelspin/pixelspin/internal/model"
	"github.com/pixelspin/pixelspin/internal/repository"
	"gorm.io/gorm"
)

// In-memory fakes implementing the repository and counter-store interfaces,
// with the same conditional-write semantics as the gorm implementations.

type fakeCounterStore struct {
	mu       sync.Mutex
	counts   map[string]int64
	expiries map[string]time.Time
	now      func() time.Time
	failing  bool
}

func newFakeCounterStore(now func() time.Time) *fakeCounterStore {
	return &fakeCounterStore{
		counts:   make(map[string]int64),
		expiries: make(map[string]time.Time),
		now:      now,
	}
}

func (s *fakeCounterStore) expireLocked(key string) {
	if exp, ok := s.expiries[key]; ok && !s.now().Before(exp) {
		delete(s.counts, key)
		delete(s.expiries, key)
	}
}

func (s *fakeCounterStore) IncrementWithExpiry(_ context.Context, key string, expiry time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return 0, errors.New("store down")
	}
	s.expireLocked(key)
	s.counts[key]++
	if s.counts[key] == 1 {
		s.expiries[key] = s.now().Add(expiry)
	}
	return s.counts[key], nil
}

func (s *fakeCounterStore) Get(_ context.Context, key string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return 0, false, errors.New("store down")
	}
	s.expireLocked(key)
	v, ok := s.counts[key]
	return v, ok, nil
}

func (s *fakeCounterStore) TTL(_ context.Context, key string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return 0, errors.New("store down")
	}
	exp, ok := s.expiries[key]
	if !ok {
		return 0, nil
	}
	ttl := exp.Sub(s.now())
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

type fakeQuotaRepo struct {
	mu   sync.Mutex
	recs map[uuid.UUID]model.QuotaRecord
}

func newFakeQuotaRepo() *fakeQuotaRepo {
	return &fakeQuotaRepo{recs: make(map[uuid.UUID]model.QuotaRecord)}
}

func (r *fakeQuotaRepo) Find(_ context.Context, accountID uuid.UUID) (*model.QuotaRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recs[accountID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := rec
	return &out, nil
}

func (r *fakeQuotaRepo) Create(_ context.Context, rec *model.QuotaRecord) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.recs[rec.AccountID]; exists {
		return false, nil
	}
	r.recs[rec.AccountID] = *rec
	return true, nil
}

func (r *fakeQuotaRepo) CompareAndSwap(_ context.Context, accountID uuid.UUID, prevCount int, prevLastReset time.Time, newCount int, newLastReset time.Time, tier model.Tier) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recs[accountID]
	if !ok || rec.Count != prevCount || !rec.LastReset.Equal(prevLastReset) {
		return false, nil
	}
	rec.Count = newCount
	rec.LastReset = newLastReset
	rec.Tier = tier
	r.recs[accountID] = rec
	return true, nil
}

type fakeStreakRepo struct {
	mu   sync.Mutex
	recs map[uuid.UUID]model.StreakRecord
}

func newFakeStreakRepo() *fakeStreakRepo {
	return &fakeStreakRepo{recs: make(map[uuid.UUID]model.StreakRecord)}
}

func (r *fakeStreakRepo) Find(_ context.Context, accountID uuid.UUID) (*model.StreakRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recs[accountID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := rec
	return &out, nil
}

func (r *fakeStreakRepo) Create(_ context.Context, rec *model.StreakRecord) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.recs[rec.AccountID]; exists {
		return false, nil
	}
	r.recs[rec.AccountID] = *rec
	return true, nil
}

func (r *fakeStreakRepo) Update(_ context.Context, rec *model.StreakRecord, prevTotalActions int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.recs[rec.AccountID]
	if !ok || stored.TotalActions != prevTotalActions {
		return false, nil
	}
	r.recs[rec.AccountID] = *rec
	return true, nil
}

type fakeAchievementRepo struct {
	mu sync.Mutex
	// unlocks[account][achievement] = unlockedAt
	unlocks map[uuid.UUID]map[string]time.Time
	// hideFromList makes ListByAccount report nothing while inserts still see
	// existing rows, simulating a concurrent evaluation that won the insert
	// after this one's read.
	hideFromList bool
}

func newFakeAchievementRepo() *fakeAchievementRepo {
	return &fakeAchievementRepo{unlocks: make(map[uuid.UUID]map[string]time.Time)}
}

func (r *fakeAchievementRepo) seed(accountID uuid.UUID, achievementID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.unlocks[accountID] == nil {
		r.unlocks[accountID] = make(map[string]time.Time)
	}
	r.unlocks[accountID][achievementID] = time.Now()
}

func (r *fakeAchievementRepo) ListByAccount(_ context.Context, accountID uuid.UUID) ([]model.AchievementUnlock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hideFromList {
		return nil, nil
	}
	var out []model.AchievementUnlock
	for id, at := range r.unlocks[accountID] {
		out = append(out, model.AchievementUnlock{AccountID: accountID, AchievementID: id, UnlockedAt: at})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UnlockedAt.Before(out[j].UnlockedAt) })
	return out, nil
}

func (r *fakeAchievementRepo) InsertUnlock(_ context.Context, accountID uuid.UUID, achievementID string, unlockedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.unlocks[accountID] == nil {
		r.unlocks[accountID] = make(map[string]time.Time)
	}
	if _, exists := r.unlocks[accountID][achievementID]; exists {
		return false, nil
	}
	r.unlocks[accountID][achievementID] = unlockedAt
	return true, nil
}

type stubQuotaTracker struct {
	mu     sync.Mutex
	grants map[uuid.UUID]int
}

func newStubQuotaTracker() *stubQuotaTracker {
	return &stubQuotaTracker{grants: make(map[uuid.UUID]int)}
}

func (s *stubQuotaTracker) Consume(context.Context, uuid.UUID, model.Tier) (QuotaSnapshot, error) {
	return QuotaSnapshot{Permitted: true}, nil
}

func (s *stubQuotaTracker) Grant(_ context.Context, accountID uuid.UUID, amount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grants[accountID] += amount
	return nil
}

func (s *stubQuotaTracker) Remaining(context.Context, uuid.UUID, model.Tier) (QuotaSnapshot, error) {
	return QuotaSnapshot{Permitted: true}, nil
}

func (s *stubQuotaTracker) granted(accountID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grants[accountID]
}

type stubNotifications struct {
	mu    sync.Mutex
	notes []model.Notification
}

func (s *stubNotifications) Notify(_ context.Context, n *model.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = append(s.notes, *n)
}

func (s *stubNotifications) List(context.Context, uuid.UUID, int, int) ([]model.Notification, error) {
	return nil, nil
}

func (s *stubNotifications) MarkAsRead(context.Context, uuid.UUID) error { return nil }

func (s *stubNotifications) MarkAllAsRead(context.Context, uuid.UUID) error { return nil }

func (s *stubNotifications) UnreadCount(context.Context, uuid.UUID) (int64, error) { return 0, nil }

type fakeSpinRepo struct {
	mu    sync.Mutex
	spins map[uuid.UUID]*model.SpinRecord
	votes map[string]*model.VoteRecord
	order []uuid.UUID
}

func newFakeSpinRepo() *fakeSpinRepo {
	return &fakeSpinRepo{
		spins: make(map[uuid.UUID]*model.SpinRecord),
		votes: make(map[string]*model.VoteRecord),
	}
}

func voteKey(spinID, accountID uuid.UUID) string {
	return spinID.String() + "|" + accountID.String()
}

func (r *fakeSpinRepo) Create(_ context.Context, spin *model.SpinRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *spin
	r.spins[spin.ID] = &cp
	r.order = append(r.order, spin.ID)
	return nil
}

func (r *fakeSpinRepo) FindByID(_ context.Context, id uuid.UUID) (*model.SpinRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	spin, ok := r.spins[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *spin
	return &out, nil
}

func (r *fakeSpinRepo) Recent(_ context.Context, limit int) ([]model.SpinRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.SpinRecord
	for i := len(r.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *r.spins[r.order[i]])
	}
	return out, nil
}

func (r *fakeSpinRepo) UpsertVote(_ context.Context, vote *model.VoteRecord) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := voteKey(vote.SpinID, vote.AccountID)
	if existing, ok := r.votes[key]; ok {
		existing.Kind = vote.Kind
		return false, nil
	}
	cp := *vote
	r.votes[key] = &cp
	return true, nil
}

func (r *fakeSpinRepo) IncrementShareCount(_ context.Context, spinID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if spin, ok := r.spins[spinID]; ok {
		spin.ShareCount++
	}
	return nil
}

func (r *fakeSpinRepo) IncrementVoteCount(_ context.Context, spinID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if spin, ok := r.spins[spinID]; ok {
		spin.VoteCount++
	}
	return nil
}

func (r *fakeSpinRepo) TotalsByAccount(_ context.Context, accountID uuid.UUID) (repository.SpinTotals, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var totals repository.SpinTotals
	for _, spin := range r.spins {
		if spin.AccountID == accountID {
			totals.ShareCount += spin.ShareCount
			totals.VoteCount += spin.VoteCount
		}
	}
	return totals, nil
}

type fakeLeaderboardRepo struct {
	mu      sync.Mutex
	spins   []model.SpinRecord
	streaks []model.StreakRecord
}

func (r *fakeLeaderboardRepo) TopByVotes(_ context.Context, limit int) ([]model.SpinRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.SpinRecord, len(r.spins))
	copy(out, r.spins)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].VoteCount != out[j].VoteCount {
			return out[i].VoteCount > out[j].VoteCount
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeLeaderboardRepo) TopByStreak(_ context.Context, limit int) ([]model.StreakRecord, error) {
	return r.sortedStreaks(limit, func(a, b model.StreakRecord) bool {
		if a.CurrentStreak != b.CurrentStreak {
			return a.CurrentStreak > b.CurrentStreak
		}
		return a.LastActionDate.Before(b.LastActionDate)
	})
}

func (r *fakeLeaderboardRepo) TopBySpins(_ context.Context, limit int) ([]model.StreakRecord, error) {
	return r.sortedStreaks(limit, func(a, b model.StreakRecord) bool {
		if a.TotalActions != b.TotalActions {
			return a.TotalActions > b.TotalActions
		}
		return a.LastActionDate.Before(b.LastActionDate)
	})
}

func (r *fakeLeaderboardRepo) sortedStreaks(limit int, less func(a, b model.StreakRecord) bool) ([]model.StreakRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.StreakRecord, len(r.streaks))
	copy(out, r.streaks)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
