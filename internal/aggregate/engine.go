// Package aggregate maintains per-user observed taste statistics from a
// stream of categorized transaction events. Every apply is O(1): only the
// affected counters and the per-transaction side index are touched, never
// the transaction history.
package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ceezaa/tasteflow/internal/model"
	"github.com/ceezaa/tasteflow/internal/service"
	"github.com/ceezaa/tasteflow/internal/taxonomy"
)

// Engine applies transaction events to observed taste profiles. Applies
// for the same user are serialized through a per-user lock because the
// Modified/Removed reversal reads then writes the side index; different
// users proceed fully in parallel.
type Engine struct {
	storage service.Storage
	logger  *slog.Logger
	locks   *userLocks
}

// DeltaStats summarizes one applied sync delta.
type DeltaStats struct {
	Added    int
	Modified int
	Removed  int
	Orphaned int
}

// New creates an aggregation engine backed by the given storage.
func New(storage service.Storage) *Engine {
	return &Engine{
		storage: storage,
		logger:  slog.Default().With("component", "aggregate"),
		locks:   newUserLocks(),
	}
}

// Apply folds a single event into the user's observed profile and returns
// the updated stat for the affected category. Unknown users get a fresh
// profile on first write. The returned stat is nil for a Removed event
// that referenced an untracked transaction.
func (e *Engine) Apply(ctx context.Context, event model.TransactionEvent) (*model.CategoryStat, error) {
	if event.UserID == "" {
		return nil, fmt.Errorf("transaction event missing user ID")
	}
	if event.ID == "" {
		return nil, fmt.Errorf("transaction event missing transaction ID")
	}

	unlock := e.locks.lock(event.UserID)
	defer unlock()

	profile, err := e.storage.GetObservedProfile(ctx, event.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load observed profile: %w", err)
	}
	if profile == nil {
		profile = model.NewObservedTasteProfile(event.UserID)
	}

	var (
		category string
		upsert   *model.AppliedState
		remove   string
	)
	switch event.Kind {
	case model.EventAdded:
		category, upsert = e.applyAdded(event, profile)
	case model.EventModified:
		category, upsert, err = e.applyModified(ctx, event, profile)
	case model.EventRemoved:
		category, remove, err = e.applyRemoved(ctx, event, profile)
	default:
		return nil, fmt.Errorf("unknown event kind %q", event.Kind)
	}
	if err != nil {
		return nil, err
	}

	// The profile and the staged index mutation persist in one storage
	// transaction. A partial write would leave the index describing a
	// contribution the stored profile does not contain, and the next
	// reversal would then subtract the wrong state.
	profile.Version++
	switch {
	case upsert != nil:
		err = e.storage.SaveProfileWithAppliedState(ctx, profile, upsert)
	case remove != "":
		err = e.storage.SaveProfileDeletingAppliedState(ctx, profile, remove)
	default:
		err = e.storage.SaveObservedProfile(ctx, profile)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save observed profile: %w", err)
	}

	if category == "" {
		return nil, nil
	}
	if stat, ok := profile.Categories[category]; ok {
		copied := *stat
		return &copied, nil
	}
	return nil, nil
}

// ApplyDelta applies one sync delta in added, modified, removed order.
func (e *Engine) ApplyDelta(ctx context.Context, userID string, delta model.SyncDelta) (DeltaStats, error) {
	var stats DeltaStats

	for _, event := range delta.Added {
		event.Kind = model.EventAdded
		if _, err := e.Apply(ctx, event); err != nil {
			return stats, err
		}
		stats.Added++
	}
	for _, event := range delta.Modified {
		event.Kind = model.EventModified
		if _, err := e.Apply(ctx, event); err != nil {
			return stats, err
		}
		stats.Modified++
	}
	for _, transactionID := range delta.Removed {
		removal := model.TransactionEvent{
			ID:     transactionID,
			UserID: userID,
			Kind:   model.EventRemoved,
		}
		stat, err := e.Apply(ctx, removal)
		if err != nil {
			return stats, err
		}
		if stat == nil {
			stats.Orphaned++
		}
		stats.Removed++
	}

	return stats, nil
}

// Snapshot returns the user's current observed profile, or a fresh empty
// profile for a user with no transactions yet.
func (e *Engine) Snapshot(ctx context.Context, userID string) (*model.ObservedTasteProfile, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}

	unlock := e.locks.lock(userID)
	defer unlock()

	profile, err := e.storage.GetObservedProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load observed profile: %w", err)
	}
	if profile == nil {
		profile = model.NewObservedTasteProfile(userID)
	}
	return profile, nil
}

// applyAdded folds the event into the in-memory profile and returns the
// side-index record to persist alongside it.
func (e *Engine) applyAdded(event model.TransactionEvent, profile *model.ObservedTasteProfile) (string, *model.AppliedState) {
	state := stateFromEvent(event)
	applyContribution(profile, state, 1)
	updateStreak(profile, state)
	updateSeenRange(profile, state.OccurredAt)
	return state.Category, state
}

func (e *Engine) applyModified(ctx context.Context, event model.TransactionEvent, profile *model.ObservedTasteProfile) (string, *model.AppliedState, error) {
	prior, err := e.storage.GetAppliedState(ctx, event.UserID, event.ID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load applied state: %w", err)
	}
	if prior == nil {
		// Upstream sync should always deliver Added first; degrade to a
		// fresh add rather than dropping the event.
		e.logger.Warn("Modified event for untracked transaction, treating as added",
			"user_id", event.UserID, "transaction_id", event.ID)
		category, state := e.applyAdded(event, profile)
		return category, state, nil
	}

	applyContribution(profile, prior, -1)

	state := stateFromEvent(event)
	applyContribution(profile, state, 1)
	updateStreak(profile, state)
	updateSeenRange(profile, state.OccurredAt)
	return state.Category, state, nil
}

func (e *Engine) applyRemoved(ctx context.Context, event model.TransactionEvent, profile *model.ObservedTasteProfile) (string, string, error) {
	prior, err := e.storage.GetAppliedState(ctx, event.UserID, event.ID)
	if err != nil {
		return "", "", fmt.Errorf("failed to load applied state: %w", err)
	}
	if prior == nil {
		// A removal carries only the transaction ID, so there is nothing
		// to reconstruct; log for observability and move on.
		e.logger.Warn("Removed event for untracked transaction, ignoring",
			"user_id", event.UserID, "transaction_id", event.ID)
		return "", "", nil
	}

	applyContribution(profile, prior, -1)
	return prior.Category, event.ID, nil
}

// stateFromEvent maps an event through the taxonomy into the side-index
// record whose exact contribution can later be reversed.
func stateFromEvent(event model.TransactionEvent) *model.AppliedState {
	return &model.AppliedState{
		TransactionID: event.ID,
		UserID:        event.UserID,
		Category:      taxonomy.Lookup(event.RawCategory),
		Cuisine:       taxonomy.Cuisine(event.RawCategory),
		Merchant:      event.MerchantKey(),
		MerchantName:  event.MerchantName,
		Amount:        event.Amount,
		OccurredAt:    event.OccurredAt,
	}
}

// applyContribution folds one transaction's contribution into the profile
// with the given sign. Reversal uses the stored prior state, so the same
// buckets that were incremented are the ones decremented.
func applyContribution(profile *model.ObservedTasteProfile, state *model.AppliedState, sign int) {
	stat, ok := profile.Categories[state.Category]
	if !ok {
		stat = model.NewCategoryStat()
		profile.Categories[state.Category] = stat
	}

	stat.Count += sign
	if sign > 0 {
		stat.TotalSpend = stat.TotalSpend.Add(state.Amount)
		if state.OccurredAt.After(stat.LastSeenAt) {
			stat.LastSeenAt = state.OccurredAt
		}
	} else {
		stat.TotalSpend = stat.TotalSpend.Sub(state.Amount)
	}

	exploration, ok := profile.Exploration[state.Category]
	if !ok {
		exploration = &model.ExplorationStat{}
		profile.Exploration[state.Category] = exploration
	}
	exploration.Total += sign

	if state.Merchant != "" {
		stat.MerchantFrequency[state.Merchant] += sign
		switch {
		case sign > 0 && stat.MerchantFrequency[state.Merchant] == 1:
			exploration.Unique++
		case sign < 0 && stat.MerchantFrequency[state.Merchant] == 0:
			exploration.Unique--
			delete(stat.MerchantFrequency, state.Merchant)
		}

		visit, ok := profile.MerchantVisits[state.Merchant]
		if !ok {
			visit = &model.MerchantVisit{Merchant: state.Merchant}
			profile.MerchantVisits[state.Merchant] = visit
		}
		visit.Count += sign
		if sign > 0 {
			if state.MerchantName != "" {
				visit.Name = state.MerchantName
			}
			if state.OccurredAt.After(visit.LastVisit) {
				visit.LastVisit = state.OccurredAt
			}
		}
		if visit.Count <= 0 {
			delete(profile.MerchantVisits, state.Merchant)
		}
	}

	if state.Cuisine != "" {
		profile.Cuisines[state.Cuisine] += sign
		if profile.Cuisines[state.Cuisine] <= 0 {
			delete(profile.Cuisines, state.Cuisine)
		}
	}

	profile.TimePatterns.TimeOfDay[taxonomy.TimeBucket(state.OccurredAt)] += sign
	profile.TimePatterns.DayType[taxonomy.DayType(state.OccurredAt)] += sign

	profile.TotalTransactions += sign
	if profile.TotalTransactions < 0 {
		profile.TotalTransactions = 0
	}
}

// updateStreak advances the consecutive-day streak for the event's
// category. Streaks are display data: same day is a no-op, a one-day gap
// extends the streak, anything longer resets it. Reversals do not rewind
// streaks.
func updateStreak(profile *model.ObservedTasteProfile, state *model.AppliedState) {
	day := state.OccurredAt.Truncate(24 * time.Hour)

	streak, ok := profile.Streaks[state.Category]
	if !ok {
		profile.Streaks[state.Category] = &model.StreakData{
			Current:  1,
			Longest:  1,
			LastDate: day,
		}
		return
	}

	switch days := int(day.Sub(streak.LastDate).Hours() / 24); {
	case days == 0:
	case days == 1:
		streak.Current++
		if streak.Current > streak.Longest {
			streak.Longest = streak.Current
		}
		streak.LastDate = day
	default:
		streak.Current = 1
		streak.LastDate = day
	}
}

func updateSeenRange(profile *model.ObservedTasteProfile, occurredAt time.Time) {
	if profile.FirstSeenAt.IsZero() || occurredAt.Before(profile.FirstSeenAt) {
		profile.FirstSeenAt = occurredAt
	}
	if occurredAt.After(profile.LastSeenAt) {
		profile.LastSeenAt = occurredAt
	}
}

// userLocks serializes applies per user while letting distinct users
// proceed concurrently.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*sync.Mutex)}
}

func (u *userLocks) lock(userID string) func() {
	u.mu.Lock()
	m, ok := u.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		u.locks[userID] = m
	}
	u.mu.Unlock()

	m.Lock()
	return m.Unlock
}
