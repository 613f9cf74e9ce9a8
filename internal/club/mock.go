package club

import (
	"context"
	"sync"
)

// MockStore wraps a real ClubStore and lets tests intercept the writes that matter for
// atomicity. A hook runs before the real call, both inside and outside transactions; a
// non-nil error from it is returned instead of performing the write.
// It is safe for concurrent use.
type MockStore struct {
	ClubStore

	mu sync.Mutex

	// Spies for method calls
	ApplyMatchResultFunc    func(id int64, rating float64) error
	AppendRatingHistoryFunc func(entry *RatingHistoryEntry) error
	DeleteMatchesFunc       func(ids []int64) error
	StartSeasonFunc         func(name string) error

	// Call records
	TransactionCalls         int
	AppendRatingHistoryCalls []RatingHistoryEntry
	DeleteMatchesCalls       [][]int64
}

// NewMockStore creates a MockStore backed by store.
func NewMockStore(store ClubStore) *MockStore {
	return &MockStore{ClubStore: store}
}

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TransactionCalls = 0
	m.AppendRatingHistoryCalls = nil
	m.DeleteMatchesCalls = nil
}

func (m *MockStore) Transaction(ctx context.Context, fn func(q Queries) error) error {
	m.mu.Lock()
	m.TransactionCalls++
	m.mu.Unlock()
	return m.ClubStore.Transaction(ctx, func(q Queries) error {
		return fn(&mockQueries{Queries: q, m: m})
	})
}

func (m *MockStore) ApplyMatchResult(ctx context.Context, id int64, rating float64, pointsWon, pointsLost int, now Timestamp) error {
	return (&mockQueries{Queries: m.ClubStore, m: m}).ApplyMatchResult(ctx, id, rating, pointsWon, pointsLost, now)
}

func (m *MockStore) AppendRatingHistory(ctx context.Context, entry *RatingHistoryEntry) error {
	return (&mockQueries{Queries: m.ClubStore, m: m}).AppendRatingHistory(ctx, entry)
}

func (m *MockStore) DeleteMatches(ctx context.Context, ids []int64) error {
	return (&mockQueries{Queries: m.ClubStore, m: m}).DeleteMatches(ctx, ids)
}

func (m *MockStore) StartSeason(ctx context.Context, name string, now Timestamp) (*Season, error) {
	return (&mockQueries{Queries: m.ClubStore, m: m}).StartSeason(ctx, name, now)
}

// mockQueries routes the hooked writes of one scope through the MockStore.
type mockQueries struct {
	Queries
	m *MockStore
}

func (q *mockQueries) ApplyMatchResult(ctx context.Context, id int64, rating float64, pointsWon, pointsLost int, now Timestamp) error {
	q.m.mu.Lock()
	hook := q.m.ApplyMatchResultFunc
	q.m.mu.Unlock()
	if hook != nil {
		if err := hook(id, rating); err != nil {
			return err
		}
	}
	return q.Queries.ApplyMatchResult(ctx, id, rating, pointsWon, pointsLost, now)
}

func (q *mockQueries) AppendRatingHistory(ctx context.Context, entry *RatingHistoryEntry) error {
	q.m.mu.Lock()
	q.m.AppendRatingHistoryCalls = append(q.m.AppendRatingHistoryCalls, *entry)
	hook := q.m.AppendRatingHistoryFunc
	q.m.mu.Unlock()
	if hook != nil {
		if err := hook(entry); err != nil {
			return err
		}
	}
	return q.Queries.AppendRatingHistory(ctx, entry)
}

func (q *mockQueries) DeleteMatches(ctx context.Context, ids []int64) error {
	q.m.mu.Lock()
	q.m.DeleteMatchesCalls = append(q.m.DeleteMatchesCalls, ids)
	hook := q.m.DeleteMatchesFunc
	q.m.mu.Unlock()
	if hook != nil {
		if err := hook(ids); err != nil {
			return err
		}
	}
	return q.Queries.DeleteMatches(ctx, ids)
}

func (q *mockQueries) StartSeason(ctx context.Context, name string, now Timestamp) (*Season, error) {
	q.m.mu.Lock()
	hook := q.m.StartSeasonFunc
	q.m.mu.Unlock()
	if hook != nil {
		if err := hook(name); err != nil {
			return nil, err
		}
	}
	return q.Queries.StartSeason(ctx, name, now)
}
