package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/org-contributors/internal/domain"
	"github.com/naka-gawa/org-contributors/internal/gateway"
)

func newTestCoordinator(f gateway.Fetcher, maxRetries int) (*Coordinator, *IdentityTable, *recordingSleep) {
	table := NewIdentityTable()
	resolver := NewResolver(f, nil, discardLogger())
	c := NewCoordinator(f, resolver, table, maxRetries, time.Second, discardLogger())
	s := &recordingSleep{}
	c.sleep = s.sleep
	return c, table, s
}

func TestCoordinator_Run(t *testing.T) {
	testCases := []struct {
		name          string
		maxRetries    int
		setup         func(f *mockFetcher)
		expectedCalls int
		expectedSleep int
		expectedTries int
	}{
		{
			name:       "ready but empty is finalized immediately",
			maxRetries: 10,
			setup: func(f *mockFetcher) {
				f.On("GetContributorStats", mock.Anything, "acme", "widgets").Return([]domain.ContributorStat{}, nil)
			},
			expectedCalls: 1,
		},
		{
			name:       "empty after computing is not retried again",
			maxRetries: 10,
			setup: func(f *mockFetcher) {
				f.On("GetContributorStats", mock.Anything, "acme", "widgets").Return(nil, gateway.ErrStatsComputing).Once()
				f.On("GetContributorStats", mock.Anything, "acme", "widgets").Return([]domain.ContributorStat{}, nil).Once()
			},
			expectedCalls: 2,
			expectedSleep: 1,
			expectedTries: 1,
		},
		{
			name:       "a ceiling of zero never retries",
			maxRetries: 0,
			setup: func(f *mockFetcher) {
				f.On("GetContributorStats", mock.Anything, "acme", "widgets").Return(nil, gateway.ErrStatsComputing).Once()
			},
			expectedCalls: 1,
			expectedTries: 1,
		},
		{
			name:       "stops at the ceiling",
			maxRetries: 3,
			setup: func(f *mockFetcher) {
				f.On("GetContributorStats", mock.Anything, "acme", "widgets").Return(nil, gateway.ErrStatsComputing)
			},
			expectedCalls: 3,
			expectedSleep: 2,
			expectedTries: 3,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := new(mockFetcher)
			tc.setup(fetcher)
			coordinator, table, sleeper := newTestCoordinator(fetcher, tc.maxRetries)

			results, err := coordinator.Run(context.Background(), []domain.Repository{repo("widgets")})
			require.NoError(t, err)
			require.Len(t, results, 1)

			assert.Equal(t, domain.RepoStateFinalized, results[0].State)
			assert.Empty(t, results[0].Contributors)
			assert.Equal(t, 0, results[0].Commits)
			assert.Equal(t, tc.expectedTries, results[0].Tries)
			assert.Len(t, sleeper.delays, tc.expectedSleep)
			assert.Equal(t, 0, table.Len())
			fetcher.AssertNumberOfCalls(t, "GetContributorStats", tc.expectedCalls)
			fetcher.AssertExpectations(t)
		})
	}
}

func TestCoordinator_RequeuesAtTail(t *testing.T) {
	fetcher := new(mockFetcher)
	var order []string
	record := func(args mock.Arguments) { order = append(order, args.String(2)) }
	fetcher.On("GetContributorStats", mock.Anything, "acme", "widgets").Return(nil, gateway.ErrStatsComputing).Run(record).Once()
	fetcher.On("GetContributorStats", mock.Anything, "acme", "widgets").Return([]domain.ContributorStat{stat("alice", 1)}, nil).Run(record).Once()
	fetcher.On("GetContributorStats", mock.Anything, "acme", "gadgets").Return([]domain.ContributorStat{stat("alice", 2)}, nil).Run(record).Once()
	fetcher.On("GetUser", mock.Anything, "alice").Return(profile("alice", 1), nil).Once()

	coordinator, table, sleeper := newTestCoordinator(fetcher, 10)
	results, err := coordinator.Run(context.Background(), []domain.Repository{repo("widgets"), repo("gadgets")})
	require.NoError(t, err)

	assert.Equal(t, []string{"widgets", "gadgets", "widgets"}, order)
	require.Len(t, results, 2)
	assert.Equal(t, "gadgets", results[0].Name)
	assert.Equal(t, "widgets", results[1].Name)
	assert.Equal(t, []time.Duration{time.Second}, sleeper.delays)

	alice, ok := table.Get("alice")
	require.True(t, ok)
	assert.Equal(t, 3, alice.Commits)
	fetcher.AssertExpectations(t)
}

func TestCoordinator_CancelledWhileWaiting(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("GetContributorStats", mock.Anything, "acme", "widgets").Return(nil, gateway.ErrStatsComputing).Once()

	table := NewIdentityTable()
	coordinator := NewCoordinator(fetcher, NewResolver(fetcher, nil, discardLogger()), table, 10, time.Hour, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	coordinator.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return sleepContext(ctx, d)
	}

	results, err := coordinator.Run(ctx, []domain.Repository{repo("widgets")})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, results)
	fetcher.AssertExpectations(t)
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))
	assert.NoError(t, sleepContext(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestWorkQueue(t *testing.T) {
	q := &workQueue[int]{}
	_, ok := q.Pop()
	assert.False(t, ok)

	q.Push(1)
	q.Push(2)
	first, _ := q.Pop()
	q.Push(first)
	assert.Equal(t, 2, q.Len())

	var got []int
	for q.Len() > 0 {
		v, _ := q.Pop()
		got = append(got, v)
	}
	assert.Equal(t, []int{2, 1}, got)
}
