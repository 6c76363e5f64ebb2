package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cp-ladders/backend/internal/domain"
)

func newSyncFixture() (*SyncService, *fakeStatusRepo, *fakeFetcher, *fakeBoards) {
	users := &fakeUserRepo{users: map[uint]*domain.User{
		1: {ID: 1, Username: "tourist", Email: "tourist@example.com"},
		2: {ID: 2, Username: "petr", Email: "petr@example.com"},
	}}
	profiles := &fakeProfileRepo{profiles: map[uint]*domain.UserCPProfile{
		1: {ID: 1, UserID: 1, CodeforcesHandle: "tourist"},
		2: {ID: 2, UserID: 2},
	}}
	ladders := &fakeLadderRepo{
		ladders: map[uint]*domain.Ladder{
			1: {ID: 1, RatingRange: "800-1100"},
			2: {ID: 2, RatingRange: "1100-1400"},
		},
		problems: []domain.LadderProblem{
			{ID: 10, LadderID: 1, ProblemOrder: 1, OnlineJudge: domain.JudgeCodeforces,
				ProblemURL: "https://codeforces.com/problemset/problem/4/A"},
			{ID: 11, LadderID: 1, ProblemOrder: 2, OnlineJudge: domain.JudgeCodeforces,
				ProblemURL: "https://codeforces.com/contest/71/A"},
			{ID: 12, LadderID: 1, ProblemOrder: 3, OnlineJudge: domain.JudgeAtCoder,
				ProblemURL: "https://atcoder.jp/contests/abc300/tasks/abc300_a"},
			{ID: 20, LadderID: 2, ProblemOrder: 1, OnlineJudge: domain.JudgeCodeforces,
				ProblemURL: "https://codeforces.com/problemset/problem/1523/A"},
		},
	}
	statuses := newFakeStatusRepo()
	statuses.problems = ladders.problems
	fetcher := &fakeFetcher{solved: map[string]struct{}{
		"4A":    {},
		"1523A": {},
	}}
	boards := &fakeBoards{}

	svc := NewSyncService(ladders, statuses, profiles, users, fetcher, boards, nil, testTracer(), zap.NewNop())
	return svc, statuses, fetcher, boards
}

func TestSyncCodeforcesFullCatalog(t *testing.T) {
	svc, statuses, _, boards := newSyncFixture()

	outcome, err := svc.SyncCodeforces(context.Background(), 1, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, outcome.Created)
	assert.Equal(t, 0, outcome.Updated)
	assert.True(t, statuses.completed(1, 10))
	assert.True(t, statuses.completed(1, 20))
	assert.False(t, statuses.completed(1, 11))
	assert.Equal(t, 1, boards.count())

	syncedAt, ok := statuses.lastSynced[1]
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().UTC(), syncedAt, 5*time.Second)
}

func TestSyncCodeforcesLadderScoped(t *testing.T) {
	svc, statuses, _, _ := newSyncFixture()

	ladderID := uint(1)
	outcome, err := svc.SyncCodeforces(context.Background(), 1, &ladderID)
	require.NoError(t, err)

	assert.Equal(t, 1, outcome.Created)
	assert.True(t, statuses.completed(1, 10))
	assert.False(t, statuses.completed(1, 20), "problem outside the ladder must not be touched")
}

func TestSyncCodeforcesIdempotent(t *testing.T) {
	svc, statuses, _, boards := newSyncFixture()

	first, err := svc.SyncCodeforces(context.Background(), 1, nil)
	require.NoError(t, err)
	require.Equal(t, 2, first.Created)

	second, err := svc.SyncCodeforces(context.Background(), 1, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 0, second.Updated)
	assert.Equal(t, 2, statuses.rowCount())
	assert.Equal(t, 1, boards.count(), "a no-op sync must not invalidate the board")
}

func TestSyncCodeforcesMonotonic(t *testing.T) {
	svc, statuses, fetcher, _ := newSyncFixture()

	// Completed earlier, no longer present in the judge response
	require.NoError(t, statuses.SetCompleted(1, 20, true, time.Now().UTC()))
	fetcher.solved = map[string]struct{}{"4A": {}}

	outcome, err := svc.SyncCodeforces(context.Background(), 1, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, outcome.Created)
	assert.True(t, statuses.completed(1, 20), "sync must never un-mark a solve")
}

func TestSyncCodeforcesFlipsManualIncomplete(t *testing.T) {
	svc, statuses, _, _ := newSyncFixture()

	require.NoError(t, statuses.SetCompleted(1, 10, false, time.Now().UTC()))

	outcome, err := svc.SyncCodeforces(context.Background(), 1, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, outcome.Created)
	assert.Equal(t, 1, outcome.Updated)
	assert.True(t, statuses.completed(1, 10))
}

func TestSyncCodeforcesNoHandle(t *testing.T) {
	svc, _, fetcher, _ := newSyncFixture()

	// User 2 has a profile but no Codeforces handle
	_, err := svc.SyncCodeforces(context.Background(), 2, nil)
	assert.ErrorIs(t, err, domain.ErrNoJudgeHandle)
	assert.Equal(t, 0, fetcher.callCount())
}

func TestSyncCodeforcesNoProfile(t *testing.T) {
	users := &fakeUserRepo{users: map[uint]*domain.User{3: {ID: 3, Username: "nobody"}}}
	profiles := &fakeProfileRepo{profiles: map[uint]*domain.UserCPProfile{}}
	ladders := &fakeLadderRepo{ladders: map[uint]*domain.Ladder{}}
	svc := NewSyncService(ladders, newFakeStatusRepo(), profiles, users, &fakeFetcher{}, nil, nil, testTracer(), zap.NewNop())

	_, err := svc.SyncCodeforces(context.Background(), 3, nil)
	assert.ErrorIs(t, err, domain.ErrNoJudgeHandle)
}

func TestSyncCodeforcesUnknownUser(t *testing.T) {
	svc, _, _, _ := newSyncFixture()

	_, err := svc.SyncCodeforces(context.Background(), 99, nil)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestSyncCodeforcesUnknownLadder(t *testing.T) {
	svc, _, _, _ := newSyncFixture()

	ladderID := uint(99)
	_, err := svc.SyncCodeforces(context.Background(), 1, &ladderID)
	assert.ErrorIs(t, err, domain.ErrLadderNotFound)
}

func TestSyncCodeforcesFetchFailure(t *testing.T) {
	svc, statuses, fetcher, boards := newSyncFixture()
	fetcher.err = domain.ErrJudgeUnavailable

	_, err := svc.SyncCodeforces(context.Background(), 1, nil)

	assert.ErrorIs(t, err, domain.ErrJudgeUnavailable)
	assert.Equal(t, 0, statuses.applyCalls, "a failed fetch must not reach the store")
	assert.Equal(t, 0, boards.count())
}

func TestSyncCodeforcesConcurrentSameUser(t *testing.T) {
	svc, statuses, fetcher, _ := newSyncFixture()
	fetcher.delay = 5 * time.Millisecond

	const runs = 8
	outcomes := make([]*domain.SyncOutcome, runs)
	errs := make([]error, runs)
	var wg sync.WaitGroup
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i], errs[i] = svc.SyncCodeforces(context.Background(), 1, nil)
		}(i)
	}
	wg.Wait()

	var created int
	for i := 0; i < runs; i++ {
		require.NoError(t, errs[i])
		created += outcomes[i].Created + outcomes[i].Updated
	}
	assert.Equal(t, 2, created, "serialized syncs must write each solve exactly once")
	assert.Equal(t, 2, statuses.rowCount())
}
