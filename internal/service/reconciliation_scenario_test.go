package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cp-ladders/backend/internal/domain"
	"github.com/cp-ladders/backend/internal/infrastructure"
)

// A ladder of ten Codeforces problems, a user with a handle, and a judge
// reporting three accepted solves: one sync marks exactly those three,
// the completed query returns them in ladder order, a repeat sync writes
// nothing, and the user's solved total is three.
func TestReconciliationScenario(t *testing.T) {
	users := &fakeUserRepo{users: map[uint]*domain.User{
		1: {ID: 1, Username: "tourist"},
	}}
	profiles := &fakeProfileRepo{profiles: map[uint]*domain.UserCPProfile{
		1: {ID: 1, UserID: 1, CodeforcesHandle: "tourist"},
	}}
	ladders := &fakeLadderRepo{ladders: map[uint]*domain.Ladder{1: {ID: 1, RatingRange: "800-1100"}}}
	for i := 1; i <= 10; i++ {
		ladders.problems = append(ladders.problems, domain.LadderProblem{
			ID:           uint(i),
			LadderID:     1,
			ProblemOrder: i,
			OnlineJudge:  domain.JudgeCodeforces,
			ProblemURL:   fmt.Sprintf("https://codeforces.com/problemset/problem/%d/A", 100+i),
		})
	}
	statuses := newFakeStatusRepo()
	statuses.problems = ladders.problems
	fetcher := &fakeFetcher{solved: map[string]struct{}{
		"102A": {},
		"105A": {},
		"109A": {},
	}}
	boards := &fakeBoards{}
	config := &infrastructure.LadderConfig{ProgressPageSize: 10, SyncLookahead: 50}

	syncSvc := NewSyncService(ladders, statuses, profiles, users, fetcher, boards, nil, testTracer(), zap.NewNop())
	ladderSvc := NewLadderService(ladders, statuses, profiles, users, fetcher, boards, config, testTracer(), zap.NewNop())

	ladderID := uint(1)
	outcome, err := syncSvc.SyncCodeforces(context.Background(), 1, &ladderID)
	require.NoError(t, err)
	assert.Equal(t, 3, outcome.Created)
	assert.Equal(t, 0, outcome.Updated)

	completed, err := ladderSvc.GetCompletedProblems(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Len(t, completed, 3)
	assert.Equal(t, []int{2, 5, 9}, []int{
		completed[0].ProblemOrder,
		completed[1].ProblemOrder,
		completed[2].ProblemOrder,
	})

	again, err := syncSvc.SyncCodeforces(context.Background(), 1, &ladderID)
	require.NoError(t, err)
	assert.Zero(t, again.Created)
	assert.Zero(t, again.Updated)

	solved, err := statuses.SolvedCountForUser(1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), solved)
}
