package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/cp-ladders/backend/internal/domain"
)

func testTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer("test")
}

type fakeUserRepo struct {
	users map[uint]*domain.User
}

func (f *fakeUserRepo) FindByID(id uint) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) FindAll() ([]domain.User, error) {
	out := make([]domain.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUserRepo) Count() (int64, error) {
	return int64(len(f.users)), nil
}

type fakeLadderRepo struct {
	ladders  map[uint]*domain.Ladder
	problems []domain.LadderProblem
}

func (f *fakeLadderRepo) Create(ladder *domain.Ladder) error {
	f.ladders[ladder.ID] = ladder
	return nil
}

func (f *fakeLadderRepo) FindByID(id uint) (*domain.Ladder, error) {
	l, ok := f.ladders[id]
	if !ok {
		return nil, domain.ErrLadderNotFound
	}
	return l, nil
}

func (f *fakeLadderRepo) FindAll() ([]domain.Ladder, error) {
	out := make([]domain.Ladder, 0, len(f.ladders))
	for _, l := range f.ladders {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeLadderRepo) FindProblems(ladderID uint, limit int) ([]domain.LadderProblem, error) {
	var out []domain.LadderProblem
	for _, p := range f.problems {
		if p.LadderID != ladderID {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeLadderRepo) FindProblemByID(id uint) (*domain.LadderProblem, error) {
	for i := range f.problems {
		if f.problems[i].ID == id {
			return &f.problems[i], nil
		}
	}
	return nil, domain.ErrProblemNotFound
}

func (f *fakeLadderRepo) FindProblemsByJudge(judge domain.OnlineJudge) ([]domain.LadderProblem, error) {
	var out []domain.LadderProblem
	for _, p := range f.problems {
		if p.OnlineJudge == judge {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeLadderRepo) CountProblems() (int64, error) {
	return int64(len(f.problems)), nil
}

type statusKey struct {
	userID    uint
	problemID uint
}

// fakeStatusRepo mirrors the transactional semantics of the real store:
// ApplySync creates missing rows as completed and flips incomplete ones,
// never touching rows that are already completed.
type fakeStatusRepo struct {
	mu         sync.Mutex
	rows       map[statusKey]*domain.UserProblemStatus
	problems   []domain.LadderProblem
	counts     []domain.UserSolvedCount
	lastSynced map[uint]time.Time
	applyCalls int
}

func newFakeStatusRepo() *fakeStatusRepo {
	return &fakeStatusRepo{
		rows:       make(map[statusKey]*domain.UserProblemStatus),
		lastSynced: make(map[uint]time.Time),
	}
}

func (f *fakeStatusRepo) SetRevisit(userID, problemID uint, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := statusKey{userID, problemID}
	row, ok := f.rows[key]
	if !ok {
		row = &domain.UserProblemStatus{UserID: userID, ProblemID: problemID}
		f.rows[key] = row
	}
	row.IsRevisit = true
	row.CheckedAt = at
	return nil
}

func (f *fakeStatusRepo) SetCompleted(userID, problemID uint, completed bool, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := statusKey{userID, problemID}
	row, ok := f.rows[key]
	if !ok {
		row = &domain.UserProblemStatus{UserID: userID, ProblemID: problemID}
		f.rows[key] = row
	}
	row.IsCompleted = completed
	row.CheckedAt = at
	return nil
}

func (f *fakeStatusRepo) FindCompletedProblems(ladderID, userID uint, limit int) ([]domain.LadderProblem, error) {
	return f.findFlagged(ladderID, userID, limit, func(row *domain.UserProblemStatus) bool {
		return row.IsCompleted
	})
}

func (f *fakeStatusRepo) FindRevisitProblems(ladderID, userID uint, limit int) ([]domain.LadderProblem, error) {
	return f.findFlagged(ladderID, userID, limit, func(row *domain.UserProblemStatus) bool {
		return row.IsRevisit
	})
}

func (f *fakeStatusRepo) findFlagged(ladderID, userID uint, limit int, match func(*domain.UserProblemStatus) bool) ([]domain.LadderProblem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.LadderProblem
	for _, p := range f.problems {
		if p.LadderID != ladderID {
			continue
		}
		row, ok := f.rows[statusKey{userID, p.ID}]
		if !ok || !match(row) {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStatusRepo) ApplySync(ctx context.Context, userID uint, problemIDs []uint, syncedAt time.Time) (*domain.SyncOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applyCalls++

	outcome := &domain.SyncOutcome{SyncedAt: syncedAt}
	for _, pid := range problemIDs {
		key := statusKey{userID, pid}
		row, ok := f.rows[key]
		if !ok {
			f.rows[key] = &domain.UserProblemStatus{
				UserID:      userID,
				ProblemID:   pid,
				IsCompleted: true,
				CheckedAt:   syncedAt,
			}
			outcome.Created++
			continue
		}
		if !row.IsCompleted {
			row.IsCompleted = true
			row.CheckedAt = syncedAt
			outcome.Updated++
		}
	}
	f.lastSynced[userID] = syncedAt
	return outcome, nil
}

func (f *fakeStatusRepo) SolvedCountsByUser() ([]domain.UserSolvedCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts, nil
}

func (f *fakeStatusRepo) SolvedCountForUser(userID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for key, row := range f.rows {
		if key.userID == userID && row.IsCompleted {
			n++
		}
	}
	return n, nil
}

func (f *fakeStatusRepo) completed(userID, problemID uint) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[statusKey{userID, problemID}]
	return ok && row.IsCompleted
}

func (f *fakeStatusRepo) rowCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeProfileRepo struct {
	profiles map[uint]*domain.UserCPProfile
}

func (f *fakeProfileRepo) FindByUserID(userID uint) (*domain.UserCPProfile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return p, nil
}

func (f *fakeProfileRepo) Upsert(profile *domain.UserCPProfile) error {
	existing, ok := f.profiles[profile.UserID]
	if !ok {
		f.profiles[profile.UserID] = profile
		return nil
	}
	existing.CodeforcesHandle = profile.CodeforcesHandle
	existing.CodeforcesRating = profile.CodeforcesRating
	existing.AtCoderHandle = profile.AtCoderHandle
	existing.LeetCodeHandle = profile.LeetCodeHandle
	return nil
}

type fakeFetcher struct {
	mu     sync.Mutex
	solved map[string]struct{}
	err    error
	calls  int
	delay  time.Duration
}

func (f *fakeFetcher) FetchSolvedKeys(ctx context.Context, handle string) (map[string]struct{}, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.solved, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeBoards struct {
	mu            sync.Mutex
	invalidations int
}

func (f *fakeBoards) Invalidate(ctx context.Context) {
	f.mu.Lock()
	f.invalidations++
	f.mu.Unlock()
}

func (f *fakeBoards) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.invalidations
}
