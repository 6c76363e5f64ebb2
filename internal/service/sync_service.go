package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/cp-ladders/backend/internal/domain"
	"github.com/cp-ladders/backend/internal/infrastructure"
	"github.com/cp-ladders/backend/internal/judge"
)

// BoardInvalidator drops any cached leaderboard after progress writes
type BoardInvalidator interface {
	Invalidate(ctx context.Context)
}

// SyncService is the reconciliation engine: it maps catalog problems to
// judge solved keys and applies forward-only progress updates.
//
// Syncs for the same user are serialized behind a per-user mutex, so two
// concurrent requests cannot interleave their read-diff-write sequences.
// Different users sync fully in parallel.
type SyncService struct {
	ladderRepo  domain.LadderRepository
	statusRepo  domain.StatusRepository
	profileRepo domain.ProfileRepository
	userRepo    domain.UserRepository
	fetcher     judge.SubmissionFetcher
	boards      BoardInvalidator
	metrics     *infrastructure.TelemetryMetrics
	tracer      trace.Tracer
	logger      *zap.Logger

	mu        sync.Mutex
	userLocks map[uint]*sync.Mutex
}

// NewSyncService creates a new reconciliation engine
func NewSyncService(
	ladderRepo domain.LadderRepository,
	statusRepo domain.StatusRepository,
	profileRepo domain.ProfileRepository,
	userRepo domain.UserRepository,
	fetcher judge.SubmissionFetcher,
	boards BoardInvalidator,
	metrics *infrastructure.TelemetryMetrics,
	tracer trace.Tracer,
	logger *zap.Logger,
) *SyncService {
	return &SyncService{
		ladderRepo:  ladderRepo,
		statusRepo:  statusRepo,
		profileRepo: profileRepo,
		userRepo:    userRepo,
		fetcher:     fetcher,
		boards:      boards,
		metrics:     metrics,
		tracer:      tracer,
		logger:      logger,
		userLocks:   make(map[uint]*sync.Mutex),
	}
}

// SyncCodeforces reconciles a user's stored progress with their
// Codeforces submission history. With a ladder ID the scope is that
// ladder's problems; without one, every Codeforces problem in the
// catalog.
//
// The operation is idempotent and monotonic: a repeat run with the same
// judge state writes nothing, and a solve is never un-marked.
func (s *SyncService) SyncCodeforces(ctx context.Context, userID uint, ladderID *uint) (*domain.SyncOutcome, error) {
	ctx, span := s.tracer.Start(ctx, "SyncService.SyncCodeforces")
	defer span.End()
	span.SetAttributes(attribute.Int("user.id", int(userID)))

	if _, err := s.userRepo.FindByID(userID); err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return nil, domain.ErrNoJudgeHandle
		}
		return nil, err
	}
	handle := profile.HandleFor(domain.JudgeCodeforces)
	if handle == "" {
		return nil, domain.ErrNoJudgeHandle
	}

	lock := s.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	syncStart := time.Now().UTC()

	fetchStart := time.Now()
	solved, err := s.fetcher.FetchSolvedKeys(ctx, handle)
	if s.metrics != nil {
		s.metrics.JudgeRequestDuration.Record(ctx, time.Since(fetchStart).Seconds(),
			metric.WithAttributes(attribute.String("judge", string(domain.JudgeCodeforces))),
		)
	}
	if err != nil {
		s.logger.Warn("Judge fetch failed",
			zap.Uint("user_id", userID),
			zap.String("handle", handle),
			zap.Error(err),
		)
		return nil, err
	}

	problems, err := s.problemsInScope(ladderID)
	if err != nil {
		return nil, err
	}

	// Problems whose URL does not match the contest/problem pattern
	// carry no derivable key and are skipped, not failed.
	var matched []uint
	for _, p := range problems {
		key, ok := judge.KeyFromURL(p.ProblemURL)
		if !ok {
			continue
		}
		if _, hit := solved[key]; hit {
			matched = append(matched, p.ID)
		}
	}

	outcome, err := s.statusRepo.ApplySync(ctx, userID, matched, syncStart)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.SyncRuns.Add(ctx, 1)
		s.metrics.ProblemsSynced.Add(ctx, int64(outcome.Created+outcome.Updated))
	}
	if s.boards != nil && outcome.Created+outcome.Updated > 0 {
		s.boards.Invalidate(ctx)
	}

	s.logger.Info("Reconciliation completed",
		zap.Uint("user_id", userID),
		zap.String("handle", handle),
		zap.Int("in_scope", len(problems)),
		zap.Int("matched", len(matched)),
		zap.Int("created", outcome.Created),
		zap.Int("updated", outcome.Updated),
	)

	span.SetAttributes(
		attribute.Int("sync.created", outcome.Created),
		attribute.Int("sync.updated", outcome.Updated),
	)
	return outcome, nil
}

// problemsInScope resolves the sync target to a concrete problem list,
// restricted to the judge being synced
func (s *SyncService) problemsInScope(ladderID *uint) ([]domain.LadderProblem, error) {
	if ladderID == nil {
		return s.ladderRepo.FindProblemsByJudge(domain.JudgeCodeforces)
	}

	if _, err := s.ladderRepo.FindByID(*ladderID); err != nil {
		return nil, err
	}
	problems, err := s.ladderRepo.FindProblems(*ladderID, 0)
	if err != nil {
		return nil, err
	}
	scoped := problems[:0]
	for _, p := range problems {
		if p.OnlineJudge == domain.JudgeCodeforces {
			scoped = append(scoped, p)
		}
	}
	return scoped, nil
}

// lockFor returns the mutex serializing syncs for one user
func (s *SyncService) lockFor(userID uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lock, ok := s.userLocks[userID]; ok {
		return lock
	}
	lock := &sync.Mutex{}
	s.userLocks[userID] = lock
	return lock
}
