package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/cp-ladders/backend/internal/domain"
	"github.com/cp-ladders/backend/internal/infrastructure"
	"github.com/cp-ladders/backend/internal/judge"
)

// LadderService handles catalog reads and per-user progress queries
type LadderService struct {
	ladderRepo  domain.LadderRepository
	statusRepo  domain.StatusRepository
	profileRepo domain.ProfileRepository
	userRepo    domain.UserRepository
	fetcher     judge.SubmissionFetcher
	boards      BoardInvalidator
	config      *infrastructure.LadderConfig
	tracer      trace.Tracer
	logger      *zap.Logger
}

// NewLadderService creates a new ladder service
func NewLadderService(
	ladderRepo domain.LadderRepository,
	statusRepo domain.StatusRepository,
	profileRepo domain.ProfileRepository,
	userRepo domain.UserRepository,
	fetcher judge.SubmissionFetcher,
	boards BoardInvalidator,
	config *infrastructure.LadderConfig,
	tracer trace.Tracer,
	logger *zap.Logger,
) *LadderService {
	return &LadderService{
		ladderRepo:  ladderRepo,
		statusRepo:  statusRepo,
		profileRepo: profileRepo,
		userRepo:    userRepo,
		fetcher:     fetcher,
		boards:      boards,
		config:      config,
		tracer:      tracer,
		logger:      logger,
	}
}

// GetLadders returns all ladders, meta only
func (s *LadderService) GetLadders(ctx context.Context) ([]domain.Ladder, error) {
	ctx, span := s.tracer.Start(ctx, "LadderService.GetLadders")
	defer span.End()

	return s.ladderRepo.FindAll()
}

// GetLadderProblems returns a ladder's problems in ladder order.
// limit <= 0 returns the whole ladder.
func (s *LadderService) GetLadderProblems(ctx context.Context, ladderID uint, limit int) (*domain.Ladder, []domain.LadderProblem, error) {
	ctx, span := s.tracer.Start(ctx, "LadderService.GetLadderProblems")
	defer span.End()
	span.SetAttributes(attribute.Int("ladder.id", int(ladderID)))

	ladder, err := s.ladderRepo.FindByID(ladderID)
	if err != nil {
		return nil, nil, err
	}
	problems, err := s.ladderRepo.FindProblems(ladderID, limit)
	if err != nil {
		return nil, nil, err
	}
	return ladder, problems, nil
}

// GetCompletedProblems returns up to ProgressPageSize completed problems
// of a ladder for a user, in ladder order.
//
// With a Codeforces handle on file the solved set comes live from the
// judge, matched against the first SyncLookahead problems of the ladder;
// without one it falls back to stored status rows. The two sources can
// disagree when judge state has diverged from the store; that is
// accepted behavior.
func (s *LadderService) GetCompletedProblems(ctx context.Context, ladderID, userID uint) ([]domain.LadderProblem, error) {
	ctx, span := s.tracer.Start(ctx, "LadderService.GetCompletedProblems")
	defer span.End()
	span.SetAttributes(
		attribute.Int("ladder.id", int(ladderID)),
		attribute.Int("user.id", int(userID)),
	)

	if _, err := s.ladderRepo.FindByID(ladderID); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.FindByID(userID); err != nil {
		return nil, err
	}

	handle := s.codeforcesHandle(userID)
	if handle == "" {
		return s.statusRepo.FindCompletedProblems(ladderID, userID, s.config.ProgressPageSize)
	}

	solved, err := s.fetcher.FetchSolvedKeys(ctx, handle)
	if err != nil {
		return nil, err
	}

	window, err := s.ladderRepo.FindProblems(ladderID, s.config.SyncLookahead)
	if err != nil {
		return nil, err
	}

	completed := make([]domain.LadderProblem, 0, s.config.ProgressPageSize)
	for _, p := range window {
		if len(completed) == s.config.ProgressPageSize {
			break
		}
		if p.OnlineJudge != domain.JudgeCodeforces {
			continue
		}
		key, ok := judge.KeyFromURL(p.ProblemURL)
		if !ok {
			continue
		}
		if _, hit := solved[key]; hit {
			completed = append(completed, p)
		}
	}
	return completed, nil
}

// GetRevisitProblems returns problems the user flagged for revisit,
// always from stored status rows
func (s *LadderService) GetRevisitProblems(ctx context.Context, ladderID, userID uint) ([]domain.LadderProblem, error) {
	ctx, span := s.tracer.Start(ctx, "LadderService.GetRevisitProblems")
	defer span.End()

	if _, err := s.ladderRepo.FindByID(ladderID); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.FindByID(userID); err != nil {
		return nil, err
	}
	return s.statusRepo.FindRevisitProblems(ladderID, userID, s.config.ProgressPageSize)
}

// MarkRevisit flags a problem for revisit, creating the status row on
// first interaction
func (s *LadderService) MarkRevisit(ctx context.Context, problemID, userID uint) error {
	ctx, span := s.tracer.Start(ctx, "LadderService.MarkRevisit")
	defer span.End()

	if _, err := s.ladderRepo.FindProblemByID(problemID); err != nil {
		return err
	}
	if _, err := s.userRepo.FindByID(userID); err != nil {
		return err
	}
	return s.statusRepo.SetRevisit(userID, problemID, time.Now().UTC())
}

// SetProblemStatus records a manual completion toggle. Unlike sync this
// may move in either direction; monotonicity binds reconciliation only.
func (s *LadderService) SetProblemStatus(ctx context.Context, problemID, userID uint, completed bool) error {
	ctx, span := s.tracer.Start(ctx, "LadderService.SetProblemStatus")
	defer span.End()

	if _, err := s.ladderRepo.FindProblemByID(problemID); err != nil {
		return err
	}
	if _, err := s.userRepo.FindByID(userID); err != nil {
		return err
	}
	if err := s.statusRepo.SetCompleted(userID, problemID, completed, time.Now().UTC()); err != nil {
		return err
	}
	if s.boards != nil {
		s.boards.Invalidate(ctx)
	}
	return nil
}

// codeforcesHandle resolves the user's Codeforces handle, empty when the
// user has no profile or no handle for that judge
func (s *LadderService) codeforcesHandle(userID uint) string {
	profile, err := s.profileRepo.FindByUserID(userID)
	if err != nil {
		if !errors.Is(err, domain.ErrProfileNotFound) {
			s.logger.Warn("Profile lookup failed", zap.Uint("user_id", userID), zap.Error(err))
		}
		return ""
	}
	return profile.HandleFor(domain.JudgeCodeforces)
}
