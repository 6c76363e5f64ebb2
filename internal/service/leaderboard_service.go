package service

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/cp-ladders/backend/internal/domain"
)

// boardCacheKey stores the serialized full board in Redis
const boardCacheKey = "cp51:leaderboard"

// LeaderboardService aggregates progress rows into a ranked board.
//
// Ranking follows standard competition ranking: tied solved counts share
// the rank of the first member of the group, and the next distinct count
// takes its ordinal position (1,1,3,3,3,6). The same walk answers both
// the full board and single-user rank queries, so the two can never
// disagree. Zero-solvers participate in the walk and share the tail
// rank rather than being left unranked.
type LeaderboardService struct {
	statusRepo domain.StatusRepository
	ladderRepo domain.LadderRepository
	userRepo   domain.UserRepository
	cache      *redis.Client
	cacheTTL   time.Duration
	tracer     trace.Tracer
	logger     *zap.Logger
}

// NewLeaderboardService creates a new leaderboard engine. cache may be
// nil, which disables caching entirely.
func NewLeaderboardService(
	statusRepo domain.StatusRepository,
	ladderRepo domain.LadderRepository,
	userRepo domain.UserRepository,
	cache *redis.Client,
	cacheTTL time.Duration,
	tracer trace.Tracer,
	logger *zap.Logger,
) *LeaderboardService {
	return &LeaderboardService{
		statusRepo: statusRepo,
		ladderRepo: ladderRepo,
		userRepo:   userRepo,
		cache:      cache,
		cacheTTL:   cacheTTL,
		tracer:     tracer,
		logger:     logger,
	}
}

// GetLeaderboard returns the full ranked board, served from the Redis
// cache when fresh. The store is the source of truth; a cache failure
// only costs recomputation.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context) (*domain.LeaderboardResponse, error) {
	ctx, span := s.tracer.Start(ctx, "LeaderboardService.GetLeaderboard")
	defer span.End()

	if cached := s.fromCache(ctx); cached != nil {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return cached, nil
	}

	board, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	s.toCache(ctx, board)
	span.SetAttributes(attribute.Int("board.users", board.TotalUsers))
	return board, nil
}

// GetUserRank answers a single user's rank query using the same tie
// walk as the full board
func (s *LeaderboardService) GetUserRank(ctx context.Context, userID uint) (*domain.UserRankResponse, error) {
	ctx, span := s.tracer.Start(ctx, "LeaderboardService.GetUserRank")
	defer span.End()
	span.SetAttributes(attribute.Int("user.id", int(userID)))

	if _, err := s.userRepo.FindByID(userID); err != nil {
		return nil, err
	}

	board, err := s.GetLeaderboard(ctx)
	if err != nil {
		return nil, err
	}

	for _, entry := range board.Entries {
		if entry.UserID == userID {
			return &domain.UserRankResponse{
				UserID:      userID,
				Rank:        entry.Rank,
				Solved:      entry.Solved,
				ProgressPct: entry.ProgressPct,
			}, nil
		}
	}

	// User exists but was created after the cached board
	s.Invalidate(ctx)
	return &domain.UserRankResponse{UserID: userID}, nil
}

// Invalidate drops the cached board after a progress write
func (s *LeaderboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, boardCacheKey).Err(); err != nil {
		s.logger.Warn("Failed to invalidate leaderboard cache", zap.Error(err))
	}
}

// compute builds the board from the store
func (s *LeaderboardService) compute(ctx context.Context) (*domain.LeaderboardResponse, error) {
	counts, err := s.statusRepo.SolvedCountsByUser()
	if err != nil {
		return nil, err
	}
	totalProblems, err := s.ladderRepo.CountProblems()
	if err != nil {
		return nil, err
	}

	// Descending by solved; user id breaks ties deterministically but
	// does not affect ranks
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Solved != counts[j].Solved {
			return counts[i].Solved > counts[j].Solved
		}
		return counts[i].UserID < counts[j].UserID
	})

	entries := make([]domain.LeaderboardEntry, len(counts))
	var totalSolved int64
	for i, c := range counts {
		pct := progressPct(c.Solved, totalProblems)
		entries[i] = domain.LeaderboardEntry{
			UserID:      c.UserID,
			Username:    c.Username,
			Solved:      c.Solved,
			ProgressPct: pct,
			Title:       domain.TitleForProgress(pct),
		}
		totalSolved += c.Solved
	}
	assignRanks(entries)

	var average int64
	if len(entries) > 0 {
		average = int64(math.Round(float64(totalSolved) / float64(len(entries))))
	}

	return &domain.LeaderboardResponse{
		TotalUsers:    len(entries),
		TotalProblems: totalProblems,
		AverageSolved: average,
		Entries:       entries,
	}, nil
}

// assignRanks applies standard competition ranking to entries already
// sorted descending by solved count
func assignRanks(entries []domain.LeaderboardEntry) {
	for i := range entries {
		if i > 0 && entries[i].Solved == entries[i-1].Solved {
			entries[i].Rank = entries[i-1].Rank
			continue
		}
		entries[i].Rank = i + 1
	}
}

// progressPct is solved/total as a percentage, zero on an empty catalog
func progressPct(solved, totalProblems int64) float64 {
	if totalProblems == 0 {
		return 0
	}
	return float64(solved) / float64(totalProblems) * 100
}

func (s *LeaderboardService) fromCache(ctx context.Context) *domain.LeaderboardResponse {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, boardCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("Leaderboard cache read failed", zap.Error(err))
		}
		return nil
	}
	var board domain.LeaderboardResponse
	if err := json.Unmarshal(raw, &board); err != nil {
		s.logger.Warn("Dropping corrupt leaderboard cache entry", zap.Error(err))
		s.Invalidate(ctx)
		return nil
	}
	return &board
}

func (s *LeaderboardService) toCache(ctx context.Context, board *domain.LeaderboardResponse) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(board)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, boardCacheKey, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("Leaderboard cache write failed", zap.Error(err))
	}
}
