package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/cp-ladders/backend/internal/domain"
)

// ProfileService handles CP profile upsert and reads
type ProfileService struct {
	profileRepo domain.ProfileRepository
	userRepo    domain.UserRepository
	tracer      trace.Tracer
	logger      *zap.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(
	profileRepo domain.ProfileRepository,
	userRepo domain.UserRepository,
	tracer trace.Tracer,
	logger *zap.Logger,
) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		userRepo:    userRepo,
		tracer:      tracer,
		logger:      logger,
	}
}

// UpsertProfile creates or updates the user's CP profile
func (s *ProfileService) UpsertProfile(ctx context.Context, req *domain.UpsertProfileRequest) (*domain.UserCPProfile, error) {
	ctx, span := s.tracer.Start(ctx, "ProfileService.UpsertProfile")
	defer span.End()
	span.SetAttributes(attribute.Int("user.id", int(req.UserID)))

	if _, err := s.userRepo.FindByID(req.UserID); err != nil {
		return nil, err
	}

	profile := &domain.UserCPProfile{
		UserID:           req.UserID,
		CodeforcesHandle: req.CodeforcesHandle,
		CodeforcesRating: req.CodeforcesRating,
		AtCoderHandle:    req.AtCoderHandle,
		LeetCodeHandle:   req.LeetCodeHandle,
	}
	if err := s.profileRepo.Upsert(profile); err != nil {
		return nil, err
	}

	s.logger.Info("CP profile upserted",
		zap.Uint("user_id", req.UserID),
		zap.String("codeforces_handle", req.CodeforcesHandle),
	)

	// Re-read so the response carries the row the upsert settled on,
	// including last_synced_at
	return s.profileRepo.FindByUserID(req.UserID)
}

// GetProfile returns the user's CP profile
func (s *ProfileService) GetProfile(ctx context.Context, userID uint) (*domain.UserCPProfile, error) {
	ctx, span := s.tracer.Start(ctx, "ProfileService.GetProfile")
	defer span.End()
	span.SetAttributes(attribute.Int("user.id", int(userID)))

	if _, err := s.userRepo.FindByID(userID); err != nil {
		return nil, err
	}
	return s.profileRepo.FindByUserID(userID)
}
