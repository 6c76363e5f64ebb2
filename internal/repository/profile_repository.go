package repository

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cp-ladders/backend/internal/domain"
)

// profileRepository implements domain.ProfileRepository using GORM
type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new CP profile repository
func NewProfileRepository(db *gorm.DB) domain.ProfileRepository {
	return &profileRepository{db: db}
}

// FindByUserID finds the profile for a user
func (r *profileRepository) FindByUserID(userID uint) (*domain.UserCPProfile, error) {
	var profile domain.UserCPProfile
	result := r.db.Where("user_id = ?", userID).First(&profile)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, result.Error
	}
	return &profile, nil
}

// Upsert creates or updates the profile, keyed by the unique user_id.
// last_synced_at is owned by the sync path and never overwritten here.
func (r *profileRepository) Upsert(profile *domain.UserCPProfile) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"codeforces_handle",
			"codeforces_rating",
			"atcoder_handle",
			"leetcode_handle",
		}),
	}).Create(profile).Error
}
