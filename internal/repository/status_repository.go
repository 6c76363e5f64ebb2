package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cp-ladders/backend/internal/domain"
)

// statusRepository implements domain.StatusRepository using GORM
type statusRepository struct {
	db *gorm.DB
}

// NewStatusRepository creates a new progress store repository
func NewStatusRepository(db *gorm.DB) domain.StatusRepository {
	return &statusRepository{db: db}
}

// conflictTarget is the composite key two concurrent writers can race on
var conflictTarget = []clause.Column{{Name: "user_id"}, {Name: "problem_id"}}

// SetRevisit marks a problem for revisit, creating the status row on
// first interaction. A concurrent insert loses the race cleanly: the
// conflict turns into the equivalent update.
func (r *statusRepository) SetRevisit(userID, problemID uint, at time.Time) error {
	row := domain.UserProblemStatus{
		UserID:    userID,
		ProblemID: problemID,
		IsRevisit: true,
		CheckedAt: at,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   conflictTarget,
		DoUpdates: clause.AssignmentColumns([]string{"is_revisit", "checked_at"}),
	}).Create(&row).Error
}

// SetCompleted records a manual completion toggle for a problem
func (r *statusRepository) SetCompleted(userID, problemID uint, completed bool, at time.Time) error {
	row := domain.UserProblemStatus{
		UserID:      userID,
		ProblemID:   problemID,
		IsCompleted: completed,
		CheckedAt:   at,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   conflictTarget,
		DoUpdates: clause.AssignmentColumns([]string{"is_completed", "checked_at"}),
	}).Create(&row).Error
}

// FindCompletedProblems returns completed problems of a ladder for a
// user in ladder order, capped at limit
func (r *statusRepository) FindCompletedProblems(ladderID, userID uint, limit int) ([]domain.LadderProblem, error) {
	var problems []domain.LadderProblem
	result := r.db.
		Preload("Solutions").
		Joins("JOIN user_problem_status ups ON ups.problem_id = ladder_problems.id").
		Where("ladder_problems.ladder_id = ? AND ups.user_id = ? AND ups.is_completed = ?", ladderID, userID, true).
		Order("ladder_problems.problem_order ASC").
		Limit(limit).
		Find(&problems)
	return problems, result.Error
}

// FindRevisitProblems returns problems the user flagged for revisit
func (r *statusRepository) FindRevisitProblems(ladderID, userID uint, limit int) ([]domain.LadderProblem, error) {
	var problems []domain.LadderProblem
	result := r.db.
		Preload("Solutions").
		Joins("JOIN user_problem_status ups ON ups.problem_id = ladder_problems.id").
		Where("ladder_problems.ladder_id = ? AND ups.user_id = ? AND ups.is_revisit = ?", ladderID, userID, true).
		Order("ladder_problems.problem_order ASC").
		Limit(limit).
		Find(&problems)
	return problems, result.Error
}

// ApplySync marks the given problems completed for the user and stamps
// the profile's last_synced_at, all in one transaction. Inserts that
// lose a race on the (user_id, problem_id) unique index are no-ops, and
// rows already completed are never touched, which keeps the whole
// operation idempotent and monotonic.
func (r *statusRepository) ApplySync(ctx context.Context, userID uint, problemIDs []uint, syncedAt time.Time) (*domain.SyncOutcome, error) {
	outcome := &domain.SyncOutcome{SyncedAt: syncedAt}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, problemID := range problemIDs {
			row := domain.UserProblemStatus{
				UserID:      userID,
				ProblemID:   problemID,
				IsCompleted: true,
				CheckedAt:   syncedAt,
			}
			res := tx.Clauses(clause.OnConflict{
				Columns:   conflictTarget,
				DoNothing: true,
			}).Create(&row)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 1 {
				outcome.Created++
				continue
			}

			// Row exists; flip forward only if not yet completed
			upd := tx.Model(&domain.UserProblemStatus{}).
				Where("user_id = ? AND problem_id = ? AND is_completed = ?", userID, problemID, false).
				Updates(map[string]interface{}{
					"is_completed": true,
					"checked_at":   syncedAt,
				})
			if upd.Error != nil {
				return upd.Error
			}
			if upd.RowsAffected == 1 {
				outcome.Updated++
			}
		}

		return tx.Model(&domain.UserCPProfile{}).
			Where("user_id = ?", userID).
			Update("last_synced_at", syncedAt).Error
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// SolvedCountsByUser aggregates completed counts per user across the
// whole catalog. Users with no completed rows appear with zero.
func (r *statusRepository) SolvedCountsByUser() ([]domain.UserSolvedCount, error) {
	var counts []domain.UserSolvedCount
	result := r.db.Model(&domain.User{}).
		Select("users.id AS user_id, users.username AS username, COUNT(ups.id) AS solved").
		Joins("LEFT JOIN user_problem_status ups ON ups.user_id = users.id AND ups.is_completed = ?", true).
		Group("users.id, users.username").
		Scan(&counts)
	return counts, result.Error
}

// SolvedCountForUser counts one user's completed problems
func (r *statusRepository) SolvedCountForUser(userID uint) (int64, error) {
	var count int64
	result := r.db.Model(&domain.UserProblemStatus{}).
		Where("user_id = ? AND is_completed = ?", userID, true).
		Count(&count)
	return count, result.Error
}
