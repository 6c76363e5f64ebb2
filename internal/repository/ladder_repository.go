package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/cp-ladders/backend/internal/domain"
)

// ladderRepository implements domain.LadderRepository using GORM
type ladderRepository struct {
	db *gorm.DB
}

// NewLadderRepository creates a new catalog repository
func NewLadderRepository(db *gorm.DB) domain.LadderRepository {
	return &ladderRepository{db: db}
}

// Create creates a ladder together with its problems and solutions
func (r *ladderRepository) Create(ladder *domain.Ladder) error {
	return r.db.Create(ladder).Error
}

// FindByID finds a ladder by its ID
func (r *ladderRepository) FindByID(id uint) (*domain.Ladder, error) {
	var ladder domain.Ladder
	result := r.db.Where("id = ?", id).First(&ladder)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLadderNotFound
		}
		return nil, result.Error
	}
	return &ladder, nil
}

// FindAll returns all ladders, meta only
func (r *ladderRepository) FindAll() ([]domain.Ladder, error) {
	var ladders []domain.Ladder
	result := r.db.Order("lower_bound ASC").Find(&ladders)
	return ladders, result.Error
}

// FindProblems returns a ladder's problems in ladder order, with their
// solution links. A limit of 0 returns the whole ladder.
func (r *ladderRepository) FindProblems(ladderID uint, limit int) ([]domain.LadderProblem, error) {
	var problems []domain.LadderProblem
	query := r.db.
		Preload("Solutions").
		Where("ladder_id = ?", ladderID).
		Order("problem_order ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	result := query.Find(&problems)
	return problems, result.Error
}

// FindProblemByID finds a single problem by its ID
func (r *ladderRepository) FindProblemByID(id uint) (*domain.LadderProblem, error) {
	var problem domain.LadderProblem
	result := r.db.Where("id = ?", id).First(&problem)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProblemNotFound
		}
		return nil, result.Error
	}
	return &problem, nil
}

// FindProblemsByJudge returns every catalog problem hosted on a judge,
// across all ladders, used by the profile-wide sync
func (r *ladderRepository) FindProblemsByJudge(judge domain.OnlineJudge) ([]domain.LadderProblem, error) {
	var problems []domain.LadderProblem
	result := r.db.
		Where("online_judge = ?", judge).
		Order("ladder_id ASC, problem_order ASC").
		Find(&problems)
	return problems, result.Error
}

// CountProblems returns the catalog-wide problem count, the leaderboard
// progress denominator
func (r *ladderRepository) CountProblems() (int64, error) {
	var count int64
	result := r.db.Model(&domain.LadderProblem{}).Count(&count)
	return count, result.Error
}
