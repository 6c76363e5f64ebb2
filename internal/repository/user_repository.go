package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/cp-ladders/backend/internal/domain"
)

// userRepository implements domain.UserRepository using GORM
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user identity repository
func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &userRepository{db: db}
}

// FindByID finds a user by their ID
func (r *userRepository) FindByID(id uint) (*domain.User, error) {
	var user domain.User
	result := r.db.Where("id = ?", id).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

// FindAll returns all users
func (r *userRepository) FindAll() ([]domain.User, error) {
	var users []domain.User
	result := r.db.Order("id ASC").Find(&users)
	return users, result.Error
}

// Count returns the total number of users
func (r *userRepository) Count() (int64, error) {
	var count int64
	result := r.db.Model(&domain.User{}).Count(&count)
	return count, result.Error
}
