package domain

import "time"

// User is the identity record the engine consumes. Registration and
// credential handling live in the account service; this side only needs
// existence and display data.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Username  string    `json:"username" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	CPProfile     *UserCPProfile      `json:"cp_profile,omitempty" gorm:"foreignKey:UserID"`
	ProblemStatus []UserProblemStatus `json:"-" gorm:"foreignKey:UserID"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// UserRepository defines the interface for user identity lookup
type UserRepository interface {
	FindByID(id uint) (*User, error)
	FindAll() ([]User, error)
	Count() (int64, error)
}

// UserResponse is the public user shape
type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// ToResponse converts a User to its public shape
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
	}
}
