package domain

import (
	"context"
	"time"
)

// UserProblemStatus is the mutable progress record for one (user, problem)
// pair. The composite unique index is what makes concurrent syncs for the
// same user safe: a losing insert is a no-op, never a duplicate row.
type UserProblemStatus struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_user_problem"`
	ProblemID   uint      `json:"problem_id" gorm:"not null;uniqueIndex:idx_user_problem"`
	IsCompleted bool      `json:"is_completed" gorm:"default:false"`
	IsRevisit   bool      `json:"is_revisit" gorm:"default:false"`
	CheckedAt   time.Time `json:"checked_at" gorm:"not null"`

	// Relationships
	User    User          `json:"-" gorm:"foreignKey:UserID"`
	Problem LadderProblem `json:"-" gorm:"foreignKey:ProblemID"`
}

// TableName specifies the table name for GORM
func (UserProblemStatus) TableName() string {
	return "user_problem_status"
}

// SyncOutcome reports what a reconciliation pass actually wrote
type SyncOutcome struct {
	Created  int       `json:"created"`
	Updated  int       `json:"updated"`
	SyncedAt time.Time `json:"synced_at"`
}

// UserSolvedCount is one row of the leaderboard aggregation
type UserSolvedCount struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Solved   int64  `json:"solved"`
}

// StatusRepository defines the interface for progress store access.
//
// ApplySync runs the write half of reconciliation in a single
// transaction: mark every problem in problemIDs completed for the user
// (insert or flip), then stamp the profile's last_synced_at. Rows that
// are already completed are left untouched, so repeated calls with the
// same input write nothing.
type StatusRepository interface {
	SetRevisit(userID, problemID uint, at time.Time) error
	SetCompleted(userID, problemID uint, completed bool, at time.Time) error
	FindCompletedProblems(ladderID, userID uint, limit int) ([]LadderProblem, error)
	FindRevisitProblems(ladderID, userID uint, limit int) ([]LadderProblem, error)
	ApplySync(ctx context.Context, userID uint, problemIDs []uint, syncedAt time.Time) (*SyncOutcome, error)
	SolvedCountsByUser() ([]UserSolvedCount, error)
	SolvedCountForUser(userID uint) (int64, error)
}
