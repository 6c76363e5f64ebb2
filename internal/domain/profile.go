package domain

import "time"

// UserCPProfile holds a user's external judge handles. One row per user;
// absence of a handle disables sync for that judge.
type UserCPProfile struct {
	ID               uint       `json:"id" gorm:"primaryKey"`
	UserID           uint       `json:"user_id" gorm:"not null;uniqueIndex"`
	CodeforcesHandle string     `json:"codeforces_handle" gorm:"type:varchar(20);index"`
	CodeforcesRating int        `json:"codeforces_rating"`
	AtCoderHandle    string     `json:"atcoder_handle" gorm:"column:atcoder_handle;type:varchar(20)"`
	LeetCodeHandle   string     `json:"leetcode_handle" gorm:"column:leetcode_handle;type:varchar(20)"`
	LastSyncedAt     *time.Time `json:"last_synced_at"`

	// Relationships
	User User `json:"-" gorm:"foreignKey:UserID"`
}

// TableName specifies the table name for GORM
func (UserCPProfile) TableName() string {
	return "user_cp_profiles"
}

// HandleFor returns the stored handle for a judge, empty if none
func (p *UserCPProfile) HandleFor(judge OnlineJudge) string {
	switch judge {
	case JudgeCodeforces:
		return p.CodeforcesHandle
	case JudgeAtCoder:
		return p.AtCoderHandle
	case JudgeLeetCode:
		return p.LeetCodeHandle
	default:
		return ""
	}
}

// ProfileRepository defines the interface for CP profile access
type ProfileRepository interface {
	FindByUserID(userID uint) (*UserCPProfile, error)
	Upsert(profile *UserCPProfile) error
}

// UpsertProfileRequest creates or updates the caller's CP profile
type UpsertProfileRequest struct {
	UserID           uint   `json:"user_id" binding:"required"`
	CodeforcesHandle string `json:"codeforces_handle" binding:"max=20"`
	CodeforcesRating int    `json:"codeforces_rating" binding:"omitempty,min=0,max=5000"`
	AtCoderHandle    string `json:"atcoder_handle" binding:"max=20"`
	LeetCodeHandle   string `json:"leetcode_handle" binding:"max=20"`
}

// ProfileResponse is the CP profile API shape
type ProfileResponse struct {
	UserID           uint       `json:"user_id"`
	CodeforcesHandle string     `json:"codeforces_handle"`
	CodeforcesRating int        `json:"codeforces_rating"`
	AtCoderHandle    string     `json:"atcoder_handle"`
	LeetCodeHandle   string     `json:"leetcode_handle"`
	LastSyncedAt     *time.Time `json:"last_synced_at"`
}

// ToResponse converts a UserCPProfile to its API shape
func (p *UserCPProfile) ToResponse() ProfileResponse {
	return ProfileResponse{
		UserID:           p.UserID,
		CodeforcesHandle: p.CodeforcesHandle,
		CodeforcesRating: p.CodeforcesRating,
		AtCoderHandle:    p.AtCoderHandle,
		LeetCodeHandle:   p.LeetCodeHandle,
		LastSyncedAt:     p.LastSyncedAt,
	}
}
