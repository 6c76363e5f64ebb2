package domain

import (
	"time"

	"github.com/lib/pq"
)

// OnlineJudge identifies the third-party platform a problem lives on
type OnlineJudge string

const (
	JudgeCodeforces OnlineJudge = "Codeforces"
	JudgeAtCoder    OnlineJudge = "AtCoder"
	JudgeLeetCode   OnlineJudge = "LeetCode"
)

// Ladder is a named difficulty band owning an ordered set of problems.
// Ladders are created by catalog administration and are immutable from
// the engine's perspective.
type Ladder struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	RatingRange  string    `json:"rating_range" gorm:"type:varchar(255);not null"`
	URL          string    `json:"url" gorm:"type:varchar(500);uniqueIndex;not null"`
	LowerBound   int       `json:"lower_bound"`
	UpperBound   int       `json:"upper_bound"`
	ProblemCount int       `json:"problem_count"`
	CreatedAt    time.Time `json:"created_at"`

	// Relationships
	Problems []LadderProblem `json:"-" gorm:"foreignKey:LadderID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for GORM
func (Ladder) TableName() string {
	return "ladders"
}

// LadderProblem is one problem within a ladder. ProblemURL is the
// canonical judge link the contest/problem key is derived from.
type LadderProblem struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	LadderID     uint           `json:"ladder_id" gorm:"not null;index"`
	ProblemOrder int            `json:"problem_order" gorm:"not null"`
	ProblemName  string         `json:"problem_name" gorm:"type:varchar(255);not null"`
	ProblemURL   string         `json:"problem_url" gorm:"type:varchar(500);not null"`
	OnlineJudge  OnlineJudge    `json:"online_judge" gorm:"type:varchar(50)"`
	Difficulty   string         `json:"difficulty" gorm:"type:varchar(20)"`
	Tags         pq.StringArray `json:"tags" gorm:"type:text[]"`

	// Relationships
	Ladder     Ladder                  `json:"-" gorm:"foreignKey:LadderID"`
	Solutions  []LadderProblemSolution `json:"solutions,omitempty" gorm:"foreignKey:ProblemID;constraint:OnDelete:CASCADE"`
	UserStatus []UserProblemStatus     `json:"-" gorm:"foreignKey:ProblemID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for GORM
func (LadderProblem) TableName() string {
	return "ladder_problems"
}

// LadderProblemSolution is a read-only reference link to an editorial or
// video solution for a problem
type LadderProblemSolution struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	ProblemID uint   `json:"problem_id" gorm:"not null;index"`
	Platform  string `json:"platform" gorm:"type:varchar(50);not null"`
	Link      string `json:"link" gorm:"type:varchar(500);not null"`
}

// TableName specifies the table name for GORM
func (LadderProblemSolution) TableName() string {
	return "ladder_problem_solutions"
}

// LadderRepository defines the interface for catalog data access
type LadderRepository interface {
	Create(ladder *Ladder) error
	FindByID(id uint) (*Ladder, error)
	FindAll() ([]Ladder, error)
	FindProblems(ladderID uint, limit int) ([]LadderProblem, error)
	FindProblemByID(id uint) (*LadderProblem, error)
	FindProblemsByJudge(judge OnlineJudge) ([]LadderProblem, error)
	CountProblems() (int64, error)
}

// LadderResponse is the catalog listing shape (no problems)
type LadderResponse struct {
	ID           uint      `json:"id"`
	RatingRange  string    `json:"rating_range"`
	LowerBound   int       `json:"lower_bound"`
	UpperBound   int       `json:"upper_bound"`
	ProblemCount int       `json:"problem_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// ToResponse converts a Ladder to its listing shape
func (l *Ladder) ToResponse() LadderResponse {
	return LadderResponse{
		ID:           l.ID,
		RatingRange:  l.RatingRange,
		LowerBound:   l.LowerBound,
		UpperBound:   l.UpperBound,
		ProblemCount: l.ProblemCount,
		CreatedAt:    l.CreatedAt,
	}
}

// SolutionResponse is a solution link in API responses
type SolutionResponse struct {
	Platform string `json:"platform"`
	Link     string `json:"link"`
}

// LadderProblemResponse is a problem in API responses
type LadderProblemResponse struct {
	ID           uint               `json:"id"`
	ProblemOrder int                `json:"problem_order"`
	ProblemName  string             `json:"problem_name"`
	ProblemURL   string             `json:"problem_url"`
	OnlineJudge  OnlineJudge        `json:"online_judge"`
	Difficulty   string             `json:"difficulty"`
	Tags         []string           `json:"tags"`
	Solutions    []SolutionResponse `json:"solutions"`
}

// ToResponse converts a LadderProblem to its API shape
func (p *LadderProblem) ToResponse() LadderProblemResponse {
	solutions := make([]SolutionResponse, len(p.Solutions))
	for i, s := range p.Solutions {
		solutions[i] = SolutionResponse{Platform: s.Platform, Link: s.Link}
	}
	return LadderProblemResponse{
		ID:           p.ID,
		ProblemOrder: p.ProblemOrder,
		ProblemName:  p.ProblemName,
		ProblemURL:   p.ProblemURL,
		OnlineJudge:  p.OnlineJudge,
		Difficulty:   p.Difficulty,
		Tags:         p.Tags,
		Solutions:    solutions,
	}
}
