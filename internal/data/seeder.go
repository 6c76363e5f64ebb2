package data

import (
	_ "embed"
	"encoding/json"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cp-ladders/backend/internal/domain"
)

//go:embed ladders.json
var laddersData []byte

// ladderJSON represents the JSON structure for a ladder
type ladderJSON struct {
	RatingRange string        `json:"rating_range"`
	URL         string        `json:"url"`
	LowerBound  int           `json:"lower_bound"`
	UpperBound  int           `json:"upper_bound"`
	Problems    []problemJSON `json:"problems"`
}

// problemJSON represents the JSON structure for a ladder problem
type problemJSON struct {
	ProblemName string         `json:"problem_name"`
	ProblemURL  string         `json:"problem_url"`
	OnlineJudge string         `json:"online_judge"`
	Difficulty  string         `json:"difficulty"`
	Tags        []string       `json:"tags"`
	Solutions   []solutionJSON `json:"solutions"`
}

// solutionJSON represents a reference solution link
type solutionJSON struct {
	Platform string `json:"platform"`
	Link     string `json:"link"`
}

// Seeder handles database seeding operations
type Seeder struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSeeder creates a new database seeder
func NewSeeder(db *gorm.DB, logger *zap.Logger) *Seeder {
	return &Seeder{
		db:     db,
		logger: logger,
	}
}

// SeedLadders seeds the catalog with the embedded ladder data.
// Seeding is skipped entirely once any ladder exists.
func (s *Seeder) SeedLadders() error {
	s.logger.Info("Starting to seed ladders...")

	var count int64
	if err := s.db.Model(&domain.Ladder{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		s.logger.Info("Ladders already seeded, skipping",
			zap.Int64("count", count),
		)
		return nil
	}

	ladders, err := embeddedLadders()
	if err != nil {
		return err
	}

	// One create per ladder so GORM cascades problems and solutions
	for i := range ladders {
		if err := s.db.Create(&ladders[i]).Error; err != nil {
			return err
		}
	}

	s.logger.Info("Successfully seeded ladders",
		zap.Int("count", len(ladders)),
	)
	return nil
}

// embeddedLadders parses the embedded catalog into domain models
func embeddedLadders() ([]domain.Ladder, error) {
	var laddersJSON []ladderJSON
	if err := json.Unmarshal(laddersData, &laddersJSON); err != nil {
		return nil, err
	}

	ladders := make([]domain.Ladder, len(laddersJSON))
	for i, l := range laddersJSON {
		problems := make([]domain.LadderProblem, len(l.Problems))
		for j, p := range l.Problems {
			solutions := make([]domain.LadderProblemSolution, len(p.Solutions))
			for k, sol := range p.Solutions {
				solutions[k] = domain.LadderProblemSolution{
					Platform: sol.Platform,
					Link:     sol.Link,
				}
			}
			problems[j] = domain.LadderProblem{
				ProblemOrder: j + 1,
				ProblemName:  p.ProblemName,
				ProblemURL:   p.ProblemURL,
				OnlineJudge:  domain.OnlineJudge(p.OnlineJudge),
				Difficulty:   p.Difficulty,
				Tags:         p.Tags,
				Solutions:    solutions,
			}
		}
		ladders[i] = domain.Ladder{
			RatingRange:  l.RatingRange,
			URL:          l.URL,
			LowerBound:   l.LowerBound,
			UpperBound:   l.UpperBound,
			ProblemCount: len(problems),
			Problems:     problems,
		}
	}
	return ladders, nil
}
