package domain

// Title is the percentile tier a user's progress maps to
type Title string

const (
	TitleGrandmaster     Title = "Grandmaster"
	TitleMaster          Title = "Master"
	TitleCandidateMaster Title = "Candidate Master"
	TitleExpert          Title = "Expert"
	TitleSpecialist      Title = "Specialist"
	TitlePupil           Title = "Pupil"
	TitleNewbie          Title = "Newbie"
)

// titleThresholds maps progress percentage cutoffs to titles, evaluated
// in strictly descending order; first match wins.
var titleThresholds = []struct {
	MinPct float64
	Title  Title
}{
	{40, TitleGrandmaster},
	{30, TitleMaster},
	{20, TitleCandidateMaster},
	{10, TitleExpert},
	{8, TitleSpecialist},
	{5, TitlePupil},
}

// TitleForProgress classifies a progress percentage into a title
func TitleForProgress(pct float64) Title {
	for _, t := range titleThresholds {
		if pct >= t.MinPct {
			return t.Title
		}
	}
	return TitleNewbie
}

// LeaderboardEntry is one ranked row of the full board
type LeaderboardEntry struct {
	Rank        int     `json:"rank"`
	UserID      uint    `json:"user_id"`
	Username    string  `json:"username"`
	Solved      int64   `json:"solved"`
	ProgressPct float64 `json:"progress_pct"`
	Title       Title   `json:"title"`
}

// LeaderboardResponse is the full board API shape
type LeaderboardResponse struct {
	TotalUsers    int                `json:"total_users"`
	TotalProblems int64              `json:"total_problems"`
	AverageSolved int64              `json:"average_solved"`
	Entries       []LeaderboardEntry `json:"entries"`
}

// UserRankResponse answers a single user's rank query
type UserRankResponse struct {
	UserID      uint    `json:"user_id"`
	Rank        int     `json:"rank"`
	Solved      int64   `json:"solved"`
	ProgressPct float64 `json:"progress_pct"`
}
