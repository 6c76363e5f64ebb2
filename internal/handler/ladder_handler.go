package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cp-ladders/backend/internal/domain"
	"github.com/cp-ladders/backend/internal/service"
)

// LadderHandler handles catalog, progress, and sync HTTP requests
type LadderHandler struct {
	ladderService *service.LadderService
	syncService   *service.SyncService
}

// NewLadderHandler creates a new ladder handler
func NewLadderHandler(ladderService *service.LadderService, syncService *service.SyncService) *LadderHandler {
	return &LadderHandler{
		ladderService: ladderService,
		syncService:   syncService,
	}
}

// LadderProblemsResponse wraps a ladder's problem listing
type LadderProblemsResponse struct {
	Ladder   string                         `json:"ladder"`
	Problems []domain.LadderProblemResponse `json:"problems"`
}

// SyncRequest triggers a Codeforces reconciliation. LadderID is
// optional; when absent the sync covers every Codeforces problem in the
// catalog.
type SyncRequest struct {
	UserID   uint  `json:"user_id" binding:"required"`
	LadderID *uint `json:"ladder_id"`
}

// GetLadders returns all ladders, meta only
// GET /ladders
func (h *LadderHandler) GetLadders(c *gin.Context) {
	ladders, err := h.ladderService.GetLadders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]domain.LadderResponse, len(ladders))
	for i, ladder := range ladders {
		responses[i] = ladder.ToResponse()
	}
	c.JSON(http.StatusOK, responses)
}

// GetLadderProblems returns a ladder's problems in ladder order
// GET /ladders/:id/problems?limit=
func (h *LadderHandler) GetLadderProblems(c *gin.Context) {
	ladderID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
			return
		}
		limit = parsed
	}

	ladder, problems, err := h.ladderService.GetLadderProblems(c.Request.Context(), ladderID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, LadderProblemsResponse{
		Ladder:   ladder.RatingRange,
		Problems: toProblemResponses(problems),
	})
}

// GetCompletedProblems returns the user's completed problems in a ladder
// GET /ladders/:id/user/:uid/completed
func (h *LadderHandler) GetCompletedProblems(c *gin.Context) {
	ladderID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	userID, ok := uintParam(c, "uid")
	if !ok {
		return
	}

	problems, err := h.ladderService.GetCompletedProblems(c.Request.Context(), ladderID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProblemResponses(problems))
}

// GetRevisitProblems returns the user's revisit-flagged problems in a ladder
// GET /ladders/:id/user/:uid/revisited
func (h *LadderHandler) GetRevisitProblems(c *gin.Context) {
	ladderID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	userID, ok := uintParam(c, "uid")
	if !ok {
		return
	}

	problems, err := h.ladderService.GetRevisitProblems(c.Request.Context(), ladderID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProblemResponses(problems))
}

// MarkRevisit flags a problem for revisit
// POST /ladders/problems/:pid/user/:uid/revisit
func (h *LadderHandler) MarkRevisit(c *gin.Context) {
	problemID, ok := uintParam(c, "pid")
	if !ok {
		return
	}
	userID, ok := uintParam(c, "uid")
	if !ok {
		return
	}

	if err := h.ladderService.MarkRevisit(c.Request.Context(), problemID, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "problem marked for revisit"})
}

// SetProblemStatus records a manual completion toggle
// POST /ladders/problems/:pid/status?user_id=&is_completed=
func (h *LadderHandler) SetProblemStatus(c *gin.Context) {
	problemID, ok := uintParam(c, "pid")
	if !ok {
		return
	}

	userID, err := strconv.ParseUint(c.Query("user_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "user_id is required"})
		return
	}
	completed, err := strconv.ParseBool(c.Query("is_completed"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "is_completed is required"})
		return
	}

	if err := h.ladderService.SetProblemStatus(c.Request.Context(), problemID, uint(userID), completed); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "problem status updated"})
}

// SyncCodeforces reconciles stored progress with the judge
// POST /ladders/codeforces/sync
func (h *LadderHandler) SyncCodeforces(c *gin.Context) {
	var req SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "user_id is required"})
		return
	}

	outcome, err := h.syncService.SyncCodeforces(c.Request.Context(), req.UserID, req.LadderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// uintParam parses a positive integer path parameter, responding 400
// itself on failure
func uintParam(c *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + name})
		return 0, false
	}
	return uint(value), true
}

func toProblemResponses(problems []domain.LadderProblem) []domain.LadderProblemResponse {
	responses := make([]domain.LadderProblemResponse, len(problems))
	for i := range problems {
		responses[i] = problems[i].ToResponse()
	}
	return responses
}
