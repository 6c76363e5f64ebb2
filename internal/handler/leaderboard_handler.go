package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cp-ladders/backend/internal/service"
)

// LeaderboardHandler handles leaderboard HTTP requests
type LeaderboardHandler struct {
	leaderboardService *service.LeaderboardService
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(leaderboardService *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboardService: leaderboardService,
	}
}

// GetLeaderboard returns the full ranked board
// GET /cp51/leaderboard
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	board, err := h.leaderboardService.GetLeaderboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

// GetUserRank returns one user's rank, solved count and progress
// GET /cp51/leaderboard/user/:uid/rank
func (h *LeaderboardHandler) GetUserRank(c *gin.Context) {
	userID, ok := uintParam(c, "uid")
	if !ok {
		return
	}

	rank, err := h.leaderboardService.GetUserRank(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rank)
}
