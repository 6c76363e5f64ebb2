package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cp-ladders/backend/internal/domain"
	"github.com/cp-ladders/backend/internal/service"
)

// ProfileHandler handles CP profile HTTP requests
type ProfileHandler struct {
	profileService *service.ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

// UpsertProfile creates or updates the caller's CP profile
// POST /ladders/profile
func (h *ProfileHandler) UpsertProfile(c *gin.Context) {
	var req domain.UpsertProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid profile payload: " + err.Error()})
		return
	}

	profile, err := h.profileService.UpsertProfile(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile.ToResponse())
}

// GetProfile returns a user's CP profile
// GET /ladders/profile?user_id=
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Query("user_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "user_id is required"})
		return
	}

	profile, err := h.profileService.GetProfile(c.Request.Context(), uint(userID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile.ToResponse())
}
