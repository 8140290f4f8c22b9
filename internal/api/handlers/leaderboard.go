package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/codeduel/codeduel-backend/internal/service"
)

type LeaderboardHandler struct {
	userService *service.UserService
}

func NewLeaderboardHandler(userService *service.UserService) *LeaderboardHandler {
	return &LeaderboardHandler{
		userService: userService,
	}
}

// GetLeaderboard returns the top players ranked by rating.
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	users, err := h.userService.GetLeaderboard(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get leaderboard",
		})
		return
	}

	entries := make([]gin.H, 0, len(users))
	for i, u := range users {
		entries = append(entries, gin.H{
			"position":    i + 1,
			"userId":      u.ID,
			"username":    u.Username,
			"displayName": u.DisplayName,
			"rating":      u.Rating,
			"rank":        service.RankFromRating(u.Rating),
			"rankColor":   service.RankColor(u.Rating),
			"wins":        u.Wins,
			"losses":      u.Losses,
			"draws":       u.Draws,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"leaderboard": entries,
		"total":       len(entries),
	})
}
