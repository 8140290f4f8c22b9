package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/codeduel/codeduel-backend/internal/repository"
)

type BattleHandler struct {
	battleRepo *repository.BattleRepository
}

func NewBattleHandler(battleRepo *repository.BattleRepository) *BattleHandler {
	return &BattleHandler{
		battleRepo: battleRepo,
	}
}

// GetBattle returns one settled battle result.
func (h *BattleHandler) GetBattle(c *gin.Context) {
	id := c.Param("id")

	result, err := h.battleRepo.FindResult(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get battle",
		})
		return
	}
	if result == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Battle not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"battle": result,
	})
}

// ListMyBattles returns the authenticated user's battle history, newest first.
func (h *BattleHandler) ListMyBattles(c *gin.Context) {
	userId, exists := c.Get("userId")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	results, err := h.battleRepo.FindResultsByUser(userId.(string), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get battle history",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"battles": results,
		"total":   len(results),
	})
}
