package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/codeduel/codeduel-backend/internal/battle"
	"github.com/codeduel/codeduel-backend/internal/models"
)

type ProblemHandler struct {
	bank *battle.ProblemBank
}

func NewProblemHandler(bank *battle.ProblemBank) *ProblemHandler {
	return &ProblemHandler{
		bank: bank,
	}
}

// ListProblems returns every problem as a summary, without test cases.
func (h *ProblemHandler) ListProblems(c *gin.Context) {
	summaries := h.bank.Summaries()

	c.JSON(http.StatusOK, gin.H{
		"problems": summaries,
		"total":    len(summaries),
	})
}

// GetProblem returns one problem with its starter code for the requested
// language. Hidden test cases are not exposed.
func (h *ProblemHandler) GetProblem(c *gin.Context) {
	problem := h.bank.Get(c.Param("id"))
	if problem == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Problem not found",
		})
		return
	}

	lang := models.Language(c.DefaultQuery("language", string(models.DefaultLanguage)))
	if !lang.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Unsupported language",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"problem":     problem.Summary(),
		"description": problem.Description,
		"examples":    problem.Examples,
		"constraints": problem.Constraints,
		"starterCode": problem.StarterCode(lang),
	})
}
