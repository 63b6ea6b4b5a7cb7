package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feichai0017/exam-solver/internal/models"
	"github.com/feichai0017/exam-solver/pkg/logger"
)

type PaperHistory interface {
	List(ctx context.Context) ([]models.SolutionRecord, error)
	Delete(ctx context.Context, paperID string) error
	ReplaceSolution(ctx context.Context, paperID, text string) error
}

type HistoryHandler struct {
	service PaperHistory
	logger  logger.Logger
}

type UpdateSolutionRequest struct {
	Text string `json:"text" binding:"required"`
}

func NewHistoryHandler(service PaperHistory, log logger.Logger) *HistoryHandler {
	return &HistoryHandler{service: service, logger: log}
}

func (h *HistoryHandler) List(c *gin.Context) {
	papers, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "Failed to list papers", err)
		return
	}
	c.JSON(http.StatusOK, papers)
}

// Delete 删除试卷及其学生评分
func (h *HistoryHandler) Delete(c *gin.Context) {
	paperID := c.Param("paper_id")
	if err := h.service.Delete(c.Request.Context(), paperID); err != nil {
		respondError(c, h.logger, "Failed to delete paper", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Paper deleted",
		"paper_id": paperID,
	})
}

func (h *HistoryHandler) UpdateSolution(c *gin.Context) {
	var req UpdateSolutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, h.logger, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	paperID := c.Param("paper_id")
	if err := h.service.ReplaceSolution(c.Request.Context(), paperID, req.Text); err != nil {
		respondError(c, h.logger, "Failed to update solution", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Solution updated",
		"paper_id": paperID,
	})
}
