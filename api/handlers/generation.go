package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feichai0017/exam-solver/internal/models"
	"github.com/feichai0017/exam-solver/internal/service/generation"
	"github.com/feichai0017/exam-solver/pkg/logger"
)

type PaperGenerator interface {
	Generate(ctx context.Context, req generation.Request) (*generation.Result, error)
	List(ctx context.Context) ([]models.GeneratedPaper, error)
	Delete(ctx context.Context, id string) error
}

type GenerationHandler struct {
	service PaperGenerator
	logger  logger.Logger
}

func NewGenerationHandler(service PaperGenerator, log logger.Logger) *GenerationHandler {
	return &GenerationHandler{service: service, logger: log}
}

func (h *GenerationHandler) Generate(c *gin.Context) {
	var req generation.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, h.logger, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, "Failed to generate paper", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *GenerationHandler) List(c *gin.Context) {
	papers, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "Failed to list generated papers", err)
		return
	}
	c.JSON(http.StatusOK, papers)
}

func (h *GenerationHandler) Delete(c *gin.Context) {
	id := c.Param("paper_id")
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, "Failed to delete generated paper", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Generated paper deleted",
		"paper_id": id,
	})
}
