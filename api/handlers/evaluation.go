package handlers

import (
	"context"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feichai0017/exam-solver/internal/models"
	"github.com/feichai0017/exam-solver/internal/service/evaluation"
	"github.com/feichai0017/exam-solver/internal/utils/validator"
	"github.com/feichai0017/exam-solver/pkg/logger"
)

type Evaluator interface {
	Evaluate(ctx context.Context, req evaluation.Request) (*evaluation.Result, error)
	ListByPaper(ctx context.Context, paperID string) ([]models.EvaluationRecord, error)
	Update(ctx context.Context, id, score, report string) error
	Delete(ctx context.Context, id string) error
}

type EvaluationHandler struct {
	service   Evaluator
	validator *validator.DocumentValidator
	logger    logger.Logger
}

type UpdateEvaluationRequest struct {
	Score  string `json:"score"`
	Report string `json:"report"`
}

func NewEvaluationHandler(service Evaluator, v *validator.DocumentValidator, log logger.Logger) *EvaluationHandler {
	return &EvaluationHandler{service: service, validator: v, logger: log}
}

// Evaluate 评估学生答卷
func (h *EvaluationHandler) Evaluate(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		handleError(c, h.logger, http.StatusBadRequest, "Invalid file upload", err)
		return
	}

	docs, err := h.validator.ReadDocuments([]*multipart.FileHeader{header})
	if err != nil {
		respondError(c, h.logger, "Invalid upload", err)
		return
	}

	result, err := h.service.Evaluate(c.Request.Context(), evaluation.Request{
		PaperID:           c.PostForm("paper_id"),
		StudentName:       c.PostForm("student_name"),
		Submission:        docs[0],
		ReferenceSolution: c.PostForm("reference_solution"),
	})
	if err != nil {
		respondError(c, h.logger, "Failed to evaluate submission", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *EvaluationHandler) ListByPaper(c *gin.Context) {
	evs, err := h.service.ListByPaper(c.Request.Context(), c.Param("paper_id"))
	if err != nil {
		respondError(c, h.logger, "Failed to list students", err)
		return
	}
	c.JSON(http.StatusOK, evs)
}

// Update 手动修改分数和评语
func (h *EvaluationHandler) Update(c *gin.Context) {
	var req UpdateEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, h.logger, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	id := c.Param("student_id")
	if err := h.service.Update(c.Request.Context(), id, req.Score, req.Report); err != nil {
		respondError(c, h.logger, "Failed to update evaluation", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Evaluation updated",
		"student_id": id,
	})
}

func (h *EvaluationHandler) Delete(c *gin.Context) {
	id := c.Param("student_id")
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, "Failed to delete evaluation", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Evaluation deleted",
		"student_id": id,
	})
}
