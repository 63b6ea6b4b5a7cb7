package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feichai0017/exam-solver/internal/agent/document"
	"github.com/feichai0017/exam-solver/internal/service/evaluation"
	"github.com/feichai0017/exam-solver/internal/service/generation"
	"github.com/feichai0017/exam-solver/internal/service/solve"
	"github.com/feichai0017/exam-solver/internal/utils/validator"
	"github.com/feichai0017/exam-solver/pkg/logger"
	"github.com/feichai0017/exam-solver/pkg/queue"
	"github.com/feichai0017/exam-solver/pkg/repository"
)

// ErrorResponse 定义错误响应结构
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, queue.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, document.ErrNoValidPages),
		errors.Is(err, solve.ErrNoDocuments),
		errors.Is(err, validator.ErrInvalidFile),
		errors.Is(err, generation.ErrInvalidRequest),
		errors.Is(err, evaluation.ErrMissingStudent),
		errors.Is(err, evaluation.ErrMissingPaper):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError picks the status from err and writes the error body.
func respondError(c *gin.Context, log logger.Logger, message string, err error) {
	handleError(c, log, statusFor(err), message, err)
}

// handleError 统一错误处理
func handleError(c *gin.Context, log logger.Logger, status int, message string, err error) {
	fields := []logger.Field{
		logger.String("path", c.Request.URL.Path),
		logger.Int("status", status),
		logger.Error(err),
	}
	log = logger.FromContext(c.Request.Context(), log)
	if status >= http.StatusInternalServerError {
		log.Error(message, fields...)
	} else {
		log.Warn(message, fields...)
	}

	response := ErrorResponse{
		Message: message,
	}
	if err != nil {
		response.Error = err.Error()
	}

	c.AbortWithStatusJSON(status, response)
}
