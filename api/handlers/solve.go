package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feichai0017/exam-solver/internal/models"
	"github.com/feichai0017/exam-solver/internal/service/solve"
	"github.com/feichai0017/exam-solver/internal/utils/validator"
	"github.com/feichai0017/exam-solver/pkg/converters"
	"github.com/feichai0017/exam-solver/pkg/logger"
	"github.com/feichai0017/exam-solver/pkg/queue"
)

// JobIDHeader carries the job id before the first stream line.
const JobIDHeader = "X-Job-ID"

var errProgressDisabled = errors.New("progress tracking is not configured")

type Solver interface {
	Prepare(ctx context.Context, name string, docs []models.Document) (*solve.Job, error)
}

type ProgressReader interface {
	GetProgress(ctx context.Context, jobID string) (*queue.ProgressSnapshot, error)
}

type SolveHandler struct {
	solver    Solver
	progress  ProgressReader
	validator *validator.DocumentValidator
	logger    logger.Logger
}

func NewSolveHandler(solver Solver, progress ProgressReader, v *validator.DocumentValidator, log logger.Logger) *SolveHandler {
	return &SolveHandler{solver: solver, progress: progress, validator: v, logger: log}
}

// Solve 解答上传的试卷，以 NDJSON 流式返回进度
func (h *SolveHandler) Solve(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		handleError(c, h.logger, http.StatusBadRequest, "Invalid form data", err)
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		handleError(c, h.logger, http.StatusBadRequest, "No files provided", solve.ErrNoDocuments)
		return
	}

	docs, err := h.validator.ReadDocuments(files)
	if err != nil {
		respondError(c, h.logger, "Invalid upload", err)
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	job, err := h.solver.Prepare(ctx, c.PostForm("name"), docs)
	if err != nil {
		respondError(c, h.logger, "Failed to prepare job", err)
		return
	}

	c.Header(JobIDHeader, job.ID)
	c.Header("Content-Type", converters.NDJSONContentType)
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	log := logger.FromContext(ctx, h.logger).With(logger.String("job_id", job.ID))
	enc := converters.NewNDJSONEncoder(c.Writer)
	for ev := range job.Run(ctx) {
		if err := enc.Encode(ev); err != nil {
			// client went away; cancelling stops the job after the current page
			log.Warn("Stream write failed", logger.Error(err))
			cancel()
		}
	}
}

// Status 返回任务最近一次进度
func (h *SolveHandler) Status(c *gin.Context) {
	if h.progress == nil {
		handleError(c, h.logger, http.StatusNotFound, "Progress not available", errProgressDisabled)
		return
	}

	snap, err := h.progress.GetProgress(c.Request.Context(), c.Param("job_id"))
	if err != nil {
		respondError(c, h.logger, "Failed to get status", err)
		return
	}
	c.JSON(http.StatusOK, snap)
}
