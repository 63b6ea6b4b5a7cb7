package handlers

import (
	"github.com/feichai0017/exam-solver/internal/service/evaluation"
	"github.com/feichai0017/exam-solver/internal/service/generation"
	"github.com/feichai0017/exam-solver/internal/service/history"
	"github.com/feichai0017/exam-solver/internal/service/solve"
	"github.com/feichai0017/exam-solver/internal/utils/validator"
	"github.com/feichai0017/exam-solver/pkg/logger"
)

// Services are the collaborators the HTTP layer dispatches to. Progress and
// Checks may be nil.
type Services struct {
	Solve      *solve.Service
	History    *history.Service
	Evaluation *evaluation.Service
	Generation *generation.Service
	Progress   ProgressReader
	Validator  *validator.DocumentValidator
	Checks     map[string]HealthCheck
}

type Handlers struct {
	Solve      *SolveHandler
	History    *HistoryHandler
	Evaluation *EvaluationHandler
	Generation *GenerationHandler
	Health     *HealthHandler
}

func NewHandlers(svcs Services, log logger.Logger) *Handlers {
	log = log.Named("api")
	return &Handlers{
		Solve:      NewSolveHandler(svcs.Solve, svcs.Progress, svcs.Validator, log),
		History:    NewHistoryHandler(svcs.History, log),
		Evaluation: NewEvaluationHandler(svcs.Evaluation, svcs.Validator, log),
		Generation: NewGenerationHandler(svcs.Generation, log),
		Health:     NewHealthHandler(svcs.Checks),
	}
}
