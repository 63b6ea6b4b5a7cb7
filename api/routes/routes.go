package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/feichai0017/exam-solver/api/handlers"
	"github.com/feichai0017/exam-solver/api/middleware"
	"github.com/feichai0017/exam-solver/pkg/logger"
)

// SetupRoutes 配置所有路由
func SetupRoutes(r *gin.Engine, h *handlers.Handlers, log logger.Logger, allowOrigins []string) {
	// 全局中间件
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS(allowOrigins))

	r.GET("/health", h.Health.Health)

	// 试卷解答
	r.POST("/solve", h.Solve.Solve)
	r.GET("/solve/:job_id/status", h.Solve.Status)

	r.GET("/history", h.History.List)
	r.DELETE("/history/:paper_id", h.History.Delete)
	r.PUT("/paper/:paper_id/solution", h.History.UpdateSolution)

	// 学生评分
	r.POST("/evaluate", h.Evaluation.Evaluate)
	r.GET("/paper/:paper_id/students", h.Evaluation.ListByPaper)
	r.PUT("/student/:student_id", h.Evaluation.Update)
	r.DELETE("/student/:student_id", h.Evaluation.Delete)

	// 试卷生成
	r.POST("/generate-paper", h.Generation.Generate)
	r.GET("/generated-papers", h.Generation.List)
	r.DELETE("/generated-papers/:paper_id", h.Generation.Delete)
}
