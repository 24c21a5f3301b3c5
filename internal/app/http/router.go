package httpapi

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jobboard/internal/app/http/handler"
	"jobboard/internal/app/http/middleware"
	"jobboard/internal/domain/identity"
)

func NewRouter(h *handler.Handler, verifier identity.Verifier, log *zap.Logger) *gin.Engine {
	r := gin.New()

	r.Use(
		gin.Recovery(),
		middleware.ZapLogger(log),
		middleware.ZapRecovery(log),
	)

	r.GET("/health", h.Health)

	jobs := r.Group("/jobs")

	// Public read surface.
	jobs.GET("", h.JobList)
	jobs.GET("/search", h.JobSearch)
	jobs.GET("/category/:category", h.JobsByCategory)
	jobs.GET("/type/:type", h.JobsByType)
	jobs.GET("/salary-range", h.JobsBySalaryRange)
	jobs.GET("/:id", h.JobGet)

	// Everything below requires a resolved caller identity.
	authed := jobs.Group("", middleware.Authenticate(verifier))

	authed.POST("", h.JobCreate)
	authed.GET("/my-jobs", h.JobListMine)
	authed.PUT("/:id", h.JobUpdate)
	authed.DELETE("/:id", h.JobDelete)

	authed.POST("/:id/apply", h.ApplicationApply)
	authed.GET("/:id/applications", h.ApplicationsForJob)
	authed.GET("/applications/my-applications", h.MyApplications)
	authed.PATCH("/applications/:id/status", h.ApplicationStatusUpdate)
	authed.DELETE("/:id/applications/withdraw", h.ApplicationWithdraw)

	return r
}
