package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/submission-service/internal/models"
	"github.com/SAP-F-2025/submission-service/internal/services"
	"github.com/SAP-F-2025/submission-service/internal/utils"
	"github.com/SAP-F-2025/submission-service/internal/validator"
)

// Authenticator resolves the caller and gates routes by platform role
type Authenticator interface {
	AuthMiddleware() gin.HandlerFunc
	RequireRoleMiddleware(requiredRoles ...models.UserRole) gin.HandlerFunc
}

type HandlerManager struct {
	submissionHandler *SubmissionHandler
	gradingHandler    *GradingHandler
	serviceManager    services.ServiceManager
	auth              Authenticator
	logger            utils.Logger
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	auth Authenticator,
) *HandlerManager {
	return &HandlerManager{
		submissionHandler: NewSubmissionHandler(serviceManager.Submission(), logger),
		gradingHandler: NewGradingHandler(
			serviceManager.Submission(),
			serviceManager.Release(),
			serviceManager.Export(),
			validator,
			logger,
		),
		serviceManager: serviceManager,
		auth:           auth,
		logger:         logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.HealthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(hm.auth.AuthMiddleware())

	mentorOnly := hm.auth.RequireRoleMiddleware(models.RoleMentor)

	pages := v1.Group("/pages/:page_id/submissions")
	{
		// Learner routes. Enrollment is checked per course by the service.
		pages.POST("", hm.submissionHandler.StartSubmission)
		pages.GET("/me", hm.submissionHandler.ListMySubmissions)

		// Mentor routes
		pages.GET("", mentorOnly, hm.gradingHandler.ListPageSubmissions)
		pages.POST("/release", mentorOnly, hm.gradingHandler.BulkRelease)
		pages.GET("/export", mentorOnly, hm.gradingHandler.ExportGradebook)
	}

	submissions := v1.Group("/submissions")
	{
		submissions.GET("/:id", hm.submissionHandler.GetSubmission)
		submissions.PUT("/:id/answers", hm.submissionHandler.SaveAnswers)
		submissions.POST("/:id/submit", hm.submissionHandler.SubmitSubmission)

		submissions.POST("/:id/grade", mentorOnly, hm.gradingHandler.GradeSubmission)
		submissions.POST("/:id/release", mentorOnly, hm.gradingHandler.ReleaseSubmission)
	}
}

// HealthCheck reports storage reachability
func (hm *HandlerManager) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := hm.serviceManager.HealthCheck(ctx); err != nil {
		utils.GetLogger(c, hm.logger).Warn("Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unhealthy",
			"error":     err.Error(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "submission-service",
	})
}
