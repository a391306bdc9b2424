package services

import (
	"context"

	"github.com/SAP-F-2025/submission-service/internal/models"
	"github.com/SAP-F-2025/submission-service/internal/repositories"
)

// ===== SERVICE INTERFACES =====

// SubmissionService owns every state transition of a submission
type SubmissionService interface {
	// Learner operations
	Start(ctx context.Context, req *models.StartSubmissionRequest, userID string) (*models.SubmissionResponse, error)
	SaveAnswers(ctx context.Context, submissionID uint, req *models.SaveAnswersRequest, userID string) error
	Submit(ctx context.Context, submissionID uint, req *models.SubmitRequest, userID string) (*models.SubmissionResponse, error)

	// Mentor operations
	Grade(ctx context.Context, submissionID uint, req *models.GradeRequest, graderID string) (*models.SubmissionResponse, error)
	Release(ctx context.Context, submissionID uint, releaserID string) (*models.SubmissionResponse, error)

	// Read operations
	Get(ctx context.Context, submissionID uint, userID string) (*models.SubmissionResponse, error)
	ListMine(ctx context.Context, pageID uint, userID string) ([]*models.SubmissionResponse, error)
	ListForPage(ctx context.Context, pageID uint, filters repositories.SubmissionFilters, mentorID string) (*models.SubmissionListResponse, error)
}

// ReleaseCoordinator releases all graded submissions of a page at once
type ReleaseCoordinator interface {
	BulkRelease(ctx context.Context, pageID uint, mentorID string) (*models.BulkReleaseResponse, error)
}

// ExportService renders gradebooks for mentors
type ExportService interface {
	ExportGradebook(ctx context.Context, pageID uint, mentorID string) ([]byte, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Submission() SubmissionService
	Release() ReleaseCoordinator
	Export() ExportService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
