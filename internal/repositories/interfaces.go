package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/submission-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type SubmissionFilters struct {
	Status    *models.SubmissionStatus `json:"status"`
	UserID    *string                  `json:"user_id"`
	Limit     int                      `json:"limit"`
	Offset    int                      `json:"offset"`
	SortBy    string                   `json:"sort_by"`    // "created_at", "attempt_number", "auto_score", "submitted_at"
	SortOrder string                   `json:"sort_order"` // "asc", "desc"
}

// ===== PAGE REPOSITORY =====

// PageRepository reads assessment pages. Pages are authored by another service.
type PageRepository interface {
	GetByID(ctx context.Context, id uint) (*models.AssessmentPage, error)
}

// ===== SUBMISSION REPOSITORY =====

type SubmissionRepository interface {
	// Create inserts a new submission. It returns ErrDuplicate when another
	// in-progress submission for the same page and user, or the same attempt
	// number, already exists. The check is atomic with the insert.
	Create(ctx context.Context, submission *models.Submission) error

	GetByID(ctx context.Context, id uint) (*models.Submission, error)
	GetInProgress(ctx context.Context, pageID uint, userID string) (*models.Submission, error)

	// CountFinalized counts attempts that are no longer in progress.
	CountFinalized(ctx context.Context, pageID uint, userID string) (int, error)

	ListByPageAndUser(ctx context.Context, pageID uint, userID string) ([]*models.Submission, error)
	ListByPage(ctx context.Context, pageID uint, filters SubmissionFilters) ([]*models.Submission, int64, error)

	// UpdateIfStatus writes the mutable fields of submission only if the stored
	// status is one of allowed. ErrStatusChanged is returned when no row matched.
	UpdateIfStatus(ctx context.Context, submission *models.Submission, allowed ...models.SubmissionStatus) error

	// BulkUpdateStatus moves every submission of a page from one status to
	// another in a single atomic statement and returns how many rows changed.
	BulkUpdateStatus(ctx context.Context, pageID uint, from, to models.SubmissionStatus, at time.Time) (int64, error)
}

// ===== MEMBERSHIP REPOSITORY =====

type MembershipRepository interface {
	IsEnrolled(ctx context.Context, courseID uint, userID string) (bool, error)
	IsMentor(ctx context.Context, courseID uint, userID string) (bool, error)
}

// ===== USER REPOSITORY =====

// UserRepository is read-only; identities live in Casdoor.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}
