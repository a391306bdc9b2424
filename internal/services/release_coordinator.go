package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/submission-service/internal/events"
	"github.com/SAP-F-2025/submission-service/internal/models"
	"github.com/SAP-F-2025/submission-service/internal/repositories"
)

type releaseCoordinator struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewReleaseCoordinator(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger) ReleaseCoordinator {
	return &releaseCoordinator{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// BulkRelease moves every graded submission of the page to released in one
// statement. Submissions that were never graded are left alone.
func (rc *releaseCoordinator) BulkRelease(ctx context.Context, pageID uint, mentorID string) (*models.BulkReleaseResponse, error) {
	rc.logger.Info("Releasing graded submissions",
		"page_id", pageID,
		"mentor_id", mentorID)

	page, err := loadPage(ctx, rc.repo, pageID)
	if err != nil {
		return nil, err
	}
	if err := requireMentor(ctx, rc.repo, page.CourseID, mentorID, pageID, "page", "release submissions"); err != nil {
		return nil, err
	}

	count, err := rc.repo.Submission().BulkUpdateStatus(ctx, pageID, models.SubmissionGraded, models.SubmissionReleased, rc.now())
	if err != nil {
		return nil, fmt.Errorf("failed to release submissions: %w", err)
	}

	if count > 0 {
		publish(ctx, rc.publisher, rc.logger, events.NewBulkReleaseEvent(pageID, mentorID, count))
	}

	rc.logger.Info("Graded submissions released",
		"page_id", pageID,
		"count", count)

	return &models.BulkReleaseResponse{PageID: pageID, Count: count}, nil
}
