package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/submission-service/internal/events"
	"github.com/SAP-F-2025/submission-service/internal/grading"
	"github.com/SAP-F-2025/submission-service/internal/models"
	"github.com/SAP-F-2025/submission-service/internal/repositories"
)

// ===== LOOKUPS =====

func loadPage(ctx context.Context, repo repositories.Repository, pageID uint) (*models.AssessmentPage, error) {
	page, err := repo.Page().GetByID(ctx, pageID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("page", pageID)
		}
		return nil, fmt.Errorf("failed to get page: %w", err)
	}
	return page, nil
}

func loadSubmission(ctx context.Context, repo repositories.Repository, submissionID uint) (*models.Submission, error) {
	sub, err := repo.Submission().GetByID(ctx, submissionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("submission", submissionID)
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return sub, nil
}

// loadOwnedSubmission returns the submission only if userID is its learner
func (s *submissionService) loadOwnedSubmission(ctx context.Context, submissionID uint, userID, action string) (*models.Submission, error) {
	sub, err := loadSubmission(ctx, s.repo, submissionID)
	if err != nil {
		return nil, err
	}
	if sub.UserID != userID {
		return nil, NewPermissionError(userID, submissionID, "submission", action, "not owned by user")
	}
	return sub, nil
}

// ===== PERMISSIONS =====

func requireMentor(ctx context.Context, repo repositories.Repository, courseID uint, userID string, resourceID uint, resource, action string) error {
	isMentor, err := repo.Membership().IsMentor(ctx, courseID, userID)
	if err != nil {
		return fmt.Errorf("failed to check mentor role: %w", err)
	}
	if !isMentor {
		return NewPermissionError(userID, resourceID, resource, action, "not a mentor of the course")
	}
	return nil
}

// ===== STATE =====

// statusConflict turns a lost conditional update into a ConflictError carrying
// the status the submission actually has now.
func (s *submissionService) statusConflict(ctx context.Context, operation string, sub *models.Submission, err error) error {
	if !errors.Is(err, repositories.ErrStatusChanged) {
		if repositories.IsNotFoundError(err) {
			return NewNotFoundError("submission", sub.ID)
		}
		return fmt.Errorf("failed to update submission: %w", err)
	}

	current, getErr := loadSubmission(ctx, s.repo, sub.ID)
	if getErr != nil {
		return getErr
	}
	s.logger.Warn("Submission status changed concurrently",
		"submission_id", sub.ID,
		"operation", operation,
		"status", current.Status)
	return NewConflictError(operation, current.Status)
}

// finalScore sums the override for each answer, falling back to its auto score
func finalScore(answers []models.Answer, overrides []models.GradeOverride) float64 {
	byID := make(map[string]float64, len(overrides))
	for _, o := range overrides {
		byID[o.SectionID] = o.Score
	}

	total := 0.0
	for _, a := range answers {
		if score, ok := byID[a.SectionID]; ok {
			total += score
		} else if a.AutoScore != nil {
			total += *a.AutoScore
		}
	}
	return grading.Round2(total)
}

// ===== EVENTS =====

// publish is fire-and-forget; a broker failure never fails the operation
func publish(ctx context.Context, publisher events.EventPublisher, logger *slog.Logger, event *events.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.PublishSubmissionEvent(ctx, event); err != nil {
		logger.Error("Failed to publish submission event",
			"event_type", event.Type,
			"event_id", event.ID,
			"error", err)
	}
}

func (s *submissionService) signalPageCompleted(ctx context.Context, sub *models.Submission) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishProgressEvent(ctx, events.NewPageCompletedEvent(sub)); err != nil {
		s.logger.Error("Failed to signal page completion",
			"submission_id", sub.ID,
			"page_id", sub.PageID,
			"user_id", sub.UserID,
			"error", err)
	}
}

func pageInfo(filters repositories.SubmissionFilters) (page, size int) {
	size = filters.Limit
	if size <= 0 {
		return 1, 0
	}
	return filters.Offset/size + 1, size
}
