package services

import "github.com/SAP-F-2025/submission-service/internal/models"

// CanStart decides whether a learner may open a new attempt on page.
// finalizedCount must exclude the attempt currently in progress, if any.
func CanStart(page *models.AssessmentPage, finalizedCount int) error {
	switch page.Kind {
	case models.PageLesson:
		return ErrLessonNotSubmittable
	case models.PageQuiz:
		if limit := page.Settings.MaxAttempts; limit != nil && finalizedCount >= *limit {
			return ErrMaxAttemptsReached
		}
		return nil
	case models.PagePractice:
		return nil
	default:
		return &PolicyError{Rule: "page_kind", Message: "page kind does not accept submissions"}
	}
}
