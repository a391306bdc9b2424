package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SAP-F-2025/submission-service/internal/models"
)

func TestCanStart(t *testing.T) {
	two := 2
	tests := []struct {
		name      string
		page      models.AssessmentPage
		finalized int
		want      error
	}{
		{"lesson always denied", models.AssessmentPage{Kind: models.PageLesson}, 0, ErrLessonNotSubmittable},
		{"quiz under limit", models.AssessmentPage{Kind: models.PageQuiz, Settings: models.AssessmentSettings{MaxAttempts: &two}}, 1, nil},
		{"quiz at limit", models.AssessmentPage{Kind: models.PageQuiz, Settings: models.AssessmentSettings{MaxAttempts: &two}}, 2, ErrMaxAttemptsReached},
		{"quiz without limit", models.AssessmentPage{Kind: models.PageQuiz}, 50, nil},
		{"practice ignores limit", models.AssessmentPage{Kind: models.PagePractice, Settings: models.AssessmentSettings{MaxAttempts: &two}}, 9, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanStart(&tt.page, tt.finalized)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrPolicyViolation)
		})
	}
}

func TestErrorKindsAreDistinct(t *testing.T) {
	kinds := []error{ErrValidationFailed, ErrNotFound, ErrForbidden, ErrPolicyViolation, ErrConflict}
	samples := map[error]error{
		ErrValidationFailed: ValidationErrors{{Field: "answers", Message: "is required"}},
		ErrNotFound:         NewNotFoundError("submission", 3),
		ErrForbidden:        NewPermissionError("u1", 3, "submission", "grade", "not a mentor"),
		ErrPolicyViolation:  ErrMaxAttemptsReached,
		ErrConflict:         NewConflictError("submit", models.SubmissionSubmitted),
	}

	for kind, err := range samples {
		wrapped := fmt.Errorf("handler: %w", err)
		for _, other := range kinds {
			assert.Equal(t, kind == other, errors.Is(wrapped, other), "%v vs %v", err, other)
		}
	}

	assert.False(t, errors.Is(ErrMaxAttemptsReached, ErrLessonNotSubmittable))
	assert.False(t, errors.Is(ErrAlreadySubmitted, ErrAlreadyReleased))
	assert.True(t, errors.Is(NewConflictError("release", models.SubmissionReleased), ErrAlreadyReleased))
}
