package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/submission-service/internal/models"
)

func pts(v float64) *float64 { return &v }

func TestValidator_SaveAnswersRequest(t *testing.T) {
	v := New()

	ok := &models.SaveAnswersRequest{Answers: []models.AnswerInput{
		{SectionID: "q1", Answer: models.StringValue("a")},
		{SectionID: "q2"},
	}}
	assert.NoError(t, v.Validate(ok))

	dup := &models.SaveAnswersRequest{Answers: []models.AnswerInput{{SectionID: "q1"}, {SectionID: "q1"}}}
	err := v.Validate(dup)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidationFailed))

	var ve ValidationErrors
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "answers", ve[0].Field)
	assert.Equal(t, "unique", ve[0].Rule)

	blank := &models.SaveAnswersRequest{Answers: []models.AnswerInput{{SectionID: " q1"}}}
	ve = ToValidationErrors(v.Validate(blank))
	require.Len(t, ve, 1)
	assert.Equal(t, "answers[0].section_id", ve[0].Field)
	assert.Equal(t, "section_id", ve[0].Rule)
}

func TestValidator_GradeRequestNegativeScore(t *testing.T) {
	v := New()
	req := &models.GradeRequest{Overrides: []models.GradeOverride{{SectionID: "q1", Score: -1}}}

	ve := ToValidationErrors(v.Validate(req))
	require.Len(t, ve, 1)
	assert.Equal(t, "overrides[0].score", ve[0].Field)
	assert.Equal(t, "must be at least 0", ve[0].Message)
}

func TestBusinessValidator_ValidateGradeRequest(t *testing.T) {
	bv := NewBusinessValidator(New())
	answers := []models.Answer{
		{SectionID: "q1", MaxScore: pts(10)},
		{SectionID: "q2", MaxScore: pts(5)},
	}

	valid := &models.GradeRequest{Overrides: []models.GradeOverride{{SectionID: "q1", Score: 10}, {SectionID: "q2", Score: 0}}}
	assert.NoError(t, bv.ValidateGradeRequest(valid, answers))

	tests := []struct {
		name string
		req  *models.GradeRequest
		rule string
	}{
		{
			name: "unknown section",
			req:  &models.GradeRequest{Overrides: []models.GradeOverride{{SectionID: "q9", Score: 1}}},
			rule: "GR-001",
		},
		{
			name: "score above max",
			req:  &models.GradeRequest{Overrides: []models.GradeOverride{{SectionID: "q2", Score: 5.5}}},
			rule: "GR-002",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := bv.ValidateGradeRequest(tt.req, answers)
			require.Error(t, err)
			ve := ToValidationErrors(err)
			require.Len(t, ve, 1)
			assert.Equal(t, tt.rule, ve[0].Rule)
		})
	}
}

func TestValidator_PageKind(t *testing.T) {
	v := New()
	assert.NoError(t, v.Validate(&models.AssessmentPage{Kind: models.PageQuiz}))

	ve := ToValidationErrors(v.Validate(&models.AssessmentPage{Kind: "exam"}))
	require.NotEmpty(t, ve)
	assert.Equal(t, "page_kind", ve[0].Rule)
}
