package models

import (
	"time"
)

// ===== REQUESTS =====

type StartSubmissionRequest struct {
	PageID   uint `json:"page_id" validate:"required"`
	CourseID uint `json:"course_id" validate:"required"`
}

type AnswerInput struct {
	SectionID string    `json:"section_id" validate:"required,section_id,max=100"`
	Answer    JSONValue `json:"answer"`
}

type SaveAnswersRequest struct {
	Answers []AnswerInput `json:"answers" validate:"max=500,unique=SectionID,dive"`
}

// SubmitRequest finalizes a submission. A nil Answers keeps the saved draft.
type SubmitRequest struct {
	Answers []AnswerInput `json:"answers,omitempty" validate:"omitempty,max=500,unique=SectionID,dive"`
}

type GradeRequest struct {
	Overrides       []GradeOverride `json:"overrides" validate:"max=500,unique=SectionID,dive"`
	OverallFeedback *string         `json:"overall_feedback,omitempty" validate:"omitempty,max=5000"`
}

// ToAnswers converts request inputs into stored answers without result fields.
func ToAnswers(inputs []AnswerInput) []Answer {
	answers := make([]Answer, 0, len(inputs))
	for _, in := range inputs {
		answers = append(answers, Answer{SectionID: in.SectionID, Answer: in.Answer})
	}
	return answers
}

// ===== RESPONSES =====

// SubmissionResponse is the boundary view of a submission. Grading and scores are
// omitted from the learner view until the submission is released.
type SubmissionResponse struct {
	ID            uint             `json:"id"`
	PageID        uint             `json:"page_id"`
	CourseID      uint             `json:"course_id"`
	UserID        string           `json:"user_id"`
	AttemptNumber int              `json:"attempt_number"`
	Status        SubmissionStatus `json:"status"`
	Answers       []Answer         `json:"answers"`
	AutoScore     *float64         `json:"auto_score,omitempty"`
	MaxScore      float64          `json:"max_score"`
	Grading       *Grading         `json:"grading,omitempty"`
	StartedAt     time.Time        `json:"started_at"`
	SubmittedAt   *time.Time       `json:"submitted_at,omitempty"`
	ReleasedAt    *time.Time       `json:"released_at,omitempty"`
}

// FullView exposes every field; used for mentors.
func FullView(s *Submission) *SubmissionResponse {
	auto := s.AutoScore
	return &SubmissionResponse{
		ID:            s.ID,
		PageID:        s.PageID,
		CourseID:      s.CourseID,
		UserID:        s.UserID,
		AttemptNumber: s.AttemptNumber,
		Status:        s.Status,
		Answers:       s.Answers,
		AutoScore:     &auto,
		MaxScore:      s.MaxScore,
		Grading:       s.Grading,
		StartedAt:     s.StartedAt,
		SubmittedAt:   s.SubmittedAt,
		ReleasedAt:    s.ReleasedAt,
	}
}

// LearnerView hides grading results until release.
func LearnerView(s *Submission) *SubmissionResponse {
	view := FullView(s)
	if s.Status.IsReleased() {
		return view
	}

	view.AutoScore = nil
	view.Grading = nil
	view.Answers = make([]Answer, len(s.Answers))
	for i, a := range s.Answers {
		view.Answers[i] = Answer{SectionID: a.SectionID, Answer: a.Answer, MaxScore: a.MaxScore}
	}
	return view
}

type SubmissionListResponse struct {
	Submissions []*SubmissionResponse `json:"submissions"`
	Total       int64                 `json:"total"`
	Page        int                   `json:"page"`
	Size        int                   `json:"size"`
}

type BulkReleaseResponse struct {
	PageID uint  `json:"page_id"`
	Count  int64 `json:"count"`
}
