package models

import (
	"time"
)

type SubmissionStatus string

const (
	SubmissionInProgress SubmissionStatus = "in-progress"
	SubmissionSubmitted  SubmissionStatus = "submitted"
	SubmissionGraded     SubmissionStatus = "graded"
	SubmissionReleased   SubmissionStatus = "released"
)

// SystemGrader is recorded as grader for submissions released without a mentor.
const SystemGrader = "system"

// IsFinalized reports whether the attempt counts towards the attempt limit.
func (s SubmissionStatus) IsFinalized() bool {
	return s != SubmissionInProgress
}

// IsReleased reports whether grading results are visible to the learner.
func (s SubmissionStatus) IsReleased() bool {
	return s == SubmissionReleased
}

// Submission is one learner attempt at a page. The partial unique index keeps at
// most one in-progress row per (page_id, user_id).
type Submission struct {
	ID            uint             `json:"id" gorm:"primaryKey"`
	PageID        uint             `json:"page_id" gorm:"not null;index;uniqueIndex:idx_submissions_in_progress,where:status = 'in-progress';uniqueIndex:idx_submissions_attempt"`
	UserID        string           `json:"user_id" gorm:"not null;size:255;index;uniqueIndex:idx_submissions_in_progress,where:status = 'in-progress';uniqueIndex:idx_submissions_attempt"`
	CourseID      uint             `json:"course_id" gorm:"not null;index"`
	AttemptNumber int              `json:"attempt_number" gorm:"not null;uniqueIndex:idx_submissions_attempt"`
	Status        SubmissionStatus `json:"status" gorm:"not null;size:20;index"`

	// Answers carry per-question results once submitted
	Answers   []Answer `json:"answers" gorm:"serializer:json;type:jsonb"`
	AutoScore float64  `json:"auto_score" gorm:"not null;default:0"`
	MaxScore  float64  `json:"max_score" gorm:"not null;default:0"`
	Grading   *Grading `json:"grading,omitempty" gorm:"serializer:json;type:jsonb"`

	StartedAt   time.Time  `json:"started_at" gorm:"not null"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	ReleasedAt  *time.Time `json:"released_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Answer is a learner response to one section. Result fields are filled by grading.
type Answer struct {
	SectionID string    `json:"section_id"`
	Answer    JSONValue `json:"answer"`
	IsCorrect *bool     `json:"is_correct,omitempty"`
	AutoScore *float64  `json:"auto_score,omitempty"`
	MaxScore  *float64  `json:"max_score,omitempty"`
}

type GradeOverride struct {
	SectionID string  `json:"section_id" validate:"required,section_id"`
	Score     float64 `json:"score" validate:"min=0"`
	Feedback  *string `json:"feedback,omitempty" validate:"omitempty,max=2000"`
}

type Grading struct {
	GradedBy        string          `json:"graded_by"`
	Overrides       []GradeOverride `json:"overrides"`
	OverallFeedback *string         `json:"overall_feedback,omitempty"`
	FinalScore      float64         `json:"final_score"`
	GradedAt        time.Time       `json:"graded_at"`
}

// FindAnswer returns the answer for a section, if present.
func (s *Submission) FindAnswer(sectionID string) (*Answer, bool) {
	for i := range s.Answers {
		if s.Answers[i].SectionID == sectionID {
			return &s.Answers[i], true
		}
	}
	return nil, false
}

// Clone returns a copy that shares no slices or records with s.
func (s *Submission) Clone() *Submission {
	c := *s
	if s.Answers != nil {
		c.Answers = make([]Answer, len(s.Answers))
		copy(c.Answers, s.Answers)
	}
	if s.Grading != nil {
		g := *s.Grading
		if s.Grading.Overrides != nil {
			g.Overrides = make([]GradeOverride, len(s.Grading.Overrides))
			copy(g.Overrides, s.Grading.Overrides)
		}
		c.Grading = &g
	}
	return &c
}

func (Submission) TableName() string {
	return "submissions"
}
