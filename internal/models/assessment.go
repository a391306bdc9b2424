package models

import (
	"time"
)

type PageKind string

const (
	PageLesson   PageKind = "lesson"
	PagePractice PageKind = "practice"
	PageQuiz     PageKind = "quiz"
)

// AcceptsSubmissions reports whether learners can attempt pages of this kind.
func (k PageKind) AcceptsSubmissions() bool {
	return k == PagePractice || k == PageQuiz
}

// AssessmentPage is a course node holding an ordered list of sections.
// Pages are authored elsewhere; this service only reads them.
type AssessmentPage struct {
	ID       uint               `json:"id" gorm:"primaryKey"`
	CourseID uint               `json:"course_id" gorm:"not null;index"`
	Title    string             `json:"title" gorm:"not null;size:200"`
	Kind     PageKind           `json:"kind" gorm:"not null;size:20;index" validate:"required,page_kind"`
	Sections []Section          `json:"sections" gorm:"serializer:json;type:jsonb"`
	Settings AssessmentSettings `json:"settings" gorm:"embedded;embeddedPrefix:settings_"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AssessmentSettings struct {
	MaxAttempts        *int       `json:"max_attempts,omitempty" validate:"omitempty,min=1"`
	TimeLimit          *int       `json:"time_limit,omitempty" validate:"omitempty,min=1"` // minutes
	DueDate            *time.Time `json:"due_date,omitempty"`
	ShowCorrectAnswers bool       `json:"show_correct_answers" gorm:"default:false"`
	PassingScore       *float64   `json:"passing_score,omitempty" validate:"omitempty,min=0,max=100"`
}

// GradedSections returns the sections that contribute to scoring, in page order.
func (p *AssessmentPage) GradedSections() []Section {
	graded := make([]Section, 0, len(p.Sections))
	for _, s := range p.Sections {
		if s.IsGraded() {
			graded = append(graded, s)
		}
	}
	return graded
}

func (AssessmentPage) TableName() string {
	return "assessment_pages"
}
