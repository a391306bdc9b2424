package models

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
)

type SectionType string

const (
	SectionText  SectionType = "text"
	SectionMedia SectionType = "media"
	SectionCode  SectionType = "code"
	SectionQuiz  SectionType = "quiz"
)

type QuizType string

const (
	QuizMCQ            QuizType = "mcq"
	QuizTrueFalse      QuizType = "true-false"
	QuizShortAnswer    QuizType = "short-answer"
	QuizSequence       QuizType = "sequence"
	QuizMatching       QuizType = "matching"
	QuizFillBlank      QuizType = "fill-blank"
	QuizMathInput      QuizType = "math-input"
	QuizClassification QuizType = "classification"
)

// DefaultSectionPoints applies when a graded section has no explicit points.
const DefaultSectionPoints = 10.0

// Section is one block of a page. Only quiz sections are graded; Content holds
// the reference data for the section's QuizType.
type Section struct {
	ID       string         `json:"id" validate:"required"`
	Type     SectionType    `json:"type" validate:"required"`
	QuizType QuizType       `json:"quiz_type,omitempty"`
	Title    string         `json:"title,omitempty"`
	Points   *float64       `json:"points,omitempty" validate:"omitempty,min=0"`
	Content  datatypes.JSON `json:"content,omitempty"`
}

func (s Section) IsGraded() bool {
	return s.Type == SectionQuiz
}

// MaxPoints resolves the section's weight.
func (s Section) MaxPoints() float64 {
	if s.Points != nil {
		return *s.Points
	}
	return DefaultSectionPoints
}

// Question decodes Content into the variant selected by QuizType. Unknown quiz
// types and undecodable content yield UnsupportedQuestion.
func (s Section) Question() QuestionContent {
	var q QuestionContent
	switch s.QuizType {
	case QuizMCQ:
		q = &MCQContent{}
	case QuizTrueFalse:
		q = &TrueFalseContent{}
	case QuizShortAnswer:
		q = &ShortAnswerContent{}
	case QuizSequence:
		q = &SequenceContent{}
	case QuizMatching:
		q = &MatchingContent{}
	case QuizFillBlank:
		q = &FillBlankContent{}
	case QuizMathInput:
		q = &MathInputContent{}
	case QuizClassification:
		q = &ClassificationContent{}
	default:
		return &UnsupportedQuestion{QuizType: s.QuizType, Reason: "unknown quiz type"}
	}

	if len(s.Content) > 0 {
		if err := json.Unmarshal(s.Content, q); err != nil {
			return &UnsupportedQuestion{QuizType: s.QuizType, Reason: fmt.Sprintf("invalid content: %v", err)}
		}
	}
	return q
}

// ===== QUESTION CONTENT SCHEMAS =====

// QuestionContent is the closed set of question reference data.
type QuestionContent interface {
	Type() QuizType
	sealed()
}

type MCQContent struct {
	Options        []MCOption `json:"options"`
	CorrectAnswers []string   `json:"correct_answers"`
}

type MCOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type TrueFalseContent struct {
	CorrectAnswer bool `json:"correct_answer"`
}

type ShortAnswerContent struct {
	AcceptedAnswers []string `json:"accepted_answers"`
	CaseSensitive   bool     `json:"case_sensitive"`
	TrimWhitespace  *bool    `json:"trim_whitespace,omitempty"` // defaults to true
}

// Trim resolves the whitespace trimming flag.
func (c *ShortAnswerContent) Trim() bool {
	return c.TrimWhitespace == nil || *c.TrimWhitespace
}

type SequenceContent struct {
	Items        []SequenceItem `json:"items"`
	CorrectOrder []string       `json:"correct_order"`
}

type SequenceItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type MatchingContent struct {
	Pairs []MatchPair `json:"pairs"`
}

type MatchPair struct {
	ID    string `json:"id"`
	Left  string `json:"left"`
	Right string `json:"right"`
}

type FillBlankContent struct {
	Text   string  `json:"text,omitempty"`
	Blanks []Blank `json:"blanks"`
}

type Blank struct {
	ID              string   `json:"id"`
	AcceptedAnswers []string `json:"accepted_answers"`
}

type MathInputContent struct {
	AcceptedAnswers []string `json:"accepted_answers"`
}

type ClassificationContent struct {
	Categories []ClassificationCategory `json:"categories"`
	Items      []ClassificationItem     `json:"items"`
}

type ClassificationCategory struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type ClassificationItem struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	CategoryID string `json:"category_id"`
}

// UnsupportedQuestion stands in for sections that cannot be graded.
type UnsupportedQuestion struct {
	QuizType QuizType
	Reason   string
}

func (*MCQContent) Type() QuizType { return QuizMCQ }
func (*TrueFalseContent) Type() QuizType { return QuizTrueFalse }
func (*ShortAnswerContent) Type() QuizType { return QuizShortAnswer }
func (*SequenceContent) Type() QuizType { return QuizSequence }
func (*MatchingContent) Type() QuizType { return QuizMatching }
func (*FillBlankContent) Type() QuizType { return QuizFillBlank }
func (*MathInputContent) Type() QuizType { return QuizMathInput }
func (*ClassificationContent) Type() QuizType { return QuizClassification }
func (u *UnsupportedQuestion) Type() QuizType { return u.QuizType }

func (*MCQContent) sealed() {}
func (*TrueFalseContent) sealed() {}
func (*ShortAnswerContent) sealed() {}
func (*SequenceContent) sealed() {}
func (*MatchingContent) sealed() {}
func (*FillBlankContent) sealed() {}
func (*MathInputContent) sealed() {}
func (*ClassificationContent) sealed() {}
func (*UnsupportedQuestion) sealed() {}
