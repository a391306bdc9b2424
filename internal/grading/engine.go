package grading

import (
	"math"

	"github.com/SAP-F-2025/submission-service/internal/models"
)

// Outcome is the graded form of a set of raw answers.
type Outcome struct {
	Answers   []models.Answer `json:"answers"`
	AutoScore float64         `json:"auto_score"`
	MaxScore  float64         `json:"max_score"`
}

// AutoGrade grades raw answers against the graded sections of a page. The output
// has one answer per graded section in section order, whether or not the learner
// answered it. Non-graded sections are ignored. The same inputs always produce
// the same outcome.
func AutoGrade(sections []models.Section, raw []models.Answer) Outcome {
	bySection := make(map[string]models.JSONValue, len(raw))
	for _, a := range raw {
		if _, dup := bySection[a.SectionID]; !dup {
			bySection[a.SectionID] = a.Answer
		}
	}

	out := Outcome{Answers: make([]models.Answer, 0, len(sections))}
	for _, section := range sections {
		if !section.IsGraded() {
			continue
		}

		maxPoints := section.MaxPoints()
		given := bySection[section.ID]
		result := Grade(section, given)

		isCorrect := result.IsCorrect
		score := Round2(result.Score * maxPoints)
		points := maxPoints

		out.Answers = append(out.Answers, models.Answer{
			SectionID: section.ID,
			Answer:    given,
			IsCorrect: &isCorrect,
			AutoScore: &score,
			MaxScore:  &points,
		})
		out.AutoScore += score
		out.MaxScore += maxPoints
	}

	out.AutoScore = Round2(out.AutoScore)
	out.MaxScore = Round2(out.MaxScore)
	return out
}

// Round2 rounds half-up to two decimal places.
func Round2(x float64) float64 {
	return math.Floor(x*100+0.5) / 100
}
