// Package grading scores learner answers against section reference data.
// Every function here is pure and safe for concurrent use.
package grading

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/SAP-F-2025/submission-service/internal/models"
)

// Result is the outcome for a single question. Score is a fraction in [0, 1].
type Result struct {
	IsCorrect bool    `json:"is_correct"`
	Score     float64 `json:"score"`
}

var zero = Result{}

// Grade scores one answer. A null answer scores zero without consulting the question.
func Grade(section models.Section, answer models.JSONValue) Result {
	if answer.IsNull() {
		return zero
	}
	return GradeQuestion(section.Question(), answer)
}

// GradeQuestion dispatches on the question variant.
func GradeQuestion(q models.QuestionContent, answer models.JSONValue) Result {
	if answer.IsNull() {
		return zero
	}

	switch q := q.(type) {
	case *models.MCQContent:
		return gradeMCQ(q, answer)
	case *models.TrueFalseContent:
		return gradeTrueFalse(q, answer)
	case *models.ShortAnswerContent:
		return gradeShortAnswer(q, answer)
	case *models.SequenceContent:
		return gradeSequence(q, answer)
	case *models.MatchingContent:
		return gradeMatching(q, answer)
	case *models.FillBlankContent:
		return gradeFillBlank(q, answer)
	case *models.MathInputContent:
		return gradeMathInput(q, answer)
	case *models.ClassificationContent:
		return gradeClassification(q, answer)
	case *models.UnsupportedQuestion:
		return zero
	default:
		return zero
	}
}

func all(ok bool) Result {
	if ok {
		return Result{IsCorrect: true, Score: 1}
	}
	return zero
}

func partial(matched, total int) Result {
	if total == 0 {
		return zero
	}
	return Result{
		IsCorrect: matched == total,
		Score:     float64(matched) / float64(total),
	}
}

// ===== PER-TYPE ALGORITHMS =====

func gradeMCQ(q *models.MCQContent, answer models.JSONValue) Result {
	if len(q.CorrectAnswers) == 0 {
		return zero
	}

	selected, ok := answer.AsStrings()
	if !ok {
		single, isString := answer.AsString()
		if !isString {
			return zero
		}
		selected = []string{single}
	}

	return all(setEqual(toSet(selected), toSet(q.CorrectAnswers)))
}

func gradeTrueFalse(q *models.TrueFalseContent, answer models.JSONValue) Result {
	b, ok := answer.AsBool()
	if !ok {
		return zero
	}
	return all(b == q.CorrectAnswer)
}

func gradeShortAnswer(q *models.ShortAnswerContent, answer models.JSONValue) Result {
	text, ok := answer.AsString()
	if !ok {
		return zero
	}

	normalize := func(s string) string {
		if q.Trim() {
			s = strings.TrimSpace(s)
		}
		if !q.CaseSensitive {
			s = strings.ToLower(s)
		}
		return s
	}

	given := normalize(text)
	for _, accepted := range q.AcceptedAnswers {
		if normalize(accepted) == given {
			return all(true)
		}
	}
	return zero
}

func gradeSequence(q *models.SequenceContent, answer models.JSONValue) Result {
	order, ok := answer.AsStrings()
	if !ok || len(order) != len(q.CorrectOrder) {
		return zero
	}

	matched := 0
	for i, id := range q.CorrectOrder {
		if order[i] == id {
			matched++
		}
	}
	return partial(matched, len(q.CorrectOrder))
}

func gradeMatching(q *models.MatchingContent, answer models.JSONValue) Result {
	given := keyedStrings(answer, "id", "pair_id", "right")

	matched := 0
	for _, pair := range q.Pairs {
		if right, ok := given[pair.ID]; ok && right == pair.Right {
			matched++
		}
	}
	return partial(matched, len(q.Pairs))
}

func gradeFillBlank(q *models.FillBlankContent, answer models.JSONValue) Result {
	given := map[string]string{}
	if values, ok := answer.AsStrings(); ok {
		// positional answers line up with the configured blanks
		for i, v := range values {
			if i < len(q.Blanks) {
				given[q.Blanks[i].ID] = v
			}
		}
	} else {
		given = keyedStrings(answer, "id", "blank_id", "value")
	}

	matched := 0
	for _, blank := range q.Blanks {
		value, ok := given[blank.ID]
		if !ok {
			continue
		}
		value = normalizeLoose(value)
		for _, accepted := range blank.AcceptedAnswers {
			if normalizeLoose(accepted) == value {
				matched++
				break
			}
		}
	}
	return partial(matched, len(q.Blanks))
}

func gradeMathInput(q *models.MathInputContent, answer models.JSONValue) Result {
	var expr string
	if s, ok := answer.AsString(); ok {
		expr = s
	} else if n, ok := answer.AsNumber(); ok {
		expr = strconv.FormatFloat(n, 'f', -1, 64)
	} else {
		return zero
	}

	given := stripSpaces(expr)
	for _, accepted := range q.AcceptedAnswers {
		if stripSpaces(accepted) == given {
			return all(true)
		}
	}
	return zero
}

func gradeClassification(q *models.ClassificationContent, answer models.JSONValue) Result {
	given := keyedStrings(answer, "item_id", "id", "category_id")

	matched := 0
	for _, item := range q.Items {
		if category, ok := given[item.ID]; ok && category == item.CategoryID {
			matched++
		}
	}
	return partial(matched, len(q.Items))
}

// ===== HELPERS =====

// keyedStrings reads either an object of key -> string, or an array of objects
// identified by primaryID (or altID) carrying a valueField string.
func keyedStrings(answer models.JSONValue, primaryID, altID, valueField string) map[string]string {
	if m, ok := answer.AsStringMap(); ok {
		return m
	}

	out := map[string]string{}
	items, ok := answer.AsArray()
	if !ok {
		return out
	}
	for _, item := range items {
		fields, ok := item.AsObject()
		if !ok {
			continue
		}
		id, ok := fields[primaryID].AsString()
		if !ok {
			if id, ok = fields[altID].AsString(); !ok {
				continue
			}
		}
		value, ok := fields[valueField].AsString()
		if !ok {
			continue
		}
		if _, seen := out[id]; !seen {
			out[id] = value
		}
	}
	return out
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func setEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

func normalizeLoose(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
