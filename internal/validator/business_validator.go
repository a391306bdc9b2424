package validator

import (
	"fmt"

	"github.com/SAP-F-2025/submission-service/internal/models"
)

// BusinessValidator checks rules that depend on stored state rather than on
// the request alone.
type BusinessValidator struct {
	*Validator
}

func NewBusinessValidator(v *Validator) *BusinessValidator {
	return &BusinessValidator{Validator: v}
}

// ValidateGradeRequest validates a grading request against the graded answers of a submission
func (bv *BusinessValidator) ValidateGradeRequest(req *models.GradeRequest, answers []models.Answer) error {
	var errs ValidationErrors
	if err := bv.Validate(req); err != nil {
		errs = append(errs, ToValidationErrors(err)...)
	}
	errs = append(errs, bv.validateOverrides(req.Overrides, answers)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (bv *BusinessValidator) validateOverrides(overrides []models.GradeOverride, answers []models.Answer) ValidationErrors {
	var errs ValidationErrors

	bySection := make(map[string]models.Answer, len(answers))
	for _, a := range answers {
		bySection[a.SectionID] = a
	}

	seen := make(map[string]bool, len(overrides))
	for i, o := range overrides {
		field := fmt.Sprintf("overrides[%d]", i)

		if seen[o.SectionID] {
			errs = append(errs, ValidationError{
				Field:   field + ".section_id",
				Message: "is overridden more than once",
				Value:   o.SectionID,
				Rule:    "GR-003",
			})
			continue
		}
		seen[o.SectionID] = true

		answer, ok := bySection[o.SectionID]
		if !ok {
			errs = append(errs, ValidationError{
				Field:   field + ".section_id",
				Message: "does not match a graded answer",
				Value:   o.SectionID,
				Rule:    "GR-001",
			})
			continue
		}

		if answer.MaxScore != nil && o.Score > *answer.MaxScore {
			errs = append(errs, ValidationError{
				Field:   field + ".score",
				Message: fmt.Sprintf("must be at most %g", *answer.MaxScore),
				Value:   o.Score,
				Rule:    "GR-002",
			})
		}
	}
	return errs
}
