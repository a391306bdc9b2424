package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/submission-service/internal/models"
)

// ErrValidationFailed matches every ValidationErrors value with errors.Is
var ErrValidationFailed = errors.New("validation failed")

// ValidationError describes one rejected field
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

func (ve ValidationErrors) Is(target error) bool {
	return target == ErrValidationFailed
}

// Validator wraps go-playground/validator with the service's custom rules
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())

	// report json field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v := &Validator{validate: validate}
	v.registerRules()
	return v
}

// Validate checks struct tags and returns ValidationErrors, or nil
func (v *Validator) Validate(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// RegisterValidation adds a custom rule
func (v *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return v.validate.RegisterValidation(tag, fn)
}

func (v *Validator) registerRules() {
	// section ids are opaque but must not be blank or padded
	_ = v.validate.RegisterValidation("section_id", func(fl validator.FieldLevel) bool {
		id := fl.Field().String()
		return id != "" && strings.TrimSpace(id) == id
	})

	_ = v.validate.RegisterValidation("submission_status", func(fl validator.FieldLevel) bool {
		switch models.SubmissionStatus(fl.Field().String()) {
		case models.SubmissionInProgress, models.SubmissionSubmitted, models.SubmissionGraded, models.SubmissionReleased:
			return true
		}
		return false
	})

	_ = v.validate.RegisterValidation("page_kind", func(fl validator.FieldLevel) bool {
		switch models.PageKind(fl.Field().String()) {
		case models.PageLesson, models.PagePractice, models.PageQuiz:
			return true
		}
		return false
	})
}

// ToValidationErrors converts validator output into ValidationErrors
func ToValidationErrors(err error) ValidationErrors {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return ValidationErrors{{Field: "", Message: err.Error(), Rule: "invalid"}}
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			Field:   fieldPath(fe),
			Message: errorMessage(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}
	return out
}

// fieldPath drops the top-level struct name, "GradeRequest.overrides[0].score" -> "overrides[0].score"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func errorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "unique":
		return fmt.Sprintf("must not contain duplicate %s values", fe.Param())
	case "section_id":
		return "must be a non-blank section id"
	case "submission_status":
		return "must be one of in-progress, submitted, graded, released"
	case "page_kind":
		return "must be lesson, practice or quiz"
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	default:
		return fmt.Sprintf("validation failed for rule '%s'", fe.Tag())
	}
}
