package services

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/submission-service/internal/models"
	"github.com/SAP-F-2025/submission-service/internal/validator"
)

// Error kinds. Every service error matches exactly one of these with errors.Is.
var (
	ErrValidationFailed = validator.ErrValidationFailed
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrPolicyViolation  = errors.New("policy violation")
	ErrConflict         = errors.New("conflict")
)

type ValidationError = validator.ValidationError
type ValidationErrors = validator.ValidationErrors

// ===== NOT FOUND =====

type NotFoundError struct {
	Resource string
	ID       interface{}
}

func NewNotFoundError(resource string, id interface{}) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ===== PERMISSION =====

type PermissionError struct {
	UserID     string
	ResourceID uint
	Resource   string
	Action     string
	Reason     string
}

func NewPermissionError(userID string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s cannot %s %s %d: %s", e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func (e *PermissionError) Is(target error) bool {
	return target == ErrForbidden
}

// ===== POLICY =====

// PolicyError is a refusal by the attempt policy
type PolicyError struct {
	Rule    string
	Message string
}

func (e *PolicyError) Error() string {
	return e.Message
}

func (e *PolicyError) Is(target error) bool {
	if target == ErrPolicyViolation {
		return true
	}
	// well-known instances compare by rule
	t, ok := target.(*PolicyError)
	return ok && t.Rule == e.Rule
}

var (
	ErrMaxAttemptsReached   = &PolicyError{Rule: "max_attempts", Message: "maximum attempts reached"}
	ErrLessonNotSubmittable = &PolicyError{Rule: "lesson_page", Message: "lessons do not accept submissions"}
)

// ===== CONFLICT =====

// ConflictError means the submission is not in the state the operation requires
type ConflictError struct {
	Operation string
	Status    models.SubmissionStatus
	Message   string
}

func NewConflictError(operation string, status models.SubmissionStatus) *ConflictError {
	return &ConflictError{Operation: operation, Status: status, Message: conflictMessage(status)}
}

func (e *ConflictError) Error() string {
	return e.Message
}

func (e *ConflictError) Is(target error) bool {
	if target == ErrConflict {
		return true
	}
	t, ok := target.(*ConflictError)
	return ok && t.Message == e.Message
}

var (
	ErrAlreadySubmitted = &ConflictError{Message: "submission already submitted"}
	ErrNotYetSubmitted  = &ConflictError{Message: "submission not yet submitted"}
	ErrAlreadyReleased  = &ConflictError{Message: "submission already released"}
)

func conflictMessage(status models.SubmissionStatus) string {
	switch status {
	case models.SubmissionInProgress:
		return ErrNotYetSubmitted.Message
	case models.SubmissionReleased:
		return ErrAlreadyReleased.Message
	default:
		return ErrAlreadySubmitted.Message
	}
}
