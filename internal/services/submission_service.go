package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/submission-service/internal/events"
	"github.com/SAP-F-2025/submission-service/internal/grading"
	"github.com/SAP-F-2025/submission-service/internal/models"
	"github.com/SAP-F-2025/submission-service/internal/repositories"
	"github.com/SAP-F-2025/submission-service/internal/validator"
)

type submissionService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
	business  *validator.BusinessValidator
	now       func() time.Time
}

func NewSubmissionService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) SubmissionService {
	return newSubmissionService(repo, publisher, logger, validator)
}

func newSubmissionService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) *submissionService {
	return &submissionService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: v,
		business:  validator.NewBusinessValidator(v),
		now:       time.Now,
	}
}

// ===== LEARNER OPERATIONS =====

func (s *submissionService) Start(ctx context.Context, req *models.StartSubmissionRequest, userID string) (*models.SubmissionResponse, error) {
	s.logger.Info("Starting submission",
		"page_id", req.PageID,
		"course_id", req.CourseID,
		"user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	page, err := loadPage(ctx, s.repo, req.PageID)
	if err != nil {
		return nil, err
	}
	if page.CourseID != req.CourseID {
		return nil, NewNotFoundError("page", req.PageID)
	}

	enrolled, err := s.repo.Membership().IsEnrolled(ctx, req.CourseID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if !enrolled {
		return nil, NewPermissionError(userID, req.PageID, "page", "start", "not enrolled in course")
	}

	// An open attempt is returned as is
	existing, err := s.currentAttempt(ctx, req.PageID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.logger.Info("Resuming in-progress submission", "submission_id", existing.ID)
		return models.LearnerView(existing), nil
	}

	finalized, err := s.repo.Submission().CountFinalized(ctx, req.PageID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count attempts: %w", err)
	}
	if err := CanStart(page, finalized); err != nil {
		s.logger.Info("Attempt refused by policy",
			"page_id", req.PageID,
			"user_id", userID,
			"finalized_attempts", finalized,
			"reason", err.Error())
		return nil, err
	}

	sub := &models.Submission{
		PageID:        req.PageID,
		CourseID:      req.CourseID,
		UserID:        userID,
		AttemptNumber: finalized + 1,
		Status:        models.SubmissionInProgress,
		Answers:       []models.Answer{},
		StartedAt:     s.now(),
	}

	if err := s.repo.Submission().Create(ctx, sub); err != nil {
		if !errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("failed to create submission: %w", err)
		}

		// Lost a concurrent start; hand back the winner
		winner, getErr := s.currentAttempt(ctx, req.PageID, userID)
		if getErr != nil {
			return nil, getErr
		}
		if winner == nil {
			return nil, &ConflictError{Operation: "start", Message: "another attempt was started concurrently"}
		}
		s.logger.Info("Concurrent start resolved to existing submission", "submission_id", winner.ID)
		return models.LearnerView(winner), nil
	}

	publish(ctx, s.publisher, s.logger, events.NewSubmissionEvent(events.SubmissionStarted, sub, userID))

	s.logger.Info("Submission started successfully",
		"submission_id", sub.ID,
		"attempt_number", sub.AttemptNumber)

	return models.LearnerView(sub), nil
}

func (s *submissionService) SaveAnswers(ctx context.Context, submissionID uint, req *models.SaveAnswersRequest, userID string) error {
	s.logger.Debug("Saving answers",
		"submission_id", submissionID,
		"user_id", userID,
		"answers_count", len(req.Answers))

	if err := s.validator.Validate(req); err != nil {
		return err
	}

	sub, err := s.loadOwnedSubmission(ctx, submissionID, userID, "save")
	if err != nil {
		return err
	}
	if sub.Status != models.SubmissionInProgress {
		return NewConflictError("save", sub.Status)
	}

	sub.Answers = models.ToAnswers(req.Answers)
	sub.UpdatedAt = s.now()

	if err := s.repo.Submission().UpdateIfStatus(ctx, sub, models.SubmissionInProgress); err != nil {
		return s.statusConflict(ctx, "save", sub, err)
	}
	return nil
}

func (s *submissionService) Submit(ctx context.Context, submissionID uint, req *models.SubmitRequest, userID string) (*models.SubmissionResponse, error) {
	s.logger.Info("Submitting submission",
		"submission_id", submissionID,
		"user_id", userID)

	if req != nil {
		if err := s.validator.Validate(req); err != nil {
			return nil, err
		}
	}

	sub, err := s.loadOwnedSubmission(ctx, submissionID, userID, "submit")
	if err != nil {
		return nil, err
	}
	if sub.Status != models.SubmissionInProgress {
		return nil, NewConflictError("submit", sub.Status)
	}

	page, err := loadPage(ctx, s.repo, sub.PageID)
	if err != nil {
		return nil, err
	}

	raw := sub.Answers
	if req != nil && req.Answers != nil {
		raw = models.ToAnswers(req.Answers)
	}

	outcome := grading.AutoGrade(page.Sections, raw)
	now := s.now()

	sub.Answers = outcome.Answers
	sub.AutoScore = outcome.AutoScore
	sub.MaxScore = outcome.MaxScore
	sub.SubmittedAt = &now
	sub.UpdatedAt = now

	if page.Kind == models.PagePractice {
		sub.Status = models.SubmissionReleased
		sub.ReleasedAt = &now
		sub.Grading = &models.Grading{
			GradedBy:   models.SystemGrader,
			Overrides:  []models.GradeOverride{},
			FinalScore: sub.AutoScore,
			GradedAt:   now,
		}
	} else {
		sub.Status = models.SubmissionSubmitted
	}

	if err := s.repo.Submission().UpdateIfStatus(ctx, sub, models.SubmissionInProgress); err != nil {
		return nil, s.statusConflict(ctx, "submit", sub, err)
	}

	publish(ctx, s.publisher, s.logger, events.NewSubmissionEvent(events.SubmissionSubmitted, sub, userID))
	if sub.Status == models.SubmissionReleased {
		publish(ctx, s.publisher, s.logger, events.NewSubmissionEvent(events.SubmissionReleased, sub, models.SystemGrader))
	}
	s.signalPageCompleted(ctx, sub)

	s.logger.Info("Submission submitted successfully",
		"submission_id", sub.ID,
		"status", sub.Status,
		"auto_score", sub.AutoScore,
		"max_score", sub.MaxScore)

	return models.LearnerView(sub), nil
}

// ===== MENTOR OPERATIONS =====

func (s *submissionService) Grade(ctx context.Context, submissionID uint, req *models.GradeRequest, graderID string) (*models.SubmissionResponse, error) {
	s.logger.Info("Grading submission",
		"submission_id", submissionID,
		"grader_id", graderID,
		"overrides_count", len(req.Overrides))

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	sub, err := loadSubmission(ctx, s.repo, submissionID)
	if err != nil {
		return nil, err
	}
	if err := requireMentor(ctx, s.repo, sub.CourseID, graderID, submissionID, "submission", "grade"); err != nil {
		return nil, err
	}
	if sub.Status != models.SubmissionSubmitted && sub.Status != models.SubmissionGraded {
		return nil, NewConflictError("grade", sub.Status)
	}
	if err := s.business.ValidateGradeRequest(req, sub.Answers); err != nil {
		return nil, err
	}

	overrides := make([]models.GradeOverride, len(req.Overrides))
	copy(overrides, req.Overrides)

	now := s.now()
	sub.Grading = &models.Grading{
		GradedBy:        graderID,
		Overrides:       overrides,
		OverallFeedback: req.OverallFeedback,
		FinalScore:      finalScore(sub.Answers, overrides),
		GradedAt:        now,
	}
	sub.Status = models.SubmissionGraded
	sub.UpdatedAt = now

	if err := s.repo.Submission().UpdateIfStatus(ctx, sub, models.SubmissionSubmitted, models.SubmissionGraded); err != nil {
		return nil, s.statusConflict(ctx, "grade", sub, err)
	}

	publish(ctx, s.publisher, s.logger, events.NewSubmissionEvent(events.SubmissionGraded, sub, graderID))

	s.logger.Info("Submission graded successfully",
		"submission_id", sub.ID,
		"final_score", sub.Grading.FinalScore)

	return models.FullView(sub), nil
}

func (s *submissionService) Release(ctx context.Context, submissionID uint, releaserID string) (*models.SubmissionResponse, error) {
	s.logger.Info("Releasing submission",
		"submission_id", submissionID,
		"releaser_id", releaserID)

	sub, err := loadSubmission(ctx, s.repo, submissionID)
	if err != nil {
		return nil, err
	}
	if err := requireMentor(ctx, s.repo, sub.CourseID, releaserID, submissionID, "submission", "release"); err != nil {
		return nil, err
	}
	if sub.Status != models.SubmissionSubmitted && sub.Status != models.SubmissionGraded {
		return nil, NewConflictError("release", sub.Status)
	}

	now := s.now()
	if sub.Grading == nil {
		sub.Grading = &models.Grading{
			GradedBy:   releaserID,
			Overrides:  []models.GradeOverride{},
			FinalScore: sub.AutoScore,
			GradedAt:   now,
		}
	}
	sub.Status = models.SubmissionReleased
	sub.ReleasedAt = &now
	sub.UpdatedAt = now

	if err := s.repo.Submission().UpdateIfStatus(ctx, sub, models.SubmissionSubmitted, models.SubmissionGraded); err != nil {
		return nil, s.statusConflict(ctx, "release", sub, err)
	}

	publish(ctx, s.publisher, s.logger, events.NewSubmissionEvent(events.SubmissionReleased, sub, releaserID))

	s.logger.Info("Submission released successfully",
		"submission_id", sub.ID,
		"final_score", sub.Grading.FinalScore)

	return models.FullView(sub), nil
}

// ===== READ OPERATIONS =====

func (s *submissionService) Get(ctx context.Context, submissionID uint, userID string) (*models.SubmissionResponse, error) {
	sub, err := loadSubmission(ctx, s.repo, submissionID)
	if err != nil {
		return nil, err
	}
	if sub.UserID == userID {
		return models.LearnerView(sub), nil
	}
	if err := requireMentor(ctx, s.repo, sub.CourseID, userID, submissionID, "submission", "view"); err != nil {
		return nil, err
	}
	return models.FullView(sub), nil
}

func (s *submissionService) ListMine(ctx context.Context, pageID uint, userID string) ([]*models.SubmissionResponse, error) {
	if _, err := loadPage(ctx, s.repo, pageID); err != nil {
		return nil, err
	}

	subs, err := s.repo.Submission().ListByPageAndUser(ctx, pageID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	responses := make([]*models.SubmissionResponse, 0, len(subs))
	for _, sub := range subs {
		responses = append(responses, models.LearnerView(sub))
	}
	return responses, nil
}

func (s *submissionService) ListForPage(ctx context.Context, pageID uint, filters repositories.SubmissionFilters, mentorID string) (*models.SubmissionListResponse, error) {
	page, err := loadPage(ctx, s.repo, pageID)
	if err != nil {
		return nil, err
	}
	if err := requireMentor(ctx, s.repo, page.CourseID, mentorID, pageID, "page", "list submissions"); err != nil {
		return nil, err
	}

	subs, total, err := s.repo.Submission().ListByPage(ctx, pageID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	responses := make([]*models.SubmissionResponse, 0, len(subs))
	for _, sub := range subs {
		responses = append(responses, models.FullView(sub))
	}

	pageNum, size := pageInfo(filters)
	return &models.SubmissionListResponse{
		Submissions: responses,
		Total:       total,
		Page:        pageNum,
		Size:        size,
	}, nil
}

// currentAttempt returns the open attempt, or nil when there is none
func (s *submissionService) currentAttempt(ctx context.Context, pageID uint, userID string) (*models.Submission, error) {
	sub, err := s.repo.Submission().GetInProgress(ctx, pageID, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get in-progress submission: %w", err)
	}
	return sub, nil
}
