package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/submission-service/internal/models"
	"github.com/SAP-F-2025/submission-service/internal/repositories"
)

// Columns written by lifecycle transitions. Identity columns never change.
var mutableSubmissionColumns = []string{
	"status", "answers", "auto_score", "max_score", "grading",
	"submitted_at", "released_at", "updated_at",
}

type SubmissionPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewSubmissionPostgreSQL(db *gorm.DB) repositories.SubmissionRepository {
	return &SubmissionPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

// Create relies on idx_submissions_in_progress, a unique index over
// (page_id, user_id) restricted to in-progress rows, so the losing insert of
// two concurrent starts fails instead of creating a second attempt.
func (s *SubmissionPostgreSQL) Create(ctx context.Context, submission *models.Submission) error {
	if err := s.db.WithContext(ctx).Create(submission).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// Submissions are not cached: every transition must observe the latest status.
func (s *SubmissionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Submission, error) {
	var submission models.Submission
	if err := s.db.WithContext(ctx).First(&submission, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &submission, nil
}

func (s *SubmissionPostgreSQL) GetInProgress(ctx context.Context, pageID uint, userID string) (*models.Submission, error) {
	var submission models.Submission
	err := s.db.WithContext(ctx).
		Where("page_id = ? AND user_id = ? AND status = ?", pageID, userID, models.SubmissionInProgress).
		First(&submission).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &submission, nil
}

func (s *SubmissionPostgreSQL) CountFinalized(ctx context.Context, pageID uint, userID string) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("page_id = ? AND user_id = ? AND status <> ?", pageID, userID, models.SubmissionInProgress).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count finalized submissions: %w", err)
	}
	return int(count), nil
}

func (s *SubmissionPostgreSQL) ListByPageAndUser(ctx context.Context, pageID uint, userID string) ([]*models.Submission, error) {
	var submissions []*models.Submission
	err := s.db.WithContext(ctx).
		Where("page_id = ? AND user_id = ?", pageID, userID).
		Order("attempt_number ASC").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}
	return submissions, nil
}

func (s *SubmissionPostgreSQL) ListByPage(ctx context.Context, pageID uint, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	var (
		submissions []*models.Submission
		total       int64
	)

	// apply filter first
	query := s.db.WithContext(ctx).Model(&models.Submission{}).Where("page_id = ?", pageID)
	query = s.helpers.ApplySubmissionFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// then apply pagination and sorting
	query = s.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Find(&submissions).Error; err != nil {
		return nil, 0, err
	}
	return submissions, total, nil
}

// UpdateIfStatus issues UPDATE ... WHERE id = ? AND status IN (?), so a
// transition racing with another one on the same row is rejected.
func (s *SubmissionPostgreSQL) UpdateIfStatus(ctx context.Context, submission *models.Submission, allowed ...models.SubmissionStatus) error {
	result := s.db.WithContext(ctx).
		Model(submission).
		Where("status IN ?", allowed).
		Select(mutableSubmissionColumns).
		Updates(submission)
	if result.Error != nil {
		return fmt.Errorf("failed to update submission: %w", translateError(result.Error))
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// distinguish a missing row from a status race
	var exists int64
	if err := s.db.WithContext(ctx).Model(&models.Submission{}).Where("id = ?", submission.ID).Count(&exists).Error; err != nil {
		return err
	}
	if exists == 0 {
		return repositories.ErrNotFound
	}
	return repositories.ErrStatusChanged
}

// BulkUpdateStatus is one UPDATE statement scoped by (page_id, status).
func (s *SubmissionPostgreSQL) BulkUpdateStatus(ctx context.Context, pageID uint, from, to models.SubmissionStatus, at time.Time) (int64, error) {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": at,
	}
	if to == models.SubmissionReleased {
		updates["released_at"] = at
	}

	result := s.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("page_id = ? AND status = ?", pageID, from).
		Updates(updates)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to bulk update submissions: %w", result.Error)
	}
	return result.RowsAffected, nil
}
