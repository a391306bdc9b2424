package repositories

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/SAP-F-2025/submission-service/internal/models"
)

// Fixtures seeds the non-postgres stores for local runs.
type Fixtures struct {
	Pages   []models.AssessmentPage `json:"pages"`
	Members []models.CourseMember   `json:"members"`
	Users   []models.User           `json:"users"`
}

func DecodeFixtures(src io.Reader) (*Fixtures, error) {
	var f Fixtures
	if err := json.NewDecoder(src).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode fixtures: %w", err)
	}
	return &f, nil
}

// FilterSubmissions applies SubmissionFilters to an in-process slice the way
// the postgres repository applies them in SQL. It returns the page and the
// total before pagination.
func FilterSubmissions(subs []*models.Submission, filters SubmissionFilters) ([]*models.Submission, int64) {
	matched := make([]*models.Submission, 0, len(subs))
	for _, sub := range subs {
		if filters.Status != nil && sub.Status != *filters.Status {
			continue
		}
		if filters.UserID != nil && sub.UserID != *filters.UserID {
			continue
		}
		matched = append(matched, sub)
	}

	SortSubmissions(matched, filters.SortBy, filters.SortOrder)

	total := int64(len(matched))
	if filters.Offset > 0 {
		if filters.Offset >= len(matched) {
			return []*models.Submission{}, total
		}
		matched = matched[filters.Offset:]
	}
	if filters.Limit > 0 && filters.Limit < len(matched) {
		matched = matched[:filters.Limit]
	}
	return matched, total
}

// SortSubmissions orders by the whitelisted columns, newest first unless asc.
// Ties keep id order.
func SortSubmissions(subs []*models.Submission, sortBy, sortOrder string) {
	asc := sortOrder == "asc" || sortOrder == "ASC"
	less := func(a, b *models.Submission) bool {
		switch sortBy {
		case "attempt_number":
			return a.AttemptNumber < b.AttemptNumber
		case "auto_score":
			return a.AutoScore < b.AutoScore
		case "submitted_at":
			return timeOrZero(a.SubmittedAt).Before(timeOrZero(b.SubmittedAt))
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].ID < subs[j].ID })
	sort.SliceStable(subs, func(i, j int) bool {
		if asc {
			return less(subs[i], subs[j])
		}
		return less(subs[j], subs[i])
	})
}

// ApplyUpdate copies the mutable fields of update onto a clone of stored.
func ApplyUpdate(stored, update *models.Submission, now time.Time) *models.Submission {
	incoming := update.Clone()
	updated := stored.Clone()
	updated.Status = incoming.Status
	updated.Answers = incoming.Answers
	updated.AutoScore = incoming.AutoScore
	updated.MaxScore = incoming.MaxScore
	updated.Grading = incoming.Grading
	updated.SubmittedAt = incoming.SubmittedAt
	updated.ReleasedAt = incoming.ReleasedAt
	updated.UpdatedAt = now
	return updated
}

// ApplyBulkStatus moves a clone of sub to status at the given time.
func ApplyBulkStatus(sub *models.Submission, to models.SubmissionStatus, at time.Time) *models.Submission {
	updated := sub.Clone()
	updated.Status = to
	updated.UpdatedAt = at
	if to == models.SubmissionReleased {
		releasedAt := at
		updated.ReleasedAt = &releasedAt
	}
	return updated
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
