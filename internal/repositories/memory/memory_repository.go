// Package memory is an in-process implementation of the repositories. Every
// write happens under one lock, so the conditional writes are atomic the same
// way the postgres unique index and conditional UPDATE are.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/SAP-F-2025/submission-service/internal/models"
	"github.com/SAP-F-2025/submission-service/internal/repositories"
)

type memberKey struct {
	courseID uint
	userID   string
	role     models.MemberRole
}

type Repository struct {
	mu          sync.RWMutex
	pages       map[uint]*models.AssessmentPage
	submissions map[uint]*models.Submission
	members     map[memberKey]struct{}
	users       map[string]*models.User
	nextID      uint
}

func NewRepository() *Repository {
	return &Repository{
		pages:       make(map[uint]*models.AssessmentPage),
		submissions: make(map[uint]*models.Submission),
		members:     make(map[memberKey]struct{}),
		users:       make(map[string]*models.User),
	}
}

func (r *Repository) Page() repositories.PageRepository             { return pageStore{r} }
func (r *Repository) Submission() repositories.SubmissionRepository { return submissionStore{r} }
func (r *Repository) Membership() repositories.MembershipRepository { return membershipStore{r} }
func (r *Repository) User() repositories.UserRepository             { return userStore{r} }

func (r *Repository) Ping(ctx context.Context) error { return ctx.Err() }
func (r *Repository) Close() error                   { return nil }

// ===== SEEDING =====

// PutPage stores or replaces a page.
func (r *Repository) PutPage(page *models.AssessmentPage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := *page
	r.pages[p.ID] = &p
}

func (r *Repository) AddMember(courseID uint, userID string, role models.MemberRole) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[memberKey{courseID, userID, role}] = struct{}{}
}

func (r *Repository) PutUser(user *models.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := *user
	r.users[u.ID] = &u
}

// ===== PAGES =====

type pageStore struct{ r *Repository }

func (s pageStore) GetByID(ctx context.Context, id uint) (*models.AssessmentPage, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	page, ok := s.r.pages[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	p := *page
	return &p, nil
}

// ===== SUBMISSIONS =====

type submissionStore struct{ r *Repository }

func (s submissionStore) Create(ctx context.Context, submission *models.Submission) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()

	for _, existing := range s.r.submissions {
		if existing.PageID != submission.PageID || existing.UserID != submission.UserID {
			continue
		}
		if existing.AttemptNumber == submission.AttemptNumber {
			return repositories.ErrDuplicate
		}
		if existing.Status == models.SubmissionInProgress && submission.Status == models.SubmissionInProgress {
			return repositories.ErrDuplicate
		}
	}

	s.r.nextID++
	now := time.Now()
	submission.ID = s.r.nextID
	submission.CreatedAt = now
	submission.UpdatedAt = now
	s.r.submissions[submission.ID] = submission.Clone()
	return nil
}

func (s submissionStore) GetByID(ctx context.Context, id uint) (*models.Submission, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	sub, ok := s.r.submissions[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return sub.Clone(), nil
}

func (s submissionStore) GetInProgress(ctx context.Context, pageID uint, userID string) (*models.Submission, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	for _, sub := range s.r.submissions {
		if sub.PageID == pageID && sub.UserID == userID && sub.Status == models.SubmissionInProgress {
			return sub.Clone(), nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s submissionStore) CountFinalized(ctx context.Context, pageID uint, userID string) (int, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	count := 0
	for _, sub := range s.r.submissions {
		if sub.PageID == pageID && sub.UserID == userID && sub.Status.IsFinalized() {
			count++
		}
	}
	return count, nil
}

func (s submissionStore) ListByPageAndUser(ctx context.Context, pageID uint, userID string) ([]*models.Submission, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	var out []*models.Submission
	for _, sub := range s.r.submissions {
		if sub.PageID == pageID && sub.UserID == userID {
			out = append(out, sub.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AttemptNumber < out[j].AttemptNumber })
	return out, nil
}

func (s submissionStore) ListByPage(ctx context.Context, pageID uint, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()

	var onPage []*models.Submission
	for _, sub := range s.r.submissions {
		if sub.PageID == pageID {
			onPage = append(onPage, sub.Clone())
		}
	}
	matched, total := repositories.FilterSubmissions(onPage, filters)
	return matched, total, nil
}

func (s submissionStore) UpdateIfStatus(ctx context.Context, submission *models.Submission, allowed ...models.SubmissionStatus) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()

	stored, ok := s.r.submissions[submission.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	if !slices.Contains(allowed, stored.Status) {
		return repositories.ErrStatusChanged
	}

	updated := repositories.ApplyUpdate(stored, submission, time.Now())
	s.r.submissions[submission.ID] = updated
	submission.UpdatedAt = updated.UpdatedAt
	return nil
}

func (s submissionStore) BulkUpdateStatus(ctx context.Context, pageID uint, from, to models.SubmissionStatus, at time.Time) (int64, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()

	var affected int64
	for id, sub := range s.r.submissions {
		if sub.PageID != pageID || sub.Status != from {
			continue
		}
		s.r.submissions[id] = repositories.ApplyBulkStatus(sub, to, at)
		affected++
	}
	return affected, nil
}

// ===== MEMBERSHIP =====

type membershipStore struct{ r *Repository }

func (s membershipStore) IsEnrolled(ctx context.Context, courseID uint, userID string) (bool, error) {
	return s.has(memberKey{courseID, userID, models.MemberLearner}), nil
}

func (s membershipStore) IsMentor(ctx context.Context, courseID uint, userID string) (bool, error) {
	return s.has(memberKey{courseID, userID, models.MemberMentor}), nil
}

func (s membershipStore) has(key memberKey) bool {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	_, ok := s.r.members[key]
	return ok
}

// ===== USERS =====

type userStore struct{ r *Repository }

func (s userStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	user, ok := s.r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	u := *user
	return &u, nil
}
