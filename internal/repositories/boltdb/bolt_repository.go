// Package boltdb stores submissions in a single bbolt file for single-node
// deployments. bbolt serializes writers, so each conditional write runs in
// one Update transaction and is atomic.
package boltdb

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"time"

	"go.etcd.io/bbolt"

	"github.com/SAP-F-2025/submission-service/internal/models"
	"github.com/SAP-F-2025/submission-service/internal/repositories"
)

var (
	pagesBucket       = []byte("pages")
	membersBucket     = []byte("members")
	usersBucket       = []byte("users")
	submissionsBucket = []byte("submissions")

	// (page, user) -> submission id of the in-progress attempt
	inProgressBucket = []byte("submissions_in_progress")
	// (page, user, attempt) -> submission id
	attemptsBucket = []byte("submissions_attempts")
)

type Repository struct {
	db *bbolt.DB
}

// Open opens or creates the database file and its buckets
func Open(path string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{pagesBucket, membersBucket, usersBucket, submissionsBucket, inProgressBucket, attemptsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Page() repositories.PageRepository             { return pageStore{r.db} }
func (r *Repository) Submission() repositories.SubmissionRepository { return submissionStore{r.db} }
func (r *Repository) Membership() repositories.MembershipRepository { return membershipStore{r.db} }
func (r *Repository) User() repositories.UserRepository             { return userStore{r.db} }

func (r *Repository) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(submissionsBucket) == nil {
			return fmt.Errorf("submissions bucket missing")
		}
		return nil
	})
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// ===== SEEDING =====

// LoadFixtures upserts pages, members and users
func (r *Repository) LoadFixtures(src io.Reader) error {
	f, err := repositories.DecodeFixtures(src)
	if err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		for i := range f.Pages {
			if err := putJSON(tx.Bucket(pagesBucket), uintKey(f.Pages[i].ID), &f.Pages[i]); err != nil {
				return err
			}
		}
		for _, m := range f.Members {
			if err := tx.Bucket(membersBucket).Put(memberKey(m.CourseID, m.UserID, m.Role), []byte{1}); err != nil {
				return err
			}
		}
		for i := range f.Users {
			if err := putJSON(tx.Bucket(usersBucket), []byte(f.Users[i].ID), &f.Users[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repository) LoadFixturesFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open fixtures: %w", err)
	}
	defer file.Close()
	return r.LoadFixtures(file)
}

// ===== PAGES =====

type pageStore struct{ db *bbolt.DB }

func (s pageStore) GetByID(ctx context.Context, id uint) (*models.AssessmentPage, error) {
	var page models.AssessmentPage
	err := s.db.View(func(tx *bbolt.Tx) error {
		return getJSON(tx.Bucket(pagesBucket), uintKey(id), &page)
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// ===== SUBMISSIONS =====

type submissionStore struct{ db *bbolt.DB }

func (s submissionStore) Create(ctx context.Context, submission *models.Submission) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		attempts := tx.Bucket(attemptsBucket)
		inProgress := tx.Bucket(inProgressBucket)

		aKey := attemptKey(submission.PageID, submission.UserID, submission.AttemptNumber)
		if attempts.Get(aKey) != nil {
			return repositories.ErrDuplicate
		}
		pKey := learnerKey(submission.PageID, submission.UserID)
		if submission.Status == models.SubmissionInProgress && inProgress.Get(pKey) != nil {
			return repositories.ErrDuplicate
		}

		subs := tx.Bucket(submissionsBucket)
		seq, err := subs.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to allocate submission id: %w", err)
		}

		now := time.Now()
		stored := submission.Clone()
		stored.ID = uint(seq)
		stored.CreatedAt = now
		stored.UpdatedAt = now

		key := uintKey(stored.ID)
		if err := putJSON(subs, key, stored); err != nil {
			return err
		}
		if err := attempts.Put(aKey, key); err != nil {
			return err
		}
		if stored.Status == models.SubmissionInProgress {
			if err := inProgress.Put(pKey, key); err != nil {
				return err
			}
		}

		submission.ID = stored.ID
		submission.CreatedAt = now
		submission.UpdatedAt = now
		return nil
	})
}

func (s submissionStore) GetByID(ctx context.Context, id uint) (*models.Submission, error) {
	var sub models.Submission
	err := s.db.View(func(tx *bbolt.Tx) error {
		return getJSON(tx.Bucket(submissionsBucket), uintKey(id), &sub)
	})
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s submissionStore) GetInProgress(ctx context.Context, pageID uint, userID string) (*models.Submission, error) {
	var sub models.Submission
	err := s.db.View(func(tx *bbolt.Tx) error {
		id := tx.Bucket(inProgressBucket).Get(learnerKey(pageID, userID))
		if id == nil {
			return repositories.ErrNotFound
		}
		return getJSON(tx.Bucket(submissionsBucket), id, &sub)
	})
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s submissionStore) CountFinalized(ctx context.Context, pageID uint, userID string) (int, error) {
	subs, err := s.ListByPageAndUser(ctx, pageID, userID)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, sub := range subs {
		if sub.Status.IsFinalized() {
			count++
		}
	}
	return count, nil
}

func (s submissionStore) ListByPageAndUser(ctx context.Context, pageID uint, userID string) ([]*models.Submission, error) {
	var out []*models.Submission
	err := s.db.View(func(tx *bbolt.Tx) error {
		subs := tx.Bucket(submissionsBucket)
		prefix := learnerKey(pageID, userID)
		c := tx.Bucket(attemptsBucket).Cursor()
		for k, id := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, id = c.Next() {
			var sub models.Submission
			if err := getJSON(subs, id, &sub); err != nil {
				return err
			}
			out = append(out, &sub)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AttemptNumber < out[j].AttemptNumber })
	return out, nil
}

func (s submissionStore) ListByPage(ctx context.Context, pageID uint, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	var onPage []*models.Submission
	err := s.db.View(func(tx *bbolt.Tx) error {
		return scanPage(tx, pageID, func(sub *models.Submission) error {
			onPage = append(onPage, sub)
			return nil
		})
	})
	if err != nil {
		return nil, 0, err
	}
	matched, total := repositories.FilterSubmissions(onPage, filters)
	return matched, total, nil
}

func (s submissionStore) UpdateIfStatus(ctx context.Context, submission *models.Submission, allowed ...models.SubmissionStatus) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		subs := tx.Bucket(submissionsBucket)
		key := uintKey(submission.ID)

		var stored models.Submission
		if err := getJSON(subs, key, &stored); err != nil {
			return err
		}
		if !slices.Contains(allowed, stored.Status) {
			return repositories.ErrStatusChanged
		}

		updated := repositories.ApplyUpdate(&stored, submission, time.Now())
		if err := putJSON(subs, key, updated); err != nil {
			return err
		}
		if stored.Status == models.SubmissionInProgress && updated.Status != models.SubmissionInProgress {
			if err := tx.Bucket(inProgressBucket).Delete(learnerKey(stored.PageID, stored.UserID)); err != nil {
				return err
			}
		}

		submission.UpdatedAt = updated.UpdatedAt
		return nil
	})
}

func (s submissionStore) BulkUpdateStatus(ctx context.Context, pageID uint, from, to models.SubmissionStatus, at time.Time) (int64, error) {
	var affected int64
	err := s.db.Update(func(tx *bbolt.Tx) error {
		var changed []*models.Submission
		err := scanPage(tx, pageID, func(sub *models.Submission) error {
			if sub.Status == from {
				changed = append(changed, repositories.ApplyBulkStatus(sub, to, at))
			}
			return nil
		})
		if err != nil {
			return err
		}

		subs := tx.Bucket(submissionsBucket)
		for _, sub := range changed {
			if err := putJSON(subs, uintKey(sub.ID), sub); err != nil {
				return err
			}
		}
		affected = int64(len(changed))
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// scanPage visits every submission of a page through the attempts index
func scanPage(tx *bbolt.Tx, pageID uint, visit func(*models.Submission) error) error {
	subs := tx.Bucket(submissionsBucket)
	prefix := pagePrefix(pageID)
	c := tx.Bucket(attemptsBucket).Cursor()
	for k, id := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, id = c.Next() {
		var sub models.Submission
		if err := getJSON(subs, id, &sub); err != nil {
			return err
		}
		if err := visit(&sub); err != nil {
			return err
		}
	}
	return nil
}

// ===== MEMBERSHIP =====

type membershipStore struct{ db *bbolt.DB }

func (s membershipStore) IsEnrolled(ctx context.Context, courseID uint, userID string) (bool, error) {
	return s.has(memberKey(courseID, userID, models.MemberLearner))
}

func (s membershipStore) IsMentor(ctx context.Context, courseID uint, userID string) (bool, error) {
	return s.has(memberKey(courseID, userID, models.MemberMentor))
}

func (s membershipStore) has(key []byte) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		found = tx.Bucket(membersBucket).Get(key) != nil
		return nil
	})
	return found, err
}

// ===== USERS =====

type userStore struct{ db *bbolt.DB }

func (s userStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.View(func(tx *bbolt.Tx) error {
		return getJSON(tx.Bucket(usersBucket), []byte(id), &user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ===== KEYS =====

func uintKey(id uint) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(id))
	return b
}

// pagePrefix is the 8-byte page id followed by a separator, so page 1 never
// matches page 10.
func pagePrefix(pageID uint) []byte {
	return append(uintKey(pageID), 0)
}

func learnerKey(pageID uint, userID string) []byte {
	return append(append(pagePrefix(pageID), userID...), 0)
}

func attemptKey(pageID uint, userID string, attempt int) []byte {
	n := make([]byte, 8)
	binary.BigEndian.PutUint64(n, uint64(attempt))
	return append(learnerKey(pageID, userID), n...)
}

func memberKey(courseID uint, userID string, role models.MemberRole) []byte {
	return []byte(strconv.FormatUint(uint64(courseID), 10) + ":" + string(role) + ":" + userID)
}

func putJSON(b *bbolt.Bucket, key []byte, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	return b.Put(key, data)
}

func getJSON(b *bbolt.Bucket, key []byte, v interface{}) error {
	data := b.Get(key)
	if data == nil {
		return repositories.ErrNotFound
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode record: %w", err)
	}
	return nil
}
