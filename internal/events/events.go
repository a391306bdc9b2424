package events

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/SAP-F-2025/submission-service/internal/models"
)

const (
	EventSource  = "submission-service"
	EventVersion = "1.0"
)

type EventType string

const (
	SubmissionStarted      EventType = "submission.started"
	SubmissionSubmitted    EventType = "submission.submitted"
	SubmissionGraded       EventType = "submission.graded"
	SubmissionReleased     EventType = "submission.released"
	SubmissionBulkReleased EventType = "submission.bulk_released"
	PageCompleted          EventType = "progress.page_completed"

	// consumed from the course service
	CourseMembershipChanged EventType = "course.membership_changed"
	PageUpdated             EventType = "course.page_updated"
)

// Event is the envelope for every message this service publishes or consumes
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`

	// PartitionKey keeps events of one learner's attempts ordered on Kafka
	PartitionKey string `json:"-"`
}

func NewEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		ID:        watermill.NewUUID(),
		Type:      eventType,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// ===== PAYLOADS =====

type SubmissionEventData struct {
	SubmissionID  uint                    `json:"submission_id"`
	PageID        uint                    `json:"page_id"`
	CourseID      uint                    `json:"course_id"`
	UserID        string                  `json:"user_id"`
	AttemptNumber int                     `json:"attempt_number"`
	Status        models.SubmissionStatus `json:"status"`
	ActorID       string                  `json:"actor_id"`
	AutoScore     float64                 `json:"auto_score"`
	MaxScore      float64                 `json:"max_score"`
	FinalScore    *float64                `json:"final_score,omitempty"`
}

type BulkReleaseEventData struct {
	PageID  uint   `json:"page_id"`
	ActorID string `json:"actor_id"`
	Count   int64  `json:"count"`
}

type PageCompletedData struct {
	SubmissionID uint   `json:"submission_id"`
	PageID       uint   `json:"page_id"`
	CourseID     uint   `json:"course_id"`
	UserID       string `json:"user_id"`
}

type MembershipChangedData struct {
	CourseID uint `json:"course_id"`
}

type PageUpdatedData struct {
	PageID uint `json:"page_id"`
}

// NewSubmissionEvent builds a lifecycle event from the current submission state
func NewSubmissionEvent(eventType EventType, sub *models.Submission, actorID string) *Event {
	data := SubmissionEventData{
		SubmissionID:  sub.ID,
		PageID:        sub.PageID,
		CourseID:      sub.CourseID,
		UserID:        sub.UserID,
		AttemptNumber: sub.AttemptNumber,
		Status:        sub.Status,
		ActorID:       actorID,
		AutoScore:     sub.AutoScore,
		MaxScore:      sub.MaxScore,
	}
	if sub.Grading != nil {
		final := sub.Grading.FinalScore
		data.FinalScore = &final
	}

	event := NewEvent(eventType, data)
	event.PartitionKey = learnerKey(sub.PageID, sub.UserID)
	return event
}

func NewPageCompletedEvent(sub *models.Submission) *Event {
	event := NewEvent(PageCompleted, PageCompletedData{
		SubmissionID: sub.ID,
		PageID:       sub.PageID,
		CourseID:     sub.CourseID,
		UserID:       sub.UserID,
	})
	event.PartitionKey = learnerKey(sub.PageID, sub.UserID)
	return event
}

func NewBulkReleaseEvent(pageID uint, actorID string, count int64) *Event {
	event := NewEvent(SubmissionBulkReleased, BulkReleaseEventData{
		PageID:  pageID,
		ActorID: actorID,
		Count:   count,
	})
	event.PartitionKey = fmt.Sprintf("page:%d", pageID)
	return event
}

func learnerKey(pageID uint, userID string) string {
	return fmt.Sprintf("page:%d:user:%s", pageID, userID)
}

// ===== TOPICS =====

type Topics struct {
	Submissions   string
	Progress      string
	CourseChanges string
}

// NewTopics builds topic names under an optional prefix, e.g. "prod." gives "prod.submission-events"
func NewTopics(prefix string) Topics {
	return Topics{
		Submissions:   prefix + "submission-events",
		Progress:      prefix + "progress-events",
		CourseChanges: prefix + "course-events",
	}
}
