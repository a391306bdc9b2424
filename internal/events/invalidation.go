package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/SAP-F-2025/submission-service/internal/cache"
)

// inboundEvent defers decoding of Data until the type is known
type inboundEvent struct {
	ID   string          `json:"id"`
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data"`
}

// CacheInvalidator drops cached pages and memberships when the course
// service reports a change to them.
type CacheInvalidator struct {
	cacheManager *cache.CacheManager
	logger       *slog.Logger
}

func NewCacheInvalidator(cacheManager *cache.CacheManager, logger *slog.Logger) *CacheInvalidator {
	return &CacheInvalidator{cacheManager: cacheManager, logger: logger}
}

// Handle is a watermill handler. Malformed and unknown messages are acked and
// skipped so they do not block the topic.
func (ci *CacheInvalidator) Handle(msg *message.Message) error {
	var event inboundEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		ci.logger.Warn("Skipping malformed course event", "message_id", msg.UUID, "error", err)
		return nil
	}

	ctx := msg.Context()
	switch event.Type {
	case CourseMembershipChanged:
		var data MembershipChangedData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			ci.logger.Warn("Skipping malformed membership event", "event_id", event.ID, "error", err)
			return nil
		}
		cache.InvalidateMembershipCache(ctx, ci.cacheManager, data.CourseID)
		ci.logger.Info("Membership cache invalidated", "course_id", data.CourseID)
	case PageUpdated:
		var data PageUpdatedData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			ci.logger.Warn("Skipping malformed page event", "event_id", event.ID, "error", err)
			return nil
		}
		cache.InvalidatePageCache(ctx, ci.cacheManager, data.PageID)
		ci.logger.Info("Page cache invalidated", "page_id", data.PageID)
	default:
		ci.logger.Debug("Ignoring course event", "event_type", event.Type)
	}
	return nil
}

// NewKafkaSubscriber consumes course events as part of a consumer group
func NewKafkaSubscriber(brokers []string, consumerGroup string, logger *slog.Logger) (message.Subscriber, error) {
	subscriber, err := kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:       brokers,
		Unmarshaler:   kafka.DefaultMarshaler{},
		ConsumerGroup: consumerGroup,
	}, watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka subscriber: %w", err)
	}
	return subscriber, nil
}

// NewInvalidationRouter wires the invalidator to the course events topic
func NewInvalidationRouter(subscriber message.Subscriber, topics Topics, invalidator *CacheInvalidator, logger *slog.Logger) (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: 10 * time.Second,
	}, watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create event router: %w", err)
	}

	router.AddNoPublisherHandler(
		"cache_invalidation",
		topics.CourseChanges,
		subscriber,
		invalidator.Handle,
	)
	return router, nil
}

// RunRouter runs the router until ctx is cancelled, logging a failure
func RunRouter(ctx context.Context, router *message.Router, logger *slog.Logger) {
	if err := router.Run(ctx); err != nil {
		logger.Error("Event router stopped", "error", err)
	}
}
