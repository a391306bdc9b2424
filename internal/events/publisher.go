package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const partitionKeyMetadata = "partition_key"

// EventPublisher announces lifecycle changes. Delivery is best effort: callers
// log a failure and carry on.
type EventPublisher interface {
	PublishSubmissionEvent(ctx context.Context, event *Event) error
	PublishProgressEvent(ctx context.Context, event *Event) error
	Close() error
}

// WatermillPublisher publishes events as JSON messages on a watermill publisher
type WatermillPublisher struct {
	publisher message.Publisher
	topics    Topics
	logger    *slog.Logger
}

func NewWatermillPublisher(publisher message.Publisher, topics Topics, logger *slog.Logger) *WatermillPublisher {
	return &WatermillPublisher{
		publisher: publisher,
		topics:    topics,
		logger:    logger,
	}
}

// NewKafkaPublisher publishes to Kafka, partitioned by the event partition key
func NewKafkaPublisher(brokers []string, topics Topics, logger *slog.Logger) (*WatermillPublisher, error) {
	marshaler := kafka.NewWithPartitioningMarshaler(func(topic string, msg *message.Message) (string, error) {
		return msg.Metadata.Get(partitionKeyMetadata), nil
	})

	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   brokers,
		Marshaler: marshaler,
	}, watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}
	return NewWatermillPublisher(publisher, topics, logger), nil
}

// NewGoChannelPublisher runs events through an in-process pub/sub. The
// returned GoChannel doubles as the subscriber for local consumers.
func NewGoChannelPublisher(topics Topics, logger *slog.Logger) (*WatermillPublisher, *gochannel.GoChannel) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
	}, watermill.NewSlogLogger(logger))
	return NewWatermillPublisher(pubSub, topics, logger), pubSub
}

func (p *WatermillPublisher) PublishSubmissionEvent(ctx context.Context, event *Event) error {
	return p.publish(ctx, p.topics.Submissions, event)
}

func (p *WatermillPublisher) PublishProgressEvent(ctx context.Context, event *Event) error {
	return p.publish(ctx, p.topics.Progress, event)
}

func (p *WatermillPublisher) publish(ctx context.Context, topic string, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_type", string(event.Type))
	msg.Metadata.Set(partitionKeyMetadata, event.PartitionKey)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s to %s: %w", event.Type, topic, err)
	}

	p.logger.Debug("Event published", "event_id", event.ID, "event_type", event.Type, "topic", topic)
	return nil
}

func (p *WatermillPublisher) Close() error {
	return p.publisher.Close()
}
