// Package notify publishes booking lifecycle events through watermill.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"

	"github.com/srgjo27/showtime_booking/internal/core/domain"
)

const DefaultTopicPrefix = "showtime"

type Publisher struct {
	pub         message.Publisher
	topicPrefix string
}

func NewPublisher(pub message.Publisher, topicPrefix string) *Publisher {
	if topicPrefix == "" {
		topicPrefix = DefaultTopicPrefix
	}
	return &Publisher{pub: pub, topicPrefix: topicPrefix}
}

// NewRedisStreamPublisher returns a watermill publisher writing to Redis
// Streams, one stream per topic.
func NewRedisStreamPublisher(rdb redis.UniversalClient, logger watermill.LoggerAdapter) (message.Publisher, error) {
	pub, err := redisstream.NewPublisher(redisstream.PublisherConfig{
		Client: rdb,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create redis stream publisher: %w", err)
	}
	return pub, nil
}

// Topic is the stream an event type is published on, e.g.
// "showtime.booking.confirmed".
func (p *Publisher) Topic(t domain.BookingEventType) string {
	return p.topicPrefix + "." + string(t)
}

func (p *Publisher) Publish(ctx context.Context, event domain.BookingEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event_type", string(event.Type))
	msg.Metadata.Set("booking_id", event.BookingID.String())
	msg.SetContext(ctx)

	if err := p.pub.Publish(p.Topic(event.Type), msg); err != nil {
		return fmt.Errorf("publish %s event: %w", event.Type, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.pub.Close()
}
