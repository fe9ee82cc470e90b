package publisher

import (
	"context"
	"log"
	"time"

	"github.com/fjod/go_inventory/internal/repository"
	"github.com/segmentio/kafka-go"
)

const (
	Topic     = "inventory-events"
	batchSize = 100
)

// MessageWriter is the part of kafka.Writer the poller needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type OutboxRepository interface {
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*repository.OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int64) error
}

// OutboxPoller relays order and restock events from the outbox table to
// Kafka. Delivery is at-least-once: an event is marked processed only after
// the broker accepted it.
type OutboxPoller struct {
	eventTick time.Duration
	repo      OutboxRepository
	writer    MessageWriter
}

func NewOutboxPoller(repo OutboxRepository, brokers ...string) *OutboxPoller {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  Topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &OutboxPoller{eventTick: time.Second, repo: repo, writer: w}
}

func (p *OutboxPoller) Run(ctx context.Context) {
	eventTicker := time.NewTicker(p.eventTick)
	defer eventTicker.Stop()
	for {
		select {
		case <-eventTicker.C:
			p.processUnpublishedEvents(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *OutboxPoller) Close() error {
	return p.writer.Close()
}

func (p *OutboxPoller) processUnpublishedEvents(ctx context.Context) {
	events, err := p.repo.GetUnprocessedEvents(ctx, batchSize)
	if err != nil {
		log.Printf("failed to fetch events %v", err)
		return
	}

	for _, event := range events {
		if err := p.publish(ctx, event); err != nil {
			log.Printf("failed to publish event id = %v with error %v", event.ID, err)
			continue
		}

		if err := p.repo.MarkEventAsProcessed(ctx, event.ID); err != nil {
			log.Printf("failed to mark event as processed id = %v with error %v", event.ID, err)
		}
	}
}

func (p *OutboxPoller) publish(ctx context.Context, event *repository.OutboxEvent) error {
	msg := kafka.Message{
		Key:   []byte(event.AggregateId), // order id or product id keeps per-entity ordering
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "event_id", Value: []byte(event.EventID)},
		},
	}
	return p.writer.WriteMessages(ctx, msg)
}
