package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	EventOrderPlaced      = "OrderPlaced"
	EventProductRestocked = "ProductRestocked"
)

type OutboxEvent struct {
	ID          int64
	EventID     string
	AggregateId string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
}

func (r *Repository) AddOutboxEvent(ctx context.Context, aggregateID, eventType string, payload []byte) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO outbox (event_id, aggregate_id, event_type, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		uuid.NewString(), aggregateID, eventType, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

func (r *Repository) GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, event_id, aggregate_id, event_type, payload, created_at
		 FROM outbox
		 WHERE processed_at IS NULL
		 ORDER BY id
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		e := &OutboxEvent{}
		var payload string
		if err := rows.Scan(&e.ID, &e.EventID, &e.AggregateId, &e.EventType, &payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		e.Payload = []byte(payload)
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return events, nil
}

func (r *Repository) MarkEventAsProcessed(ctx context.Context, id int64) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE outbox SET processed_at = $1 WHERE id = $2`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("mark outbox event processed: %w", err)
	}
	return nil
}
