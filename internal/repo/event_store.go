package repo

import (
	"context"
	"encoding/json"
	"fmt"

	dom "Tasker/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EventStore is the append-only audit log, keyed by aggregate id. Distinct
// from the snapshot repositories: commands never read it.
type EventStore interface {
	AppendEvents(ctx context.Context, aggregateID uuid.UUID, events []dom.Event) error
	EventsForAggregate(ctx context.Context, aggregateID uuid.UUID) ([]dom.Event, error)
}

// PGEventStore implements EventStore with Postgres. A bigserial seq column
// keeps insertion order among events sharing an occurred_at stamp.
type PGEventStore struct {
	db *pgxpool.Pool
}

// NewPGEventStore returns a new PGEventStore.
func NewPGEventStore(db *pgxpool.Pool) *PGEventStore {
	return &PGEventStore{db: db}
}

// AppendEvents persists events in input order. An empty slice is a no-op.
func (s *PGEventStore) AppendEvents(ctx context.Context, aggregateID uuid.UUID, events []dom.Event) error {
	if len(events) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, e := range events {
		payload, err := json.Marshal(e.Payload)
		if err != nil {
			return fmt.Errorf("marshal %s payload: %w", e.EventType, err)
		}
		batch.Queue(`
			INSERT INTO events (id, aggregate_id, aggregate_type, event_type, payload, occurred_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			e.ID, aggregateID, e.AggregateType, e.EventType, payload, e.OccurredAt)
	}

	results := s.db.SendBatch(ctx, batch)
	defer results.Close()
	for range events {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("append event: %w", err)
		}
	}
	return nil
}

// EventsForAggregate returns the aggregate's audit trail ordered by
// occurrence time, then insertion order. Unknown event types in storage are
// an error, not skipped rows.
func (s *PGEventStore) EventsForAggregate(ctx context.Context, aggregateID uuid.UUID) ([]dom.Event, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, aggregate_id, aggregate_type, event_type, payload, occurred_at
		FROM events
		WHERE aggregate_id = $1
		ORDER BY occurred_at ASC, seq ASC`, aggregateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []dom.Event
	for rows.Next() {
		var (
			e   dom.Event
			raw []byte
		)
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.AggregateType, &e.EventType, &raw, &e.OccurredAt); err != nil {
			return nil, err
		}
		payload, err := dom.DecodeEventPayload(e.EventType, raw)
		if err != nil {
			return nil, err
		}
		e.Payload = payload
		events = append(events, e)
	}
	return events, rows.Err()
}
