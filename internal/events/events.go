// Package events announces committed changes to CRM records.
package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/maxviazov/member-crm/internal/config"
)

// Actions carried in Event.Type after the resource name.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Event describes one committed write. Type is "<resource>.<action>".
type Event struct {
	ID         uuid.UUID       `json:"id"`
	Type       string          `json:"type"`
	EntityID   int64           `json:"entity_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// NewEvent stamps a fresh id and time. payload is marshalled; nil leaves it empty.
func NewEvent(resource, action string, entityID int64, payload any) (Event, error) {
	e := Event{
		ID:         uuid.New(),
		Type:       resource + "." + action,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return Event{}, err
		}
		e.Payload = raw
	}
	return e, nil
}

// PartitionKey keeps every event of one record on one partition.
func (e Event) PartitionKey() string { return strconv.FormatInt(e.EntityID, 10) }

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// LogPublisher writes each event as a debug line.
type LogPublisher struct {
	log zerolog.Logger
}

func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: logger.With().Str("component", "events").Logger()}
}

func (p *LogPublisher) Publish(_ context.Context, e Event) error {
	p.log.Debug().
		Str("event_id", e.ID.String()).
		Str("type", e.Type).
		Int64("entity_id", e.EntityID).
		Msg("event published")
	return nil
}

// New builds the configured publisher and a func releasing it.
func New(cfg *config.Config, logger zerolog.Logger) (Publisher, func()) {
	switch cfg.Events.Driver {
	case "kafka":
		w := &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Kafka.Brokers...),
			Topic:                  cfg.Kafka.Topic,
			Balancer:               &kafka.Hash{},
			BatchTimeout:           cfg.Kafka.BatchTimeout,
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		}
		return NewKafkaPublisher(w, logger), func() { _ = w.Close() }
	case "log":
		return NewLogPublisher(logger), func() {}
	default:
		return Nop{}, func() {}
	}
}
