package events_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/member-crm/internal/config"
	"github.com/maxviazov/member-crm/internal/events"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func TestNewEvent(t *testing.T) {
	e, err := events.NewEvent("members", events.ActionCreated, 42, map[string]string{"name": "Ann"})
	require.NoError(t, err)
	assert.Equal(t, "members.created", e.Type)
	assert.Equal(t, int64(42), e.EntityID)
	assert.NotEqual(t, [16]byte{}, [16]byte(e.ID))
	assert.False(t, e.OccurredAt.IsZero())
	assert.JSONEq(t, `{"name":"Ann"}`, string(e.Payload))
	assert.Equal(t, "42", e.PartitionKey())

	e2, err := events.NewEvent("members", events.ActionDeleted, 42, nil)
	require.NoError(t, err)
	assert.NotEqual(t, e.ID, e2.ID)
	assert.Empty(t, e2.Payload)
}

func TestKafkaPublisher_WritesKeyedMessage(t *testing.T) {
	w := &fakeWriter{}
	p := events.NewKafkaPublisher(w, zerolog.Nop())
	e, err := events.NewEvent("contacts", events.ActionUpdated, 7, nil)
	require.NoError(t, err)

	require.NoError(t, p.Publish(context.Background(), e))
	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, []byte("7"), msg.Key)

	var decoded events.Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, e.ID, decoded.ID)
	assert.Equal(t, "contacts.updated", decoded.Type)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "contacts.updated", headers["event_type"])
	assert.Equal(t, e.ID.String(), headers["event_id"])
}

func TestKafkaPublisher_WrapsWriterError(t *testing.T) {
	boom := errors.New("broker down")
	p := events.NewKafkaPublisher(&fakeWriter{err: boom}, zerolog.Nop())
	e, _ := events.NewEvent("notes", events.ActionCreated, 1, nil)
	assert.ErrorIs(t, p.Publish(context.Background(), e), boom)
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := events.NewLogPublisher(zerolog.New(&buf).Level(zerolog.DebugLevel))
	e, _ := events.NewEvent("members", events.ActionCreated, 3, nil)
	require.NoError(t, p.Publish(context.Background(), e))
	assert.Contains(t, buf.String(), `"type":"members.created"`)
	assert.Contains(t, buf.String(), e.ID.String())
}

func TestNew_SelectsDriver(t *testing.T) {
	p, closeFn := events.New(&config.Config{Events: config.EventsConfig{Driver: "none"}}, zerolog.Nop())
	assert.IsType(t, events.Nop{}, p)
	closeFn()

	p, closeFn = events.New(&config.Config{Events: config.EventsConfig{Driver: "log"}}, zerolog.Nop())
	assert.IsType(t, &events.LogPublisher{}, p)
	closeFn()

	p, closeFn = events.New(&config.Config{
		Events: config.EventsConfig{Driver: "kafka"},
		Kafka:  config.KafkaConfig{Brokers: []string{"127.0.0.1:9092"}, Topic: "t"},
	}, zerolog.Nop())
	assert.IsType(t, &events.KafkaPublisher{}, p)
	closeFn()
}
