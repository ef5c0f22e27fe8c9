package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/CompoundForge/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CompoundForge/pkg/errors"
)

// Event types carried in EventEnvelope.EventType.
const (
	EventCompoundAnalyzed = "compound.analyzed"
	EventSource           = "cforge"
	SchemaVersion         = "v1"
)

// EventEnvelope standardizes event messages.
type EventEnvelope struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	Source        string            `json:"source"`
	Timestamp     time.Time         `json:"timestamp"`
	SchemaVersion string            `json:"schema_version"`
	TraceID       string            `json:"trace_id,omitempty"`
	Payload       json.RawMessage   `json:"payload"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// CompoundAnalyzedPayload summarizes one completed analysis.
type CompoundAnalyzedPayload struct {
	Elements       []string  `json:"elements"`
	Likelihood     string    `json:"likelihood"`
	BondType       string    `json:"bond_type"`
	Formulas       []string  `json:"formulas"`
	UserFormula    string    `json:"user_formula,omitempty"`
	RegistryHit    bool      `json:"registry_hit"`
	ReportObject   string    `json:"report_object,omitempty"`
	AnalyzedAt     time.Time `json:"analyzed_at"`
	DurationMicros int64     `json:"duration_us"`
}

func NewEventEnvelope(eventType string, payload interface{}) (*EventEnvelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal payload")
	}
	return &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		Source:        EventSource,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: SchemaVersion,
		Payload:       data,
	}, nil
}

// DecodePayload is a no-op for an empty or null payload.
func (e *EventEnvelope) DecodePayload(target interface{}) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return nil
	}
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode payload")
	}
	return nil
}

// ToMessage keys the record by key so that analyses of the same element set
// land on one partition.
func (e *EventEnvelope) ToMessage(topic, key string) (*ProducerMessage, error) {
	val, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal envelope")
	}
	headers := map[string]string{
		"event_type":     e.EventType,
		"source_service": e.Source,
		"schema_version": e.SchemaVersion,
	}
	if e.TraceID != "" {
		headers["trace_id"] = e.TraceID
	}
	return &ProducerMessage{
		Topic:     topic,
		Key:       []byte(key),
		Value:     val,
		Headers:   headers,
		Timestamp: e.Timestamp,
	}, nil
}

// DecodeEnvelope parses a record value.
func DecodeEnvelope(value []byte) (*EventEnvelope, error) {
	if len(value) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "empty message value")
	}
	var env EventEnvelope
	if err := json.Unmarshal(value, &env); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to unmarshal envelope")
	}
	return &env, nil
}

// publisher is the slice of Producer the event publisher needs.
type publisher interface {
	Publish(ctx context.Context, msg *ProducerMessage) error
}

// EventPublisher wraps payloads in envelopes and publishes them to one topic.
type EventPublisher struct {
	producer publisher
	topic    string
	logger   logging.Logger
}

func NewEventPublisher(p publisher, topic string, logger logging.Logger) *EventPublisher {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &EventPublisher{producer: p, topic: topic, logger: logger}
}

func (e *EventPublisher) Topic() string { return e.topic }

// PublishCompoundAnalyzed emits one compound.analyzed event and returns its id.
func (e *EventPublisher) PublishCompoundAnalyzed(ctx context.Context, key string, payload CompoundAnalyzedPayload) (string, error) {
	env, err := NewEventEnvelope(EventCompoundAnalyzed, payload)
	if err != nil {
		return "", err
	}
	msg, err := env.ToMessage(e.topic, key)
	if err != nil {
		return "", err
	}
	if err := e.producer.Publish(ctx, msg); err != nil {
		return "", err
	}
	e.logger.Debug("compound event published", logging.String("event_id", env.EventID), logging.String("key", key))
	return env.EventID, nil
}
