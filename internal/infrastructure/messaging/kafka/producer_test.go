package kafka

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/CompoundForge/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/CompoundForge/pkg/errors"
)

type mockKafkaWriter struct {
	writeFunc func(ctx context.Context, msgs ...kafka.Message) error
	closed    int
}

func (m *mockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if m.writeFunc != nil {
		return m.writeFunc(ctx, msgs...)
	}
	return nil
}

func (m *mockKafkaWriter) Close() error {
	m.closed++
	return nil
}

func newTestProducer(w WriterInterface) *Producer {
	return newProducerWithWriter(w, ProducerConfig{Brokers: []string{"localhost:9092"}}, logging.NewNopLogger())
}

func TestNewProducer_Validation(t *testing.T) {
	_, err := NewProducer(ProducerConfig{}, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))

	p, err := NewProducer(ProducerConfig{Brokers: []string{"localhost:9092"}, Acks: "all", CompressionCodec: "snappy"}, nil)
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}

func TestPublish_Success(t *testing.T) {
	var captured []kafka.Message
	mock := &mockKafkaWriter{
		writeFunc: func(ctx context.Context, msgs ...kafka.Message) error {
			captured = msgs
			return nil
		},
	}
	p := newTestProducer(mock)
	err := p.Publish(context.Background(), &ProducerMessage{
		Topic:   "test",
		Key:     []byte("k"),
		Value:   []byte("v"),
		Headers: map[string]string{"h": "1"},
	})
	require.NoError(t, err)
	require.Len(t, captured, 1)
	assert.Equal(t, "test", captured[0].Topic)
	assert.Equal(t, "k", string(captured[0].Key))
	assert.Equal(t, "v", string(captured[0].Value))
	require.Len(t, captured[0].Headers, 1)
	assert.Equal(t, "h", captured[0].Headers[0].Key)
	assert.False(t, captured[0].Time.IsZero())

	sent, failed := p.Counts()
	assert.Equal(t, int64(1), sent)
	assert.Equal(t, int64(0), failed)
}

func TestPublish_Failure(t *testing.T) {
	mock := &mockKafkaWriter{
		writeFunc: func(ctx context.Context, msgs ...kafka.Message) error {
			return errors.New("write failed")
		},
	}
	p := newTestProducer(mock)
	err := p.Publish(context.Background(), &ProducerMessage{Topic: "test", Value: []byte("v")})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeMessageQueueError))

	_, failed := p.Counts()
	assert.Equal(t, int64(1), failed)
}

func TestPublish_RejectsInvalidMessages(t *testing.T) {
	p := newTestProducer(&mockKafkaWriter{})
	p.config.MaxMessageBytes = 4

	tests := []struct {
		name string
		msg  *ProducerMessage
	}{
		{"missing topic", &ProducerMessage{Value: []byte("v")}},
		{"empty value", &ProducerMessage{Topic: "t"}},
		{"too large", &ProducerMessage{Topic: "t", Value: []byte(strings.Repeat("x", 5))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.Publish(context.Background(), tt.msg)
			assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))
		})
	}
}

func TestClose_Idempotent(t *testing.T) {
	mock := &mockKafkaWriter{}
	p := newTestProducer(mock)
	assert.NoError(t, p.Close())
	assert.NoError(t, p.Close())
	assert.Equal(t, 1, mock.closed)

	err := p.Publish(context.Background(), &ProducerMessage{Topic: "t", Value: []byte("v")})
	assert.ErrorIs(t, err, ErrProducerClosed)
}

func TestRequiredAcksAndCompression(t *testing.T) {
	assert.Equal(t, kafka.RequireNone, requiredAcks("none"))
	assert.Equal(t, kafka.RequireAll, requiredAcks("all"))
	assert.Equal(t, kafka.RequireOne, requiredAcks(""))

	assert.Equal(t, kafka.Gzip, compression("gzip"))
	assert.Equal(t, kafka.Snappy, compression("snappy"))
	assert.Equal(t, kafka.Lz4, compression("lz4"))
	assert.Equal(t, kafka.Zstd, compression("zstd"))
	assert.Equal(t, kafka.Compression(0), compression("none"))
}
