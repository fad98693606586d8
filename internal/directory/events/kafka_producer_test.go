package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// MockKafkaWriter implements KafkaWriter for testing
type MockKafkaWriter struct {
	mock.Mock
	mu       sync.Mutex
	messages []kafka.Message
}

func (m *MockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	m.mu.Lock()
	m.messages = append(m.messages, msgs...)
	m.mu.Unlock()
	return args.Error(0)
}

func (m *MockKafkaWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestNewEvent(t *testing.T) {
	ev := NewEvent(DirectoryLoadFailed, 0, errors.New("boom"))
	assert.Equal(t, DirectoryLoadFailed, ev.Type)
	assert.Equal(t, "boom", ev.Error)
	assert.False(t, ev.At.IsZero())

	ok := NewEvent(DirectoryLoaded, 12, nil)
	assert.Empty(t, ok.Error)
	assert.Equal(t, 12, ok.Records)
	assert.NotEqual(t, ev.ID, ok.ID)
}

func TestProducer_SendsOnClose(t *testing.T) {
	writer := &MockKafkaWriter{}
	writer.On("WriteMessages", mock.Anything, mock.Anything).Return(nil)
	writer.On("Close").Return(nil)

	producer := newProducer(writer, zaptest.NewLogger(t), 10)
	producer.Produce(NewEvent(DirectoryLoaded, 3, nil))
	producer.Produce(NewEvent(DirectoryLoadFailed, 0, errors.New("down")))
	producer.Close()
	producer.Close()

	writer.AssertNumberOfCalls(t, "Close", 1)
	require.Len(t, writer.messages, 2)

	var first Event
	require.NoError(t, json.Unmarshal(writer.messages[0].Value, &first))
	assert.Equal(t, DirectoryLoaded, first.Type)
	assert.Equal(t, 3, first.Records)
	assert.Equal(t, []byte(DirectoryLoaded), writer.messages[0].Key)
}

func TestProducer_DropsWhenQueueFull(t *testing.T) {
	core, recorded := observer.New(zap.WarnLevel)
	writer := &MockKafkaWriter{}
	writer.On("WriteMessages", mock.Anything, mock.Anything).Return(nil)
	writer.On("Close").Return(nil)

	// Build without starting the loop so the queue cannot drain.
	producer := &Producer{
		writer:    writer,
		events:    make(chan Event, 1),
		logger:    zap.New(core).Named("kafka_producer"),
		closeChan: make(chan struct{}),
	}
	producer.Produce(NewEvent(DirectoryLoaded, 1, nil))
	producer.Produce(NewEvent(DirectoryLoaded, 2, nil))

	assert.Len(t, producer.events, 1)
	require.Equal(t, 1, recorded.Len())
	assert.Equal(t, "Kafka producer queue full, dropping event", recorded.All()[0].Message)
}

func TestProducer_WriteErrorIsLogged(t *testing.T) {
	core, recorded := observer.New(zap.ErrorLevel)
	writer := &MockKafkaWriter{}
	writer.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("broker down"))
	writer.On("Close").Return(nil)

	producer := newProducer(writer, zap.New(core), 10)
	producer.Produce(NewEvent(DirectoryLoaded, 1, nil))
	producer.Close()

	require.Equal(t, 1, recorded.FilterMessage("Failed to produce event").Len())
}

func TestProducer_SerializationErrorIsLogged(t *testing.T) {
	orig := jsonMarshal
	jsonMarshal = func(any) ([]byte, error) { return nil, errors.New("nope") }
	defer func() { jsonMarshal = orig }()

	core, recorded := observer.New(zap.ErrorLevel)
	writer := &MockKafkaWriter{}
	writer.On("Close").Return(nil)

	producer := newProducer(writer, zap.New(core), 10)
	producer.Produce(NewEvent(DirectoryLoaded, 1, nil))
	producer.Close()

	writer.AssertNotCalled(t, "WriteMessages", mock.Anything, mock.Anything)
	assert.Equal(t, 1, recorded.FilterMessage("Failed to serialize event").Len())
}

func TestNopProducer(t *testing.T) {
	assert.NotPanics(t, func() { NopProducer{}.Produce(NewEvent(DirectoryLoaded, 0, nil)) })
}
