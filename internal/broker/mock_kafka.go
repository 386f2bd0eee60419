package appkafka

import (
	"context"
	"encoding/json"
	"errors"

	"example.com/twitterfeed/internal/models"
	"example.com/twitterfeed/internal/store"
	"github.com/segmentio/kafka-go"
)

// MockKafka applies tweet events to the store immediately, standing in
// for the writer-topic-worker round trip in handler tests.
type MockKafka struct {
	Store           *store.MockStore
	WrittenMessages []kafka.Message // stores messages written via WriteMessages
	ReadMessages    []kafka.Message // queue of messages to be read via ReadMessage
	ShouldFail      bool            // flag to simulate failures during write or read operations
}

// WriteMessages simulates publishing a tweet event, applying the
// projection change synchronously.
func (m *MockKafka) WriteMessages(messages ...kafka.Message) error {
	if m.Store == nil {
		return errors.New("store is nil")
	}

	for _, msg := range messages {
		m.WrittenMessages = append(m.WrittenMessages, msg)

		var ev models.TweetEvent
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			return err
		}

		switch ev.Type {
		case models.EventTweetCreated:
			_ = m.Store.IndexTweetByAuthor(ev.Tweet)
		case models.EventTweetDeleted:
			_ = m.Store.RemoveTweetFromIndex(ev.Tweet)
		}
	}

	return nil
}

// ReadMessage pops from the queued test messages.
func (m *MockKafka) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if m.ShouldFail {
		return kafka.Message{}, errors.New("mock kafka read failed")
	}
	if len(m.ReadMessages) == 0 {
		return kafka.Message{}, errors.New("no messages")
	}
	// Take the first message from the queue and remove it
	msg := m.ReadMessages[0]
	m.ReadMessages = m.ReadMessages[1:]
	return msg, nil
}

// Close is a no-op.
func (m *MockKafka) Close() error { return nil }

// MockKafkaFail always fails.
type MockKafkaFail struct{}

func (m *MockKafkaFail) WriteMessages(messages ...kafka.Message) error {
	return errors.New("mock kafka write failed")
}

func (m *MockKafkaFail) ReadMessage(ctx context.Context) (kafka.Message, error) {
	return kafka.Message{}, errors.New("mock kafka read failed")
}

func (m *MockKafkaFail) Close() error { return nil }
