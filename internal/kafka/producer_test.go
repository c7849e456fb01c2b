package kafka

import (
	"encoding/json"
	"testing"

	"github.com/Shopify/sarama"
	"github.com/Shopify/sarama/mocks"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type record struct {
	RequestId  string `json:"requestId"`
	Completion string `json:"completion"`
}

func TestNewSyncSendMessage(t *testing.T) {
	producer := mocks.NewSyncProducer(t, sarama.NewConfig())
	defer func() { _ = producer.Close() }()

	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var got record
		if err := json.Unmarshal(val, &got); err != nil {
			return err
		}
		if got.RequestId != "req-1" || got.Completion != `{"reply":"hi"}` {
			return errors.Errorf("unexpected record %+v", got)
		}
		return nil
	})

	send := NewSyncSendMessage(producer, "ask-relay.completion")
	err := send(zaptest.NewLogger(t), "req-1", record{RequestId: "req-1", Completion: `{"reply":"hi"}`})
	require.NoError(t, err)
}

func TestNewSyncSendMessageFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, sarama.NewConfig())
	defer func() { _ = producer.Close() }()

	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	send := NewSyncSendMessage(producer, "ask-relay.completion")
	err := send(zaptest.NewLogger(t), "req-2", record{RequestId: "req-2"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, sarama.ErrOutOfBrokers))
	assert.Contains(t, err.Error(), "ask-relay.completion")
}

func TestNewSyncSendMessageUnencodable(t *testing.T) {
	producer := mocks.NewSyncProducer(t, sarama.NewConfig())
	defer func() { _ = producer.Close() }()

	send := NewSyncSendMessage(producer, "ask-relay.completion")
	err := send(zaptest.NewLogger(t), "req-3", make(chan int))
	assert.Error(t, err)
}
