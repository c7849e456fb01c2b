package kafka

import (
	"encoding/json"

	"github.com/Shopify/sarama"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type SendMessageSyncFunc func(logger *zap.Logger, key string, message interface{}) error

func NewSyncSendMessage(producer sarama.SyncProducer, topic string) SendMessageSyncFunc {
	return func(logger *zap.Logger, key string, message interface{}) error {
		value, err := json.Marshal(message)
		if err != nil {
			return errors.Wrap(err, "marshal kafka message")
		}
		partition, offset, err := producer.SendMessage(&sarama.ProducerMessage{
			Topic: topic,
			Key:   sarama.StringEncoder(key),
			Value: sarama.ByteEncoder(value),
		})
		if err != nil {
			return errors.Wrapf(err, "send message to %s", topic)
		}
		logger.Debug("kafka message sent",
			zap.String("topic", topic),
			zap.Int32("partition", partition),
			zap.Int64("offset", offset),
		)
		return nil
	}
}
