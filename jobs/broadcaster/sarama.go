package broadcaster

import (
	"context"

	"github.com/IBM/sarama"
	"github.com/cockroachdb/errors"
)

// SaramaSender publishes through a sarama SyncProducer.
type SaramaSender struct {
	producer sarama.SyncProducer
	topic    string
}

func NewSaramaSender(brokers []string, topic string) (*SaramaSender, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "create sarama producer")
	}
	return NewSaramaSenderWithProducer(producer, topic), nil
}

func NewSaramaSenderWithProducer(producer sarama.SyncProducer, topic string) *SaramaSender {
	return &SaramaSender{producer: producer, topic: topic}
}

// Send publishes synchronously. The context is only checked before sending;
// sarama's sync producer does not take one.
func (s *SaramaSender) Send(ctx context.Context, key []byte, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic: s.topic,
		Key:   sarama.ByteEncoder(key),
		Value: sarama.ByteEncoder(value),
	}
	if _, _, err := s.producer.SendMessage(msg); err != nil {
		return errors.Wrapf(err, "publish to %s", s.topic)
	}
	return nil
}

func (s *SaramaSender) Close() error {
	return s.producer.Close()
}
