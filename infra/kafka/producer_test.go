package kafka

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestProducerSend(t *testing.T) {
	w := &recordingWriter{}
	p := &Producer{writer: w, topic: "changes"}

	require.NoError(t, p.Send(context.Background(), []byte("k"), []byte(`{"seq":1}`)))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "k", string(w.msgs[0].Key))
	assert.Equal(t, `{"seq":1}`, string(w.msgs[0].Value))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestProducerWrapsWriteErrors(t *testing.T) {
	w := &recordingWriter{err: kafka.LeaderNotAvailable}
	p := &Producer{writer: w, topic: "changes"}

	err := p.Send(context.Background(), nil, []byte("x"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, kafka.LeaderNotAvailable))
	assert.Contains(t, err.Error(), "write to changes")
}

func TestNewProducerConfiguresWriter(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"}, "changes")
	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "changes", w.Topic)
	assert.Equal(t, kafka.RequireAll, w.RequiredAcks)
}
