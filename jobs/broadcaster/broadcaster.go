package broadcaster

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"ordmap/domain/treemap"
)

// Sender delivers one encoded event. Implemented by the kafka-go producer
// in infra/kafka and by SaramaSender.
type Sender interface {
	Send(ctx context.Context, key []byte, value []byte) error
}

type Broadcaster struct {
	sender   Sender
	interval time.Duration
	batch    int
	log      logrus.FieldLogger

	mu      sync.Mutex
	pending *treemap.Map[uint64, Event]

	flushMu sync.Mutex
	sent    uint64
}

// ------------------------------------------------
// CONSTRUCTOR
// ------------------------------------------------

func New(sender Sender, interval time.Duration, batch int, log logrus.FieldLogger) *Broadcaster {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	if batch <= 0 {
		batch = 256
	}
	return &Broadcaster{
		sender:   sender,
		interval: interval,
		batch:    batch,
		log:      log.WithField("component", "broadcaster"),
		pending:  treemap.NewOrdered[uint64, Event](),
	}
}

// Enqueue adds ev to the outbox. Re-enqueuing a sequence number already
// waiting is a no-op.
func (b *Broadcaster) Enqueue(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending.Insert(ev.Seq, ev)
}

// Pending reports the number of events not yet delivered.
func (b *Broadcaster) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending.Len()
}

// Sent reports the number of events delivered so far.
func (b *Broadcaster) Sent() uint64 {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()
	return b.sent
}

// ------------------------------------------------
// RUN LOOP
// ------------------------------------------------

// shutdownFlushTimeout bounds the final drain once Run is cancelled.
const shutdownFlushTimeout = 5 * time.Second

// Run drains the outbox every interval until ctx is done, then makes one
// last attempt to deliver what is still pending.
func (b *Broadcaster) Run(ctx context.Context) {
	b.log.Info("started")

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.drain(shutdownFlushTimeout)
			b.log.WithField("pending", b.Pending()).Info("stopped")
			return
		case <-ticker.C:
			if _, err := b.Flush(ctx); err != nil {
				b.log.WithError(err).Warn("flush interrupted, will retry")
			}
		}
	}
}

// Flush sends up to one batch of pending events in sequence order and
// returns how many were delivered.
func (b *Broadcaster) Flush(ctx context.Context) (int, error) {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	batch := b.head()
	for i, ev := range batch {
		key, value, err := ev.Encode()
		if err == nil {
			err = b.sender.Send(ctx, key, value)
		}
		if err != nil {
			return i, err
		}

		b.mu.Lock()
		b.pending.Erase(ev.Seq)
		b.mu.Unlock()
		b.sent++

		b.log.WithFields(logrus.Fields{
			"seq":  ev.Seq,
			"type": ev.Type,
		}).Debug("event delivered")
	}
	return len(batch), nil
}

// drain flushes until the outbox is empty, a send fails or timeout passes.
func (b *Broadcaster) drain(timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for b.Pending() > 0 && ctx.Err() == nil {
		if _, err := b.Flush(ctx); err != nil {
			b.log.WithError(err).Warn("final flush failed")
			return
		}
	}
}

func (b *Broadcaster) head() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Event, 0, min(b.batch, b.pending.Len()))
	for _, ev := range b.pending.All() {
		if len(out) == b.batch {
			break
		}
		out = append(out, ev)
	}
	return out
}
