package service

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"

	"ordmap/domain/treemap"
	"ordmap/infra/sequence"
	"ordmap/jobs/broadcaster"
)

// ErrEmptyKey is returned for writes with an empty key.
var ErrEmptyKey = errors.New("service: empty key")

// Outbox receives change events after they are applied.
type Outbox interface {
	Enqueue(broadcaster.Event)
}

type Entry struct {
	Key   string
	Value string
}

type Stats struct {
	Size        int
	Height      int
	BlackHeight int
	LastSeq     uint64
}

// RangeQuery selects keys in [From, To). An empty To is unbounded.
// Limit <= 0 means no limit. Reverse walks from the high end.
type RangeQuery struct {
	From    string
	To      string
	Limit   int
	Reverse bool
}

/*
StoreService is the ONLY entry point into the store.

The treemap underneath is single-writer; every call here takes mu for its
full duration.
*/
type StoreService struct {
	mu      sync.Mutex
	data    *treemap.Map[string, string]
	seq     *sequence.Sequencer
	outbox  Outbox
	metrics *Metrics
	log     logrus.FieldLogger
}

// NewStoreService wires all dependencies. outbox may be nil.
func NewStoreService(
	seq *sequence.Sequencer,
	outbox Outbox,
	metrics *Metrics,
	log logrus.FieldLogger,
) *StoreService {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &StoreService{
		data:    treemap.NewOrdered[string, string](),
		seq:     seq,
		outbox:  outbox,
		metrics: metrics,
		log:     log.WithField("component", "store"),
	}
}

//
// ──────────────────────────────────────────────────────────
// Commands
// ──────────────────────────────────────────────────────────
//

// Put stores value under key and reports whether key was new.
func (s *StoreService) Put(key, value string) (bool, error) {
	if key == "" {
		s.metrics.Ops.WithLabelValues("put", "invalid").Inc()
		return false, ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	created := s.data.Set(key, value)
	seq := s.publish(broadcaster.EventPut, key, value)

	result := "updated"
	if created {
		result = "created"
	}
	s.metrics.Ops.WithLabelValues("put", result).Inc()
	s.log.WithFields(logrus.Fields{
		"op":      "put",
		"key":     key,
		"seq":     seq,
		"created": created,
	}).Debug("applied")
	return created, nil
}

// Insert stores value only if key is absent. Existing values are left
// untouched and no event is published for them.
func (s *StoreService) Insert(key, value string) (bool, error) {
	if key == "" {
		s.metrics.Ops.WithLabelValues("insert", "invalid").Inc()
		return false, ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, created := s.data.Insert(key, value); !created {
		s.metrics.Ops.WithLabelValues("insert", "duplicate").Inc()
		return false, nil
	}
	seq := s.publish(broadcaster.EventPut, key, value)
	s.metrics.Ops.WithLabelValues("insert", "created").Inc()
	s.log.WithFields(logrus.Fields{"op": "insert", "key": key, "seq": seq}).Debug("applied")
	return true, nil
}

// Delete removes key and reports whether it was present.
func (s *StoreService) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data.Erase(key) == 0 {
		s.metrics.Ops.WithLabelValues("delete", "missing").Inc()
		return false
	}
	seq := s.publish(broadcaster.EventDelete, key, "")
	s.metrics.Ops.WithLabelValues("delete", "removed").Inc()
	s.log.WithFields(logrus.Fields{"op": "delete", "key": key, "seq": seq}).Debug("applied")
	return true
}

//
// ──────────────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────────────
//

// Get returns the value under key or an error wrapping
// treemap.ErrOutOfRange.
func (s *StoreService) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.data.At(key)
	if err != nil {
		s.metrics.Ops.WithLabelValues("get", "missing").Inc()
		return "", err
	}
	s.metrics.Ops.WithLabelValues("get", "hit").Inc()
	return v, nil
}

// Range returns a copy of the entries selected by q.
func (s *StoreService) Range(q RangeQuery) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.Ops.WithLabelValues("range", "ok").Inc()

	inRange := func(k string) bool {
		return k >= q.From && (q.To == "" || k < q.To)
	}
	full := func(out []Entry) bool {
		return q.Limit > 0 && len(out) >= q.Limit
	}

	out := make([]Entry, 0)
	if !q.Reverse {
		for it := s.data.LowerBound(q.From); it.Valid() && !full(out); it.Next() {
			k, v := it.Entry()
			if !inRange(k) {
				break
			}
			out = append(out, Entry{Key: k, Value: v})
		}
		return out
	}

	it := s.data.End()
	if q.To != "" {
		it = s.data.LowerBound(q.To)
	}
	for it.Prev() && !full(out) {
		k, v := it.Entry()
		if !inRange(k) {
			break
		}
		out = append(out, Entry{Key: k, Value: v})
	}
	return out
}

// Prefix returns every entry whose key starts with prefix.
func (s *StoreService) Prefix(prefix string, limit int) []Entry {
	q := RangeQuery{From: prefix, Limit: limit}
	if end, ok := prefixEnd(prefix); ok {
		q.To = end
	}
	return s.Range(q)
}

func (s *StoreService) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Size:        s.data.Len(),
		Height:      s.data.Height(),
		BlackHeight: s.data.BlackHeight(),
		LastSeq:     s.seq.Last(),
	}
}

// Validate checks the invariants of the underlying tree.
func (s *StoreService) Validate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return errors.Wrap(s.data.Validate(), "store tree")
}

//
// ──────────────────────────────────────────────────────────
// Internals
// ──────────────────────────────────────────────────────────
//

// publish must be called with mu held.
func (s *StoreService) publish(t broadcaster.EventType, key, value string) uint64 {
	seq := s.seq.Next()
	if s.outbox != nil {
		s.outbox.Enqueue(broadcaster.NewEvent(t, seq, key, value))
	}
	s.metrics.Keys.Set(float64(s.data.Len()))
	s.metrics.BlackHeight.Set(float64(s.data.BlackHeight()))
	s.metrics.LastSeq.Set(float64(seq))
	return seq
}

// prefixEnd returns the smallest string greater than every string with the
// given prefix, or false if there is none.
func prefixEnd(prefix string) (string, bool) {
	b := []byte(prefix)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] < 0xff {
			b[i]++
			return string(b[:i+1]), true
		}
	}
	return "", false
}
