package sequence

import "sync/atomic"

// Sequencer numbers the changes applied to the store. Every published
// change event carries one of these numbers, and the broadcaster drains
// its outbox in this order.
type Sequencer struct {
	last atomic.Uint64
}

// New creates a sequencer that has already issued start. A fresh store
// passes 0, so the first change is numbered 1 and 0 means "no changes".
func New(start uint64) *Sequencer {
	s := &Sequencer{}
	s.last.Store(start)
	return s
}

// Next issues the number for the change being applied.
func (s *Sequencer) Next() uint64 {
	return s.last.Add(1)
}

// Last returns the number of the most recent change, 0 if none.
func (s *Sequencer) Last() uint64 {
	return s.last.Load()
}
