package memory

import (
	"sync"
	"sync/atomic"
)

// Pool is a typed object pool backed by sync.Pool.
// Objects must be reset by the caller before Put.
type Pool[T any] struct {
	p     *sync.Pool
	inUse atomic.Int64
}

func NewPool[T any](ctor func() *T) *Pool[T] {
	return &Pool[T]{
		p: &sync.Pool{
			New: func() any { return ctor() },
		},
	}
}

func (p *Pool[T]) Get() *T {
	p.inUse.Add(1)
	return p.p.Get().(*T)
}

func (p *Pool[T]) Put(v *T) {
	if v == nil {
		return
	}
	p.inUse.Add(-1)
	p.p.Put(v)
}

// InUse reports objects handed out by Get and not yet returned.
func (p *Pool[T]) InUse() int64 {
	return p.inUse.Load()
}
