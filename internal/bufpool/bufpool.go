// Package bufpool provides a tiered byte-slice pool for reusing RPC
// fragment buffers instead of allocating one per reply.
package bufpool

import "sync"

// Size classes tuned to RPC reply shapes: control/status replies are tiny,
// READDIRPLUS listings run tens of KB, and READ payloads can approach the
// negotiated rtmax.
const (
	SmallSize  = 4 << 10
	MediumSize = 64 << 10
	LargeSize  = 1 << 20
)

// Pool is a sync.Pool-backed allocator with three size classes. The zero
// value is not usable; use NewPool or the package-level Get/Put.
type Pool struct {
	small  sync.Pool
	medium sync.Pool
	large  sync.Pool
}

// NewPool returns a ready-to-use Pool.
func NewPool() *Pool {
	p := &Pool{}
	p.small.New = func() any { b := make([]byte, SmallSize); return &b }
	p.medium.New = func() any { b := make([]byte, MediumSize); return &b }
	p.large.New = func() any { b := make([]byte, LargeSize); return &b }
	return p
}

// Get returns a slice of exactly length size, backed by a pooled buffer
// when size fits one of the size classes. Sizes larger than LargeSize are
// allocated directly and never pooled.
func (p *Pool) Get(size int) []byte {
	var ptr *[]byte
	switch {
	case size <= SmallSize:
		ptr = p.small.Get().(*[]byte)
	case size <= MediumSize:
		ptr = p.medium.Get().(*[]byte)
	case size <= LargeSize:
		ptr = p.large.Get().(*[]byte)
	default:
		return make([]byte, size)
	}
	return (*ptr)[:size]
}

// Put returns buf to the pool it was drawn from, identified by capacity.
// Buffers whose capacity does not match a size class exactly (including
// oversized allocations Get returned directly) are dropped.
func (p *Pool) Put(buf []byte) {
	if buf == nil {
		return
	}
	full := buf[:cap(buf)]
	switch cap(buf) {
	case SmallSize:
		p.small.Put(&full)
	case MediumSize:
		p.medium.Put(&full)
	case LargeSize:
		p.large.Put(&full)
	}
}

var global = NewPool()

// Get draws from the package-level pool.
func Get(size int) []byte { return global.Get(size) }

// Put returns a buffer to the package-level pool.
func Put(buf []byte) { global.Put(buf) }
