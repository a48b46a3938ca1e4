// Package bufpool provides a sync.Pool-backed growable byte buffer used to
// avoid repeated allocation when the codec assembles table rows, header
// cards, serialized HDUs, or sub-region byte ranges.
//
// The shape is adapted from arloliu/mebo's internal/pool.ByteBuffer (also a
// sync.Pool of growable []byte wrappers keyed by a default size class), but
// that type lives in an unexported internal package of another module and
// cannot be imported directly; the technique is reproduced here against the
// standard library's sync.Pool rather than copied.
package bufpool

import "sync"

// DefaultSize is the initial capacity handed out by Get when the pool is
// empty, sized for a handful of FITS blocks (a few header cards' worth of
// scratch space) without over-allocating for small reads.
const DefaultSize = 4 * 2880

// Buffer is a growable byte buffer that retains its backing array across
// Reset calls so it can be returned to a Pool for reuse.
type Buffer struct {
	B []byte
}

// Reset empties the buffer while retaining its backing array.
func (buf *Buffer) Reset() {
	buf.B = buf.B[:0]
}

// Grow ensures the buffer can accept n more bytes without reallocating,
// doubling capacity (from DefaultSize) rather than growing by exact need so
// repeated small appends amortize.
func (buf *Buffer) Grow(n int) {
	if cap(buf.B)-len(buf.B) >= n {
		return
	}
	need := len(buf.B) + n
	newCap := cap(buf.B)
	if newCap == 0 {
		newCap = DefaultSize
	}
	for newCap < need {
		newCap *= 2
	}
	grown := make([]byte, len(buf.B), newCap)
	copy(grown, buf.B)
	buf.B = grown
}

// Append grows as needed and appends p to the buffer.
func (buf *Buffer) Append(p []byte) {
	buf.Grow(len(p))
	buf.B = append(buf.B, p...)
}

// Pool is a pool of Buffers, one per call site that needs pooled scratch
// space (table row assembly, image region copies, header/data-unit
// serialization).
type Pool struct {
	pool sync.Pool
}

// New creates a Pool whose buffers start at DefaultSize capacity.
func New() *Pool {
	return &Pool{
		pool: sync.Pool{
			New: func() any {
				return &Buffer{B: make([]byte, 0, DefaultSize)}
			},
		},
	}
}

// Get retrieves an empty Buffer from the pool.
func (p *Pool) Get() *Buffer {
	return p.pool.Get().(*Buffer)
}

// Put resets buf and returns it to the pool.
func (p *Pool) Put(buf *Buffer) {
	buf.Reset()
	p.pool.Put(buf)
}
