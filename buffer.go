package bytebuffer

import (
	"bytes"
	"fmt"
	"unsafe"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DefaultPreallocSize is the size of the inline array every Buffer starts with
const DefaultPreallocSize = 1024

const maxInt = int(^uint(0) >> 1)

// Peeker is implemented by anything that can expose its unread bytes
// without consuming them. AppendBuffer accepts any Peeker, *Buffer included.
// A nil *Buffer is rejected, other implementations must not be nil pointers.
type Peeker interface {
	Peek() []byte
}

// Observer gets notified about storage events of a Buffer.
// Grew is called after storage moved to a bigger region,
// Compacted after the unread bytes were moved to the start of the current region.
type Observer interface {
	Grew(from, to int)
	Compacted(moved int)
}

// Buffer is a growable byte buffer with independent read and write positions.
//
// The bytes between the read and the write position are the unread payload.
// Appending writes at the write position, reading consumes from the read position.
// When an append does not fit behind the write position, the unread payload is
// moved to the start of storage, into a bigger region if needed, which resets
// the read position to 0. Offsets taken by Index and Update are therefore always
// relative to the current read position.
//
// A Buffer must not be copied after first use.
type Buffer struct {
	storage  []byte
	readPos  int
	writePos int

	inline  [DefaultPreallocSize]byte
	onHeap  bool // storage came from alloc rather than inline
	alloc   Allocator
	watcher Observer
}

// Option configures a Buffer created by New
type Option func(*options)

type options struct {
	capacity int
	initial  []byte
	alloc    Allocator
	watcher  Observer
}

// WithCapacity asks for storage of at least n bytes before anything is written.
// Capacities up to DefaultPreallocSize are served by the inline array.
func WithCapacity(n int) Option {
	return func(o *options) { o.capacity = n }
}

// WithBytes seeds the buffer with a copy of p
func WithBytes(p []byte) Option {
	return func(o *options) { o.initial = p }
}

// WithAllocator sets the Allocator used for storage beyond the inline array
func WithAllocator(a Allocator) Option {
	return func(o *options) {
		if a != nil {
			o.alloc = a
		}
	}
}

// WithObserver registers an Observer for growth and compaction events
func WithObserver(w Observer) Option {
	return func(o *options) { o.watcher = w }
}

// New creates a new Buffer configured by the passed options
func New(opts ...Option) (*Buffer, error) {
	o := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	if err := checkLength("capacity", o.capacity); err != nil {
		return nil, err
	}

	if o.alloc == nil {
		o.alloc = DefaultAllocator()
	}

	b := &Buffer{alloc: o.alloc, watcher: o.watcher}
	b.storage = b.inline[:]

	if o.capacity > DefaultPreallocSize {
		region, err := b.alloc.Allocate(o.capacity)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot preallocate %d bytes", o.capacity)
		}
		b.storage, b.onHeap = region, true
	}

	if len(o.initial) > 0 {
		if err := b.Append(o.initial); err != nil {
			b.Close()
			return nil, err
		}
	}

	return b, nil
}

// MustNew is New that panics on error
func MustNew(opts ...Option) *Buffer {
	b, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return b
}

// NewBuffer creates a new heap backed Buffer with at least the specified capacity
func NewBuffer(capacity int) *Buffer {
	return MustNew(WithCapacity(capacity), WithAllocator(HeapAllocator{}))
}

// NewBufferBytes creates a new heap backed Buffer holding a copy of p
func NewBufferBytes(p []byte) *Buffer {
	return MustNew(WithBytes(p), WithAllocator(HeapAllocator{}))
}

// Close releases storage obtained from the allocator and leaves the buffer
// empty and backed by its inline array again. It is safe to call more than once.
func (b *Buffer) Close() error {
	var err error
	if b.onHeap {
		err = b.alloc.Release(b.storage)
	}

	b.storage, b.onHeap = b.inline[:], false
	b.readPos, b.writePos = 0, 0
	return err
}

// Length returns the number of unread bytes
func (b *Buffer) Length() int { return b.writePos - b.readPos }

// Len is an alias for Length
func (b *Buffer) Len() int { return b.Length() }

// Capacity returns the size of the current storage region
func (b *Buffer) Capacity() int { return len(b.storage) }

// Empty reports whether there is nothing left to read
func (b *Buffer) Empty() bool { return b.Length() == 0 }

// Peek returns the unread bytes without consuming them.
// The slice aliases storage and is only valid until the next modification.
func (b *Buffer) Peek() []byte { return b.storage[b.readPos:b.writePos] }

// ToBytes returns a copy of the unread bytes without consuming them
func (b *Buffer) ToBytes() []byte {
	p := make([]byte, b.Length())
	copy(p, b.Peek())
	return p
}

func (b *Buffer) String() string { return string(b.Peek()) }

// Equal reports whether other holds the same unread bytes
func (b *Buffer) Equal(other Peeker) bool {
	if other == nil {
		return false
	}
	return bytes.Equal(b.Peek(), other.Peek())
}

// Clone returns a new Buffer with a copy of the unread bytes,
// using the same allocator and observer
func (b *Buffer) Clone() (*Buffer, error) {
	return New(WithBytes(b.Peek()), WithAllocator(b.alloc), WithObserver(b.watcher))
}

// Inspect returns a diagnostic description of the buffer state
func (b *Buffer) Inspect() string {
	return fmt.Sprintf("#<bytebuffer.Buffer read_pos=%d write_pos=%d len=%d capacity=%d inline=%v>",
		b.readPos, b.writePos, b.Length(), b.Capacity(), !b.onHeap)
}

// ensureWritable makes room for n more bytes behind the write position,
// compacting or moving to a bigger region as needed. On error nothing changes.
func (b *Buffer) ensureWritable(n int) error {
	if b.writePos+n <= len(b.storage) && b.writePos+n >= b.writePos {
		return nil
	}

	l := b.Length()
	if n > maxInt-l {
		return rangeErrorf("cannot grow buffer holding %d bytes by %d bytes", l, n)
	}

	needed := l + n
	if needed <= len(b.storage) {
		copy(b.storage, b.storage[b.readPos:b.writePos])
		b.readPos, b.writePos = 0, l

		if logging {
			logger.Debug("compacted buffer",
				zap.String("module", "buffer"),
				zap.Int("moved", l),
				zap.Int("capacity", len(b.storage)),
			)
		}

		if b.watcher != nil {
			b.watcher.Compacted(l)
		}
		return nil
	}

	size := needed + needed/2
	if size < needed {
		size = maxInt
	}

	region, err := b.alloc.Allocate(size)
	if err != nil {
		return errors.Wrapf(err, "cannot grow buffer to %d bytes", size)
	}

	copy(region, b.storage[b.readPos:b.writePos])

	old := len(b.storage)
	if b.onHeap {
		if err := b.alloc.Release(b.storage); err != nil && logging {
			logger.Error("releasing old region failed",
				zap.String("module", "buffer"),
				zap.Error(err),
			)
		}
	}

	b.storage, b.onHeap = region, true
	b.readPos, b.writePos = 0, l

	if logging {
		logger.Debug("grew buffer",
			zap.String("module", "buffer"),
			zap.Int("from", old),
			zap.Int("to", size),
		)
	}

	if b.watcher != nil {
		b.watcher.Grew(old, size)
	}
	return nil
}

// checkReadable validates that n bytes can be consumed
func (b *Buffer) checkReadable(n int) error {
	if err := checkLength("length", n); err != nil {
		return err
	}
	if n > b.Length() {
		return rangeErrorf("%d bytes required but only %d available", n, b.Length())
	}
	return nil
}

// aliases reports whether p points into the region backing the buffer
func (b *Buffer) aliases(p []byte) bool {
	if len(p) == 0 || cap(b.storage) == 0 {
		return false
	}

	region := b.storage[:cap(b.storage)]
	start := uintptr(unsafe.Pointer(&region[0]))
	at := uintptr(unsafe.Pointer(&p[0]))
	return at >= start && at < start+uintptr(len(region))
}
