package bytebuffer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

type event struct {
	kind     string
	from, to int
}

type testObserver struct {
	events []event
}

func (o *testObserver) Grew(from, to int) {
	o.events = append(o.events, event{"grow", from, to})
}

func (o *testObserver) Compacted(moved int) {
	o.events = append(o.events, event{"compact", moved, moved})
}

type failingAllocator struct {
	allocs, releases int
}

func (a *failingAllocator) Allocate(size int) ([]byte, error) {
	return nil, errors.New("no memory for you")
}

func (a *failingAllocator) Release([]byte) error {
	a.releases++
	return nil
}

type countingAllocator struct {
	HeapAllocator
	allocs, releases int
}

func (a *countingAllocator) Allocate(size int) ([]byte, error) {
	a.allocs++
	return a.HeapAllocator.Allocate(size)
}

func (a *countingAllocator) Release(p []byte) error {
	a.releases++
	return nil
}

func TestPreallocation(t *testing.T) {
	cases := []struct {
		requested, expected int
	}{
		{0, DefaultPreallocSize},
		{DefaultPreallocSize / 2, DefaultPreallocSize},
		{DefaultPreallocSize, DefaultPreallocSize},
		{DefaultPreallocSize * 2, DefaultPreallocSize * 2},
	}

	for _, c := range cases {
		b, err := New(WithCapacity(c.requested))
		if err != nil {
			t.Errorf("cannot create buffer with capacity %v: %v", c.requested, err)
			continue
		}

		if b.Capacity() != c.expected {
			t.Errorf("requested %v, expected capacity %v, got %v", c.requested, c.expected, b.Capacity())
		}

		if b.Length() != 0 {
			t.Errorf("expected a new buffer to be empty, got length %v", b.Length())
		}
	}
}

func TestNegativeCapacity(t *testing.T) {
	_, err := New(WithCapacity(-1))
	if errors.Cause(err) != ErrRange {
		t.Errorf("expected ErrRange for a negative capacity, got %v", err)
	}
}

func TestNewWithBytes(t *testing.T) {
	b := NewBufferBytes([]byte("hello"))
	if b.String() != "hello" {
		t.Errorf("expected hello, got %q", b.String())
	}

	big := bytes.Repeat([]byte{'a'}, DefaultPreallocSize*3)
	b = NewBufferBytes(big)
	if !bytes.Equal(b.Peek(), big) {
		t.Error("initial bytes not preserved for a payload bigger than the inline array")
	}

	if b.Capacity() < len(big) {
		t.Errorf("expected capacity of at least %v, got %v", len(big), b.Capacity())
	}
}

func TestGrowthStrategy(t *testing.T) {
	b := NewBuffer(0)
	c0 := b.Capacity()

	if err := b.AppendString(strings.Repeat("X", DefaultPreallocSize)); err != nil {
		t.Fatal(err)
	}

	if b.Capacity() != c0 {
		t.Errorf("expected capacity to stay at %v, got %v", c0, b.Capacity())
	}

	if err := b.AppendString("Y"); err != nil {
		t.Fatal(err)
	}

	c1 := b.Capacity()
	if c1 <= c0 {
		t.Fatalf("expected capacity to grow beyond %v, got %v", c0, c1)
	}

	if err := b.AppendString(strings.Repeat("Z", c1-b.Length()+1)); err != nil {
		t.Fatal(err)
	}

	c2 := b.Capacity()
	if c2-c1 <= c1-c0 {
		t.Errorf("expected exponential growth, got %v -> %v -> %v", c0, c1, c2)
	}

	expected := strings.Repeat("X", DefaultPreallocSize) + "Y" + strings.Repeat("Z", c1-DefaultPreallocSize)
	if b.String() != expected {
		t.Error("contents changed while growing")
	}
}

func TestGrowthFactor(t *testing.T) {
	o := &testObserver{}
	b := MustNew(WithObserver(o), WithAllocator(HeapAllocator{}))

	if err := b.Append(make([]byte, DefaultPreallocSize+1)); err != nil {
		t.Fatal(err)
	}

	needed := DefaultPreallocSize + 1
	if b.Capacity() != needed+needed/2 {
		t.Errorf("expected capacity %v, got %v", needed+needed/2, b.Capacity())
	}

	if len(o.events) != 1 || o.events[0] != (event{"grow", DefaultPreallocSize, needed + needed/2}) {
		t.Errorf("unexpected events %v", o.events)
	}
}

func TestBalancedReadsAndWrites(t *testing.T) {
	o := &testObserver{}
	b := MustNew(WithObserver(o))
	c0 := b.Capacity()
	s := strings.Repeat("X", c0)

	for i := 0; i < 3; i++ {
		if err := b.AppendString(s); err != nil {
			t.Fatal(err)
		}

		if err := b.Discard(len(s)); err != nil {
			t.Fatal(err)
		}
	}

	if b.Capacity() != c0 {
		t.Errorf("expected capacity to stay at %v, got %v", c0, b.Capacity())
	}

	for _, e := range o.events {
		if e.kind != "compact" {
			t.Errorf("expected only compactions, got %v", e)
		}
	}
}

func TestCompactionPreservesUnread(t *testing.T) {
	b := NewBuffer(0)

	if err := b.Append(bytes.Repeat([]byte{'a'}, DefaultPreallocSize-4)); err != nil {
		t.Fatal(err)
	}

	if err := b.AppendString("tail"); err != nil {
		t.Fatal(err)
	}

	if err := b.Discard(DefaultPreallocSize - 4); err != nil {
		t.Fatal(err)
	}

	if err := b.AppendString("more"); err != nil {
		t.Fatal(err)
	}

	if b.readPos != 0 {
		t.Errorf("expected the read position to be reset by compaction, got %v", b.readPos)
	}

	if b.String() != "tailmore" {
		t.Errorf("expected tailmore, got %q", b.String())
	}

	if b.Capacity() != DefaultPreallocSize {
		t.Errorf("compaction should not change capacity, got %v", b.Capacity())
	}
}

func TestOrderPreservation(t *testing.T) {
	b := NewBuffer(0)

	var expected []byte
	for i := 0; i < 200; i++ {
		chunk := bytes.Repeat([]byte{byte(i)}, i*7)
		expected = append(expected, chunk...)

		if err := b.Append(chunk); err != nil {
			t.Fatal(err)
		}

		if i%3 == 0 {
			n := len(expected) / 4
			if err := b.Discard(n); err != nil {
				t.Fatal(err)
			}
			expected = expected[n:]
		}

		if b.readPos > b.writePos || b.writePos > b.Capacity() {
			t.Fatalf("invariant broken: %v", b.Inspect())
		}
	}

	got, err := b.ReadBytes(len(expected))
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(got, expected) {
		t.Error("bytes reordered or lost across growth")
	}
}

func TestFailedGrowthLeavesBufferUntouched(t *testing.T) {
	a := &failingAllocator{}
	b := MustNew(WithAllocator(a), WithBytes([]byte("abc")))

	err := b.Append(make([]byte, DefaultPreallocSize))
	if err == nil {
		t.Fatal("expected growth through a failing allocator to fail")
	}

	if b.String() != "abc" || b.Capacity() != DefaultPreallocSize {
		t.Errorf("buffer changed by a failed append: %v", b.Inspect())
	}
}

func TestFailedPreallocation(t *testing.T) {
	_, err := New(WithAllocator(&failingAllocator{}), WithCapacity(DefaultPreallocSize*4))
	if err == nil {
		t.Error("expected preallocation through a failing allocator to fail")
	}
}

func TestReleaseExactlyOnce(t *testing.T) {
	a := &countingAllocator{}
	b := MustNew(WithAllocator(a))

	if err := b.Append(make([]byte, DefaultPreallocSize+1)); err != nil {
		t.Fatal(err)
	}
	if err := b.Append(make([]byte, DefaultPreallocSize*2)); err != nil {
		t.Fatal(err)
	}

	if a.allocs != 2 {
		t.Errorf("expected 2 allocations, got %v", a.allocs)
	}

	if a.releases != 1 {
		t.Errorf("expected the first region to be released on growth, got %v releases", a.releases)
	}

	if err := b.Close(); err != nil {
		t.Error(err)
	}

	if err := b.Close(); err != nil {
		t.Error(err)
	}

	if a.releases != a.allocs {
		t.Errorf("expected %v releases, got %v", a.allocs, a.releases)
	}

	if b.Capacity() != DefaultPreallocSize || b.Length() != 0 {
		t.Errorf("expected a closed buffer to be empty and inline, got %v", b.Inspect())
	}
}

func TestInlineNeverReleased(t *testing.T) {
	a := &countingAllocator{}
	b := MustNew(WithAllocator(a), WithBytes([]byte("small")))

	if err := b.Close(); err != nil {
		t.Error(err)
	}

	if a.allocs != 0 || a.releases != 0 {
		t.Errorf("inline storage went through the allocator: %v allocs, %v releases", a.allocs, a.releases)
	}
}

func TestToBytesDoesNotConsume(t *testing.T) {
	b := NewBufferBytes([]byte("abc"))

	p := b.ToBytes()
	p[0] = 'x'

	if b.Length() != 3 || b.String() != "abc" {
		t.Errorf("ToBytes should copy without consuming, buffer is now %q", b.String())
	}
}

func TestEqualAndClone(t *testing.T) {
	b := NewBufferBytes([]byte("abcdef"))
	b.Discard(2)

	c, err := b.Clone()
	if err != nil {
		t.Fatal(err)
	}

	if !b.Equal(c) || c.String() != "cdef" {
		t.Errorf("expected clone to hold cdef, got %q", c.String())
	}

	c.AppendString("g")
	if b.Equal(c) {
		t.Error("clone shares storage with the original")
	}

	if b.Equal(nil) {
		t.Error("a buffer should never equal nil")
	}

	if !NewBuffer(0).Empty() {
		t.Error("expected a new buffer to be empty")
	}
}

func TestInspect(t *testing.T) {
	b := NewBufferBytes([]byte("abcdef"))
	b.Discard(2)

	s := b.Inspect()
	for _, want := range []string{"read_pos=2", "write_pos=6", "len=4", "capacity=1024"} {
		if !strings.Contains(s, want) {
			t.Errorf("expected %q to contain %q", s, want)
		}
	}
}

func BenchmarkAppendRead(b *testing.B) {
	buf := NewBuffer(0)
	payload := make([]byte, 100)

	for i := 0; i < b.N; i++ {
		buf.Append(payload)
		buf.AppendInt(int64(i & 0x7fffffff))
		buf.Discard(100)
		buf.ReadInt()
	}
}
