package bytebuffer

import (
	"encoding/binary"
	"math"
	"math/big"
)

// byteOrder is the wire order of every multi-byte value
var byteOrder = binary.BigEndian

// limits shared by the narrow appends, a value is accepted when it fits
// either the signed or the unsigned type of that width
const (
	minByte  = math.MinInt8
	maxByte  = math.MaxUint8
	minShort = math.MinInt16
	maxShort = math.MaxUint16
	minWord  = math.MinInt32
	maxWord  = math.MaxUint32
)

// Append appends a copy of p. p may be a view of the buffer itself.
func (b *Buffer) Append(p []byte) error {
	if b.aliases(p) {
		// compaction and growth both move or release the region p points into
		p = append([]byte(nil), p...)
	}

	if err := b.ensureWritable(len(p)); err != nil {
		return err
	}

	b.writePos += copy(b.storage[b.writePos:], p)
	return nil
}

// Write implements io.Writer, it always writes all of p unless storage cannot grow
func (b *Buffer) Write(p []byte) (int, error) {
	if err := b.Append(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// AppendString appends the bytes of s
func (b *Buffer) AppendString(s string) error {
	if err := b.ensureWritable(len(s)); err != nil {
		return err
	}

	b.writePos += copy(b.storage[b.writePos:], s)
	return nil
}

// AppendBuffer appends a copy of the unread bytes of src. src is not consumed.
func (b *Buffer) AppendBuffer(src Peeker) error {
	if src == nil {
		return typeErrorf("cannot append a nil buffer")
	}

	if other, ok := src.(*Buffer); ok && other == nil {
		return typeErrorf("cannot append a nil buffer")
	}

	return b.Append(src.Peek())
}

// next reserves n bytes at the write position and returns them
func (b *Buffer) next(n int) ([]byte, error) {
	if err := b.ensureWritable(n); err != nil {
		return nil, err
	}

	p := b.storage[b.writePos : b.writePos+n]
	b.writePos += n
	return p, nil
}

// AppendByte appends a single byte, v must fit in a signed or an unsigned byte
func (b *Buffer) AppendByte(v int) error {
	if v < minByte || v > maxByte {
		return rangeErrorf("byte value %d outside [%d, %d]", v, minByte, maxByte)
	}

	p, err := b.next(1)
	if err != nil {
		return err
	}

	p[0] = byte(v)
	return nil
}

// AppendShort appends 2 bytes, v must fit in a signed or an unsigned short
func (b *Buffer) AppendShort(v int) error {
	if v < minShort || v > maxShort {
		return rangeErrorf("short value %d outside [%d, %d]", v, minShort, maxShort)
	}

	p, err := b.next(2)
	if err != nil {
		return err
	}

	byteOrder.PutUint16(p, uint16(v))
	return nil
}

// AppendInt appends 4 bytes, v must fit in a signed or an unsigned int
func (b *Buffer) AppendInt(v int64) error {
	if v < minWord || v > maxWord {
		return rangeErrorf("int value %d outside [%d, %d]", v, minWord, int64(maxWord))
	}

	p, err := b.next(4)
	if err != nil {
		return err
	}

	byteOrder.PutUint32(p, uint32(v))
	return nil
}

// AppendLong appends 8 bytes holding v in two's complement
func (b *Buffer) AppendLong(v int64) error { return b.AppendUnsignedLong(uint64(v)) }

// AppendUnsignedLong appends 8 bytes holding v
func (b *Buffer) AppendUnsignedLong(v uint64) error {
	p, err := b.next(8)
	if err != nil {
		return err
	}

	byteOrder.PutUint64(p, v)
	return nil
}

// AppendFloat appends the IEEE-754 single precision bits of v
func (b *Buffer) AppendFloat(v float32) error {
	p, err := b.next(4)
	if err != nil {
		return err
	}

	byteOrder.PutUint32(p, math.Float32bits(v))
	return nil
}

// AppendDouble appends the IEEE-754 double precision bits of v
func (b *Buffer) AppendDouble(v float64) error {
	p, err := b.next(8)
	if err != nil {
		return err
	}

	byteOrder.PutUint64(p, math.Float64bits(v))
	return nil
}

// AppendByteArray appends one byte per element. Every element is checked
// before anything is written, so a bad element leaves the buffer untouched.
func (b *Buffer) AppendByteArray(vals []int) error {
	for i, v := range vals {
		if v < minByte || v > maxByte {
			return rangeErrorf("element %d: byte value %d outside [%d, %d]", i, v, minByte, maxByte)
		}
	}

	p, err := b.next(len(vals))
	if err != nil {
		return err
	}

	for i, v := range vals {
		p[i] = byte(v)
	}
	return nil
}

// AppendVal appends an arbitrary value, choosing the encoding from its type.
//
// Integers are written with the width of their go type, int and uint as longs.
// A *big.Int is written as a long and must fit in 64 bits, signed or unsigned.
// Booleans take a single byte. A []int is written as a byte array.
func (b *Buffer) AppendVal(val interface{}) error {
	switch v := val.(type) {
	case []byte:
		return b.Append(v)
	case string:
		return b.AppendString(v)
	case Peeker:
		return b.AppendBuffer(v)
	case bool:
		if v {
			return b.AppendByte(1)
		}
		return b.AppendByte(0)
	case int8:
		return b.AppendByte(int(v))
	case uint8:
		return b.AppendByte(int(v))
	case int16:
		return b.AppendShort(int(v))
	case uint16:
		return b.AppendShort(int(v))
	case int32:
		return b.AppendInt(int64(v))
	case uint32:
		return b.AppendInt(int64(v))
	case int:
		return b.AppendLong(int64(v))
	case int64:
		return b.AppendLong(v)
	case uint:
		return b.AppendUnsignedLong(uint64(v))
	case uint64:
		return b.AppendUnsignedLong(v)
	case float32:
		return b.AppendFloat(v)
	case float64:
		return b.AppendDouble(v)
	case *big.Int:
		return b.appendBig(v)
	case []int:
		return b.AppendByteArray(v)
	}

	return typeErrorf("cannot append value of type %T", val)
}

func (b *Buffer) appendBig(v *big.Int) error {
	switch {
	case v == nil:
		return typeErrorf("cannot append a nil *big.Int")
	case v.IsInt64():
		return b.AppendLong(v.Int64())
	case v.IsUint64():
		return b.AppendUnsignedLong(v.Uint64())
	}

	return rangeErrorf("integer %v does not fit in 64 bits", v)
}
