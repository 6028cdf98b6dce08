package bytebuffer

import (
	"io"
	"math"
)

// consume checks that n bytes are readable, then returns them and advances
// the read position. The returned slice aliases storage.
func (b *Buffer) consume(n int) ([]byte, error) {
	if err := b.checkReadable(n); err != nil {
		return nil, err
	}

	p := b.storage[b.readPos : b.readPos+n]
	b.readPos += n
	return p, nil
}

// Discard skips the next n bytes
func (b *Buffer) Discard(n int) error {
	_, err := b.consume(n)
	return err
}

// ReadBytes reads the next n bytes and returns them as a new slice
func (b *Buffer) ReadBytes(n int) ([]byte, error) {
	p, err := b.consume(n)
	if err != nil {
		return nil, err
	}

	out := make([]byte, n)
	copy(out, p)
	return out, nil
}

// Read implements io.Reader, reading up to len(p) bytes
func (b *Buffer) Read(p []byte) (int, error) {
	if b.Empty() {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}

	n := copy(p, b.Peek())
	b.readPos += n
	return n, nil
}

// ReadUnsignedByte reads a single byte
func (b *Buffer) ReadUnsignedByte() (uint8, error) {
	p, err := b.consume(1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

// ReadSignedByte reads a single byte as a two's complement value
func (b *Buffer) ReadSignedByte() (int8, error) {
	v, err := b.ReadUnsignedByte()
	return int8(v), err
}

// ReadUnsignedShort reads 2 bytes
func (b *Buffer) ReadUnsignedShort() (uint16, error) {
	p, err := b.consume(2)
	if err != nil {
		return 0, err
	}
	return byteOrder.Uint16(p), nil
}

// ReadShort reads 2 bytes as a two's complement value
func (b *Buffer) ReadShort() (int16, error) {
	v, err := b.ReadUnsignedShort()
	return int16(v), err
}

// ReadUnsignedInt reads 4 bytes
func (b *Buffer) ReadUnsignedInt() (uint32, error) {
	p, err := b.consume(4)
	if err != nil {
		return 0, err
	}
	return byteOrder.Uint32(p), nil
}

// ReadInt reads 4 bytes as a two's complement value
func (b *Buffer) ReadInt() (int32, error) {
	v, err := b.ReadUnsignedInt()
	return int32(v), err
}

// ReadUnsignedLong reads 8 bytes
func (b *Buffer) ReadUnsignedLong() (uint64, error) {
	p, err := b.consume(8)
	if err != nil {
		return 0, err
	}
	return byteOrder.Uint64(p), nil
}

// ReadLong reads 8 bytes as a two's complement value
func (b *Buffer) ReadLong() (int64, error) {
	v, err := b.ReadUnsignedLong()
	return int64(v), err
}

// ReadFloat reads 4 bytes as an IEEE-754 single precision value
func (b *Buffer) ReadFloat() (float32, error) {
	v, err := b.ReadUnsignedInt()
	return math.Float32frombits(v), err
}

// ReadDouble reads 8 bytes as an IEEE-754 double precision value
func (b *Buffer) ReadDouble() (float64, error) {
	v, err := b.ReadUnsignedLong()
	return math.Float64frombits(v), err
}

// ReadByteArray reads n bytes, each one as an unsigned value
func (b *Buffer) ReadByteArray(n int) ([]int, error) {
	return b.readByteArray(n, false)
}

// ReadSignedByteArray reads n bytes, each one as a two's complement value
func (b *Buffer) ReadSignedByteArray(n int) ([]int, error) {
	return b.readByteArray(n, true)
}

func (b *Buffer) readByteArray(n int, signed bool) ([]int, error) {
	p, err := b.consume(n)
	if err != nil {
		return nil, err
	}

	vals := make([]int, n)
	for i, c := range p {
		if signed {
			vals[i] = int(int8(c))
		} else {
			vals[i] = int(c)
		}
	}
	return vals, nil
}
