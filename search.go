package bytebuffer

import "bytes"

// Index returns the offset of the first occurrence of pattern in the unread
// bytes at or after offset, or NotFound. Offsets are relative to the read position.
func (b *Buffer) Index(pattern []byte, offset int) (int, error) {
	if err := checkLength("offset", offset); err != nil {
		return NotFound, err
	}

	l := b.Length()
	if offset >= l || len(pattern) > l-offset {
		return NotFound, nil
	}

	i := bytes.Index(b.storage[b.readPos+offset:b.writePos], pattern)
	if i < 0 {
		return NotFound, nil
	}
	return offset + i, nil
}

// Update overwrites unread bytes starting at offset, relative to the read position.
//
// Nothing past the write position is ever touched, a replacement that runs over
// it is cut short and an offset at or beyond it writes nothing. Neither cursor moves.
func (b *Buffer) Update(offset int, p []byte) error {
	if err := checkLength("offset", offset); err != nil {
		return err
	}

	if offset >= b.Length() {
		return nil
	}

	copy(b.storage[b.readPos+offset:b.writePos], p)
	return nil
}
