package layout

import (
	"github.com/pkg/errors"

	"github.com/performancecopilot/bytebuffer"
)

// Report is the result of dumping a byte slice
type Report struct {
	Records   [][]Value
	Remaining int    // bytes left after the last complete record
	Buffer    string // diagnostic state of the buffer after decoding
}

// Dump decodes records laid out as l from data. With repeat it keeps
// decoding until fewer bytes than a whole record remain, otherwise it
// decodes a single record.
func Dump(data []byte, l Layout, repeat bool, opts ...bytebuffer.Option) (*Report, error) {
	b, err := bytebuffer.New(append(opts, bytebuffer.WithBytes(data))...)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	r := &Report{}
	if len(l) == 0 {
		r.Remaining, r.Buffer = b.Length(), b.Inspect()
		return r, nil
	}

	w := l.Width()
	if repeat && w == 0 {
		return nil, errors.New("cannot repeat a layout of width 0")
	}

	for {
		if b.Length() < w {
			if len(r.Records) == 0 {
				return nil, errors.Wrapf(bytebuffer.ErrRange, "a record needs %d bytes, only %d available", w, b.Length())
			}
			break
		}

		vals, err := Decode(b, l)
		if err != nil {
			return nil, errors.Wrapf(err, "record %d", len(r.Records))
		}
		r.Records = append(r.Records, vals)

		if !repeat {
			break
		}
	}

	r.Remaining, r.Buffer = b.Length(), b.Inspect()
	return r, nil
}

// Find returns the offsets of all non overlapping occurrences of pattern in data
func Find(data, pattern []byte) ([]int, error) {
	if len(pattern) == 0 {
		return nil, errors.New("cannot search for an empty pattern")
	}

	b := bytebuffer.NewBufferBytes(data)
	defer b.Close()

	var offsets []int
	for off := 0; ; {
		i, err := b.Index(pattern, off)
		if err != nil {
			return nil, err
		}

		if i == bytebuffer.NotFound {
			return offsets, nil
		}

		offsets = append(offsets, i)
		off = i + len(pattern)
	}
}
