// Package layout decodes and encodes sequences of typed fields on top of a
// bytebuffer.Buffer.
//
// A layout is written as whitespace separated field tokens, for example
//
//	u32 u16 bytes:8 skip:2 f64 i8s:4
//
// the reading and writing is implemented here, while the cli lives in
// cmd/bufdump, which dumps the records of a binary file according to a layout.
package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/performancecopilot/bytebuffer"
)

// Kind is an enumerated type for the types a field can have
type Kind int

// Values for Kind
const (
	Uint8 Kind = iota + 1
	Int8
	Uint16
	Int16
	Uint32
	Int32
	Uint64
	Int64
	Float32
	Float64
	Bytes
	Skip
	Uint8s
	Int8s
)

var kindNames = map[Kind]string{
	Uint8:   "u8",
	Int8:    "i8",
	Uint16:  "u16",
	Int16:   "i16",
	Uint32:  "u32",
	Int32:   "i32",
	Uint64:  "u64",
	Int64:   "i64",
	Float32: "f32",
	Float64: "f64",
	Bytes:   "bytes",
	Skip:    "skip",
	Uint8s:  "u8s",
	Int8s:   "i8s",
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, n := range kindNames {
		m[n] = k
	}
	return m
}()

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// counted reports whether fields of this kind carry a count
func (k Kind) counted() bool {
	return k == Bytes || k == Skip || k == Uint8s || k == Int8s
}

func (k Kind) width() int {
	switch k {
	case Uint8, Int8:
		return 1
	case Uint16, Int16:
		return 2
	case Uint32, Int32, Float32:
		return 4
	case Uint64, Int64, Float64:
		return 8
	}
	return 1
}

// Field is a single entry of a Layout
type Field struct {
	Kind  Kind
	Count int // number of bytes for counted kinds, unused otherwise
}

// Width returns the encoded byte length of the field
func (f Field) Width() int {
	if f.Kind.counted() {
		return f.Count
	}
	return f.Kind.width()
}

func (f Field) String() string {
	if f.Kind.counted() {
		return fmt.Sprintf("%v:%d", f.Kind, f.Count)
	}
	return f.Kind.String()
}

// Layout is an ordered list of fields making up one record
type Layout []Field

// Width returns the encoded byte length of one record
func (l Layout) Width() int {
	w := 0
	for _, f := range l {
		w += f.Width()
	}
	return w
}

func (l Layout) String() string {
	s := make([]string, len(l))
	for i, f := range l {
		s[i] = f.String()
	}
	return strings.Join(s, " ")
}

// Parse parses a layout description
func Parse(s string) (Layout, error) {
	tokens := strings.Fields(s)
	l := make(Layout, 0, len(tokens))

	for i, tok := range tokens {
		name, count := tok, ""
		if j := strings.IndexByte(tok, ':'); j >= 0 {
			name, count = tok[:j], tok[j+1:]
		}

		k, ok := kindsByName[name]
		if !ok {
			return nil, errors.Errorf("field %d: unknown type %q", i, name)
		}

		f := Field{Kind: k}
		switch {
		case k.counted() && count == "":
			return nil, errors.Errorf("field %d: %v requires a count", i, k)
		case k.counted():
			n, err := strconv.Atoi(count)
			if err != nil || n < 0 {
				return nil, errors.Errorf("field %d: invalid count %q", i, count)
			}
			f.Count = n
		case count != "":
			return nil, errors.Errorf("field %d: %v does not take a count", i, k)
		}

		l = append(l, f)
	}

	return l, nil
}

// MustParse is Parse that panics on error
func MustParse(s string) Layout {
	l, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return l
}

// Value is a decoded field
type Value struct {
	Field Field
	Val   interface{} // nil for skipped fields
}

// Decode reads one record from b. On failure the values decoded so far are
// returned along with the error, and b is positioned right after them.
func Decode(b *bytebuffer.Buffer, l Layout) ([]Value, error) {
	vals := make([]Value, 0, len(l))

	for i, f := range l {
		v, err := decodeField(b, f)
		if err != nil {
			return vals, errors.Wrapf(err, "field %d (%v)", i, f)
		}
		vals = append(vals, Value{f, v})
	}

	return vals, nil
}

func decodeField(b *bytebuffer.Buffer, f Field) (interface{}, error) {
	switch f.Kind {
	case Uint8:
		return b.ReadUnsignedByte()
	case Int8:
		return b.ReadSignedByte()
	case Uint16:
		return b.ReadUnsignedShort()
	case Int16:
		return b.ReadShort()
	case Uint32:
		return b.ReadUnsignedInt()
	case Int32:
		return b.ReadInt()
	case Uint64:
		return b.ReadUnsignedLong()
	case Int64:
		return b.ReadLong()
	case Float32:
		return b.ReadFloat()
	case Float64:
		return b.ReadDouble()
	case Bytes:
		return b.ReadBytes(f.Count)
	case Skip:
		return nil, b.Discard(f.Count)
	case Uint8s:
		return b.ReadByteArray(f.Count)
	case Int8s:
		return b.ReadSignedByteArray(f.Count)
	}

	return nil, errors.Errorf("unknown type %v", f.Kind)
}

// Encode appends one record to b. Every field except skip takes one value.
// The record is built aside first, so b is untouched when any value is rejected.
func Encode(b *bytebuffer.Buffer, l Layout, vals ...interface{}) error {
	scratch, err := bytebuffer.New(bytebuffer.WithAllocator(bytebuffer.HeapAllocator{}))
	if err != nil {
		return err
	}
	defer scratch.Close()

	for i, f := range l {
		if f.Kind == Skip {
			if err := scratch.Append(make([]byte, f.Count)); err != nil {
				return err
			}
			continue
		}

		if len(vals) == 0 {
			return errors.Errorf("field %d (%v): missing value", i, f)
		}

		if err := encodeField(scratch, f, vals[0]); err != nil {
			return errors.Wrapf(err, "field %d (%v)", i, f)
		}
		vals = vals[1:]
	}

	if len(vals) > 0 {
		return errors.Errorf("%d values left over after encoding %v", len(vals), l)
	}

	return b.AppendBuffer(scratch)
}
