package bytebuffer

import (
	"testing"

	"github.com/pkg/errors"
)

func TestIndex(t *testing.T) {
	b := NewBufferBytes([]byte("abcXYZdef"))

	cases := []struct {
		pattern  string
		offset   int
		expected int
	}{
		{"XYZ", 0, 3},
		{"XYZ", 3, 3},
		{"XYZ", 4, NotFound},
		{"qq", 0, NotFound},
		{"abc", 0, 0},
		{"def", 6, 6},
		{"defg", 0, NotFound},
		{"f", 9, NotFound},
		{"f", 100, NotFound},
		{"", 2, 2},
	}

	for _, c := range cases {
		i, err := b.Index([]byte(c.pattern), c.offset)
		if err != nil {
			t.Errorf("index(%q, %v): unexpected error %v", c.pattern, c.offset, err)
			continue
		}

		if i != c.expected {
			t.Errorf("index(%q, %v): expected %v, got %v", c.pattern, c.offset, c.expected, i)
		}
	}

	if _, err := b.Index([]byte("a"), -1); errors.Cause(err) != ErrRange {
		t.Errorf("expected ErrRange for a negative offset, got %v", err)
	}
}

func TestIndexIsRelativeToReadPosition(t *testing.T) {
	b := NewBufferBytes([]byte("abcXYZdef"))
	b.Discard(4)

	i, err := b.Index([]byte("abc"), 0)
	if err != nil || i != NotFound {
		t.Errorf("consumed bytes should not be searched, got %v (%v)", i, err)
	}

	i, err = b.Index([]byte("def"), 0)
	if err != nil || i != 2 {
		t.Errorf("expected def at 2, got %v (%v)", i, err)
	}
}

func TestUpdate(t *testing.T) {
	cases := []struct {
		offset   int
		data     string
		expected string
	}{
		{0, "XY", "XYcdefgh"},
		{3, "Z", "abcZefgh"},
		{6, "12345", "abcdef12"},
		{8, "12", "abcdefgh"},
		{20, "12", "abcdefgh"},
		{2, "", "abcdefgh"},
	}

	for _, c := range cases {
		b := NewBufferBytes([]byte("abcdefgh"))

		if err := b.Update(c.offset, []byte(c.data)); err != nil {
			t.Errorf("update(%v, %q): unexpected error %v", c.offset, c.data, err)
			continue
		}

		if b.String() != c.expected {
			t.Errorf("update(%v, %q): expected %q, got %q", c.offset, c.data, c.expected, b.String())
		}

		if b.Length() != 8 {
			t.Errorf("update(%v, %q): length changed to %v", c.offset, c.data, b.Length())
		}
	}

	b := NewBufferBytes([]byte("abc"))
	if err := b.Update(-1, []byte("x")); errors.Cause(err) != ErrRange {
		t.Errorf("expected ErrRange for a negative offset, got %v", err)
	}
}

func TestUpdateIsRelativeToReadPosition(t *testing.T) {
	b := NewBufferBytes([]byte("..length:????"))
	b.Discard(2)

	if err := b.Update(7, []byte("1234")); err != nil {
		t.Fatal(err)
	}

	if b.String() != "length:1234" {
		t.Errorf("expected length:1234, got %q", b.String())
	}

	// growth compacts, offsets keep following the unread region
	if err := b.Append(make([]byte, DefaultPreallocSize)); err != nil {
		t.Fatal(err)
	}
	if err := b.Update(0, []byte("L")); err != nil {
		t.Fatal(err)
	}

	p, _ := b.ReadBytes(11)
	if string(p) != "Length:1234" {
		t.Errorf("expected Length:1234 after growth, got %q", p)
	}
}
