package bytebuffer

import "github.com/pkg/errors"

// ErrRange is the cause of every error caused by a length, offset or value
// that falls outside what an operation can handle. Use errors.Cause to test for it.
var ErrRange = errors.New("out of range")

// ErrType is the cause of every error caused by passing a value of a type
// an operation does not know how to encode.
var ErrType = errors.New("unsupported type")

// NotFound is returned by Index when the pattern does not occur
const NotFound = -1

func rangeErrorf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrRange, format, args...)
}

func typeErrorf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrType, format, args...)
}

// checkLength validates a length or offset argument
func checkLength(name string, n int) error {
	if n < 0 {
		return rangeErrorf("negative %s %d", name, n)
	}
	return nil
}
