package layout

import (
	"math"

	"github.com/pkg/errors"

	"github.com/performancecopilot/bytebuffer"
)

// bounds of the integer kinds
var bounds = map[Kind][2]int64{
	Uint8:  {0, math.MaxUint8},
	Int8:   {math.MinInt8, math.MaxInt8},
	Uint16: {0, math.MaxUint16},
	Int16:  {math.MinInt16, math.MaxInt16},
	Uint32: {0, math.MaxUint32},
	Int32:  {math.MinInt32, math.MaxInt32},
	Int64:  {math.MinInt64, math.MaxInt64},
}

func encodeField(b *bytebuffer.Buffer, f Field, val interface{}) error {
	switch f.Kind {
	case Uint64:
		u, err := toUint64(val)
		if err != nil {
			return err
		}
		return b.AppendUnsignedLong(u)
	case Float32:
		v, err := toFloat(val)
		if err != nil {
			return err
		}
		return b.AppendFloat(float32(v))
	case Float64:
		v, err := toFloat(val)
		if err != nil {
			return err
		}
		return b.AppendDouble(v)
	case Bytes:
		return encodeBytes(b, f, val)
	case Uint8s, Int8s:
		return encodeArray(b, f, val)
	}

	lim, ok := bounds[f.Kind]
	if !ok {
		return errors.Errorf("unknown type %v", f.Kind)
	}

	v, err := toInt64(val)
	if err != nil {
		return err
	}

	if v < lim[0] || v > lim[1] {
		return errors.Wrapf(bytebuffer.ErrRange, "%d does not fit in %v", v, f.Kind)
	}

	switch f.Kind.width() {
	case 1:
		return b.AppendByte(int(v))
	case 2:
		return b.AppendShort(int(v))
	case 4:
		return b.AppendInt(v)
	}
	return b.AppendLong(v)
}

func encodeBytes(b *bytebuffer.Buffer, f Field, val interface{}) error {
	var p []byte
	switch v := val.(type) {
	case []byte:
		p = v
	case string:
		p = []byte(v)
	case bytebuffer.Peeker:
		p = v.Peek()
	default:
		return errors.Wrapf(bytebuffer.ErrType, "cannot encode %T as bytes", val)
	}

	if len(p) != f.Count {
		return errors.Wrapf(bytebuffer.ErrRange, "expected %d bytes, got %d", f.Count, len(p))
	}
	return b.Append(p)
}

func encodeArray(b *bytebuffer.Buffer, f Field, val interface{}) error {
	vals, ok := val.([]int)
	if !ok {
		return errors.Wrapf(bytebuffer.ErrType, "cannot encode %T as %v", val, f.Kind)
	}

	if len(vals) != f.Count {
		return errors.Wrapf(bytebuffer.ErrRange, "expected %d elements, got %d", f.Count, len(vals))
	}

	lo, hi := 0, math.MaxUint8
	if f.Kind == Int8s {
		lo, hi = math.MinInt8, math.MaxInt8
	}

	for i, v := range vals {
		if v < lo || v > hi {
			return errors.Wrapf(bytebuffer.ErrRange, "element %d: %d does not fit in %v", i, v, f.Kind)
		}
	}

	return b.AppendByteArray(vals)
}

func toInt64(val interface{}) (int64, error) {
	switch v := val.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint:
		if uint64(v) > math.MaxInt64 {
			return 0, errors.Wrapf(bytebuffer.ErrRange, "%d does not fit in 64 signed bits", v)
		}
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, errors.Wrapf(bytebuffer.ErrRange, "%d does not fit in 64 signed bits", v)
		}
		return int64(v), nil
	}

	return 0, errors.Wrapf(bytebuffer.ErrType, "cannot encode %T as an integer", val)
}

func toUint64(val interface{}) (uint64, error) {
	switch v := val.(type) {
	case uint:
		return uint64(v), nil
	case uint64:
		return v, nil
	}

	i, err := toInt64(val)
	if err != nil {
		return 0, err
	}

	if i < 0 {
		return 0, errors.Wrapf(bytebuffer.ErrRange, "%d is negative", i)
	}
	return uint64(i), nil
}

func toFloat(val interface{}) (float64, error) {
	switch v := val.(type) {
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	}

	i, err := toInt64(val)
	if err != nil {
		return 0, errors.Wrapf(bytebuffer.ErrType, "cannot encode %T as a float", val)
	}
	return float64(i), nil
}
