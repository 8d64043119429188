package codec

import "encoding/binary"

// Encode packs one value per integer slot, in declaration order, into a
// byte sequence following the layout exactly. Padding regions are
// zeroed. The tail is copied verbatim after the fixed region; it must be
// nil or empty for layouts without a trailing region.
//
// Values are truncated to the slot width, matching native integer
// assignment semantics.
func (l Layout) Encode(values []int64, tail []byte) ([]byte, error) {
	if len(values) != l.ValueCount() {
		return nil, &UsageError{
			Kind:    UsageErrArity,
			Routine: "encode " + l.Name,
			Want:    l.ValueCount(),
			Got:     len(values),
		}
	}
	if !l.HasTail && len(tail) > 0 {
		return nil, &UsageError{Kind: UsageErrUnexpectedTail, Routine: "encode " + l.Name}
	}

	buf := make([]byte, l.FixedSize+len(tail))
	off := 0
	next := 0
	for _, f := range l.Fields {
		switch f.Kind {
		case KindInt:
			putInt(buf[off:off+f.Width], values[next], f.Width)
			next++
			off += f.Width
		case KindPad:
			off += f.Width
		case KindTail:
			copy(buf[l.FixedSize:], tail)
		}
	}
	return buf, nil
}

// Decode unpacks one value per integer slot, in declaration order. The
// buffer must be at least FixedSize bytes, and exactly FixedSize when
// the layout has no trailing region. With a trailing region, every byte
// beyond the fixed part is returned as the tail.
func (l Layout) Decode(buf []byte) ([]int64, []byte, error) {
	if len(buf) < l.FixedSize {
		return nil, nil, &UsageError{
			Kind:    UsageErrShortBuffer,
			Routine: "decode " + l.Name,
			Want:    l.FixedSize,
			Got:     len(buf),
		}
	}
	if !l.HasTail && len(buf) != l.FixedSize {
		return nil, nil, &UsageError{
			Kind:    UsageErrSizeMismatch,
			Routine: "decode " + l.Name,
			Want:    l.FixedSize,
			Got:     len(buf),
		}
	}

	values := make([]int64, 0, l.ValueCount())
	var tail []byte
	off := 0
	for _, f := range l.Fields {
		switch f.Kind {
		case KindInt:
			values = append(values, getInt(buf[off:off+f.Width], f.Width, f.Signed))
			off += f.Width
		case KindPad:
			off += f.Width
		case KindTail:
			tail = append([]byte(nil), buf[l.FixedSize:]...)
		}
	}
	return values, tail, nil
}

func putInt(dst []byte, v int64, width int) {
	switch width {
	case 1:
		dst[0] = byte(v)
	case 2:
		binary.NativeEndian.PutUint16(dst, uint16(v))
	case 4:
		binary.NativeEndian.PutUint32(dst, uint32(v))
	case 8:
		binary.NativeEndian.PutUint64(dst, uint64(v))
	}
}

func getInt(src []byte, width int, signed bool) int64 {
	switch width {
	case 1:
		if signed {
			return int64(int8(src[0]))
		}
		return int64(src[0])
	case 2:
		u := binary.NativeEndian.Uint16(src)
		if signed {
			return int64(int16(u))
		}
		return int64(u)
	case 4:
		u := binary.NativeEndian.Uint32(src)
		if signed {
			return int64(int32(u))
		}
		return int64(u)
	case 8:
		return int64(binary.NativeEndian.Uint64(src))
	}
	return 0
}
