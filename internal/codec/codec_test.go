package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func mustSynthesize(t *testing.T, name string, facts []MemberFact, size int, hasTail bool) Layout {
	t.Helper()
	layout, err := Synthesize(name, facts, size, hasTail)
	if err != nil {
		t.Fatalf("Synthesize(%s): %v", name, err)
	}
	return layout
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		facts   []MemberFact
		size    int
		hasTail bool
		values  []int64
		tail    []byte
	}{
		{
			name: "two int32",
			facts: []MemberFact{
				{Name: "x", Offset: 0, Width: 4, Signed: true},
				{Name: "y", Offset: 4, Width: 4, Signed: true},
			},
			size:   8,
			values: []int64{4660, 22136},
		},
		{
			name: "negative values",
			facts: []MemberFact{
				{Name: "a", Offset: 0, Width: 1, Signed: true},
				{Name: "b", Offset: 2, Width: 2, Signed: true},
				{Name: "c", Offset: 8, Width: 8, Signed: true},
			},
			size:   16,
			values: []int64{-1, -32768, -1234567890123},
		},
		{
			name: "unsigned stays unsigned",
			facts: []MemberFact{
				{Name: "a", Offset: 0, Width: 1, Signed: false},
				{Name: "b", Offset: 2, Width: 2, Signed: false},
				{Name: "c", Offset: 4, Width: 4, Signed: false},
			},
			size:   8,
			values: []int64{255, 65535, 4294967295},
		},
		{
			name: "with tail",
			facts: []MemberFact{
				{Name: "id", Offset: 0, Width: 4, Signed: true},
				{Name: "vers", Offset: 4, Width: 1, Signed: true},
			},
			size:    8,
			hasTail: true,
			values:  []int64{4660, 86},
			tail:    []byte("hello\x00"),
		},
		{
			name: "with empty tail",
			facts: []MemberFact{
				{Name: "id", Offset: 0, Width: 4, Signed: true},
			},
			size:    4,
			hasTail: true,
			values:  []int64{7},
			tail:    nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layout := mustSynthesize(t, tt.name, tt.facts, tt.size, tt.hasTail)
			buf, err := layout.Encode(tt.values, tt.tail)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if want := layout.FixedSize + len(tt.tail); len(buf) != want {
				t.Fatalf("encoded length = %d, want %d", len(buf), want)
			}
			values, tail, err := layout.Decode(buf)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if len(values) != len(tt.values) {
				t.Fatalf("decoded %d values, want %d", len(values), len(tt.values))
			}
			for i := range values {
				if values[i] != tt.values[i] {
					t.Errorf("value %d = %d, want %d", i, values[i], tt.values[i])
				}
			}
			if !bytes.Equal(tail, tt.tail) {
				t.Errorf("tail = %q, want %q", tail, tt.tail)
			}
		})
	}
}

func TestEncodeTwoInt32Scenario(t *testing.T) {
	layout := mustSynthesize(t, "point", []MemberFact{
		{Name: "x", Offset: 0, Width: 4, Signed: true},
		{Name: "y", Offset: 4, Width: 4, Signed: true},
	}, 8, false)
	buf, err := layout.Encode([]int64{4660, 22136}, nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(buf) != 8 {
		t.Fatalf("encoded length = %d, want 8", len(buf))
	}
	if got := binary.NativeEndian.Uint32(buf[0:4]); got != 4660 {
		t.Errorf("first word = %d, want 4660", got)
	}
	if got := binary.NativeEndian.Uint32(buf[4:8]); got != 22136 {
		t.Errorf("second word = %d, want 22136", got)
	}
}

func TestTailConsumesEverythingPastFixedRegion(t *testing.T) {
	layout := mustSynthesize(t, "pkt", []MemberFact{
		{Name: "id", Offset: 0, Width: 4, Signed: true},
		{Name: "flags", Offset: 4, Width: 4, Signed: true},
	}, 8, true)
	buf, err := layout.Encode([]int64{4660, 86}, []byte("hello\x00"))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(buf) != 14 {
		t.Fatalf("encoded length = %d, want 14", len(buf))
	}
	if !bytes.Equal(buf[8:], []byte("hello\x00")) {
		t.Errorf("tail region = %q, want %q", buf[8:], "hello\x00")
	}
	values, tail, err := layout.Decode(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if values[0] != 4660 || values[1] != 86 {
		t.Errorf("values = %v, want [4660 86]", values)
	}
	if !bytes.Equal(tail, []byte("hello\x00")) {
		t.Errorf("tail = %q, want %q", tail, "hello\x00")
	}

	// An exactly-fixed-size buffer decodes with an empty tail.
	values, tail, err = layout.Decode(buf[:8])
	if err != nil {
		t.Fatalf("Decode fixed-only: %v", err)
	}
	if values[0] != 4660 || len(tail) != 0 {
		t.Errorf("fixed-only decode = (%v, %q)", values, tail)
	}
}

func TestPaddingIsZeroedAndSkipped(t *testing.T) {
	layout := mustSynthesize(t, "msghdr", []MemberFact{
		{Name: "cmd", Offset: 0, Width: 4, Signed: true},
		{Name: "vers", Offset: 4, Width: 1, Signed: true},
	}, 8, false)
	buf, err := layout.Encode([]int64{-1, 42}, nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	for i := 5; i < 8; i++ {
		if buf[i] != 0 {
			t.Errorf("padding byte %d = %#x, want 0", i, buf[i])
		}
	}

	// Whatever sits in the padding bytes must not leak into decode.
	buf[5], buf[6], buf[7] = 0xde, 0xad, 0xbe
	values, _, err := layout.Decode(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if values[0] != -1 || values[1] != 42 {
		t.Errorf("values = %v, want [-1 42]", values)
	}
}

func TestDecodeShortBufferFails(t *testing.T) {
	shapes := []struct {
		name    string
		facts   []MemberFact
		size    int
		hasTail bool
	}{
		{
			name:  "single int64",
			facts: []MemberFact{{Name: "q", Offset: 0, Width: 8, Signed: false}},
			size:  8,
		},
		{
			name: "padded pair",
			facts: []MemberFact{
				{Name: "a", Offset: 0, Width: 4, Signed: true},
				{Name: "b", Offset: 4, Width: 1, Signed: true},
			},
			size: 8,
		},
		{
			name:    "tail struct",
			facts:   []MemberFact{{Name: "id", Offset: 0, Width: 4, Signed: true}},
			size:    4,
			hasTail: true,
		},
	}
	for _, shape := range shapes {
		t.Run(shape.name, func(t *testing.T) {
			layout := mustSynthesize(t, shape.name, shape.facts, shape.size, shape.hasTail)
			for length := 0; length < layout.FixedSize; length++ {
				_, _, err := layout.Decode(make([]byte, length))
				var usageErr *UsageError
				if !errors.As(err, &usageErr) {
					t.Fatalf("Decode(%d bytes) error = %v, want *UsageError", length, err)
				}
				if usageErr.Kind != UsageErrShortBuffer {
					t.Errorf("Decode(%d bytes) kind = %d, want UsageErrShortBuffer", length, usageErr.Kind)
				}
				if usageErr.Want != layout.FixedSize {
					t.Errorf("Decode(%d bytes) Want = %d, want %d", length, usageErr.Want, layout.FixedSize)
				}
			}
		})
	}
}

func TestDecodeOversizedBufferWithoutTailFails(t *testing.T) {
	layout := mustSynthesize(t, "exact", []MemberFact{
		{Name: "a", Offset: 0, Width: 4, Signed: true},
	}, 4, false)
	_, _, err := layout.Decode(make([]byte, 6))
	var usageErr *UsageError
	if !errors.As(err, &usageErr) {
		t.Fatalf("error = %v, want *UsageError", err)
	}
	if usageErr.Kind != UsageErrSizeMismatch {
		t.Errorf("kind = %d, want UsageErrSizeMismatch", usageErr.Kind)
	}
}

func TestEncodeArityMismatchFails(t *testing.T) {
	layout := mustSynthesize(t, "pair", []MemberFact{
		{Name: "a", Offset: 0, Width: 4, Signed: true},
		{Name: "b", Offset: 4, Width: 4, Signed: true},
	}, 8, false)
	for _, count := range []int{0, 1, 3} {
		_, err := layout.Encode(make([]int64, count), nil)
		var usageErr *UsageError
		if !errors.As(err, &usageErr) {
			t.Fatalf("Encode with %d values: error = %v, want *UsageError", count, err)
		}
		if usageErr.Kind != UsageErrArity || usageErr.Want != 2 || usageErr.Got != count {
			t.Errorf("Encode with %d values: got %+v", count, usageErr)
		}
	}
}

func TestEncodeTailToTaillessStructFails(t *testing.T) {
	layout := mustSynthesize(t, "plain", []MemberFact{
		{Name: "a", Offset: 0, Width: 4, Signed: true},
	}, 4, false)
	_, err := layout.Encode([]int64{1}, []byte{0xff})
	var usageErr *UsageError
	if !errors.As(err, &usageErr) {
		t.Fatalf("error = %v, want *UsageError", err)
	}
	if usageErr.Kind != UsageErrUnexpectedTail {
		t.Errorf("kind = %d, want UsageErrUnexpectedTail", usageErr.Kind)
	}
}

func TestEncodeTruncatesToMemberWidth(t *testing.T) {
	layout := mustSynthesize(t, "narrow", []MemberFact{
		{Name: "b", Offset: 0, Width: 1, Signed: false},
	}, 1, false)
	buf, err := layout.Encode([]int64{0x1ff}, nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if buf[0] != 0xff {
		t.Errorf("byte = %#x, want 0xff", buf[0])
	}
}
