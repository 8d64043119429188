// Package codec synthesizes binary layout templates from probed member
// facts and implements the encode/decode semantics the generated
// routines reproduce.
package codec

// FieldKind enumerates the kinds of layout field codes.
type FieldKind uint8

const (
	// KindInt is a fixed-width integer slot.
	KindInt FieldKind = iota + 1
	// KindPad is an automatic padding run bridging a layout gap.
	KindPad
	// KindTail is the optional variable-length trailing region.
	KindTail
)

// Field is one element of a layout template.
type Field struct {
	Kind   FieldKind
	Width  int  // bytes; set for KindInt and KindPad
	Signed bool // KindInt only
}

// Int returns an integer field code of the given byte width.
func Int(width int, signed bool) Field {
	return Field{Kind: KindInt, Width: width, Signed: signed}
}

// Pad returns a padding field code spanning n bytes.
func Pad(n int) Field {
	return Field{Kind: KindPad, Width: n}
}

// Tail is the trailing variable-length region field code.
var Tail = Field{Kind: KindTail}

// MemberFact is the ground truth the native probe reports for one
// structure member: offset and storage width in bytes, and whether the
// member's storage is signed.
type MemberFact struct {
	Name   string
	Offset int
	Width  int
	Signed bool
}

// PrimitiveName maps a (width, signed) pair to the Go integer type of
// exactly that width. The second result is false for widths the
// generator does not support.
func PrimitiveName(width int, signed bool) (string, bool) {
	var name string
	switch width {
	case 1:
		name = "int8"
	case 2:
		name = "int16"
	case 4:
		name = "int32"
	case 8:
		name = "int64"
	default:
		return "", false
	}
	if !signed {
		name = "u" + name
	}
	return name, true
}
