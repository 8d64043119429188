package codec

import "fmt"

// ConfigErrorKind enumerates fatal configuration errors detected while
// synthesizing a layout.
type ConfigErrorKind uint8

const (
	// ConfigErrBackwardOffset indicates a member whose probed offset is
	// below the running cursor (overlapping or reordered members).
	ConfigErrBackwardOffset ConfigErrorKind = iota + 1
	// ConfigErrUnsupportedWidth indicates a member width with no
	// matching primitive integer type.
	ConfigErrUnsupportedWidth
	// ConfigErrSizeMismatch indicates a probed total size smaller than
	// the span of the declared members.
	ConfigErrSizeMismatch
)

// ConfigError is a fatal layout configuration error. It aborts
// generation for the whole module.
type ConfigError struct {
	Kind   ConfigErrorKind
	Struct string
	Member string
	Offset int
	Cursor int
	Width  int
}

func (e *ConfigError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case ConfigErrBackwardOffset:
		return fmt.Sprintf("%s.%s: offset %d is before the current layout position %d (overlapping or reordered members are unsupported)",
			e.Struct, e.Member, e.Offset, e.Cursor)
	case ConfigErrUnsupportedWidth:
		return fmt.Sprintf("%s.%s: unsupported member size %d", e.Struct, e.Member, e.Width)
	case ConfigErrSizeMismatch:
		return fmt.Sprintf("%s: probed size %d is smaller than the member span %d", e.Struct, e.Offset, e.Cursor)
	default:
		return fmt.Sprintf("%s: layout configuration error kind=%d", e.Struct, e.Kind)
	}
}

// UsageErrorKind enumerates errors raised when an encode/decode routine
// is called incorrectly. These are local to one invocation.
type UsageErrorKind uint8

const (
	// UsageErrArity indicates a wrong value count passed to encode.
	UsageErrArity UsageErrorKind = iota + 1
	// UsageErrShortBuffer indicates a decode buffer below the minimum length.
	UsageErrShortBuffer
	// UsageErrSizeMismatch indicates a decode buffer that is not exactly
	// the fixed length of a structure with no trailing region.
	UsageErrSizeMismatch
	// UsageErrUnexpectedTail indicates tail bytes passed to a structure
	// declared without a trailing region.
	UsageErrUnexpectedTail
)

// UsageError reports an invalid encode/decode invocation.
type UsageError struct {
	Kind    UsageErrorKind
	Routine string
	Want    int
	Got     int
}

func (e *UsageError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case UsageErrArity:
		return fmt.Sprintf("%s: expected %d values, got %d", e.Routine, e.Want, e.Got)
	case UsageErrShortBuffer:
		return fmt.Sprintf("%s: buffer too short: need at least %d bytes, got %d", e.Routine, e.Want, e.Got)
	case UsageErrSizeMismatch:
		return fmt.Sprintf("%s: buffer length mismatch: want %d bytes, got %d", e.Routine, e.Want, e.Got)
	case UsageErrUnexpectedTail:
		return fmt.Sprintf("%s: trailing bytes passed to a structure without a trailing region", e.Routine)
	default:
		return fmt.Sprintf("%s: usage error kind=%d", e.Routine, e.Kind)
	}
}
