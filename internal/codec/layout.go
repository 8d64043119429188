package codec

// Layout is the canonical byte-level shape of one structure: an ordered
// field code sequence with padding runs bridging every gap the platform
// reported between consecutive members.
type Layout struct {
	Name      string // structure basename, used in diagnostics
	Fields    []Field
	FixedSize int
	HasTail   bool
}

// Synthesize converts ordered member facts into a layout template.
//
// The cursor starts at zero. A member whose offset is past the cursor
// gets a padding code for the exact gap; a member whose offset is below
// the cursor is a fatal configuration error. After the last member the
// probed total size may add one more padding code for the structure's
// trailing alignment hole; FixedSize is the cursor position after that.
//
// With hasTail the probed size is ignored: the fixed region ends at the
// last member, a trailing region code is appended, and FixedSize is the
// minimum decode length instead of the exact one. Any bytes past the
// last member, trailing padding included, belong to the tail.
//
// A size of zero means "not probed" and leaves FixedSize at the end of
// the last member.
func Synthesize(name string, facts []MemberFact, size int, hasTail bool) (Layout, error) {
	layout := Layout{
		Name:    name,
		Fields:  make([]Field, 0, len(facts)+1),
		HasTail: hasTail,
	}
	cursor := 0
	for _, fact := range facts {
		if fact.Offset > cursor {
			layout.Fields = append(layout.Fields, Pad(fact.Offset-cursor))
			cursor = fact.Offset
		}
		if fact.Offset < cursor {
			return Layout{}, &ConfigError{
				Kind:   ConfigErrBackwardOffset,
				Struct: name,
				Member: fact.Name,
				Offset: fact.Offset,
				Cursor: cursor,
			}
		}
		if _, ok := PrimitiveName(fact.Width, fact.Signed); !ok {
			return Layout{}, &ConfigError{
				Kind:   ConfigErrUnsupportedWidth,
				Struct: name,
				Member: fact.Name,
				Width:  fact.Width,
			}
		}
		layout.Fields = append(layout.Fields, Int(fact.Width, fact.Signed))
		cursor += fact.Width
	}
	if size > 0 && !hasTail {
		if size < cursor {
			return Layout{}, &ConfigError{
				Kind:   ConfigErrSizeMismatch,
				Struct: name,
				Offset: size,
				Cursor: cursor,
			}
		}
		if size > cursor {
			layout.Fields = append(layout.Fields, Pad(size-cursor))
			cursor = size
		}
	}
	layout.FixedSize = cursor
	if hasTail {
		layout.Fields = append(layout.Fields, Tail)
	}
	return layout, nil
}

// ValueCount returns the number of integer slots in the layout, i.e.
// the encode arity excluding any trailing region.
func (l Layout) ValueCount() int {
	count := 0
	for _, f := range l.Fields {
		if f.Kind == KindInt {
			count++
		}
	}
	return count
}
