// Package gen accumulates declarations for one generated module and
// renders them into portable Go source once the probe facts are in.
package gen

import (
	"fmt"
	"strings"

	"probegen/internal/probe"
)

// ExportMode is the visibility policy captured by a declaration at the
// moment it is made.
type ExportMode uint8

const (
	// ExportNone keeps the symbol out of both export lists.
	ExportNone ExportMode = iota
	// ExportDefault puts the symbol in the export-by-default list.
	ExportDefault
	// ExportOnRequest puts the symbol in the export-on-request list.
	ExportOnRequest
)

// ParseExportMode reads an export mode from its manifest spelling.
func ParseExportMode(value string) (ExportMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "none":
		return ExportNone, nil
	case "default":
		return ExportDefault, nil
	case "", "request":
		return ExportOnRequest, nil
	default:
		return 0, fmt.Errorf("invalid export mode %q (expected none|default|request)", value)
	}
}

// StructOptions carries the optional parts of a structure declaration.
type StructOptions struct {
	EncodeName string
	DecodeName string
	HasTail    bool
}

type declaration interface {
	// key is the name the probe output reports results under.
	key() string
}

type constDecl struct {
	sourceName  string
	exposedName string
	export      ExportMode
}

func (d *constDecl) key() string { return d.sourceName }

type structDecl struct {
	structName string
	basename   string
	members    []string
	encodeName string
	decodeName string
	hasTail    bool
	export     ExportMode
}

func (d *structDecl) key() string { return d.basename }

// Context is the per-module declaration buffer. Declarations accumulate
// in order and are consumed exactly once by Finalize; the export mode in
// effect at declaration time is captured per declaration.
type Context struct {
	pkg      string
	includes []probe.Include
	decls    []declaration
	mode     ExportMode
}

// NewContext opens a module section generating package pkg. The export
// mode starts as ExportOnRequest.
func NewContext(pkg string) *Context {
	return &Context{pkg: pkg, mode: ExportOnRequest}
}

// Package returns the generated package name.
func (c *Context) Package() string { return c.pkg }

// SetExportMode changes the mode applied to declarations made from now
// on. Earlier declarations keep the mode they were created under.
func (c *Context) SetExportMode(mode ExportMode) { c.mode = mode }

// AddInclude registers a header for the probe program.
func (c *Context) AddInclude(path string, local bool) {
	c.includes = append(c.includes, probe.Include{Path: path, Local: local})
}

// DeclareConst declares a constant by its native name. An empty rename
// exposes the native name unchanged.
func (c *Context) DeclareConst(sourceName, rename string) {
	exposed := rename
	if exposed == "" {
		exposed = sourceName
	}
	c.decls = append(c.decls, &constDecl{
		sourceName:  sourceName,
		exposedName: exposed,
		export:      c.mode,
	})
}

// DeclareStruct declares a structure by its native aggregate name with
// an ordered member list.
func (c *Context) DeclareStruct(structName string, members []string, opts StructOptions) {
	basename := Basename(structName)
	encodeName := opts.EncodeName
	if encodeName == "" {
		encodeName = "Encode" + goName(basename)
	}
	decodeName := opts.DecodeName
	if decodeName == "" {
		decodeName = "Decode" + goName(basename)
	}
	c.decls = append(c.decls, &structDecl{
		structName: structName,
		basename:   basename,
		members:    append([]string(nil), members...),
		encodeName: encodeName,
		decodeName: decodeName,
		hasTail:    opts.HasTail,
		export:     c.mode,
	})
}

// Pending reports how many declarations await finalization.
func (c *Context) Pending() int { return len(c.decls) }

// DeclNames returns the probe keys of all pending declarations, in
// declaration order.
func (c *Context) DeclNames() []string {
	names := make([]string, 0, len(c.decls))
	for _, d := range c.decls {
		names = append(names, d.key())
	}
	return names
}

// ProbeProgram assembles the pending declarations' probe fragments into
// one compilation unit.
func (c *Context) ProbeProgram() string {
	fragments := make([]string, 0, len(c.decls))
	for _, d := range c.decls {
		switch decl := d.(type) {
		case *constDecl:
			fragments = append(fragments, probe.ConstFragment(decl.sourceName))
		case *structDecl:
			fragments = append(fragments, probe.StructFragment(decl.structName, decl.basename, decl.members))
		}
	}
	return probe.Program(c.includes, fragments)
}

// reset clears the accumulation buffers so a new module section can
// begin.
func (c *Context) reset() {
	c.includes = nil
	c.decls = nil
	c.mode = ExportOnRequest
}

// Basename strips the aggregate-type prefix from a native type name:
// "struct msghdr" becomes "msghdr".
func Basename(structName string) string {
	for _, prefix := range []string{"struct ", "union ", "enum "} {
		if rest, ok := strings.CutPrefix(structName, prefix); ok {
			return strings.TrimSpace(rest)
		}
	}
	return strings.TrimSpace(structName)
}

// goName converts a native identifier to an exported Go identifier:
// "msghdr" becomes "Msghdr", "my_struct" becomes "MyStruct".
func goName(name string) string {
	parts := strings.Split(name, "_")
	var b strings.Builder
	for _, part := range parts {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}
