package gen

import (
	"fmt"
	"strings"

	"probegen/internal/codec"
	"probegen/internal/probe"
)

// Document is the rendered output of one module section.
type Document struct {
	Source          string
	ExportDefault   []string
	ExportOnRequest []string
}

// Finalize consumes the accumulated declarations against the probe
// results and renders the generated source document. The context is
// reset afterwards so a new module section can begin. Any resolution or
// synthesis failure aborts the whole module; no document is produced.
func (c *Context) Finalize(results map[string]string) (Document, error) {
	var doc Document
	fragments := make([]string, 0, len(c.decls))
	hasStruct := false
	needsBinary := false

	for _, d := range c.decls {
		raw, err := probe.Lookup(results, d.key())
		if err != nil {
			return Document{}, err
		}
		switch decl := d.(type) {
		case *constDecl:
			value, err := probe.ParseConstValue(decl.sourceName, raw)
			if err != nil {
				return Document{}, err
			}
			fragments = append(fragments, renderConst(decl, value))
			doc.register(decl.export, decl.exposedName)
		case *structDecl:
			facts, size, err := probe.ParseStructResult(decl.basename, raw)
			if err != nil {
				return Document{}, err
			}
			layout, err := codec.Synthesize(decl.basename, facts, size, decl.hasTail)
			if err != nil {
				return Document{}, err
			}
			fragments = append(fragments, renderEncode(decl, layout), renderDecode(decl, layout))
			doc.register(decl.export, decl.encodeName)
			doc.register(decl.export, decl.decodeName)
			hasStruct = true
			for _, f := range layout.Fields {
				if f.Kind == codec.KindInt && f.Width > 1 {
					needsBinary = true
				}
			}
		}
	}

	doc.Source = c.assemble(fragments, doc, hasStruct, needsBinary)
	c.reset()
	return doc, nil
}

func (d *Document) register(mode ExportMode, name string) {
	switch mode {
	case ExportDefault:
		d.ExportDefault = append(d.ExportDefault, name)
	case ExportOnRequest:
		d.ExportOnRequest = append(d.ExportOnRequest, name)
	case ExportNone:
	}
}

func (c *Context) assemble(fragments []string, doc Document, hasStruct, needsBinary bool) string {
	var b strings.Builder
	b.WriteString("// Code generated by probegen. DO NOT EDIT.\n")
	b.WriteString("//\n")
	b.WriteString("// Native layout bindings probed from the compiling host.\n\n")
	fmt.Fprintf(&b, "package %s\n\n", c.pkg)
	if needsBinary {
		b.WriteString("import (\n\t\"encoding/binary\"\n\t\"fmt\"\n)\n\n")
	} else if hasStruct {
		b.WriteString("import \"fmt\"\n\n")
	}
	if len(doc.ExportDefault) > 0 {
		b.WriteString("// ExportDefault lists the symbols exported by default.\n")
		b.WriteString("var ExportDefault = []string{\n")
		for _, name := range doc.ExportDefault {
			fmt.Fprintf(&b, "\t%q,\n", name)
		}
		b.WriteString("}\n\n")
	}
	if len(doc.ExportOnRequest) > 0 {
		b.WriteString("// ExportOnRequest lists the symbols exported on request.\n")
		b.WriteString("var ExportOnRequest = []string{\n")
		for _, name := range doc.ExportOnRequest {
			fmt.Fprintf(&b, "\t%q,\n", name)
		}
		b.WriteString("}\n\n")
	}
	for _, frag := range fragments {
		b.WriteString(frag)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "// End of module %s.\n", c.pkg)
	return b.String()
}

func renderConst(decl *constDecl, value int64) string {
	if decl.exposedName != decl.sourceName {
		return fmt.Sprintf("const %s = %d // %s\n", decl.exposedName, value, decl.sourceName)
	}
	return fmt.Sprintf("const %s = %d\n", decl.exposedName, value)
}

func renderEncode(decl *structDecl, layout codec.Layout) string {
	var b strings.Builder
	count := layout.ValueCount()

	if decl.hasTail {
		fmt.Fprintf(&b, "// %s packs one value per member of %s into its native layout\n", decl.encodeName, decl.structName)
		fmt.Fprintf(&b, "// (%d fixed bytes) and appends the tail verbatim.\n", layout.FixedSize)
		fmt.Fprintf(&b, "func %s(tail []byte, values ...int64) ([]byte, error) {\n", decl.encodeName)
	} else {
		fmt.Fprintf(&b, "// %s packs one value per member of %s into its native layout (%d bytes).\n",
			decl.encodeName, decl.structName, layout.FixedSize)
		fmt.Fprintf(&b, "func %s(values ...int64) ([]byte, error) {\n", decl.encodeName)
	}
	fmt.Fprintf(&b, "\tif len(values) != %d {\n", count)
	fmt.Fprintf(&b, "\t\treturn nil, fmt.Errorf(\"%s: expected %d values, got %%d\", len(values))\n", decl.encodeName, count)
	b.WriteString("\t}\n")
	if decl.hasTail {
		fmt.Fprintf(&b, "\tbuf := make([]byte, %d+len(tail))\n", layout.FixedSize)
	} else {
		fmt.Fprintf(&b, "\tbuf := make([]byte, %d)\n", layout.FixedSize)
	}

	off := 0
	next := 0
	for _, f := range layout.Fields {
		switch f.Kind {
		case codec.KindInt:
			b.WriteString("\t" + putExpr(off, f.Width, next) + "\n")
			next++
			off += f.Width
		case codec.KindPad:
			off += f.Width
		case codec.KindTail:
			fmt.Fprintf(&b, "\tcopy(buf[%d:], tail)\n", layout.FixedSize)
		}
	}
	b.WriteString("\treturn buf, nil\n}\n")
	return b.String()
}

func renderDecode(decl *structDecl, layout codec.Layout) string {
	var b strings.Builder
	count := layout.ValueCount()

	if decl.hasTail {
		fmt.Fprintf(&b, "// %s unpacks one value per member of %s and returns every byte\n", decl.decodeName, decl.structName)
		fmt.Fprintf(&b, "// beyond offset %d as the tail.\n", layout.FixedSize)
		fmt.Fprintf(&b, "func %s(buf []byte) ([]int64, []byte, error) {\n", decl.decodeName)
		fmt.Fprintf(&b, "\tif len(buf) < %d {\n", layout.FixedSize)
		fmt.Fprintf(&b, "\t\treturn nil, nil, fmt.Errorf(\"%s: buffer too short: need at least %d bytes, got %%d\", len(buf))\n",
			decl.decodeName, layout.FixedSize)
		b.WriteString("\t}\n")
	} else {
		fmt.Fprintf(&b, "// %s unpacks one value per member of %s from its native layout (%d bytes).\n",
			decl.decodeName, decl.structName, layout.FixedSize)
		fmt.Fprintf(&b, "func %s(buf []byte) ([]int64, error) {\n", decl.decodeName)
		fmt.Fprintf(&b, "\tif len(buf) != %d {\n", layout.FixedSize)
		fmt.Fprintf(&b, "\t\treturn nil, fmt.Errorf(\"%s: buffer length mismatch: want %d bytes, got %%d\", len(buf))\n",
			decl.decodeName, layout.FixedSize)
		b.WriteString("\t}\n")
	}
	fmt.Fprintf(&b, "\tvalues := make([]int64, %d)\n", count)

	off := 0
	next := 0
	for _, f := range layout.Fields {
		switch f.Kind {
		case codec.KindInt:
			fmt.Fprintf(&b, "\tvalues[%d] = %s\n", next, getExpr(off, f.Width, f.Signed))
			next++
			off += f.Width
		case codec.KindPad:
			off += f.Width
		case codec.KindTail:
		}
	}
	if decl.hasTail {
		fmt.Fprintf(&b, "\ttail := append([]byte(nil), buf[%d:]...)\n", layout.FixedSize)
		b.WriteString("\treturn values, tail, nil\n}\n")
	} else {
		b.WriteString("\treturn values, nil\n}\n")
	}
	return b.String()
}

func putExpr(off, width, index int) string {
	if width == 1 {
		return fmt.Sprintf("buf[%d] = byte(values[%d])", off, index)
	}
	return fmt.Sprintf("binary.NativeEndian.PutUint%d(buf[%d:%d], uint%d(values[%d]))",
		width*8, off, off+width, width*8, index)
}

func getExpr(off, width int, signed bool) string {
	if width == 1 {
		if signed {
			return fmt.Sprintf("int64(int8(buf[%d]))", off)
		}
		return fmt.Sprintf("int64(buf[%d])", off)
	}
	read := fmt.Sprintf("binary.NativeEndian.Uint%d(buf[%d:%d])", width*8, off, off+width)
	if width == 8 {
		return fmt.Sprintf("int64(%s)", read)
	}
	if signed {
		return fmt.Sprintf("int64(int%d(%s))", width*8, read)
	}
	return fmt.Sprintf("int64(%s)", read)
}
