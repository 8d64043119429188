// Package manifest loads probegen.toml, the declarative script naming
// the constants and structure layouts a module needs.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"probegen/internal/gen"
)

// DefaultName is the manifest file probegen looks for in a directory.
const DefaultName = "probegen.toml"

var (
	// ErrPackageSectionMissing indicates that [package] is missing.
	ErrPackageSectionMissing = errors.New("missing [package]")
	// ErrPackageNameMissing indicates that [package].name is missing.
	ErrPackageNameMissing = errors.New("missing [package].name")
)

// Include names one probe header.
type Include struct {
	Path  string `toml:"path"`
	Local bool   `toml:"local"`
}

// Declare is one ordered entry of the declaration stream: exactly one
// of a constant, a structure, or an export-mode switch. Order in the
// file is the declaration order, which is what gives export modes their
// positional semantics.
type Declare struct {
	Const  string `toml:"const"`
	Rename string `toml:"rename"`

	Struct  string   `toml:"struct"`
	Members []string `toml:"members"`
	Tail    bool     `toml:"tail"`
	Encode  string   `toml:"encode"`
	Decode  string   `toml:"decode"`

	Export string `toml:"export"`
}

// Manifest is one parsed probegen.toml.
type Manifest struct {
	Path string

	Package struct {
		Name   string `toml:"name"`
		Output string `toml:"output"`
	} `toml:"package"`
	Toolchain struct {
		CC string `toml:"cc"`
	} `toml:"toolchain"`
	Include []Include `toml:"include"`
	Declare []Declare `toml:"declare"`
}

// Load parses and validates a manifest file.
func Load(path string) (*Manifest, error) {
	var m Manifest
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	m.Path = path
	if !meta.IsDefined("package") {
		return nil, fmt.Errorf("%s: %w", path, ErrPackageSectionMissing)
	}
	if m.Package.Name == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrPackageNameMissing)
	}
	for i, d := range m.Declare {
		if err := validateDeclare(i, d); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return &m, nil
}

// Find resolves the manifest path for a directory or file argument.
func Find(arg string) (string, error) {
	if arg == "" {
		arg = "."
	}
	info, err := os.Stat(arg)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		path := filepath.Join(arg, DefaultName)
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("no %s in %s", DefaultName, arg)
		}
		return path, nil
	}
	return arg, nil
}

// OutputPath returns the configured output file, defaulting to
// <name>_gen.go next to the manifest.
func (m *Manifest) OutputPath() string {
	out := m.Package.Output
	if out == "" {
		out = m.Package.Name + "_gen.go"
	}
	if filepath.IsAbs(out) {
		return out
	}
	return filepath.Join(filepath.Dir(m.Path), out)
}

// Apply replays the manifest's includes and declaration stream, in file
// order, onto a declaration context.
func (m *Manifest) Apply(ctx *gen.Context) error {
	for _, inc := range m.Include {
		ctx.AddInclude(inc.Path, inc.Local)
	}
	for i, d := range m.Declare {
		switch {
		case d.Export != "":
			mode, err := gen.ParseExportMode(d.Export)
			if err != nil {
				return fmt.Errorf("%s: [[declare]] #%d: %w", m.Path, i+1, err)
			}
			ctx.SetExportMode(mode)
		case d.Const != "":
			ctx.DeclareConst(d.Const, d.Rename)
		case d.Struct != "":
			ctx.DeclareStruct(d.Struct, d.Members, gen.StructOptions{
				EncodeName: d.Encode,
				DecodeName: d.Decode,
				HasTail:    d.Tail,
			})
		}
	}
	return nil
}

func validateDeclare(index int, d Declare) error {
	set := 0
	if d.Const != "" {
		set++
	}
	if d.Struct != "" {
		set++
	}
	if d.Export != "" {
		set++
	}
	if set == 0 {
		return fmt.Errorf("[[declare]] #%d: needs one of const, struct, export", index+1)
	}
	if set > 1 {
		return fmt.Errorf("[[declare]] #%d: const, struct and export are mutually exclusive", index+1)
	}
	if d.Struct != "" && len(d.Members) == 0 {
		return fmt.Errorf("[[declare]] #%d: structure %q has no members", index+1, d.Struct)
	}
	if d.Const != "" && (len(d.Members) > 0 || d.Tail || d.Encode != "" || d.Decode != "") {
		return fmt.Errorf("[[declare]] #%d: structure options on a constant declaration", index+1)
	}
	return nil
}
