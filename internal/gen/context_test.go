package gen

import (
	"strings"
	"testing"
)

func TestBasename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"struct msghdr", "msghdr"},
		{"struct  point", "point"},
		{"union sigval", "sigval"},
		{"enum color", "color"},
		{"plaintype", "plaintype"},
	}
	for _, tt := range tests {
		if got := Basename(tt.in); got != tt.want {
			t.Errorf("Basename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGoName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"msghdr", "Msghdr"},
		{"my_struct", "MyStruct"},
		{"llq", "Llq"},
		{"_x", "X"},
	}
	for _, tt := range tests {
		if got := goName(tt.in); got != tt.want {
			t.Errorf("goName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDefaultRoutineNames(t *testing.T) {
	ctx := NewContext("defs")
	ctx.DeclareStruct("struct msghdr", []string{"cmd"}, StructOptions{})
	decl := ctx.decls[0].(*structDecl)
	if decl.encodeName != "EncodeMsghdr" || decl.decodeName != "DecodeMsghdr" {
		t.Errorf("routine names = (%s, %s)", decl.encodeName, decl.decodeName)
	}
}

func TestExportModeIsPositional(t *testing.T) {
	ctx := NewContext("defs")
	ctx.DeclareConst("EARLY", "") // default mode: on request
	ctx.SetExportMode(ExportDefault)
	ctx.DeclareConst("MIDDLE", "")
	ctx.SetExportMode(ExportNone)
	ctx.DeclareConst("LATE", "")

	results := map[string]string{"EARLY": "1", "MIDDLE": "2", "LATE": "3"}
	doc, err := ctx.Finalize(results)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if len(doc.ExportDefault) != 1 || doc.ExportDefault[0] != "MIDDLE" {
		t.Errorf("ExportDefault = %v, want [MIDDLE]", doc.ExportDefault)
	}
	if len(doc.ExportOnRequest) != 1 || doc.ExportOnRequest[0] != "EARLY" {
		t.Errorf("ExportOnRequest = %v, want [EARLY]", doc.ExportOnRequest)
	}
	for _, name := range append(doc.ExportDefault, doc.ExportOnRequest...) {
		if name == "LATE" {
			t.Error("ExportNone symbol leaked into an export list")
		}
	}
}

func TestFinalizeResetsContext(t *testing.T) {
	ctx := NewContext("defs")
	ctx.SetExportMode(ExportDefault)
	ctx.AddInclude("stdint.h", false)
	ctx.DeclareConst("A", "")
	if _, err := ctx.Finalize(map[string]string{"A": "1"}); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if ctx.Pending() != 0 {
		t.Errorf("Pending = %d after Finalize, want 0", ctx.Pending())
	}
	if len(ctx.includes) != 0 {
		t.Error("includes not cleared after Finalize")
	}
	if ctx.mode != ExportOnRequest {
		t.Error("export mode not reset after Finalize")
	}
}

func TestProbeProgramOrder(t *testing.T) {
	ctx := NewContext("defs")
	ctx.AddInclude("t/test.h", true)
	ctx.DeclareConst("DEFINED_CONSTANT", "")
	ctx.DeclareStruct("struct point", []string{"x", "y"}, StructOptions{})
	source := ctx.ProbeProgram()

	if !strings.Contains(source, "#include \"t/test.h\"") {
		t.Errorf("missing local include:\n%s", source)
	}
	constIdx := strings.Index(source, "DEFINED_CONSTANT=")
	structIdx := strings.Index(source, "point=")
	if constIdx < 0 || structIdx < 0 || constIdx > structIdx {
		t.Errorf("fragments out of order (const %d, struct %d)", constIdx, structIdx)
	}
}

func TestParseExportMode(t *testing.T) {
	tests := []struct {
		in      string
		want    ExportMode
		wantErr bool
	}{
		{"none", ExportNone, false},
		{"default", ExportDefault, false},
		{"request", ExportOnRequest, false},
		{"", ExportOnRequest, false},
		{" Default ", ExportDefault, false},
		{"sometimes", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseExportMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseExportMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseExportMode(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
