package probe

import (
	"errors"
	"testing"

	"probegen/internal/codec"
)

func TestParseOutput(t *testing.T) {
	raw := "DEFINED_CONSTANT=10\n" +
		"some stray diagnostic line\n" +
		"msghdr=8:cmd@0+4s,vers@4+1s\n" +
		"warning: something else entirely\n" +
		"=nokey\n"
	results := ParseOutput(raw)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2: %v", len(results), results)
	}
	if results["DEFINED_CONSTANT"] != "10" {
		t.Errorf("constant = %q, want %q", results["DEFINED_CONSTANT"], "10")
	}
	if results["msghdr"] != "8:cmd@0+4s,vers@4+1s" {
		t.Errorf("struct = %q", results["msghdr"])
	}
}

func TestLookupMissing(t *testing.T) {
	_, err := Lookup(map[string]string{"a": "1"}, "missing")
	if !errors.Is(err, ErrMissingResult) {
		t.Errorf("error = %v, want ErrMissingResult", err)
	}
}

func TestParseConstValue(t *testing.T) {
	tests := []struct {
		value   string
		want    int64
		wantErr bool
	}{
		{"10", 10, false},
		{"-42", -42, false},
		{" 30\n", 30, false},
		{"0x10", 0, true},
		{"banana", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseConstValue("C", tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseConstValue(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseConstValue(%q) = %d, want %d", tt.value, got, tt.want)
		}
	}
}

func TestParseStructResult(t *testing.T) {
	facts, size, err := ParseStructResult("llq", "16:l1@0+4u,l2@4+4u,q@8+8u")
	if err != nil {
		t.Fatalf("ParseStructResult: %v", err)
	}
	if size != 16 {
		t.Errorf("size = %d, want 16", size)
	}
	want := []codec.MemberFact{
		{Name: "l1", Offset: 0, Width: 4, Signed: false},
		{Name: "l2", Offset: 4, Width: 4, Signed: false},
		{Name: "q", Offset: 8, Width: 8, Signed: false},
	}
	if len(facts) != len(want) {
		t.Fatalf("got %d facts, want %d", len(facts), len(want))
	}
	for i := range facts {
		if facts[i] != want[i] {
			t.Errorf("fact %d = %+v, want %+v", i, facts[i], want[i])
		}
	}
}

func TestParseStructResultSigned(t *testing.T) {
	facts, _, err := ParseStructResult("point", "8:x@0+4s,y@4+4s")
	if err != nil {
		t.Fatalf("ParseStructResult: %v", err)
	}
	for _, f := range facts {
		if !f.Signed {
			t.Errorf("member %s not signed", f.Name)
		}
	}
}

func TestParseStructResultMalformed(t *testing.T) {
	tests := []string{
		"cmd@0+4s",         // missing size prefix
		"8:cmd",            // no offset
		"8:cmd@0",          // no width
		"8:cmd@0+4",        // no sign marker
		"8:cmd@0+4x",       // unknown sign marker
		"8:@0+4s",          // empty member name
		"banana:cmd@0+4s",  // non-numeric size
		"8:cmd@zero+4s",    // non-numeric offset
		"8:cmd@0+widths",   // non-numeric width
	}
	for _, value := range tests {
		if _, _, err := ParseStructResult("s", value); err == nil {
			t.Errorf("ParseStructResult(%q) succeeded, want error", value)
		}
	}
}
