package probe

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"probegen/internal/codec"
)

// ErrMissingResult indicates the probe output carried no line for a
// declared name.
var ErrMissingResult = errors.New("no result line in probe output")

// ParseOutput splits the captured probe output into a mapping from
// declaration name to raw result string. Lines that do not look like
// key=value are ignored; compilers and linked runtimes occasionally
// write diagnostics to stdout and those must not poison the run.
func ParseOutput(raw string) map[string]string {
	results := make(map[string]string)
	for line := range strings.Lines(raw) {
		line = strings.TrimRight(line, "\r\n")
		key, value, ok := strings.Cut(line, "=")
		if !ok || key == "" || strings.ContainsAny(key, " \t") {
			continue
		}
		results[key] = value
	}
	return results
}

// Lookup fetches one declaration's result string, failing with
// ErrMissingResult when the probe never printed it.
func Lookup(results map[string]string, name string) (string, error) {
	value, ok := results[name]
	if !ok {
		return "", fmt.Errorf("%s: %w", name, ErrMissingResult)
	}
	return value, nil
}

// ParseConstValue parses a constant's result string as an integer.
func ParseConstValue(name, value string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: malformed constant value %q: %w", name, value, err)
	}
	return n, nil
}

// ParseStructResult parses a structure's result string
// "<sizeof>:<member>@<offset>+<width><sign>,..." into the probed total
// size and ordered member facts.
func ParseStructResult(basename, value string) ([]codec.MemberFact, int, error) {
	sizeText, rest, ok := strings.Cut(value, ":")
	if !ok {
		return nil, 0, fmt.Errorf("%s: malformed structure result %q: missing size", basename, value)
	}
	size, err := parseByteCount(sizeText)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: malformed structure size %q: %w", basename, sizeText, err)
	}
	tokens := strings.Split(rest, ",")
	facts := make([]codec.MemberFact, 0, len(tokens))
	for _, token := range tokens {
		fact, err := parseMemberToken(token)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", basename, err)
		}
		facts = append(facts, fact)
	}
	return facts, size, nil
}

func parseMemberToken(token string) (codec.MemberFact, error) {
	name, rest, ok := strings.Cut(token, "@")
	if !ok || name == "" {
		return codec.MemberFact{}, fmt.Errorf("malformed member token %q", token)
	}
	offsetText, widthText, ok := strings.Cut(rest, "+")
	if !ok {
		return codec.MemberFact{}, fmt.Errorf("malformed member token %q", token)
	}
	var signed bool
	switch {
	case strings.HasSuffix(widthText, "s"):
		signed = true
	case strings.HasSuffix(widthText, "u"):
		signed = false
	default:
		return codec.MemberFact{}, fmt.Errorf("malformed member token %q: missing sign marker", token)
	}
	widthText = widthText[:len(widthText)-1]

	offset, err := parseByteCount(offsetText)
	if err != nil {
		return codec.MemberFact{}, fmt.Errorf("malformed member token %q: %w", token, err)
	}
	width, err := parseByteCount(widthText)
	if err != nil {
		return codec.MemberFact{}, fmt.Errorf("malformed member token %q: %w", token, err)
	}
	return codec.MemberFact{Name: name, Offset: offset, Width: width, Signed: signed}, nil
}

func parseByteCount(text string) (int, error) {
	n, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return 0, err
	}
	return safecast.Conv[int](n)
}
