package main

import (
	"fmt"
	"os"
	"strings"
)

type uiMode int

const (
	uiModeAuto uiMode = iota
	uiModeOn
	uiModeOff
)

// readUIMode parses the --ui flag, falling back to $PROBEGEN_UI when
// the flag carries its default empty-ish value.
func readUIMode(value string) (uiMode, error) {
	if strings.TrimSpace(value) == "" || strings.EqualFold(value, "auto") {
		if env := os.Getenv("PROBEGEN_UI"); env != "" {
			value = env
		}
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	}
	return uiModeAuto, fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
}

// enabled decides whether the progress TUI runs; auto means "stdout is
// a terminal".
func (m uiMode) enabled() bool {
	switch m {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	}
	return isTerminal(os.Stdout)
}
