package main

import (
	"fmt"
	"os"
	"strings"
)

// autoMode is the value of a tri-state flag such as --color or --ui.
type autoMode string

const (
	modeAuto autoMode = "auto"
	modeOn   autoMode = "on"
	modeOff  autoMode = "off"
)

func parseAutoMode(flag, value string) (autoMode, error) {
	switch m := autoMode(strings.TrimSpace(strings.ToLower(value))); m {
	case "":
		return modeAuto, nil
	case modeAuto, modeOn, modeOff:
		return m, nil
	}
	return "", fmt.Errorf("invalid --%s value %q (expected auto|on|off)", flag, value)
}

// enabled resolves auto against whether out is a terminal.
func (m autoMode) enabled(out *os.File) bool {
	switch m {
	case modeOn:
		return true
	case modeOff:
		return false
	}
	return isTerminal(out)
}
