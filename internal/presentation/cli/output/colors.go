package output

import (
	"os"
	"sync"

	"golang.org/x/term"
)

var (
	colorOnce    sync.Once
	colorEnabled bool
)

// IsColorSupported reports whether stdout should receive ANSI colors.
// The result is computed once per process.
func IsColorSupported() bool {
	colorOnce.Do(func() {
		colorEnabled = detectColorSupport(int(os.Stdout.Fd()))
	})
	return colorEnabled
}

// detectColorSupport checks environment variables and whether fd is a terminal.
func detectColorSupport(fd int) bool {
	// NO_COLOR takes precedence - see https://no-color.org/
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}

	if _, exists := os.LookupEnv("FORCE_COLOR"); exists {
		return true
	}

	if !term.IsTerminal(fd) {
		return false
	}

	t := os.Getenv("TERM")
	return t != "" && t != "dumb"
}

// ResetColorDetection clears the cached color detection result.
func ResetColorDetection() {
	colorOnce = sync.Once{}
	colorEnabled = false
}

// TerminalWidth returns the width of stdout, or fallback when stdout is not
// a terminal.
func TerminalWidth(fallback int) int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}
