package output

import (
	"os"
	"testing"
)

func TestDetectColorSupport(t *testing.T) {
	// A pipe is never a terminal.
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer r.Close()
	defer w.Close()
	fd := int(w.Fd())

	tests := []struct {
		name       string
		noColor    bool
		forceColor bool
		term       string
		want       bool
	}{
		{name: "NO_COLOR set", noColor: true, forceColor: true, term: "xterm-256color", want: false},
		{name: "FORCE_COLOR overrides", forceColor: true, term: "", want: true},
		{name: "not a terminal", term: "xterm-256color", want: false},
		{name: "TERM dumb", term: "dumb", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", "")
			t.Setenv("FORCE_COLOR", "")
			os.Unsetenv("NO_COLOR")
			os.Unsetenv("FORCE_COLOR")
			t.Setenv("TERM", tt.term)

			if tt.noColor {
				t.Setenv("NO_COLOR", "1")
			}
			if tt.forceColor {
				t.Setenv("FORCE_COLOR", "1")
			}

			if got := detectColorSupport(fd); got != tt.want {
				t.Errorf("detectColorSupport() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsColorSupported_Cached(t *testing.T) {
	ResetColorDetection()
	defer ResetColorDetection()

	t.Setenv("NO_COLOR", "1")
	if IsColorSupported() {
		t.Fatal("expected colors disabled with NO_COLOR")
	}

	// Cached until reset.
	os.Unsetenv("NO_COLOR")
	t.Setenv("FORCE_COLOR", "1")
	if IsColorSupported() {
		t.Error("expected cached result to be reused")
	}

	ResetColorDetection()
	if !IsColorSupported() {
		t.Error("expected FORCE_COLOR to apply after reset")
	}
}

func TestTerminalWidth_Fallback(t *testing.T) {
	// Under go test stdout is not a terminal.
	if w := TerminalWidth(72); w <= 0 {
		t.Errorf("expected positive width, got %d", w)
	}
}
