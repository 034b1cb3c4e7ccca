package util

import (
	"strings"
	"testing"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 6, "hello…"},
		{"héllo wörld", 6, "héllo…"},
		{"x", 1, "…"},
	}
	for _, tt := range tests {
		if got := TruncateString(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("TruncateString(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}

func TestTruncateANSI(t *testing.T) {
	styled := "\x1b[31mhello world\x1b[0m"
	got := TruncateANSI(styled, 6)
	if !strings.Contains(got, "…") {
		t.Errorf("TruncateANSI(%q, 6) = %q, want truncation marker", styled, got)
	}
	if got := TruncateANSI("short", 10); got != "short" {
		t.Errorf("TruncateANSI(short, 10) = %q, want unchanged", got)
	}
}

func TestTruncateLines(t *testing.T) {
	text := "a\nb\nc\nd"
	if got := TruncateLines(text, 10, "…"); got != text {
		t.Errorf("TruncateLines under limit = %q, want unchanged", got)
	}
	got := TruncateLines(text, 2, "…")
	if got != "a\nb\n…" {
		t.Errorf("TruncateLines(%q, 2) = %q, want a/b/marker", text, got)
	}
}
