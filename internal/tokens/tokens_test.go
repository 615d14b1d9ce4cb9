package tokens

import (
	"strings"
	"testing"
)

func TestEstimate(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{strings.Repeat("x", 4000), 1000},
	}
	for _, tt := range tests {
		if got := Estimate(tt.text); got != tt.want {
			t.Errorf("Estimate(%d bytes) = %d, want %d", len(tt.text), got, tt.want)
		}
	}
}

func TestWindow(t *testing.T) {
	if got := Window("gemini-1.5-pro"); got != 2000000 {
		t.Errorf("exact match = %d", got)
	}
	if got := Window("gemini-1.5-flash-002"); got != 1000000 {
		t.Errorf("versioned name = %d", got)
	}
	if got := Window("some-local-model"); got != DefaultWindow {
		t.Errorf("unknown model = %d, want %d", got, DefaultWindow)
	}
	if Fits("some-local-model", strings.Repeat("x", DefaultWindow*4+1)) {
		t.Error("oversized prompt should not fit")
	}
}

func TestFormat(t *testing.T) {
	tests := map[int]string{
		0:       "0",
		999:     "999",
		1500:    "1.5K",
		2500000: "2.5M",
	}
	for n, want := range tests {
		if got := Format(n); got != want {
			t.Errorf("Format(%d) = %q, want %q", n, got, want)
		}
	}
}
