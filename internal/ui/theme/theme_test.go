package theme

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
)

func TestBar(t *testing.T) {
	tests := []struct {
		pct    float64
		width  int
		filled int
	}{
		{0, 10, 0},
		{50, 10, 5},
		{100, 10, 10},
		{140, 10, 10},
		{-5, 10, 0},
		{66.7, 3, 2},
	}
	for _, tt := range tests {
		got := Bar(tt.pct, tt.width)
		if n := strings.Count(got, "█"); n != tt.filled {
			t.Errorf("Bar(%v, %d) filled = %d, want %d", tt.pct, tt.width, n, tt.filled)
		}
		if w := lipgloss.Width(got); w != tt.width {
			t.Errorf("Bar(%v, %d) width = %d", tt.pct, tt.width, w)
		}
	}
	if Bar(50, 0) != "" {
		t.Error("zero width bar should be empty")
	}
}

func TestAccess(t *testing.T) {
	if !strings.Contains(Access(true), "open") || !strings.Contains(Access(false), "locked") {
		t.Error("access markers missing text")
	}
}
