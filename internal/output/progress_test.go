package output

import (
	"strings"
	"testing"
)

func TestProgressBarFill(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	// Out-of-range percentages clamp, and zero width falls back to 20.
	tests := []struct {
		percent    float64
		width      int
		wantFilled int
		wantEmpty  int
	}{
		{0, 10, 0, 10},
		{50, 10, 5, 5},
		{100, 10, 10, 0},
		{45.45, 11, 4, 7},
		{150, 10, 10, 0},
		{-10, 10, 0, 10},
		{30, 0, 6, 14},
	}

	for _, tc := range tests {
		got := ProgressBar(tc.percent, tc.width)
		if n := strings.Count(got, "█"); n != tc.wantFilled {
			t.Errorf("ProgressBar(%v, %d) filled = %d, want %d", tc.percent, tc.width, n, tc.wantFilled)
		}
		if n := strings.Count(got, "░"); n != tc.wantEmpty {
			t.Errorf("ProgressBar(%v, %d) empty = %d, want %d", tc.percent, tc.width, n, tc.wantEmpty)
		}
	}
}

func TestProgressBarPercentSuffix(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	got := ProgressBar(72.7, 10)
	if !strings.HasSuffix(got, "73%") {
		t.Errorf("ProgressBar(72.7) = %q, want %%-suffix rounded to 73%%", got)
	}
}

func TestCoverageBarSuffix(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	got := CoverageBar(87.5, 10)
	if !strings.HasSuffix(got, "87.50%") {
		t.Errorf("CoverageBar(87.5) = %q, want two-decimal suffix", got)
	}
}

func TestTrendArrow(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	tests := []struct {
		name           string
		delta          float64
		higherIsBetter bool
		want           string
	}{
		{"issues down", -3, false, "▼ -3.0"},
		{"issues up", 2, false, "▲ +2.0"},
		{"coverage up", 4.5, true, "▲ +4.5"},
		{"coverage down", -1.2, true, "▼ -1.2"},
		{"flat", 0, false, "─"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := TrendArrow(tc.delta, tc.higherIsBetter)
			if got != tc.want {
				t.Errorf("TrendArrow(%v, %v) = %q, want %q", tc.delta, tc.higherIsBetter, got, tc.want)
			}
		})
	}
}

func TestTrendArrowPercent(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	if got := TrendArrowPercent(2.5, true); got != "▲ +2.50%" {
		t.Errorf("TrendArrowPercent(2.5, true) = %q", got)
	}
	if got := TrendArrowPercent(-0.75, true); got != "▼ -0.75%" {
		t.Errorf("TrendArrowPercent(-0.75, true) = %q", got)
	}
}

func TestSection(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	got := Section("Recommendations")
	if !strings.Contains(got, "Recommendations") {
		t.Errorf("Section() = %q, missing title", got)
	}
	if !strings.Contains(got, "─") {
		t.Errorf("Section() = %q, missing rule", got)
	}
}
