package components

import (
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/stretchr/testify/assert"
)

func TestProgressBarFilled(t *testing.T) {
	tests := []struct {
		percent int
		want    int
	}{
		{0, 0},
		{50, 20},
		{67, 26},
		{100, 40},
		{150, 40},
		{-5, 0},
	}
	for _, tt := range tests {
		p := NewProgressBar("", tt.percent, false, 40)
		assert.Equal(t, tt.want, p.Filled(40), "percent %d", tt.percent)
	}
}

func TestProgressBarWidth(t *testing.T) {
	for _, pct := range []int{0, 5, 40, 100, 250} {
		p := NewProgressBar("Week", pct, true, 50)
		assert.Equal(t, 50, lipgloss.Width(p.View()), "percent %d", pct)
	}
	assert.Contains(t, NewProgressBar("", 40, true, 50).View(), " 40%")
	assert.Contains(t, NewProgressBar("", 250, true, 50).View(), "100%")

	narrow := NewProgressBar("", 10, false, 1)
	assert.Equal(t, 4, lipgloss.Width(narrow.View()))
}
