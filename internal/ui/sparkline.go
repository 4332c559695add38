package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline block characters representing 8 vertical levels (lowest to highest).
const sparklineBlocks = "▁▂▃▄▅▆▇█"

// sparklineGap marks a probe that got no reply.
const sparklineGap = '·'

var sparklineBlockRunes = []rune(sparklineBlocks)

// Sparkline renders the most recent width values as block characters.
// Values are mapped to 8 levels between the min and max of the finite values;
// NaN values are drawn as a gap.
func Sparkline(data []float64, width int) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}

	if len(data) > width {
		data = data[len(data)-width:]
	}

	minVal, maxVal := math.Inf(1), math.Inf(-1)
	for _, v := range data {
		if math.IsNaN(v) {
			continue
		}
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}

	var sb strings.Builder
	sb.Grow(len(data) * 3)

	numLevels := len(sparklineBlockRunes)
	valueRange := maxVal - minVal

	for _, v := range data {
		if math.IsNaN(v) {
			sb.WriteRune(sparklineGap)
			continue
		}

		var level int
		if valueRange == 0 {
			level = numLevels / 2
		} else {
			level = int((v - minVal) / valueRange * float64(numLevels-1))
			level = max(0, min(level, numLevels-1))
		}
		sb.WriteRune(sparklineBlockRunes[level])
	}

	return sb.String()
}

// RenderSparkline is Sparkline colored by the outcome of the last probe.
func RenderSparkline(data []float64, width int) string {
	line := Sparkline(data, width)
	if line == "" {
		return ""
	}

	color := ColorSuccess
	if math.IsNaN(data[len(data)-1]) {
		color = ColorError
	}
	return lipgloss.NewStyle().Foreground(color).Render(line)
}
