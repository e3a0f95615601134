package viz

import (
	"fmt"
	"strings"

	"github.com/san-kum/poisson/internal/grid"
)

// ramp runs from the lowest to the highest band.
const ramp = " .:-=+*#%@"

// Heatmap shades g into at most cols columns, with i running left to
// right and j bottom to top. Each character is one of len(ramp) bands
// between the field minimum and maximum, so band edges trace contours.
// A field holding NaN or Inf has no usable range and is reported instead.
func Heatmap(g *grid.Grid, cols int) string {
	if !g.IsFinite() {
		return StatusWarn.Render(fmt.Sprintf("field (%dx%d) holds non-finite values", g.NX, g.NY))
	}
	if cols <= 0 || cols > g.NX {
		cols = g.NX
	}
	// terminal cells are about twice as tall as wide
	rows := int(float64(cols) * g.LY / g.LX / 2)
	if rows < 2 {
		rows = 2
	}
	if rows > g.NY {
		rows = g.NY
	}

	lo, hi := g.Range()
	span := hi - lo

	var b strings.Builder
	for r := rows - 1; r >= 0; r-- {
		j := sample(r, rows, g.NY)
		for c := 0; c < cols; c++ {
			i := sample(c, cols, g.NX)
			b.WriteByte(ramp[band(g.At(i, j), lo, span)])
		}
		b.WriteByte('\n')
	}
	b.WriteString(Subtle.Render(fmt.Sprintf("min %.4g  max %.4g  (%dx%d)", lo, hi, g.NX, g.NY)))
	return b.String()
}

func sample(k, n, size int) int {
	if n <= 1 {
		return 0
	}
	return k * (size - 1) / (n - 1)
}

func band(v, lo, span float64) int {
	if span <= 0 {
		return 0
	}
	idx := int((v - lo) / span * float64(len(ramp)))
	if idx >= len(ramp) {
		idx = len(ramp) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}
