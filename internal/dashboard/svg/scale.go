package svg

import (
	"fmt"
	"math"
	"strings"
)

// axis maps a value range onto the vertical extent of the plot area.
type axis struct {
	min, max float64
	top      float64
	height   float64
}

func newAxis(values []float64, top, height float64) axis {
	// The axis always includes zero.
	lo, hi := 0.0, 0.0
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if almostEqual(hi, lo) {
		hi = lo + 1
	}
	return axis{min: lo, max: niceCeil(hi), top: top, height: height}
}

func (a axis) y(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = a.min
	}
	return a.top + a.height - (v-a.min)/(a.max-a.min)*a.height
}

func (a axis) tick(i, count int) (value, y float64) {
	ratio := float64(i) / float64(count)
	value = a.min + (a.max-a.min)*ratio
	return value, a.top + a.height - ratio*a.height
}

// niceCeil rounds v up to 1, 2, 2.5, 5 or 10 times a power of ten.
func niceCeil(v float64) float64 {
	if v <= 0 {
		return v
	}
	exp := math.Pow(10, math.Floor(math.Log10(v)))
	for _, m := range []float64{1, 2, 2.5, 5, 10} {
		if v <= m*exp+1e-9 {
			return m * exp
		}
	}
	return 10 * exp
}

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func makeID(base, suffix string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, strings.ToLower(strings.TrimSpace(base)))
	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" {
		cleaned = "chart"
	}
	return cleaned + "-" + suffix
}

func formatTick(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case abs >= 10_000:
		return fmt.Sprintf("%.0fk", v/1_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fk", v/1_000)
	default:
		if almostEqual(v, math.Round(v)) {
			return fmt.Sprintf("%.0f", v)
		}
		return fmt.Sprintf("%.1f", v)
	}
}

func xPositions(n int, left, width float64) []float64 {
	xs := make([]float64, n)
	if n == 1 {
		xs[0] = left + width/2
		return xs
	}
	step := width / float64(n-1)
	for i := range xs {
		xs[i] = left + float64(i)*step
	}
	return xs
}
