package humanize

import (
	"fmt"
	"math"
	"time"
)

const forever = "longer than the age of the universe"

// ShortDuration renders elapsed wall time as 42s, 3m07s or 2h05m09s.
func ShortDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%02ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
}

// LargeNumber abbreviates counters: 999, 1.5K, 2.5M, 1.0B, 10.0T.
func LargeNumber(n uint64) string {
	switch {
	case n < 1_000:
		return fmt.Sprintf("%d", n)
	case n < 1_000_000:
		return fmt.Sprintf("%.1fK", float64(n)/1e3)
	case n < 1_000_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1e6)
	case n < 1_000_000_000_000:
		return fmt.Sprintf("%.1fB", float64(n)/1e9)
	default:
		return fmt.Sprintf("%.1fT", float64(n)/1e12)
	}
}

// Duration renders an estimate in seconds using the largest unit that keeps
// the number readable. Anything from a thousand years up, NaN and Inf collapse
// into one phrase.
func Duration(seconds float64) string {
	const (
		minute = 60.0
		hour   = 3600.0
		day    = 86400.0
		year   = 31536000.0

		minNormal = 0x1p-1022 // smallest normal float64
	)
	switch {
	case math.IsNaN(seconds) || math.IsInf(seconds, 0):
		return forever
	case seconds < minNormal*1000 || seconds <= 0:
		return "0.0 seconds"
	case seconds < 0.01:
		return fmt.Sprintf("%.3f seconds", seconds)
	case seconds < minute:
		return fmt.Sprintf("%.1f seconds", seconds)
	case seconds < hour:
		return fmt.Sprintf("%.1f minutes", seconds/minute)
	case seconds < day:
		return fmt.Sprintf("%.1f hours", seconds/hour)
	case seconds < year:
		return fmt.Sprintf("%.1f days", seconds/day)
	case seconds < 1000*year:
		return fmt.Sprintf("%.1f years", seconds/year)
	default:
		return forever
	}
}
