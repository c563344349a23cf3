package render

import (
	"time"

	"github.com/dustin/go-humanize"

	"github.com/nhle/crmterm/internal/model"
)

// RelativeTime renders t relative to now, e.g. "3 minutes ago".
func RelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// Money renders an amount with thousands separators and two decimals.
func Money(m model.Money) string {
	return humanize.FormatFloat("#,###.##", float64(m))
}

// Size renders a byte count, e.g. "1.5 kB".
func Size(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// Count renders an integer with thousands separators.
func Count(n int) string {
	return humanize.Comma(int64(n))
}
