package utils

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// Number formats large numbers with commas for readability.
// For example: 1234567 becomes "1,234,567"
func Number(n int64) string {
	return humanize.Comma(n)
}

// Bytes formats a byte count with SI units, e.g. "82 MB"
func Bytes(n int64) string {
	if n < 0 {
		return "-" + humanize.Bytes(uint64(-n))
	}
	return humanize.Bytes(uint64(n))
}

// Duration formats time duration in human-readable form.
// Examples:
//   - Less than 1 second: "350ms"
//   - Less than 1 minute: "5.2s"
//   - 1 minute or more: "3m5.2s"
func Duration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		minutes := int(d.Minutes())
		seconds := d.Seconds() - float64(minutes*60)
		return fmt.Sprintf("%dm%.1fs", minutes, seconds)
	}
}

// Rate formats a per-second rate of n items over d
func Rate(n int, d time.Duration) string {
	if d <= 0 {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", float64(n)/d.Seconds())
}
