package utils

import (
	"fmt"
	"time"
)

func FormatTimeISO(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func ParseTimeISO(timeStr string) (time.Time, error) {
	return time.Parse(time.RFC3339, timeStr)
}

// FormatRelativeAge renders how long ago t was, for request listings.
func FormatRelativeAge(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%d mins ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(diff.Hours()))
	default:
		return fmt.Sprintf("%d days ago", int(diff.Hours()/24))
	}
}

func FormatDistanceKM(km float64) string {
	return fmt.Sprintf("%.1f km", km)
}
