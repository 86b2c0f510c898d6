// Package format renders byte counts and elapsed times for the
// recording summaries printed by the CLI.
package format

import (
	"fmt"
	"time"
)

// Duration renders an elapsed recording time as M:SS, or H:MM:SS once
// the capture crosses an hour. Sub-second remainders are truncated;
// negative inputs clamp to zero.
func Duration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	h := total / 3600
	m := total % 3600 / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// Size renders a capture's byte count for display. Mono 16 kHz PCM
// grows at roughly 1.8 MB per minute, so real recordings land in the
// KB to low-MB range; MB values keep one decimal so short takes stay
// distinguishable.
func Size(bytes int64) string {
	const (
		kb = 1 << 10
		mb = 1 << 20
	)
	switch {
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/mb)
	case bytes >= kb:
		return fmt.Sprintf("%d KB", bytes/kb)
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}
