package chunker

import "github.com/guiyumin/vsum/internal/core/transcript"

// DefaultInterval is the width of a timestamp window in seconds.
const DefaultInterval = 300

// splitByInterval groups consecutive segments into windows. A window opened at
// time w collects segments until one starts at or after w+interval; that
// segment opens the next window. The last window is kept even when short.
func splitByInterval(segments []transcript.Segment, interval float64) [][]transcript.Segment {
	var windows [][]transcript.Segment
	var current []transcript.Segment
	windowStart := 0.0

	for _, seg := range segments {
		if seg.Start >= windowStart+interval {
			if len(current) > 0 {
				windows = append(windows, current)
			}
			current = nil
			windowStart = seg.Start
		}
		current = append(current, seg)
	}
	if len(current) > 0 {
		windows = append(windows, current)
	}
	return windows
}
