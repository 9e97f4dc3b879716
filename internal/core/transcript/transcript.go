// Package transcript holds the video transcript model and the providers that fetch it.
package transcript

import (
	"fmt"
	"strings"
)

// Segment is one timestamped span of spoken text.
type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`    // seconds
	Duration float64 `json:"duration"` // seconds
}

// End returns the end time of the segment in seconds.
func (s Segment) End() float64 {
	return s.Start + s.Duration
}

// StartTimestamp returns the start time formatted as MM:SS or HH:MM:SS.
func (s Segment) StartTimestamp() string {
	return FormatTimestamp(s.Start)
}

// EndTimestamp returns the end time formatted as MM:SS or HH:MM:SS.
func (s Segment) EndTimestamp() string {
	return FormatTimestamp(s.End())
}

// Metadata describes a video. Only VideoID and URL are required.
type Metadata struct {
	VideoID     string `json:"video_id"`
	Title       string `json:"title,omitempty"`
	Channel     string `json:"channel,omitempty"`
	Duration    int    `json:"duration,omitempty"` // seconds, 0 when unknown
	PublishDate string `json:"publish_date,omitempty"`
	ViewCount   int64  `json:"view_count,omitempty"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
}

// DurationFormatted returns the duration as MM:SS or HH:MM:SS,
// or an empty string when the duration is unknown.
func (m Metadata) DurationFormatted() string {
	if m.Duration <= 0 {
		return ""
	}
	return FormatTimestamp(float64(m.Duration))
}

// DisplayTitle returns the title, falling back to the video ID.
func (m Metadata) DisplayTitle() string {
	if m.Title != "" {
		return m.Title
	}
	return m.VideoID
}

// Transcript is the complete caption track of a video.
// It is created once by a Provider and treated as read-only afterwards.
type Transcript struct {
	Metadata        Metadata  `json:"metadata"`
	Segments        []Segment `json:"segments"`
	Language        string    `json:"language"`
	IsAutoGenerated bool      `json:"is_auto_generated"`
}

// FullText joins all segment texts with a single space.
func (t *Transcript) FullText() string {
	texts := make([]string, len(t.Segments))
	for i, seg := range t.Segments {
		texts[i] = seg.Text
	}
	return strings.Join(texts, " ")
}

// FullTextWithTimestamps returns one "[start] text" line per segment.
func (t *Transcript) FullTextWithTimestamps() string {
	return JoinTimestamped(t.Segments)
}

// Span returns the end time of the last segment in seconds.
func (t *Transcript) Span() float64 {
	if len(t.Segments) == 0 {
		return 0
	}
	return t.Segments[len(t.Segments)-1].End()
}

// JoinTimestamped renders segments as newline separated "[start] text" lines.
func JoinTimestamped(segments []Segment) string {
	lines := make([]string, len(segments))
	for i, seg := range segments {
		lines[i] = fmt.Sprintf("[%s] %s", seg.StartTimestamp(), seg.Text)
	}
	return strings.Join(lines, "\n")
}

// FormatTimestamp formats seconds as MM:SS, or HH:MM:SS from one hour on.
// Fractional seconds are truncated.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}
