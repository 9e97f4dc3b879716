// Package output renders summaries and transcripts as markdown and stores them.
package output

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/guiyumin/vsum/internal/core/ai/summarizer"
	"github.com/guiyumin/vsum/internal/core/transcript"
)

const timeLayout = "2006-01-02 15:04:05"

// Render converts a summary to markdown. Optional fields that are empty
// simply omit their section; the detailed section appears only for formats
// that ask for one.
func Render(s *summarizer.Summary, f summarizer.Format) string {
	md := s.Metadata
	lines := []string{
		"# Video Summary: " + md.DisplayTitle(),
		"",
		"## Metadata",
		"- **Video ID**: " + md.VideoID,
		"- **URL**: " + md.URL,
	}

	if md.Channel != "" {
		lines = append(lines, "- **Channel**: "+md.Channel)
	}
	if d := md.DurationFormatted(); d != "" {
		lines = append(lines, "- **Duration**: "+d)
	}
	if md.PublishDate != "" {
		lines = append(lines, "- **Published**: "+md.PublishDate)
	}
	if md.ViewCount > 0 {
		lines = append(lines, "- **Views**: "+groupThousands(md.ViewCount))
	}

	lines = append(lines, "", "## Executive Summary", s.ExecutiveSummary, "", "## Key Points")
	for _, p := range s.KeyPoints {
		lines = append(lines, "- "+p)
	}

	if f.IncludesDetailed() {
		lines = append(lines, "", "## Detailed Summary", s.DetailedSummary)
	}

	lines = append(lines, "", "## Topics Covered")
	for _, t := range s.TopicsCovered {
		lines = append(lines, "- "+t)
	}

	if len(s.NotableQuotes) > 0 {
		lines = append(lines, "", "## Notable Quotes")
		for _, q := range s.NotableQuotes {
			lines = append(lines, "> "+q, "")
		}
	}

	if len(s.ResourcesMentioned) > 0 {
		lines = append(lines, "", "## Resources Mentioned")
		for _, r := range s.ResourcesMentioned {
			lines = append(lines, "- "+r)
		}
	}

	if s.TargetAudience != "" {
		lines = append(lines, "", "## Target Audience", s.TargetAudience)
	}

	lines = append(lines,
		"",
		"---",
		"**Summary Generated**: "+s.GeneratedAt.Format(timeLayout),
		"**Original Video**: "+md.URL,
	)

	return strings.Join(lines, "\n")
}

// groupThousands formats n with comma separators, e.g. 1234567 -> 1,234,567.
func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// RenderTranscript writes the caption track as markdown with one
// timestamped paragraph per segment.
func RenderTranscript(t *transcript.Transcript, exportedAt time.Time) string {
	var b strings.Builder
	md := t.Metadata

	fmt.Fprintf(&b, "# Transcript: %s\n\n", md.DisplayTitle())

	fmt.Fprintf(&b, "**URL:** %s\n", md.URL)
	if md.Channel != "" {
		fmt.Fprintf(&b, "**Channel:** %s\n", md.Channel)
	}
	if d := md.DurationFormatted(); d != "" {
		fmt.Fprintf(&b, "**Duration:** %s\n", d)
	}
	if t.Language != "" {
		kind := "manual"
		if t.IsAutoGenerated {
			kind = "auto-generated"
		}
		fmt.Fprintf(&b, "**Language:** %s (%s)\n", t.Language, kind)
	}
	fmt.Fprintf(&b, "**Exported:** %s\n", exportedAt.Format(timeLayout))
	b.WriteString("\n---\n\n")

	for _, seg := range t.Segments {
		text := strings.TrimSpace(seg.Text)
		if text != "" {
			fmt.Fprintf(&b, "[%s] %s\n\n", seg.StartTimestamp(), text)
		}
	}

	return b.String()
}
