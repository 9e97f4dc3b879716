package summarizer

import (
	"strings"
	"time"

	"github.com/guiyumin/vsum/internal/core/transcript"
)

type section int

const (
	sectionNone section = iota
	sectionExecutive
	sectionKeyPoints
	sectionDetailed
	sectionTopics
	sectionQuotes
	sectionResources
	sectionAudience
)

// triggers are checked in order against the lowercased, trimmed line.
var triggers = []struct {
	section section
	match   func(line string) bool
}{
	{sectionExecutive, containsAny("executive summary", "tl;dr")},
	{sectionKeyPoints, containsAny("key point", "key takeaway", "main point")},
	{sectionDetailed, containsAny("detailed summary", "comprehensive")},
	{sectionTopics, containsAny("topic")},
	{sectionQuotes, containsAny("quote")},
	{sectionResources, containsAny("resource", "reference")},
	{sectionAudience, containsAny("target audience", "who should watch")},
}

func containsAny(subs ...string) func(string) bool {
	return func(line string) bool {
		for _, s := range subs {
			if strings.Contains(line, s) {
				return true
			}
		}
		return false
	}
}

func isBullet(trimmed string) bool {
	return strings.HasPrefix(trimmed, "-") || strings.HasPrefix(trimmed, "*") || strings.HasPrefix(trimmed, "•")
}

func stripBullet(trimmed string) string {
	return strings.TrimLeft(trimmed, "-*• ")
}

// isProse excludes markdown headings and bold label lines.
func isProse(line string) bool {
	return !strings.HasPrefix(line, "#") && !strings.HasPrefix(line, "**")
}

// Parse extracts a Summary from a free-form model response.
//
// It is a best-effort heuristic: any line mentioning a section keyword
// ("key point", "topic", "quote", ...) switches the current section and is
// itself dropped, so ordinary sentences containing those words are lost and
// nothing guarantees the result matches what the model meant. Empty fields
// fall back to slices of the raw response; Parse never fails.
func Parse(response string, md transcript.Metadata, generatedAt time.Time) *Summary {
	var (
		executive strings.Builder
		detailed  strings.Builder
		audience  strings.Builder
		s         = &Summary{Metadata: md, GeneratedAt: generatedAt}
		current   = sectionNone
	)

	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)

		if next := detectSection(lower); next != sectionNone {
			current = next
			continue
		}
		if current == sectionNone || trimmed == "" {
			continue
		}

		switch current {
		case sectionExecutive:
			if isProse(line) {
				executive.WriteString(line + " ")
			}
		case sectionAudience:
			if isProse(line) {
				audience.WriteString(line + " ")
			}
		case sectionKeyPoints:
			if isBullet(trimmed) {
				s.KeyPoints = append(s.KeyPoints, stripBullet(trimmed))
			}
		case sectionTopics:
			if isBullet(trimmed) {
				s.TopicsCovered = append(s.TopicsCovered, stripBullet(trimmed))
			}
		case sectionResources:
			if isBullet(trimmed) {
				s.ResourcesMentioned = append(s.ResourcesMentioned, stripBullet(trimmed))
			}
		case sectionQuotes:
			if strings.HasPrefix(trimmed, ">") || strings.HasPrefix(trimmed, `"`) {
				s.NotableQuotes = append(s.NotableQuotes, strings.TrimSpace(strings.TrimPrefix(trimmed, ">")))
			}
		case sectionDetailed:
			detailed.WriteString(line + "\n")
		}
	}

	s.ExecutiveSummary = strings.TrimSpace(executive.String())
	s.DetailedSummary = strings.TrimSpace(detailed.String())
	s.TargetAudience = strings.TrimSpace(audience.String())

	if s.ExecutiveSummary == "" {
		s.ExecutiveSummary = strings.TrimSpace(truncateRunes(response, 200) + "...")
	}
	if len(s.KeyPoints) == 0 {
		s.KeyPoints = leadingSentences(response, 5)
	}
	if s.DetailedSummary == "" {
		s.DetailedSummary = strings.TrimSpace(response)
	}
	if len(s.TopicsCovered) == 0 {
		s.TopicsCovered = []string{NotExtracted}
	}

	return s
}

// NotExtracted is the placeholder topic when the response lists none.
const NotExtracted = "Not extracted"

func detectSection(lower string) section {
	if strings.HasPrefix(lower, "**tl;dr") {
		return sectionExecutive
	}
	for _, t := range triggers {
		if t.match(lower) {
			return t.section
		}
	}
	return sectionNone
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// leadingSentences splits on ". " and returns up to n sentences, each ending
// with a period.
func leadingSentences(s string, n int) []string {
	parts := strings.Split(s, ". ")
	if len(parts) > n {
		parts = parts[:n]
	}
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p+".")
		}
	}
	return out
}
