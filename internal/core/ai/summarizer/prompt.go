package summarizer

import (
	"fmt"
	"strings"

	"github.com/guiyumin/vsum/internal/core/ai/chunker"
	"github.com/guiyumin/vsum/internal/core/transcript"
)

// Format selects the summary layout requested from the model.
type Format string

const (
	FormatConcise      Format = "concise"
	FormatDetailed     Format = "detailed"
	FormatAcademic     Format = "academic"
	FormatBulletPoints Format = "bullet_points"
)

// Formats lists every supported format.
var Formats = []Format{FormatConcise, FormatDetailed, FormatAcademic, FormatBulletPoints}

// ParseFormat validates a user supplied format name. An empty name means detailed.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatDetailed, nil
	case FormatConcise, FormatDetailed, FormatAcademic, FormatBulletPoints:
		return f, nil
	default:
		return "", fmt.Errorf("unknown summary format: %s (want concise, detailed, academic or bullet_points)", s)
	}
}

// IncludesDetailed reports whether the rendered summary has a detailed section.
func (f Format) IncludesDetailed() bool {
	return f == FormatDetailed || f == FormatAcademic
}

const baseInstruction = `Analyze the video transcript above and provide a structured summary.

First, identify and quote 3-5 key segments from the transcript that represent the main ideas.

Then provide:`

// TaskInstructions returns the format specific request. Unknown formats get
// the detailed instructions.
func TaskInstructions(f Format) string {
	switch f {
	case FormatConcise:
		return baseInstruction + `

1. **Executive Summary** (2-3 sentences capturing the essence)
2. **Key Takeaways** (5-7 bullet points)
3. **Main Topics** (3-5 topics covered)
4. **Target Audience** (who would benefit from this video)

Format your response in clear Markdown.`

	case FormatAcademic:
		return baseInstruction + `

1. **Executive Summary** (Abstract-style overview)
2. **Main Concepts** (Define and explain key concepts with timestamps)
3. **Methodology/Approach** (If applicable: techniques, frameworks discussed)
4. **Practical Applications** (Real-world use cases and examples)
5. **Key Findings/Insights** (Important conclusions or discoveries)
6. **Resources & References** (Citations, further reading)
7. **Discussion Points** (Questions for further exploration)

Format as academic notes with clear structure and technical depth.`

	case FormatBulletPoints:
		return baseInstruction + `

Provide a rapid-fire list of key takeaways:

**TL;DR** (One sentence)

**Main Points** (15-20 concise bullet points capturing all important information with timestamps)

**Topics** (List of topics covered)

**Resources** (Any tools/books/links mentioned)

Be extremely concise but comprehensive.`

	default:
		return baseInstruction + `

1. **Executive Summary** (2-3 sentences)
2. **Key Points** (8-12 points with timestamps in [HH:MM:SS] format)
3. **Detailed Summary** (Comprehensive breakdown by section/topic)
4. **Topics Covered** (All major topics discussed)
5. **Notable Quotes** (3-5 memorable or important quotes with timestamps)
6. **Resources Mentioned** (Books, tools, websites, papers referenced)
7. **Target Audience** (Who should watch this)

Format your response in clear Markdown with proper headings and structure.`
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

// DocumentPrompt builds the single-call prompt. The transcript goes first,
// inside XML tags, and the instructions follow it.
func DocumentPrompt(t *transcript.Transcript, f Format) string {
	md := t.Metadata
	var b strings.Builder

	b.WriteString("<documents>\n<document index=\"1\">\n")
	fmt.Fprintf(&b, "<source>%s</source>\n", md.DisplayTitle())
	b.WriteString("<video_metadata>\n")
	fmt.Fprintf(&b, "- Video ID: %s\n", md.VideoID)
	fmt.Fprintf(&b, "- URL: %s\n", md.URL)
	fmt.Fprintf(&b, "- Channel: %s\n", orUnknown(md.Channel))
	fmt.Fprintf(&b, "- Duration: %s\n", orUnknown(md.DurationFormatted()))
	fmt.Fprintf(&b, "- Language: %s\n", t.Language)
	fmt.Fprintf(&b, "- Auto-generated: %t\n", t.IsAutoGenerated)
	b.WriteString("</video_metadata>\n<document_content>\n")
	b.WriteString(t.FullTextWithTimestamps())
	b.WriteString("\n</document_content>\n</document>\n</documents>\n\n")
	b.WriteString(TaskInstructions(f))

	return b.String()
}

// ChunkPrompt builds the map-phase prompt for chunk number (1-based) of total.
func ChunkPrompt(c chunker.Chunk, number, total int) string {
	return fmt.Sprintf(`<document_chunk>
<chunk_info>
Chunk %d of %d
Video: %s
</chunk_info>
<content>
%s
</content>
</document_chunk>

Summarize the key points from this chunk of the video transcript. Focus on:
- Main topics discussed
- Important statements or claims
- Examples or demonstrations mentioned
- Any resources or references

Provide 3-5 concise bullet points capturing the essence of this segment.`,
		number, total, orUnknown(c.Metadata.Title), c.Content)
}

// ReducePrompt combines per-chunk summaries, labelled Segment 1..N, with the
// video metadata and the format instructions.
func ReducePrompt(summaries []string, t *transcript.Transcript, f Format) string {
	segments := make([]string, len(summaries))
	for i, s := range summaries {
		segments[i] = fmt.Sprintf("**Segment %d**:\n%s", i+1, s)
	}
	md := t.Metadata

	return fmt.Sprintf(`<video_info>
Title: %s
Channel: %s
Duration: %s
URL: %s
</video_info>

<segment_summaries>
%s
</segment_summaries>

You have been provided with summaries of different segments from a video transcript.
Synthesize these into a comprehensive summary of the entire video.

%s`,
		orUnknown(md.Title), orUnknown(md.Channel), orUnknown(md.DurationFormatted()), md.URL,
		strings.Join(segments, "\n\n---\n\n"),
		TaskInstructions(f))
}
