package output

import (
	"path"
	"regexp"
	"strings"

	"github.com/guiyumin/vsum/internal/core/transcript"
)

var (
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	filenameSpaces       = regexp.MustCompile(`[\s_]+`)
)

// maxFilenameRunes bounds sanitized names.
const maxFilenameRunes = 100

// SanitizeFilename strips characters that are invalid in file names,
// collapses whitespace and underscores into dashes, trims leading and
// trailing dots and dashes, and caps the length.
func SanitizeFilename(text string) string {
	text = invalidFilenameChars.ReplaceAllString(text, "")
	text = filenameSpaces.ReplaceAllString(text, "-")
	text = strings.Trim(text, ".-")

	if runes := []rune(text); len(runes) > maxFilenameRunes {
		text = string(runes[:maxFilenameRunes])
	}
	return text
}

// SummaryPath returns the slash-separated path of a summary relative to the
// output directory: <channel>/<title>_<id>.md, or <id>.md without a title.
func SummaryPath(md transcript.Metadata) string {
	return relativePath(md, ".md")
}

// TranscriptPath is SummaryPath with a .transcript.md suffix.
func TranscriptPath(md transcript.Metadata) string {
	return relativePath(md, ".transcript.md")
}

func relativePath(md transcript.Metadata, suffix string) string {
	name := md.VideoID + suffix
	if md.Title != "" && md.Title != "YouTube Video "+md.VideoID {
		if title := SanitizeFilename(md.Title); title != "" {
			name = title + "_" + md.VideoID + suffix
		}
	}

	if md.Channel != "" {
		if dir := SanitizeFilename(md.Channel); dir != "" {
			return path.Join(dir, name)
		}
	}
	return name
}

// TranscriptPathFor derives a transcript path next to an explicit summary
// path, e.g. notes/a.md -> notes/a.transcript.md.
func TranscriptPathFor(summaryPath string) string {
	return strings.TrimSuffix(summaryPath, ".md") + ".transcript.md"
}
