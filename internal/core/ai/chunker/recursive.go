package chunker

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultSeparators are tried coarsest first: paragraphs, lines, words, characters.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// RecursiveSplitter splits text into pieces of at most Size characters,
// repeating up to Overlap characters of trailing context at the start of the
// next piece. Separators stay attached to the text they end, so the pieces
// are exact substrings of the input.
type RecursiveSplitter struct {
	Size       int
	Overlap    int
	Separators []string
}

// Span is a piece of text produced by RecursiveSplitter.
type Span struct {
	Text    string
	Start   int // byte offset into the source
	End     int // byte offset into the source, exclusive
	Overlap int // leading bytes shared with the previous span
}

// NewRecursiveSplitter validates the size budget and returns a splitter
// using DefaultSeparators.
func NewRecursiveSplitter(size, overlap int) (*RecursiveSplitter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("chunk overlap must not be negative, got %d", overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("chunk overlap (%d) must be smaller than chunk size (%d)", overlap, size)
	}
	return &RecursiveSplitter{
		Size:       size,
		Overlap:    overlap,
		Separators: DefaultSeparators,
	}, nil
}

// Split cuts text into overlapping spans.
func (r *RecursiveSplitter) Split(text string) ([]Span, error) {
	if r.Size <= 0 || r.Overlap < 0 || r.Overlap >= r.Size {
		return nil, errors.New("invalid splitter configuration")
	}
	if text == "" {
		return nil, nil
	}
	pieces := r.pieces(text, 0, r.Separators)
	return r.merge(text, pieces), nil
}

// piece is a contiguous byte range of the source text.
type piece struct {
	start, end int
	runes      int
}

// pieces breaks text into ranges that fit the size budget, descending to a
// finer separator only for ranges that are still too large.
func (r *RecursiveSplitter) pieces(text string, offset int, separators []string) []piece {
	n := utf8.RuneCountInString(text)
	if n <= r.Size {
		return []piece{{start: offset, end: offset + len(text), runes: n}}
	}

	sep, rest := pickSeparator(text, separators)
	if sep == "" && !contains(separators, "") {
		// No separator applies and characters are not allowed: keep as is.
		return []piece{{start: offset, end: offset + len(text), runes: n}}
	}

	var out []piece
	pos := 0
	for _, part := range splitKeep(text, sep) {
		partRunes := utf8.RuneCountInString(part)
		if partRunes <= r.Size || len(rest) == 0 {
			out = append(out, piece{start: offset + pos, end: offset + pos + len(part), runes: partRunes})
		} else {
			out = append(out, r.pieces(part, offset+pos, rest)...)
		}
		pos += len(part)
	}
	return out
}

// merge greedily packs pieces into spans of at most Size characters. When a
// span is full, leading pieces are dropped until what is left fits within
// Overlap and leaves room for the next piece; the remainder opens the next span.
func (r *RecursiveSplitter) merge(text string, pieces []piece) []Span {
	var spans []Span
	lo, total := 0, 0
	prevEnd := 0

	emit := func(hi int) {
		start, end := pieces[lo].start, pieces[hi-1].end
		overlap := 0
		if len(spans) > 0 && prevEnd > start {
			overlap = prevEnd - start
		}
		spans = append(spans, Span{Text: text[start:end], Start: start, End: end, Overlap: overlap})
		prevEnd = end
	}

	for hi, p := range pieces {
		if total+p.runes > r.Size && hi > lo {
			emit(hi)
			for lo < hi && (total > r.Overlap || total+p.runes > r.Size) {
				total -= pieces[lo].runes
				lo++
			}
		}
		total += p.runes
	}
	if lo < len(pieces) {
		emit(len(pieces))
	}
	return spans
}

// pickSeparator returns the first separator present in text and the finer
// separators after it. The empty separator always matches.
func pickSeparator(text string, separators []string) (string, []string) {
	for i, sep := range separators {
		if sep == "" || strings.Contains(text, sep) {
			return sep, separators[i+1:]
		}
	}
	return "", nil
}

// splitKeep splits s after every occurrence of sep, keeping sep on the left
// part. An empty sep splits into single characters.
func splitKeep(s, sep string) []string {
	if sep == "" {
		parts := make([]string, 0, utf8.RuneCountInString(s))
		for i, w := 0, 0; i < len(s); i += w {
			_, w = utf8.DecodeRuneInString(s[i:])
			parts = append(parts, s[i:i+w])
		}
		return parts
	}
	parts := strings.SplitAfter(s, sep)
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
