package chunker

import (
	"fmt"
	"strings"

	"github.com/guiyumin/vsum/internal/core/transcript"
)

// Strategy selects how a transcript is split.
type Strategy string

const (
	// StrategyNone keeps the whole timestamped transcript as one chunk.
	StrategyNone Strategy = "none"
	// StrategyRecursive splits on paragraph, line, word and character boundaries.
	StrategyRecursive Strategy = "recursive"
	// StrategySemantic splits where adjacent sentences drift apart in meaning.
	StrategySemantic Strategy = "semantic"
	// StrategyTimestamp splits into fixed-width time windows.
	StrategyTimestamp Strategy = "timestamp"
)

// StrategyAuto is accepted by ParseStrategy and resolved with Recommend.
const StrategyAuto Strategy = "auto"

// Strategies lists every concrete strategy.
var Strategies = []Strategy{StrategyNone, StrategyRecursive, StrategySemantic, StrategyTimestamp}

// Duration thresholds used by Recommend, in seconds.
const (
	ShortVideoLimit  = 600  // 10 minutes
	MediumVideoLimit = 1800 // 30 minutes
)

// ParseStrategy converts a user supplied name into a Strategy.
// "auto" and the empty string both return StrategyAuto.
func ParseStrategy(s string) (Strategy, error) {
	switch v := Strategy(strings.ToLower(strings.TrimSpace(s))); v {
	case "", StrategyAuto:
		return StrategyAuto, nil
	case StrategyNone, StrategyRecursive, StrategySemantic, StrategyTimestamp:
		return v, nil
	default:
		return "", fmt.Errorf("unknown chunking strategy: %s (want none, recursive, semantic, timestamp or auto)", s)
	}
}

// Recommend maps a video duration to a chunking strategy:
// under 10 minutes none, under 30 minutes recursive, otherwise semantic
// when an embedder is available and timestamp when it is not.
// A zero duration falls into the none tier.
func Recommend(durationSeconds int, semanticAvailable bool) Strategy {
	switch {
	case durationSeconds < ShortVideoLimit:
		return StrategyNone
	case durationSeconds < MediumVideoLimit:
		return StrategyRecursive
	case semanticAvailable:
		return StrategySemantic
	default:
		return StrategyTimestamp
	}
}

// RecommendFor recommends a strategy for a transcript. When the metadata
// duration is unknown the caption span is used instead.
func RecommendFor(t *transcript.Transcript, semanticAvailable bool) Strategy {
	duration := t.Metadata.Duration
	if duration <= 0 {
		duration = int(t.Span())
	}
	return Recommend(duration, semanticAvailable)
}
