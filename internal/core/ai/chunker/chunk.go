package chunker

import (
	"encoding/json"

	"github.com/guiyumin/vsum/internal/core/transcript"
)

// Chunk is one bounded piece of a transcript.
type Chunk struct {
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}

// Metadata describes where a chunk came from.
//
// Chunks produced by StrategyNone carry only the base video fields: Strategy
// is empty and TotalChunks is zero. Every other strategy sets ChunkIndex and
// TotalChunks on all chunks of a batch.
type Metadata struct {
	VideoID         string `json:"video_id"`
	Title           string `json:"title"`
	Channel         string `json:"channel"`
	Duration        int    `json:"duration"`
	Language        string `json:"language"`
	IsAutoGenerated bool   `json:"is_auto_generated"`
	URL             string `json:"url"`

	Strategy    Strategy `json:"chunking_strategy,omitempty"`
	ChunkIndex  int      `json:"chunk_index"`
	TotalChunks int      `json:"total_chunks,omitempty"`

	// Timestamp chunks: start of the first and end of the last member segment.
	StartTime *float64 `json:"start_time,omitempty"`
	EndTime   *float64 `json:"end_time,omitempty"`

	// Recursive chunks: byte offsets into the source text and the number of
	// leading bytes repeated from the previous chunk.
	StartOffset int `json:"start_offset,omitempty"`
	EndOffset   int `json:"end_offset,omitempty"`
	Overlap     int `json:"overlap,omitempty"`
}

// Chunked reports whether the chunk belongs to a split batch.
func (m Metadata) Chunked() bool {
	return m.TotalChunks > 0
}

// MarshalJSON omits chunk_index for unsplit chunks, whose index carries no
// meaning.
func (m Metadata) MarshalJSON() ([]byte, error) {
	type plain Metadata
	out := struct {
		plain
		ChunkIndex *int `json:"chunk_index,omitempty"`
	}{plain: plain(m)}
	if m.Chunked() {
		index := m.ChunkIndex
		out.ChunkIndex = &index
	}
	return json.Marshal(out)
}

func baseMetadata(t *transcript.Transcript) Metadata {
	return Metadata{
		VideoID:         t.Metadata.VideoID,
		Title:           t.Metadata.Title,
		Channel:         t.Metadata.Channel,
		Duration:        t.Metadata.Duration,
		Language:        t.Language,
		IsAutoGenerated: t.IsAutoGenerated,
		URL:             t.Metadata.URL,
	}
}

// annotate tags a batch with strategy, dense indexes and the final total.
func annotate(chunks []Chunk, strategy Strategy) []Chunk {
	for i := range chunks {
		chunks[i].Metadata.Strategy = strategy
		chunks[i].Metadata.ChunkIndex = i
		chunks[i].Metadata.TotalChunks = len(chunks)
	}
	return chunks
}
