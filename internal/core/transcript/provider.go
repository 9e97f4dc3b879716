package transcript

import (
	"context"
	"fmt"
)

// Provider fetches the transcript of a single video.
type Provider interface {
	// Fetch returns the transcript for videoID, trying languages in order.
	Fetch(ctx context.Context, videoID string, languages []string) (*Transcript, error)

	// Name returns the provider name.
	Name() string
}

// DefaultLanguages is the language preference used when none is configured.
var DefaultLanguages = []string{"en", "en-US", "en-GB"}

// InvalidURLError is returned when no video ID can be extracted from the input.
type InvalidURLError struct {
	Input  string
	Reason string
}

func (e *InvalidURLError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("could not extract video ID from %q: %s", e.Input, e.Reason)
	}
	return fmt.Sprintf("could not extract video ID from %q", e.Input)
}

// UnavailableError is returned when a video has no usable transcript:
// captions disabled, video restricted or none of the requested languages present.
type UnavailableError struct {
	VideoID string
	Reason  string
	Err     error
}

func (e *UnavailableError) Error() string {
	msg := fmt.Sprintf("transcript unavailable for %s", e.VideoID)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}
