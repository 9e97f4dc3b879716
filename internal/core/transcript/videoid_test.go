package transcript

import (
	"errors"
	"testing"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Bare ID", input: "dQw4w9WgXcQ", expected: "dQw4w9WgXcQ"},
		{name: "Watch URL", input: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", expected: "dQw4w9WgXcQ"},
		{name: "Watch URL with extra params", input: "https://youtube.com/watch?v=dQw4w9WgXcQ&t=42s", expected: "dQw4w9WgXcQ"},
		{name: "Mobile host", input: "https://m.youtube.com/watch?v=dQw4w9WgXcQ", expected: "dQw4w9WgXcQ"},
		{name: "Short link", input: "https://youtu.be/dQw4w9WgXcQ", expected: "dQw4w9WgXcQ"},
		{name: "Short link with query", input: "https://youtu.be/dQw4w9WgXcQ?si=abc", expected: "dQw4w9WgXcQ"},
		{name: "Embed", input: "https://www.youtube.com/embed/dQw4w9WgXcQ", expected: "dQw4w9WgXcQ"},
		{name: "V path", input: "https://www.youtube.com/v/dQw4w9WgXcQ", expected: "dQw4w9WgXcQ"},
		{name: "Shorts", input: "https://www.youtube.com/shorts/dQw4w9WgXcQ", expected: "dQw4w9WgXcQ"},
		{name: "Surrounding spaces", input: "  dQw4w9WgXcQ \n", expected: "dQw4w9WgXcQ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractVideoID(tt.input)
			if err != nil {
				t.Fatalf("ExtractVideoID(%q) error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ExtractVideoID(%q) = %q; want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestExtractVideoIDErrors(t *testing.T) {
	inputs := []string{
		"",
		"not a url",
		"https://vimeo.com/12345",
		"https://www.youtube.com/watch",
		"https://www.youtube.com/playlist?list=PL123",
		"https://www.youtube.com/watch?v=../../x",
		"https://www.youtube.com/watch?v=dQw4w9WgXcQextra",
		"https://youtu.be/short",
		"https://www.youtube.com/embed/..%2F..%2Fetc",
		"https://www.youtube.com/shorts/a b c d e f g",
	}

	for _, input := range inputs {
		_, err := ExtractVideoID(input)
		var invalid *InvalidURLError
		if !errors.As(err, &invalid) {
			t.Errorf("ExtractVideoID(%q) error = %v; want *InvalidURLError", input, err)
			continue
		}
		if invalid.Input == "" && input != "" {
			t.Errorf("InvalidURLError for %q lost the input", input)
		}
	}
}
