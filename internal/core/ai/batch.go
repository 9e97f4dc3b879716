package ai

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// BatchResult is the outcome for one input of a batch.
type BatchResult struct {
	Input  string
	Result *Result
	Err    error
}

// ProcessBatch processes inputs one after another. A failing video does not
// stop the batch; a cancelled context does, and the remaining inputs are
// reported with the context error.
func (p *Pipeline) ProcessBatch(ctx context.Context, inputs []string, opts Options) []BatchResult {
	results := make([]BatchResult, 0, len(inputs))
	for i, input := range inputs {
		if err := ctx.Err(); err != nil {
			results = append(results, BatchResult{Input: input, Err: err})
			continue
		}

		p.log.Info(ctx, "[%d/%d] %s", i+1, len(inputs), input)
		p.prefix = fmt.Sprintf("[%d/%d] ", i+1, len(inputs))
		res, err := p.Process(ctx, input, opts)
		p.prefix = ""
		if err != nil {
			p.log.Error(ctx, "%s: %v", input, err)
		}
		results = append(results, BatchResult{Input: input, Result: res, Err: err})
	}
	return results
}

// Failed counts the results that carry an error.
func Failed(results []BatchResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// ReadURLList reads one URL or video ID per line. Blank lines and lines
// starting with # are skipped.
func ReadURLList(r io.Reader) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, scanner.Err()
}
