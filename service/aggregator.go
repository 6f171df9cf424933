package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/tieubaoca/questbot-be/types"
)

// SourcesSeparator divides the answer text from its citation block.
const SourcesSeparator = "\n\n---SOURCES---\n"

// StreamingResponseAggregator turns a stream of completion deltas into a
// stream of growing response snapshots: after every delta it emits the
// full text seen so far, and once the stream ends it emits one final
// element carrying the citation block when grounding chunks were used.
type StreamingResponseAggregator struct {
	delay time.Duration
}

// NewStreamingResponseAggregator creates an aggregator with the given
// inter-yield delay. The delay is a presentation throttle only; pass 0
// to disable it.
func NewStreamingResponseAggregator(delay time.Duration) *StreamingResponseAggregator {
	return &StreamingResponseAggregator{delay: delay}
}

// Aggregate consumes the completion's deltas and returns the snapshot
// stream. The returned channel is closed once the input is exhausted and
// the optional citation element has been emitted. If the completion
// terminated with an error, no citation element is produced; callers
// check completion.Err() after draining.
func (a *StreamingResponseAggregator) Aggregate(completion *types.CompletionStream) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		var full strings.Builder
		for delta := range completion.Deltas {
			if delta.Text == "" {
				continue
			}
			full.WriteString(delta.Text)
			out <- full.String()
			if a.delay > 0 {
				time.Sleep(a.delay)
			}
		}
		if completion.Err() != nil {
			return
		}
		sources := types.CurateSources(completion.Sources())
		if len(sources) == 0 {
			return
		}
		out <- full.String() + SourcesSeparator + FormatCitations(sources)
	}()
	return out
}

// FormatCitations renders sources as a numbered list, one line per
// distinct (file, page) pair. A file/page appears once even when several
// distinct texts were retrieved from it.
func FormatCitations(sources []types.Source) string {
	type filePage struct {
		file string
		page string
	}
	seen := make(map[filePage]struct{}, len(sources))
	var lines []string
	for _, source := range sources {
		key := filePage{file: source.File, page: source.Page}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		lines = append(lines, fmt.Sprintf("%d. %s (page %s)", len(lines)+1, source.File, source.Page))
	}
	return strings.Join(lines, "\n")
}
