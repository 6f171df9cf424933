package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/questbot-be/types"
)

func makeStream(deltas []string, chunks []types.Chunk, failAfter error) *types.CompletionStream {
	ch := make(chan types.Delta)
	stream := types.NewCompletionStream(ch)
	go func() {
		defer close(ch)
		for _, d := range deltas {
			ch <- types.Delta{Text: d}
		}
		if failAfter != nil {
			stream.Fail(failAfter)
			return
		}
		stream.SetSources(chunks)
	}()
	return stream
}

func collect(ch <-chan string) []string {
	var out []string
	for s := range ch {
		out = append(out, s)
	}
	return out
}

func TestAggregateYieldsGrowingPrefixes(t *testing.T) {
	aggregator := NewStreamingResponseAggregator(0)
	stream := makeStream([]string{"Hel", "lo ", "world"}, nil, nil)

	got := collect(aggregator.Aggregate(stream))

	require.Equal(t, []string{"Hel", "Hello ", "Hello world"}, got)
	for i := 1; i < len(got); i++ {
		assert.True(t, strings.HasPrefix(got[i], got[i-1]))
		assert.Greater(t, len(got[i]), len(got[i-1]))
	}
}

func TestAggregateAppendsCitationBlock(t *testing.T) {
	chunks := []types.Chunk{
		{Text: "t1", Metadata: map[string]string{types.MetaFileName: "a.pdf", types.MetaPageLabel: "3"}},
		{Text: "t2", Metadata: map[string]string{types.MetaFileName: "a.pdf", types.MetaPageLabel: "3"}},
		{Text: "t3", Metadata: map[string]string{types.MetaFileName: "b.pdf", types.MetaPageLabel: "1"}},
	}
	aggregator := NewStreamingResponseAggregator(0)
	stream := makeStream([]string{"ans", "wer"}, chunks, nil)

	got := collect(aggregator.Aggregate(stream))

	// Two prefixes plus exactly one citation-augmented element.
	require.Len(t, got, 3)
	assert.Equal(t, "answer", got[1])
	// Distinct texts from the same file/page collapse to a single line.
	assert.Equal(t, "answer"+SourcesSeparator+"1. a.pdf (page 3)\n2. b.pdf (page 1)", got[2])
}

func TestAggregateNoSourcesNoExtraElement(t *testing.T) {
	aggregator := NewStreamingResponseAggregator(0)
	stream := makeStream([]string{"plain"}, nil, nil)

	got := collect(aggregator.Aggregate(stream))

	require.Equal(t, []string{"plain"}, got)
}

func TestAggregateSkipsEmptyDeltas(t *testing.T) {
	aggregator := NewStreamingResponseAggregator(0)
	stream := makeStream([]string{"", "a", "", "b"}, nil, nil)

	got := collect(aggregator.Aggregate(stream))

	require.Equal(t, []string{"a", "ab"}, got)
}

func TestAggregateStreamFailureSuppressesCitations(t *testing.T) {
	chunks := []types.Chunk{
		{Text: "t", Metadata: map[string]string{types.MetaFileName: "a.pdf"}},
	}
	aggregator := NewStreamingResponseAggregator(0)
	stream := makeStream([]string{"par", "tial"}, chunks, errors.New("provider down"))

	got := collect(aggregator.Aggregate(stream))

	require.Equal(t, []string{"par", "partial"}, got)
	assert.Error(t, stream.Err())
}

func TestFormatCitations(t *testing.T) {
	sources := []types.Source{
		{File: "a.pdf", Page: "1", Text: "x"},
		{File: "a.pdf", Page: "1", Text: "y"},
		{File: "a.pdf", Page: "2", Text: "z"},
	}
	assert.Equal(t, "1. a.pdf (page 1)\n2. a.pdf (page 2)", FormatCitations(sources))
}
