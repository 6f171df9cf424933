package types

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a single message in a completion request. Stateless,
// constructed per call.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Delta is one increment of a streaming completion. Providers either emit
// plain text or a structured object carrying an incremental text field;
// both are normalized into this tagged form at the provider boundary.
type Delta struct {
	Text       string
	Structured bool
}

// CompletionStream is the result of a streaming completion call: a lazy
// sequence of deltas plus the retrieval chunks that grounded the answer.
// Sources and Err are only meaningful once Deltas has been drained.
type CompletionStream struct {
	Deltas  <-chan Delta
	sources []Chunk
	err     error
}

func NewCompletionStream(deltas <-chan Delta) *CompletionStream {
	return &CompletionStream{Deltas: deltas}
}

// SetSources records the grounding chunks. Called by the producer before
// closing the delta channel.
func (s *CompletionStream) SetSources(chunks []Chunk) {
	s.sources = chunks
}

// Sources returns the grounding chunks used for the completed stream.
func (s *CompletionStream) Sources() []Chunk {
	return s.sources
}

// Fail records a terminal stream failure. The producer must close the
// delta channel afterward.
func (s *CompletionStream) Fail(err error) {
	s.err = err
}

// Err reports whether the stream terminated with a failure.
func (s *CompletionStream) Err() error {
	return s.err
}
