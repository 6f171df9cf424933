package types

type ChatRequest struct {
	Messages   []ChatMessage `json:"messages"`
	UseContext bool          `json:"use_context"`
}

type SelectFileRequest struct {
	FileName string `json:"file_name"`
}

type AnswerQuestionsRequest struct {
	// Optional override of the session's pending questions.
	Questions []string `json:"questions,omitempty"`
}
