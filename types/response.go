package types

type DataResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type ChatResponse struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources,omitempty"`
}

type ListFilesResponse struct {
	Files []string `json:"files"`
}

type ExtractQuestionsResponse struct {
	Questions []string `json:"questions"`
}

type AnswerQuestionsResponse struct {
	Transcript Transcript `json:"transcript"`
	Rendered   string     `json:"rendered"`
}
