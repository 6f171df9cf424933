package types

import "strings"

// Answer policies for a questionnaire run. Abort discards the whole run on
// the first failed question; Skip records an error marker for the failed
// question and keeps going.
const (
	AnswerPolicyAbort = "abort"
	AnswerPolicySkip  = "skip"
)

// AnswerRecord is one answered question. Order matters: answering order
// equals extraction order.
type AnswerRecord struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Transcript is the ordered result of one questionnaire-answering run.
// A new run replaces the previous transcript wholesale.
type Transcript []AnswerRecord

// Render formats the transcript for display, one "Q:/A:" block per record.
func (t Transcript) Render() string {
	var b strings.Builder
	for _, rec := range t {
		b.WriteString("Q: ")
		b.WriteString(rec.Question)
		b.WriteString("\nA: ")
		b.WriteString(rec.Answer)
		b.WriteString("\n\n")
	}
	return b.String()
}
