package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/tieubaoca/questbot-be/types"
)

const extractInstruction = `You are given the full text of a questionnaire document. ` +
	`Extract every question it contains and return ONLY a JSON array of question strings, in document order. ` +
	`Example: ["What is your company name?", "Do you encrypt data at rest?"]`

const answerExample = `Q: Do you encrypt data at rest?
A: Yes. All customer data is encrypted at rest using AES-256, with keys managed in a dedicated KMS.`

// QuestionnaireService drives the questionnaire pipeline: extracting the
// question list from an uploaded questionnaire and answering each
// question against the corpus, in order.
type QuestionnaireService struct {
	ai       AIService
	policy   string
	language string
}

func NewQuestionnaireService(ai AIService, policy, language string) *QuestionnaireService {
	if policy == "" {
		policy = types.AnswerPolicyAbort
	}
	if language == "" {
		language = "English"
	}
	return &QuestionnaireService{
		ai:       ai,
		policy:   policy,
		language: language,
	}
}

// ExtractQuestions asks the model for the question list of a
// questionnaire text. The call is closed-book: the questionnaire itself
// is the object under analysis, so grounding stays off. The result must
// be a JSON array of strings; anything else is a hard failure. The
// extracted list replaces the session's pending questions and empties
// its transcript.
func (s *QuestionnaireService) ExtractQuestions(ctx context.Context, session *Session, text string) ([]string, error) {
	messages := []types.ChatMessage{
		{Role: types.RoleSystem, Content: extractInstruction},
		{Role: types.RoleUser, Content: text},
	}
	raw, _, err := s.ai.Complete(ctx, messages, false)
	if err != nil {
		return nil, err
	}

	var questions []string
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &questions); err != nil {
		return nil, fmt.Errorf("question list is not a JSON array of strings: %w", err)
	}
	// "null" unmarshals into a nil slice without an error.
	if questions == nil {
		return nil, errors.New("question list is not a JSON array of strings")
	}

	session.SetPendingQuestions(questions)
	return questions, nil
}

// AnswerAll answers the questions one by one, strictly in order, each
// with a grounded completion call, and installs the resulting transcript
// on the session. Under the abort policy the first failure discards the
// whole run; under the skip policy the failed question gets an error
// marker and the run continues.
func (s *QuestionnaireService) AnswerAll(ctx context.Context, session *Session, questions []string) (types.Transcript, error) {
	session.SetTranscript(nil)

	instruction := fmt.Sprintf(
		"You are an expert analyst completing a client questionnaire on behalf of your organization. "+
			"Answer in %s, concisely and factually, using only the provided documents. "+
			"Desired answer style:\n%s", s.language, answerExample)

	var transcript types.Transcript
	for i, question := range questions {
		messages := []types.ChatMessage{
			{Role: types.RoleSystem, Content: instruction},
			{Role: types.RoleUser, Content: question},
		}
		answer, _, err := s.ai.Complete(ctx, messages, true)
		if err != nil {
			if s.policy == types.AnswerPolicySkip {
				log.Printf("Question %d failed, skipping: %v", i+1, err)
				transcript = append(transcript, types.AnswerRecord{
					Question: question,
					Answer:   fmt.Sprintf("[error: %v]", err),
				})
				continue
			}
			return nil, fmt.Errorf("answering question %d failed: %w", i+1, err)
		}
		transcript = append(transcript, types.AnswerRecord{Question: question, Answer: answer})
	}

	session.SetTranscript(transcript)
	return transcript, nil
}
