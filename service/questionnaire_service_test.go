package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/questbot-be/types"
)

// MockAIService implements AIService
type MockAIService struct {
	OnComplete       func(ctx context.Context, messages []types.ChatMessage, useContext bool) (string, []types.Chunk, error)
	OnStreamComplete func(ctx context.Context, messages []types.ChatMessage, useContext bool) (*types.CompletionStream, error)
}

func (m *MockAIService) Complete(ctx context.Context, messages []types.ChatMessage, useContext bool) (string, []types.Chunk, error) {
	if m.OnComplete != nil {
		return m.OnComplete(ctx, messages, useContext)
	}
	return "mocked answer", nil, nil
}

func (m *MockAIService) StreamComplete(ctx context.Context, messages []types.ChatMessage, useContext bool) (*types.CompletionStream, error) {
	if m.OnStreamComplete != nil {
		return m.OnStreamComplete(ctx, messages, useContext)
	}
	return nil, errors.New("not implemented")
}

func TestExtractQuestions(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []string
		wantErr bool
	}{
		{
			name: "valid JSON array, order preserved",
			raw:  `["a?","b?"]`,
			want: []string{"a?", "b?"},
		},
		{
			name: "surrounding whitespace tolerated",
			raw:  "\n  [\"only one?\"]  \n",
			want: []string{"only one?"},
		},
		{
			name:    "not json is a hard failure",
			raw:     "not json",
			wantErr: true,
		},
		{
			name:    "json but not a string array",
			raw:     `{"questions":["a?"]}`,
			wantErr: true,
		},
		{
			name:    "json null is not a string array",
			raw:     `null`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUseContext *bool
			ai := &MockAIService{
				OnComplete: func(ctx context.Context, messages []types.ChatMessage, useContext bool) (string, []types.Chunk, error) {
					gotUseContext = &useContext
					return tt.raw, nil, nil
				},
			}
			svc := NewQuestionnaireService(ai, types.AnswerPolicyAbort, "English")
			session := NewSessionStore().Acquire("s1")

			got, err := svc.ExtractQuestions(context.Background(), session, "questionnaire text")

			// Extraction is closed-book: grounding stays off.
			require.NotNil(t, gotUseContext)
			assert.False(t, *gotUseContext)

			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, session.PendingQuestions())
		})
	}
}

func TestExtractQuestionsNullResultKeepsSessionState(t *testing.T) {
	ai := &MockAIService{
		OnComplete: func(ctx context.Context, messages []types.ChatMessage, useContext bool) (string, []types.Chunk, error) {
			return "null", nil, nil
		},
	}
	svc := NewQuestionnaireService(ai, types.AnswerPolicyAbort, "English")
	session := NewSessionStore().Acquire("s1")
	session.SetPendingQuestions([]string{"old?"})
	session.SetTranscript(types.Transcript{{Question: "old?", Answer: "kept"}})

	got, err := svc.ExtractQuestions(context.Background(), session, "text")

	require.Error(t, err)
	assert.Nil(t, got)
	// A failed extraction leaves the previous run untouched.
	assert.Equal(t, []string{"old?"}, session.PendingQuestions())
	assert.Len(t, session.Transcript(), 1)
}

func TestExtractQuestionsReplacesTranscript(t *testing.T) {
	ai := &MockAIService{
		OnComplete: func(ctx context.Context, messages []types.ChatMessage, useContext bool) (string, []types.Chunk, error) {
			return `["a?"]`, nil, nil
		},
	}
	svc := NewQuestionnaireService(ai, types.AnswerPolicyAbort, "English")
	session := NewSessionStore().Acquire("s1")
	session.SetTranscript(types.Transcript{{Question: "old?", Answer: "old"}})

	_, err := svc.ExtractQuestions(context.Background(), session, "text")
	require.NoError(t, err)
	assert.Empty(t, session.Transcript())
}

func TestAnswerAllSequentialAndGrounded(t *testing.T) {
	var asked []string
	ai := &MockAIService{
		OnComplete: func(ctx context.Context, messages []types.ChatMessage, useContext bool) (string, []types.Chunk, error) {
			require.True(t, useContext)
			question := messages[len(messages)-1].Content
			asked = append(asked, question)
			return "answer to " + question, nil, nil
		},
	}
	svc := NewQuestionnaireService(ai, types.AnswerPolicyAbort, "English")
	session := NewSessionStore().Acquire("s1")

	transcript, err := svc.AnswerAll(context.Background(), session, []string{"a?", "b?"})

	require.NoError(t, err)
	assert.Equal(t, []string{"a?", "b?"}, asked)
	require.Len(t, transcript, 2)
	assert.Equal(t, types.AnswerRecord{Question: "a?", Answer: "answer to a?"}, transcript[0])
	assert.Equal(t, types.AnswerRecord{Question: "b?", Answer: "answer to b?"}, transcript[1])
	assert.Equal(t, transcript, session.Transcript())
}

func TestAnswerAllAbortDiscardsPartialRun(t *testing.T) {
	calls := 0
	ai := &MockAIService{
		OnComplete: func(ctx context.Context, messages []types.ChatMessage, useContext bool) (string, []types.Chunk, error) {
			calls++
			if calls == 2 {
				return "", nil, errors.New("provider down")
			}
			return "ok", nil, nil
		},
	}
	svc := NewQuestionnaireService(ai, types.AnswerPolicyAbort, "English")
	session := NewSessionStore().Acquire("s1")
	session.SetTranscript(types.Transcript{{Question: "old?", Answer: "old"}})

	_, err := svc.AnswerAll(context.Background(), session, []string{"a?", "b?", "c?"})

	require.Error(t, err)
	// The batch aborts on the first failure and nothing of this run,
	// nor of the previous one, is retained.
	assert.Equal(t, 2, calls)
	assert.Empty(t, session.Transcript())
}

func TestAnswerAllSkipPolicyKeepsGoing(t *testing.T) {
	calls := 0
	ai := &MockAIService{
		OnComplete: func(ctx context.Context, messages []types.ChatMessage, useContext bool) (string, []types.Chunk, error) {
			calls++
			if calls == 2 {
				return "", nil, errors.New("provider down")
			}
			return "ok", nil, nil
		},
	}
	svc := NewQuestionnaireService(ai, types.AnswerPolicySkip, "English")
	session := NewSessionStore().Acquire("s1")

	transcript, err := svc.AnswerAll(context.Background(), session, []string{"a?", "b?", "c?"})

	require.NoError(t, err)
	require.Len(t, transcript, 3)
	assert.Equal(t, "ok", transcript[0].Answer)
	assert.Contains(t, transcript[1].Answer, "[error:")
	assert.Equal(t, "ok", transcript[2].Answer)
}

func TestAnswerAllReplacesPriorTranscript(t *testing.T) {
	ai := &MockAIService{}
	svc := NewQuestionnaireService(ai, types.AnswerPolicyAbort, "English")
	session := NewSessionStore().Acquire("s1")
	session.SetTranscript(types.Transcript{{Question: "old?", Answer: "old"}})

	transcript, err := svc.AnswerAll(context.Background(), session, []string{"new?"})

	require.NoError(t, err)
	require.Len(t, transcript, 1)
	assert.Equal(t, "new?", transcript[0].Question)
	assert.Equal(t, transcript, session.Transcript())
}
