package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"github.com/tieubaoca/questbot-be/database"
	"github.com/tieubaoca/questbot-be/types"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GeminiService implements AIService on Google Gemini, rotating between
// API keys when a call fails.
type GeminiService struct {
	apiKeys        []string
	currentKey     int
	client         *genai.Client
	model          *genai.GenerativeModel
	modelName      string
	retriever      database.Retriever
	retrievalLimit int
	mu             sync.Mutex
}

func NewGeminiService(apiKeys []string, modelName string, retriever database.Retriever, retrievalLimit int) (*GeminiService, error) {
	if len(apiKeys) == 0 {
		return nil, errors.New("no API keys provided")
	}

	service := &GeminiService{
		apiKeys:        apiKeys,
		currentKey:     0,
		modelName:      modelName,
		retriever:      retriever,
		retrievalLimit: retrievalLimit,
	}

	if err := service.initClient(); err != nil {
		return nil, err
	}

	service.model = service.client.GenerativeModel(modelName)
	return service, nil
}

func (s *GeminiService) initClient() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(s.apiKeys[s.currentKey]))
	if err != nil {
		return err
	}
	s.client = client
	return nil
}

func (s *GeminiService) rotateAPIKey() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentKey = (s.currentKey + 1) % len(s.apiKeys)
	if err := s.client.Close(); err != nil {
		return err
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(s.apiKeys[s.currentKey]))
	if err != nil {
		return err
	}
	s.client = client
	s.model = s.client.GenerativeModel(s.modelName)
	return nil
}

// generativeModel returns the current model under the lock; rotateAPIKey
// swaps it out concurrently.
func (s *GeminiService) generativeModel() *genai.GenerativeModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

func (s *GeminiService) Complete(ctx context.Context, messages []types.ChatMessage, useContext bool) (string, []types.Chunk, error) {
	parts, chunks, err := s.buildParts(ctx, messages, useContext)
	if err != nil {
		return "", nil, err
	}

	resp, err := s.generativeModel().GenerateContent(ctx, parts...)
	if err != nil {
		// Try rotating API key if there's an error
		if rotateErr := s.rotateAPIKey(); rotateErr != nil {
			return "", nil, rotateErr
		}
		resp, err = s.generativeModel().GenerateContent(ctx, parts...)
		if err != nil {
			return "", nil, err
		}
	}

	content := candidateText(resp)
	if content == "" {
		return "", nil, errors.New("no response generated")
	}
	return content, chunks, nil
}

func (s *GeminiService) StreamComplete(ctx context.Context, messages []types.ChatMessage, useContext bool) (*types.CompletionStream, error) {
	parts, chunks, err := s.buildParts(ctx, messages, useContext)
	if err != nil {
		return nil, err
	}

	iter := s.generativeModel().GenerateContentStream(ctx, parts...)
	deltas := make(chan types.Delta)
	completion := types.NewCompletionStream(deltas)
	go func() {
		defer close(deltas)
		for {
			resp, err := iter.Next()
			if err != nil {
				if err == iterator.Done {
					completion.SetSources(chunks)
					return
				}
				completion.Fail(err)
				return
			}
			select {
			case deltas <- types.Delta{Text: candidateText(resp), Structured: true}:
			case <-ctx.Done():
				completion.Fail(ctx.Err())
				return
			}
		}
	}()
	return completion, nil
}

// buildParts flattens messages into prompt parts, with retrieved corpus
// context first when grounding is enabled.
func (s *GeminiService) buildParts(ctx context.Context, messages []types.ChatMessage, useContext bool) ([]genai.Part, []types.Chunk, error) {
	var chunks []types.Chunk
	var parts []genai.Part

	if useContext {
		retrieved, err := s.retriever.Retrieve(ctx, lastUserContent(messages), s.retrievalLimit)
		if err != nil {
			return nil, nil, fmt.Errorf("retrieval failed: %w", err)
		}
		chunks = retrieved
		if len(chunks) > 0 {
			parts = append(parts, genai.Text(contextBlock(chunks)))
		}
	}

	for _, msg := range messages {
		parts = append(parts, genai.Text(msg.Content))
	}
	return parts, chunks, nil
}

func candidateText(resp *genai.GenerateContentResponse) string {
	content := ""
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				content += string(text)
			}
		}
	}
	return content
}
