package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/tieubaoca/questbot-be/database"
	"github.com/tieubaoca/questbot-be/types"
)

// OpenAIService implements AIService against an OpenAI-compatible endpoint.
type OpenAIService struct {
	client         *openai.Client
	model          string
	retriever      database.Retriever
	retrievalLimit int
}

func NewOpenAIService(baseURL, apiKey, model string, retriever database.Retriever, retrievalLimit int) *OpenAIService {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL // Set this to your local LLM server URL
	client := openai.NewClientWithConfig(config)
	return &OpenAIService{
		client:         client,
		model:          model,
		retriever:      retriever,
		retrievalLimit: retrievalLimit,
	}
}

func (s *OpenAIService) Complete(ctx context.Context, messages []types.ChatMessage, useContext bool) (string, []types.Chunk, error) {
	openaiMessages, chunks, err := s.buildMessages(ctx, messages, useContext)
	if err != nil {
		return "", nil, err
	}

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Messages: openaiMessages,
			Model:    s.model,
		},
	)
	if err != nil {
		return "", nil, err
	}
	if len(resp.Choices) == 0 {
		return "", nil, errors.New("no response generated")
	}

	return resp.Choices[0].Message.Content, chunks, nil
}

func (s *OpenAIService) StreamComplete(ctx context.Context, messages []types.ChatMessage, useContext bool) (*types.CompletionStream, error) {
	openaiMessages, chunks, err := s.buildMessages(ctx, messages, useContext)
	if err != nil {
		return nil, err
	}

	stream, err := s.client.CreateChatCompletionStream(
		ctx,
		openai.ChatCompletionRequest{
			Messages: openaiMessages,
			Model:    s.model,
		},
	)
	if err != nil {
		return nil, err
	}

	deltas := make(chan types.Delta)
	completion := types.NewCompletionStream(deltas)
	go func() {
		defer close(deltas)
		defer stream.Close()
		for {
			resp, err := stream.Recv()
			if err != nil {
				if err == io.EOF {
					completion.SetSources(chunks)
					return
				}
				completion.Fail(err)
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			select {
			case deltas <- types.Delta{Text: resp.Choices[0].Delta.Content, Structured: true}:
			case <-ctx.Done():
				completion.Fail(ctx.Err())
				return
			}
		}
	}()
	return completion, nil
}

// buildMessages converts messages to the OpenAI shape, retrieving and
// prepending corpus context when grounding is enabled. The last user
// message serves as the retrieval query.
func (s *OpenAIService) buildMessages(ctx context.Context, messages []types.ChatMessage, useContext bool) ([]openai.ChatCompletionMessage, []types.Chunk, error) {
	var chunks []types.Chunk
	openaiMessages := make([]openai.ChatCompletionMessage, 0, len(messages)+1)

	if useContext {
		query := lastUserContent(messages)
		retrieved, err := s.retriever.Retrieve(ctx, query, s.retrievalLimit)
		if err != nil {
			return nil, nil, fmt.Errorf("retrieval failed: %w", err)
		}
		chunks = retrieved
		if len(chunks) > 0 {
			openaiMessages = append(openaiMessages, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleSystem,
				Content: contextBlock(chunks),
			})
		}
	}

	for _, msg := range messages {
		role := openai.ChatMessageRoleUser
		switch msg.Role {
		case types.RoleSystem:
			role = openai.ChatMessageRoleSystem
		case types.RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		}
		openaiMessages = append(openaiMessages, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}
	return openaiMessages, chunks, nil
}

func lastUserContent(messages []types.ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == types.RoleUser {
			return messages[i].Content
		}
	}
	if len(messages) > 0 {
		return messages[len(messages)-1].Content
	}
	return ""
}

func contextBlock(chunks []types.Chunk) string {
	var b strings.Builder
	b.WriteString("Answer using only the context below.\n")
	for _, chunk := range chunks {
		b.WriteString("\nContext from ")
		b.WriteString(chunk.Metadata[types.MetaFileName])
		if page, ok := chunk.Metadata[types.MetaPageLabel]; ok {
			b.WriteString(" (page ")
			b.WriteString(page)
			b.WriteString(")")
		}
		b.WriteString(":\n")
		b.WriteString(chunk.Text)
		b.WriteString("\n")
	}
	return b.String()
}
