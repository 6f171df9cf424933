package service

import (
	"context"

	"github.com/tieubaoca/questbot-be/types"
)

// AIService is the generation collaborator. When useContext is true the
// call is grounded: relevant chunks are retrieved from the corpus, fed to
// the model, and returned alongside the answer.
type AIService interface {
	Complete(ctx context.Context, messages []types.ChatMessage, useContext bool) (string, []types.Chunk, error)
	StreamComplete(ctx context.Context, messages []types.ChatMessage, useContext bool) (*types.CompletionStream, error)
}
