package handler

import (
	"encoding/json"
	"net/http"

	"github.com/tieubaoca/questbot-be/service"
	"github.com/tieubaoca/questbot-be/types"
)

type ChatHandler struct {
	ai       service.AIService
	sessions *service.SessionStore
}

func NewChatHandler(ai service.AIService, sessions *service.SessionStore) *ChatHandler {
	return &ChatHandler{
		ai:       ai,
		sessions: sessions,
	}
}

// HandleChat runs one non-streaming completion. Grounded calls return
// the curated citation sources alongside the answer.
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	resolveSession(h.sessions, w, r)

	var req types.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Messages) == 0 {
		sendError(w, "No messages provided", http.StatusBadRequest)
		return
	}

	answer, chunks, err := h.ai.Complete(r.Context(), req.Messages, req.UseContext)
	if err != nil {
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	sendSuccess(w, types.ChatResponse{
		Answer:  answer,
		Sources: types.CurateSources(chunks),
	})
}
