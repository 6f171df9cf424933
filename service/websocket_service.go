package service

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tieubaoca/questbot-be/types"
)

// WebSocketService streams chat responses to the client: one message per
// aggregator snapshot, then the citation-augmented final message.
type WebSocketService struct {
	ai         AIService
	aggregator *StreamingResponseAggregator
	upgrader   websocket.Upgrader
}

func NewWebSocketService(ai AIService, aggregator *StreamingResponseAggregator) *WebSocketService {
	return &WebSocketService{
		ai:         ai,
		aggregator: aggregator,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins (adjust for production)
			},
		},
	}
}

func (s *WebSocketService) HandleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(512 * 1024) // 512KB max message size
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	for {
		_, p, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		var req types.WebsocketRequest
		if err := json.Unmarshal(p, &req); err != nil {
			s.writeError(conn, "Error processing message")
			continue
		}
		payloadBytes, err := json.Marshal(req.Payload)
		if err != nil {
			s.writeError(conn, "Error processing message")
			continue
		}

		switch req.Type {
		case types.TypeWebsocketChat:
			var payload types.WebSocketChatPayload
			if err := json.Unmarshal(payloadBytes, &payload); err != nil {
				s.writeError(conn, "Error processing message")
				continue
			}
			s.streamChat(ctx, conn, payload)
		case types.TypeWebsocketPing:
			if err := conn.WriteJSON(types.WebSocketResponse{Type: types.TypeWebsocketPong}); err != nil {
				log.Println("Write error:", err)
			}
		default:
			log.Println("Invalid message type")
		}
	}
}

func (s *WebSocketService) streamChat(ctx context.Context, conn *websocket.Conn, payload types.WebSocketChatPayload) {
	completion, err := s.ai.StreamComplete(ctx, payload.Messages, payload.UseContext)
	if err != nil {
		log.Println("AI error:", err)
		s.writeError(conn, err.Error())
		return
	}

	for snapshot := range s.aggregator.Aggregate(completion) {
		res := types.WebSocketResponse{
			Type:    types.TypeWebsocketDelta,
			Payload: types.WebSocketChatResponse{Message: snapshot},
		}
		if err := conn.WriteJSON(res); err != nil {
			log.Println("Write error:", err)
			return
		}
	}
	if err := completion.Err(); err != nil {
		log.Println("Stream error:", err)
		s.writeError(conn, err.Error())
		return
	}
	if err := conn.WriteJSON(types.WebSocketResponse{Type: types.TypeWebsocketDone}); err != nil {
		log.Println("Write error:", err)
	}
}

func (s *WebSocketService) writeError(conn *websocket.Conn, message string) {
	if err := conn.WriteJSON(types.WebSocketResponse{
		Type:    types.TypeWebsocketError,
		Payload: types.WebSocketChatResponse{Message: message},
	}); err != nil {
		log.Println("Write error:", err)
	}
}

func (s *WebSocketService) Health() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}
