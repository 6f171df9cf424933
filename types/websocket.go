package types

const (
	TypeWebsocketPing  = "ping"
	TypeWebsocketPong  = "pong"
	TypeWebsocketChat  = "chat"
	TypeWebsocketDelta = "delta"
	TypeWebsocketDone  = "done"
	TypeWebsocketError = "error"
)

type WebsocketRequest struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type WebSocketChatPayload struct {
	Messages   []ChatMessage `json:"messages"`
	UseContext bool          `json:"use_context"`
}

type WebSocketResponse struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// WebSocketChatResponse carries one aggregator snapshot: the full
// response text seen so far.
type WebSocketChatResponse struct {
	Message string `json:"message"`
}
