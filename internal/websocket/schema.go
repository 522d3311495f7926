package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionChat Action = "chat"
	ActionPing Action = "ping"
)

// ChatRequest is one conversational turn sent by the client. Tuning
// fields are optional and fall back to the server defaults.
type ChatRequest struct {
	Action      Action   `json:"action"`
	UserID      string   `json:"user_id"`
	Prompt      string   `json:"prompt"`
	Persona     string   `json:"persona,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventChunk Event = "chunk"
	EventDone  Event = "done"
	EventError Event = "error"
	EventPong  Event = "pong"
)

// ChunkResponse carries one streamed piece of assistant text.
type ChunkResponse struct {
	Event   Event  `json:"event"`
	Content string `json:"content"`
}

// DoneResponse marks the end of one streamed reply.
type DoneResponse struct {
	Event Event `json:"event"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
