package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/classora/classora-backend/internal/chat"
	"github.com/classora/classora-backend/internal/llm"
	"github.com/classora/classora-backend/internal/model"
	ws "github.com/classora/classora-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams chat completions over WebSocket: one chat action per
// turn, the reply delivered as chunk events followed by done.
type WSHandler struct {
	chatService *chat.Service
	log         zerolog.Logger
	upgrader    websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(chatService *chat.Service, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		chatService: chatService,
		log:         log.With().Str("component", "ws_handler").Logger(),
		upgrader:    buildUpgrader(allowedOrigins),
	}
}

// ChatStream godoc
// WS /ws/v1/chat
// Upgrades to WebSocket for token-streamed conversational turns.
func (h *WSHandler) ChatStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	for {
		var msg ws.ChatRequest
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn().Err(err).Msg("Unexpected close")
			} else {
				h.log.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionPing:
			_ = ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		case ws.ActionChat:
			h.handleChat(c, conn, &msg)
		default:
			_ = ws.WriteError(conn, "unknown action: "+string(msg.Action))
		}
	}
}

func (h *WSHandler) handleChat(c *gin.Context, conn *websocket.Conn, msg *ws.ChatRequest) {
	if msg.UserID == "" || msg.Prompt == "" {
		_ = ws.WriteError(conn, "user_id and prompt are required")
		return
	}

	persona := chat.PersonaAssistant
	if msg.Persona != "" {
		persona = chat.Persona(msg.Persona)
	}

	params := model.DefaultCompletionParams()
	if msg.Temperature != nil {
		params.Temperature = *msg.Temperature
	}
	if msg.TopP != nil {
		params.TopP = *msg.TopP
	}
	if msg.MaxTokens != nil {
		params.MaxTokens = *msg.MaxTokens
	}

	chunks := make(chan string, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- h.chatService.CompleteStream(c.Request.Context(), msg.UserID, msg.Prompt, persona, params, chunks)
	}()

	for chunk := range chunks {
		if err := ws.WriteTyped(conn, ws.ChunkResponse{Event: ws.EventChunk, Content: chunk}); err != nil {
			h.log.Debug().Err(err).Msg("Client gone mid-stream")
			// Drain so the producer can finish; the request context
			// ends the upstream call when the connection drops.
			for range chunks {
			}
			break
		}
	}

	if err := <-errCh; err != nil {
		_ = ws.WriteError(conn, streamErrorMessage(err))
		return
	}
	_ = ws.WriteTyped(conn, ws.DoneResponse{Event: ws.EventDone})
}

// streamErrorMessage maps gateway errors to client-safe text.
func streamErrorMessage(err error) string {
	var upstream *llm.UpstreamError
	switch {
	case errors.Is(err, chat.ErrRateLimited):
		return "too many requests, slow down"
	case errors.Is(err, chat.ErrUnknownPersona):
		return "unknown persona"
	case errors.As(err, &upstream):
		return upstream.Message
	default:
		return "completion failed"
	}
}
