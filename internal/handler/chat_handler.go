package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/classora/classora-backend/internal/chat"
	"github.com/classora/classora-backend/internal/llm"
	"github.com/classora/classora-backend/internal/model"
	"github.com/classora/classora-backend/internal/response"
	"github.com/classora/classora-backend/internal/validator"
)

// ChatHandler serves the AI completion endpoints.
type ChatHandler struct {
	chatService *chat.Service
	log         zerolog.Logger
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService *chat.Service, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		log:         log.With().Str("component", "chat_handler").Logger(),
	}
}

// PromptRequest is the payload of every completion endpoint. Tuning fields
// are optional and fall back to the server defaults; stream only applies
// to the conversational /ai/chat endpoint.
type PromptRequest struct {
	UserID      string   `json:"user_id" binding:"required"`
	Prompt      string   `json:"prompt" binding:"required"`
	Temperature *float64 `json:"temperature" binding:"omitempty,gte=0,lte=2"`
	TopP        *float64 `json:"top_p" binding:"omitempty,gt=0,lte=1"`
	MaxTokens   *int     `json:"max_tokens" binding:"omitempty,gt=0"`
	Stream      bool     `json:"stream"`
}

// Params resolves the request's tuning fields against the defaults.
func (r *PromptRequest) Params() model.CompletionParams {
	params := model.DefaultCompletionParams()
	if r.Temperature != nil {
		params.Temperature = *r.Temperature
	}
	if r.TopP != nil {
		params.TopP = *r.TopP
	}
	if r.MaxTokens != nil {
		params.MaxTokens = *r.MaxTokens
	}
	return params
}

// Chat godoc
// POST /ai/chat
// Conversational turn with bounded history. stream=true delivers the
// reply as incremental text/plain chunks.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req PromptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if req.Stream {
		h.streamCompletion(c, &req, chat.PersonaAssistant)
		return
	}
	h.completion(c, &req, chat.PersonaAssistant)
}

// Single-turn persona endpoints. All share the PromptRequest payload; the
// stream flag is ignored for these.

// Code godoc
// POST /ai/code
func (h *ChatHandler) Code(c *gin.Context) { h.personaCompletion(c, chat.PersonaCode) }

// Define godoc
// POST /ai/define
func (h *ChatHandler) Define(c *gin.Context) { h.personaCompletion(c, chat.PersonaDefine) }

// Explain godoc
// POST /ai/explain
func (h *ChatHandler) Explain(c *gin.Context) { h.personaCompletion(c, chat.PersonaExplain) }

// Quiz godoc
// POST /ai/quiz
func (h *ChatHandler) Quiz(c *gin.Context) { h.personaCompletion(c, chat.PersonaQuiz) }

// Summary godoc
// POST /ai/summary
func (h *ChatHandler) Summary(c *gin.Context) { h.personaCompletion(c, chat.PersonaSummary) }

// Feedback godoc
// POST /ai/feedback
func (h *ChatHandler) Feedback(c *gin.Context) { h.personaCompletion(c, chat.PersonaFeedback) }

// Notes godoc
// POST /ai/notes
func (h *ChatHandler) Notes(c *gin.Context) { h.personaCompletion(c, chat.PersonaNotes) }

func (h *ChatHandler) personaCompletion(c *gin.Context, persona chat.Persona) {
	var req PromptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	h.completion(c, &req, persona)
}

func (h *ChatHandler) completion(c *gin.Context, req *PromptRequest, persona chat.Persona) {
	reply, err := h.chatService.Complete(c.Request.Context(), req.UserID, req.Prompt, persona, req.Params())
	if err != nil {
		h.failCompletion(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"response": reply})
}

// streamCompletion writes the reply as incremental text/plain chunks with
// no buffering beyond one chunk. Once the first chunk is written the
// status is committed; later failures can only be logged and the stream
// cut short.
func (h *ChatHandler) streamCompletion(c *gin.Context, req *PromptRequest, persona chat.Persona) {
	chunks := make(chan string, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- h.chatService.CompleteStream(c.Request.Context(), req.UserID, req.Prompt, persona, req.Params(), chunks)
	}()

	// Hold the status line until the first chunk arrives so early
	// failures (rate limit, upstream rejection) can still be reported
	// as structured errors.
	first, ok := <-chunks
	if !ok {
		if err := <-errCh; err != nil {
			h.failCompletion(c, err)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"response": ""})
		return
	}

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("X-Accel-Buffering", "no")
	pending := first
	c.Stream(func(w io.Writer) bool {
		if _, err := io.WriteString(w, pending); err != nil {
			return false
		}
		chunk, open := <-chunks
		if !open {
			return false
		}
		pending = chunk
		return true
	})

	if err := <-errCh; err != nil {
		h.log.Warn().Err(err).Str("user_id", req.UserID).Msg("Stream aborted mid-reply")
	}
}

func (h *ChatHandler) failCompletion(c *gin.Context, err error) {
	var upstream *llm.UpstreamError
	switch {
	case errors.Is(err, chat.ErrRateLimited):
		response.Fail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
	case errors.Is(err, chat.ErrUnknownPersona):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
	case errors.As(err, &upstream):
		response.FailWithMessage(c, http.StatusBadGateway, response.ErrUpstream, upstream.Message)
	default:
		h.log.Error().Err(err).Msg("Completion failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
