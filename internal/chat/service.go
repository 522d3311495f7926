package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/classora/classora-backend/internal/model"
	"github.com/classora/classora-backend/internal/timetable"
)

var (
	// ErrRateLimited reports that the user is inside the cooldown window.
	ErrRateLimited = errors.New("rate limited")
	// ErrUnknownPersona reports an unrecognized persona name.
	ErrUnknownPersona = errors.New("unknown persona")
)

// Completer is the outbound completion interface. Failures come back as
// *llm.UpstreamError; the gateway never retries them.
type Completer interface {
	Chat(ctx context.Context, messages []model.ChatMessage, params model.CompletionParams) (string, error)
	ChatStream(ctx context.Context, messages []model.ChatMessage, params model.CompletionParams, chunks chan<- string) error
}

// Service is the conversation gateway: it assembles persona prompt +
// bounded history + the new user turn, forwards to the completion API,
// and records the exchange.
type Service struct {
	completer Completer
	history   HistoryStore
	limiter   Limiter
	schedule  *timetable.Table
	log       zerolog.Logger
	now       func() time.Time
}

// NewService creates the conversation gateway.
func NewService(completer Completer, history HistoryStore, limiter Limiter, schedule *timetable.Table, log zerolog.Logger) *Service {
	return &Service{
		completer: completer,
		history:   history,
		limiter:   limiter,
		schedule:  schedule,
		log:       log.With().Str("component", "chat_service").Logger(),
		now:       time.Now,
	}
}

// Complete runs one blocking completion for the user under the given
// persona. The assistant persona consults history and the timetable
// shortcut; the rest are single-turn.
func (s *Service) Complete(ctx context.Context, userID, prompt string, persona Persona, params model.CompletionParams) (string, error) {
	if err := s.admit(ctx, userID); err != nil {
		return "", err
	}

	if persona == PersonaAssistant {
		if reply, ok := s.answerTimetable(prompt, s.now()); ok {
			s.record(ctx, userID, persona, prompt, reply)
			return reply, nil
		}
	}

	messages, err := s.buildMessages(ctx, userID, prompt, persona)
	if err != nil {
		return "", err
	}

	reply, err := s.completer.Chat(ctx, messages, params)
	if err != nil {
		return "", err
	}

	s.record(ctx, userID, persona, prompt, reply)
	return reply, nil
}

// CompleteStream runs one streaming completion, forwarding chunks one at a
// time as the upstream delivers them. chunks is always closed before
// CompleteStream returns. On success the full reply is appended to history
// for history-keeping personas.
func (s *Service) CompleteStream(ctx context.Context, userID, prompt string, persona Persona, params model.CompletionParams, chunks chan<- string) error {
	if err := s.admit(ctx, userID); err != nil {
		close(chunks)
		return err
	}

	if persona == PersonaAssistant {
		if reply, ok := s.answerTimetable(prompt, s.now()); ok {
			s.record(ctx, userID, persona, prompt, reply)
			select {
			case chunks <- reply:
			case <-ctx.Done():
			}
			close(chunks)
			return nil
		}
	}

	messages, err := s.buildMessages(ctx, userID, prompt, persona)
	if err != nil {
		close(chunks)
		return err
	}

	// Tee the upstream chunks so the reply can be recorded once the
	// stream finishes. ChatStream closes inner in every exit path.
	inner := make(chan string, 1)
	var reply strings.Builder
	forwarded := make(chan struct{})
	go func() {
		defer close(forwarded)
		defer close(chunks)
		for chunk := range inner {
			reply.WriteString(chunk)
			select {
			case chunks <- chunk:
			case <-ctx.Done():
				// Keep draining inner so the producer can finish.
			}
		}
	}()

	err = s.completer.ChatStream(ctx, messages, params, inner)
	<-forwarded

	if err != nil {
		return err
	}
	s.record(ctx, userID, persona, prompt, strings.TrimSpace(reply.String()))
	return nil
}

// admit applies the per-user cooldown.
func (s *Service) admit(ctx context.Context, userID string) error {
	ok, err := s.limiter.Allow(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrRateLimited
	}
	return nil
}

// buildMessages assembles system prompt + history + the new user turn.
func (s *Service) buildMessages(ctx context.Context, userID, prompt string, persona Persona) ([]model.ChatMessage, error) {
	system, ok := persona.SystemPrompt()
	if !ok {
		return nil, ErrUnknownPersona
	}

	messages := []model.ChatMessage{{Role: model.RoleSystem, Content: system}}
	if persona.KeepsHistory() {
		turns, err := s.history.Recent(ctx, userID)
		if err != nil {
			// Degraded but answerable: log and continue without context.
			s.log.Warn().Err(err).Str("user_id", userID).Msg("History unavailable")
		} else {
			messages = append(messages, turns...)
		}
	}
	return append(messages, model.ChatMessage{Role: model.RoleUser, Content: prompt}), nil
}

// record appends the exchange for history-keeping personas.
func (s *Service) record(ctx context.Context, userID string, persona Persona, prompt, reply string) {
	if !persona.KeepsHistory() || reply == "" {
		return
	}
	err := s.history.Append(ctx, userID,
		model.ChatMessage{Role: model.RoleUser, Content: prompt},
		model.ChatMessage{Role: model.RoleAssistant, Content: reply},
	)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("History append failed")
	}
}
