package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/classora/classora-backend/internal/model"
)

// fakeCompleter scripts the upstream completion API.
type fakeCompleter struct {
	reply    string
	chunks   []string
	err      error
	lastMsgs []model.ChatMessage
}

func (f *fakeCompleter) Chat(_ context.Context, messages []model.ChatMessage, _ model.CompletionParams) (string, error) {
	f.lastMsgs = messages
	return f.reply, f.err
}

func (f *fakeCompleter) ChatStream(ctx context.Context, messages []model.ChatMessage, _ model.CompletionParams, chunks chan<- string) error {
	defer close(chunks)
	f.lastMsgs = messages
	if f.err != nil {
		return f.err
	}
	for _, c := range f.chunks {
		select {
		case chunks <- c:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// openLimiter admits everything.
type openLimiter struct{}

func (openLimiter) Allow(context.Context, string) (bool, error) { return true, nil }

// closedLimiter rejects everything.
type closedLimiter struct{}

func (closedLimiter) Allow(context.Context, string) (bool, error) { return false, nil }

func serviceWith(t *testing.T, completer Completer, limiter Limiter) (*Service, *MemoryHistory) {
	t.Helper()
	history := NewMemoryHistory(10)
	s := intentService(t)
	s.completer = completer
	s.history = history
	s.limiter = limiter
	return s, history
}

func TestCompleteAssemblesSystemHistoryAndPrompt(t *testing.T) {
	ctx := context.Background()
	fake := &fakeCompleter{reply: "hi there"}
	s, history := serviceWith(t, fake, openLimiter{})

	_ = history.Append(ctx, "u1",
		model.ChatMessage{Role: model.RoleUser, Content: "earlier question"},
		model.ChatMessage{Role: model.RoleAssistant, Content: "earlier answer"},
	)

	reply, err := s.Complete(ctx, "u1", "new question", PersonaAssistant, model.DefaultCompletionParams())
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if reply != "hi there" {
		t.Fatalf("unexpected reply %q", reply)
	}

	if len(fake.lastMsgs) != 4 {
		t.Fatalf("expected system + 2 history + prompt, got %d messages", len(fake.lastMsgs))
	}
	if fake.lastMsgs[0].Role != model.RoleSystem {
		t.Fatalf("first message must be the system prompt")
	}
	if fake.lastMsgs[1].Content != "earlier question" || fake.lastMsgs[2].Content != "earlier answer" {
		t.Fatalf("history turns out of order: %+v", fake.lastMsgs[1:3])
	}
	if last := fake.lastMsgs[3]; last.Role != model.RoleUser || last.Content != "new question" {
		t.Fatalf("prompt must be the final message, got %+v", last)
	}
}

func TestCompleteAppendsExchangeToHistory(t *testing.T) {
	ctx := context.Background()
	fake := &fakeCompleter{reply: "answer"}
	s, history := serviceWith(t, fake, openLimiter{})

	if _, err := s.Complete(ctx, "u1", "question", PersonaAssistant, model.DefaultCompletionParams()); err != nil {
		t.Fatalf("complete: %v", err)
	}

	turns, _ := history.Recent(ctx, "u1")
	if len(turns) != 2 {
		t.Fatalf("expected 2 recorded turns, got %d", len(turns))
	}
	if turns[0].Role != model.RoleUser || turns[1].Role != model.RoleAssistant {
		t.Fatalf("unexpected roles %+v", turns)
	}
}

func TestCompleteSingleTurnPersonaSkipsHistory(t *testing.T) {
	ctx := context.Background()
	fake := &fakeCompleter{reply: "a definition"}
	s, history := serviceWith(t, fake, openLimiter{})

	_ = history.Append(ctx, "u1", model.ChatMessage{Role: model.RoleUser, Content: "earlier"})

	if _, err := s.Complete(ctx, "u1", "define osmosis", PersonaDefine, model.DefaultCompletionParams()); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if len(fake.lastMsgs) != 2 {
		t.Fatalf("single-turn persona must send system + prompt only, got %d", len(fake.lastMsgs))
	}

	turns, _ := history.Recent(ctx, "u1")
	if len(turns) != 1 {
		t.Fatalf("single-turn persona must not extend history, got %d turns", len(turns))
	}
}

func TestCompleteRateLimited(t *testing.T) {
	s, _ := serviceWith(t, &fakeCompleter{reply: "x"}, closedLimiter{})

	_, err := s.Complete(context.Background(), "u1", "question", PersonaAssistant, model.DefaultCompletionParams())
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestCompleteUnknownPersona(t *testing.T) {
	s, _ := serviceWith(t, &fakeCompleter{reply: "x"}, openLimiter{})

	_, err := s.Complete(context.Background(), "u1", "question", Persona("oracle"), model.DefaultCompletionParams())
	if !errors.Is(err, ErrUnknownPersona) {
		t.Fatalf("expected ErrUnknownPersona, got %v", err)
	}
}

func TestCompleteUpstreamFailureLeavesHistoryUntouched(t *testing.T) {
	ctx := context.Background()
	fake := &fakeCompleter{err: errors.New("boom")}
	s, history := serviceWith(t, fake, openLimiter{})

	if _, err := s.Complete(ctx, "u1", "question", PersonaAssistant, model.DefaultCompletionParams()); err == nil {
		t.Fatalf("expected upstream error to surface")
	}

	turns, _ := history.Recent(ctx, "u1")
	if len(turns) != 0 {
		t.Fatalf("failed exchange must not be recorded, got %d turns", len(turns))
	}
}

func TestCompleteTimetableShortcutBypassesLLM(t *testing.T) {
	ctx := context.Background()
	fake := &fakeCompleter{reply: "llm reply"}
	s, _ := serviceWith(t, fake, openLimiter{})

	reply, err := s.Complete(ctx, "u1", "current period for class 8A", PersonaAssistant, model.DefaultCompletionParams())
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if reply == "llm reply" {
		t.Fatalf("schedule question must be answered by the resolver, not the LLM")
	}
	if fake.lastMsgs != nil {
		t.Fatalf("LLM must not be called for schedule questions")
	}
}

func TestCompleteStreamForwardsChunksAndRecords(t *testing.T) {
	ctx := context.Background()
	fake := &fakeCompleter{chunks: []string{"Hel", "lo ", "there"}}
	s, history := serviceWith(t, fake, openLimiter{})

	chunks := make(chan string, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.CompleteStream(ctx, "u1", "question", PersonaAssistant, model.DefaultCompletionParams(), chunks)
	}()

	var got []string
	for chunk := range chunks {
		got = append(got, chunk)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("stream: %v", err)
	}
	if strings.Join(got, "") != "Hello there" {
		t.Fatalf("unexpected chunks %v", got)
	}

	turns, _ := history.Recent(ctx, "u1")
	if len(turns) != 2 || turns[1].Content != "Hello there" {
		t.Fatalf("full streamed reply must be recorded, got %+v", turns)
	}
}

func TestCompleteStreamClosesChannelOnRateLimit(t *testing.T) {
	s, _ := serviceWith(t, &fakeCompleter{}, closedLimiter{})

	chunks := make(chan string, 1)
	err := s.CompleteStream(context.Background(), "u1", "question", PersonaAssistant, model.DefaultCompletionParams(), chunks)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if _, open := <-chunks; open {
		t.Fatalf("chunk channel must be closed on rejection")
	}
}
