package model

// Chat message roles as understood by the completion API.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of a conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionParams are passed through to the completion API verbatim.
type CompletionParams struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	MaxTokens   int     `json:"max_tokens"`
}

// DefaultCompletionParams mirrors the defaults the frontend has always
// assumed when a request omits tuning fields.
func DefaultCompletionParams() CompletionParams {
	return CompletionParams{
		Temperature: 0.7,
		TopP:        0.95,
		MaxTokens:   1024,
	}
}
