package llm

import "context"

// LLMClient is the interface for chat-completion backends
type LLMClient interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	Complete(ctx context.Context, prompt string, systemPrompt ...string) (string, error)
	StreamChat(ctx context.Context, req ChatRequest) (<-chan string, <-chan error)
}

// ChatMessage represents a chat message
type ChatMessage struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

// ChatRequest represents a chat completion request
type ChatRequest struct {
	Messages    []ChatMessage `json:"messages"`
	Temperature float32       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

// ChatResponse represents a chat completion response
type ChatResponse struct {
	Message      string `json:"message"`
	TokensUsed   int    `json:"tokens_used"`
	FinishReason string `json:"finish_reason"`
}

// Messages builds the system+user message pair used by single-prompt calls.
func Messages(prompt string, systemPrompt ...string) []ChatMessage {
	messages := []ChatMessage{}
	if len(systemPrompt) > 0 && systemPrompt[0] != "" {
		messages = append(messages, ChatMessage{Role: "system", Content: systemPrompt[0]})
	}
	return append(messages, ChatMessage{Role: "user", Content: prompt})
}

var _ LLMClient = (*OpenAIClient)(nil)
