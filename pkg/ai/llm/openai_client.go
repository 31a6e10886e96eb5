package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jordanlanch/adcreativelab/pkg/logger"
	"github.com/sashabaranov/go-openai"
)

// OpenAIClient wraps the OpenAI API client. Any OpenAI-compatible server
// (Ollama, vLLM) works by setting BaseURL.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	log         logger.Logger
}

// Config for OpenAI client
type Config struct {
	APIKey      string
	BaseURL     string  // optional, e.g. http://localhost:11434/v1
	Model       string  // default: gpt-4o-mini
	Temperature float32 // default: 0.7
	MaxTokens   int     // default: 2000
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(cfg Config, log logger.Logger) *OpenAIClient {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2000
	}
	if log == nil {
		log = logger.Nop()
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		log:         log.With("component", "llm", "model", cfg.Model),
	}
}

func (c *OpenAIClient) request(req ChatRequest) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, msg := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.temperature
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}

	return openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
}

// Chat sends a chat completion request to OpenAI
func (c *OpenAIClient) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, c.request(req))
	duration := time.Since(start)

	if err != nil {
		c.log.Error("chat completion failed", "error", err, "duration", duration)
		return nil, fmt.Errorf("openai chat failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("no response from openai")
	}

	c.log.Debug("chat completion done", "tokens", resp.Usage.TotalTokens, "duration", duration)

	return &ChatResponse{
		Message:      resp.Choices[0].Message.Content,
		TokensUsed:   resp.Usage.TotalTokens,
		FinishReason: string(resp.Choices[0].FinishReason),
	}, nil
}

// Complete sends a simple completion request (helper for single prompts)
func (c *OpenAIClient) Complete(ctx context.Context, prompt string, systemPrompt ...string) (string, error) {
	resp, err := c.Chat(ctx, ChatRequest{Messages: Messages(prompt, systemPrompt...)})
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

// StreamChat sends a streaming chat completion request.
// The response channel is closed when the stream ends; at most one error is
// sent on the error channel.
func (c *OpenAIClient) StreamChat(ctx context.Context, req ChatRequest) (<-chan string, <-chan error) {
	responseChan := make(chan string, 100)
	errorChan := make(chan error, 1)

	go func() {
		defer close(responseChan)
		defer close(errorChan)

		chatReq := c.request(req)
		chatReq.Stream = true

		stream, err := c.client.CreateChatCompletionStream(ctx, chatReq)
		if err != nil {
			errorChan <- fmt.Errorf("failed to create stream: %w", err)
			return
		}
		defer stream.Close()

		for {
			response, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				errorChan <- fmt.Errorf("stream error: %w", err)
				return
			}

			if len(response.Choices) == 0 || response.Choices[0].Delta.Content == "" {
				continue
			}

			select {
			case responseChan <- response.Choices[0].Delta.Content:
			case <-ctx.Done():
				errorChan <- ctx.Err()
				return
			}
		}
	}()

	return responseChan, errorChan
}
