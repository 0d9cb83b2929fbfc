package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultModel         = "gpt-4o-mini"
)

// Message is one turn of a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer is the LLM collaborator capability: given a conversation,
// produce the assistant's next message.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// OpenAIClient talks to the OpenAI chat completions API.
type OpenAIClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewOpenAIClient creates a client for the chat completions API. Empty
// baseURL and model select the production endpoint and gpt-4o-mini.
func NewOpenAIClient(baseURL, apiKey, model string) *OpenAIClient {
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	if model == "" {
		model = defaultModel
	}
	return &OpenAIClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends the conversation and returns the assistant's reply.
func (c *OpenAIClient) Complete(ctx context.Context, messages []Message) (string, error) {
	body, err := json.Marshal(chatRequest{Model: c.model, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("could not marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("could not build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	defer resp.Body.Close()

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return "", fmt.Errorf("could not decode chat response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if chat.Error != nil {
			return "", fmt.Errorf("chat completion failed: %s", chat.Error.Message)
		}
		return "", fmt.Errorf("chat completion failed: status %d", resp.StatusCode)
	}
	if len(chat.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return chat.Choices[0].Message.Content, nil
}
