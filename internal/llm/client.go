package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cognicore/textsuite/pkg/textsuite/internalerr"
)

// Roles used in a conversation.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

const paraphrasePrompt = "Please paraphrase the following text while maintaining its original meaning. " +
	"Make it clear and natural, avoiding awkward phrasing:\n\n"

// Client calls an OpenAI-compatible chat completion endpoint.
type Client struct {
	BaseURL string
	APIKey  string
	Model   string

	HTTPClient *http.Client
}

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
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

// Configured reports whether the client has an endpoint and a model.
func (c *Client) Configured() bool {
	return c != nil && c.BaseURL != "" && c.Model != ""
}

// Paraphrase rewrites text with the same meaning.
func (c *Client) Paraphrase(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("llm: nothing to paraphrase: %w", internalerr.ErrInvalidInput)
	}
	return c.Complete(ctx, []Message{{Role: RoleUser, Content: paraphrasePrompt + text}})
}

// Chat sends a single exchange. An empty system prompt is omitted.
func (c *Client) Chat(ctx context.Context, system, user string) (string, error) {
	messages := make([]Message, 0, 2)
	if system != "" {
		messages = append(messages, Message{Role: RoleSystem, Content: system})
	}
	messages = append(messages, Message{Role: RoleUser, Content: user})
	return c.Complete(ctx, messages)
}

// Complete returns the assistant reply to messages.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("llm: base URL and model required: %w", internalerr.ErrInvalidConfig)
	}
	payload, err := c.send(ctx, messages)
	if err != nil {
		return "", err
	}
	if len(payload.Choices) == 0 {
		return "", fmt.Errorf("llm: empty response")
	}
	return payload.Choices[0].Message.Content, nil
}

func (c *Client) send(ctx context.Context, messages []Message) (*chatResponse, error) {
	reqBody, err := json.Marshal(chatRequest{Model: c.Model, Messages: messages})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("llm: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("llm: read response: %w", err)
	}
	var payload chatResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("llm: status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("llm: decode response: %w", err)
	}
	if payload.Error != nil {
		return nil, fmt.Errorf("llm error: %s", payload.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("llm: status %d", resp.StatusCode)
	}
	return &payload, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}
