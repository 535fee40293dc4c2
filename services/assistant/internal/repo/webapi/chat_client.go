package webapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"learnflix/pkg/config"
	"learnflix/services/assistant/internal/entity"

	"github.com/go-resty/resty/v2"
)

const studyAssistantPrompt = "You are an AI-powered study assistant for Learnflix students. " +
	"Explain concepts clearly and step by step when needed. " +
	"Respond in the same language the student uses (Arabic or English). " +
	"Focus on Jordanian high-school curriculum topics like Arabic, English, Biology, Chemistry, and Mathematics where relevant."

const fallbackReply = "I'm sorry, I couldn't generate a response. Please try asking in a different way."

// ChatClient talks to an OpenAI-compatible chat completions endpoint.
type ChatClient struct {
	http   *resty.Client
	apiKey string
	model  string
}

func NewChatClient(cfg *config.Config) *ChatClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.AIGatewayURL, "/")).
		SetTimeout(60 * time.Second).
		SetHeader("Accept", "application/json")

	return &ChatClient{
		http:   client,
		apiKey: cfg.AIAPIKey,
		model:  cfg.AIModel,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model,omitempty"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete prefixes the study-assistant system prompt and returns the first choice.
// Gateway 429 and 402 answers map to entity.ErrAIRateLimited and entity.ErrAICredits.
func (c *ChatClient) Complete(ctx context.Context, messages []entity.Message) (string, error) {
	if c.apiKey == "" {
		return "", entity.ErrAINotConfigured
	}

	body := chatRequest{
		Model:    c.model,
		Messages: make([]chatMessage, 0, len(messages)+1),
	}
	body.Messages = append(body.Messages, chatMessage{Role: string(entity.RoleSystem), Content: studyAssistantPrompt})
	for _, m := range messages {
		body.Messages = append(body.Messages, chatMessage{Role: string(m.Role), Content: m.Content})
	}

	var result chatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&result).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("%w: %v", entity.ErrAIGateway, err)
	}

	switch {
	case resp.StatusCode() == http.StatusTooManyRequests:
		return "", entity.ErrAIRateLimited
	case resp.StatusCode() == http.StatusPaymentRequired:
		return "", entity.ErrAICredits
	case resp.IsError():
		return "", fmt.Errorf("%w: status %d: %s", entity.ErrAIGateway, resp.StatusCode(), truncate(resp.String(), 200))
	}

	if len(result.Choices) == 0 || strings.TrimSpace(result.Choices[0].Message.Content) == "" {
		return fallbackReply, nil
	}
	return result.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
