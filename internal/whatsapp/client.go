package whatsapp

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Config holds connection settings for the WhatsApp bridge API.
type Config struct {
	BaseURL      string `envconfig:"WHATSAPP_API_BASE_URL" default:"http://localhost:8080/api"`
	PollInterval string `envconfig:"WHATSAPP_POLL_INTERVAL" default:"5s"`
	HTTPTimeout  string `envconfig:"WHATSAPP_HTTP_TIMEOUT" default:"15s"`
}

// Message is one inbound chat message from the bridge.
type Message struct {
	ID      string `json:"id"`
	ChatID  string `json:"chat_id"`
	Sender  string `json:"sender"`
	Content string `json:"content"`
}

// ChatInfo describes a chat as reported by the bridge.
type ChatInfo struct {
	ChatID string `json:"chat_id"`
	Name   string `json:"name"`
}

// Client talks to a WhatsApp bridge over its JSON HTTP API.
type Client struct {
	httpClient *resty.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		httpClient: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json"),
	}
}

// SendMessage delivers a text reply to a chat.
func (c *Client) SendMessage(ctx context.Context, chatID, text string) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"chat_id": chatID,
			"message": text,
		}).
		Post("/send_message")
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("send message: unexpected status %d", resp.StatusCode())
	}
	return nil
}

// ListMessages fetches messages newer than afterID. An empty afterID returns
// the bridge's full backlog.
func (c *Client) ListMessages(ctx context.Context, afterID string) ([]Message, error) {
	var body struct {
		Messages []Message `json:"messages"`
	}

	req := c.httpClient.R().
		SetContext(ctx).
		SetResult(&body)
	if afterID != "" {
		req.SetQueryParam("after_id", afterID)
	}

	resp, err := req.Get("/list_messages")
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("list messages: unexpected status %d", resp.StatusCode())
	}
	return body.Messages, nil
}

// GetChat returns bridge metadata for a chat, nil when the chat is unknown.
func (c *Client) GetChat(ctx context.Context, chatID string) (*ChatInfo, error) {
	var info ChatInfo

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("chat_id", chatID).
		SetResult(&info).
		Get("/get_chat")
	if err != nil {
		return nil, fmt.Errorf("get chat: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if resp.IsError() {
		return nil, fmt.Errorf("get chat: unexpected status %d", resp.StatusCode())
	}
	return &info, nil
}
