package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"chat-client/internal/chat"
	"chat-client/internal/models"
)

// Client talks to the chat HTTP API. It implements chat.HistoryService and
// carries the bearer token on every request.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

type messagesResponse struct {
	Success     bool             `json:"success"`
	Messages    []models.Message `json:"messages"`
	UnreadCount int              `json:"unread_count"`
	Message     string           `json:"message,omitempty"`
}

type roomsResponse struct {
	Success bool          `json:"success"`
	Rooms   []models.Room `json:"rooms"`
	Message string        `json:"message,omitempty"`
}

type profileResponse struct {
	Success bool        `json:"success"`
	User    models.User `json:"user"`
	Message string      `json:"message,omitempty"`
}

// FetchMessages retrieves a page of room history, newest first.
func (c *Client) FetchMessages(ctx context.Context, roomID string, limit, skip int) (*chat.HistoryPage, error) {
	url := fmt.Sprintf("%s/chat/messages/%s?limit=%d&skip=%d", c.baseURL, roomID, limit, skip)

	var out messagesResponse
	if err := c.get(ctx, url, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, fmt.Errorf("fetch messages for room %s: %s", roomID, errorText(out.Message))
	}

	return &chat.HistoryPage{
		Messages:    out.Messages,
		UnreadCount: out.UnreadCount,
	}, nil
}

// MarkRead submits a read receipt for the message.
func (c *Client) MarkRead(ctx context.Context, messageID string) error {
	url := fmt.Sprintf("%s/chat/messages/%s/read", c.baseURL, messageID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return err
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mark read %s: unexpected status %d", messageID, resp.StatusCode)
	}
	return nil
}

// ListRooms returns the rooms visible to the authenticated user.
func (c *Client) ListRooms(ctx context.Context) ([]models.Room, error) {
	var out roomsResponse
	if err := c.get(ctx, c.baseURL+"/chat/rooms", &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, fmt.Errorf("list rooms: %s", errorText(out.Message))
	}
	return out.Rooms, nil
}

// Profile returns the authenticated user.
func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var out profileResponse
	if err := c.get(ctx, c.baseURL+"/auth/profile", &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, fmt.Errorf("fetch profile: %s", errorText(out.Message))
	}
	return &out.User, nil
}

func (c *Client) get(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("GET %s: decode response: %w", url, err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func errorText(msg string) string {
	if msg == "" {
		return "server reported failure"
	}
	return msg
}
