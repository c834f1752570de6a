package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/akashwav/ConnectGo/pkg/wire"
)

// API is the persistence collaborator consumed by the Reconciler: synchronous
// message creation, history fetch on conversation open, and the initial chat
// list load. Implementations may fail with transport or validation errors; a
// failed CreateMessage aborts the send before any distribution happens.
type API interface {
	CreateMessage(ctx context.Context, chatID, senderID, content string) (*wire.Message, error)
	FetchMessages(ctx context.Context, chatID string) ([]wire.Message, error)
	FetchConversations(ctx context.Context, userID string) ([]wire.Chat, error)
	MarkChatRead(ctx context.Context, chatID, userID string) error
}

// HTTPAPI implements API against the REST surface under /api/v1.
type HTTPAPI struct {
	BaseURL string
	HTTP    *http.Client
}

func NewHTTPAPI(baseURL string) *HTTPAPI {
	return &HTTPAPI{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

var _ API = (*HTTPAPI)(nil)

func (a *HTTPAPI) CreateMessage(ctx context.Context, chatID, senderID, content string) (*wire.Message, error) {
	var msg wire.Message
	err := a.doJSON(ctx, http.MethodPost, "/api/v1/chat/"+url.PathEscape(chatID),
		map[string]string{"sender_id": senderID, "content": content}, &msg)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (a *HTTPAPI) FetchMessages(ctx context.Context, chatID string) ([]wire.Message, error) {
	var out struct {
		Messages []wire.Message `json:"messages"`
	}
	err := a.doJSON(ctx, http.MethodGet, "/api/v1/chat/"+url.PathEscape(chatID)+"/messages", nil, &out)
	if err != nil {
		return nil, err
	}
	return out.Messages, nil
}

func (a *HTTPAPI) FetchConversations(ctx context.Context, userID string) ([]wire.Chat, error) {
	var out struct {
		Chats []wire.Chat `json:"chats"`
	}
	err := a.doJSON(ctx, http.MethodGet, "/api/v1/chat?user_id="+url.QueryEscape(userID), nil, &out)
	if err != nil {
		return nil, err
	}
	return out.Chats, nil
}

func (a *HTTPAPI) MarkChatRead(ctx context.Context, chatID, userID string) error {
	return a.doJSON(ctx, http.MethodPost, "/api/v1/chat/"+url.PathEscape(chatID)+"/read",
		map[string]string{"user_id": userID}, nil)
}

func (a *HTTPAPI) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error != "" {
			return fmt.Errorf("client: %s %s: %s (status %d)", method, path, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("client: %s %s: status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}
