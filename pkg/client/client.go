// Package client talks to a Designali Hub server over HTTP and adapts it to
// the sync.Remote capability the collection stores consume.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/adolfohrq/designali-hub-google/pkg/dto"
	"github.com/adolfohrq/designali-hub-google/pkg/sync"
	"github.com/google/uuid"
)

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New builds a client for the hub at baseURL authenticating with the given
// access token.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// statusError maps an HTTP status onto the sync error taxonomy.
func statusError(status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return sync.ErrUnauthorized
	case status >= 500:
		return sync.ErrRemoteUnavailable
	default:
		return sync.ErrConflict
	}
}

func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", sync.ErrRemoteUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s: %s", statusError(resp.StatusCode), resp.Status, strings.TrimSpace(string(body)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", sync.ErrRemoteUnavailable, err)
	}
	return nil
}

func (c *Client) Select(ctx context.Context, collection string, ownerID uuid.UUID) ([]dto.Item, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/collections/"+collection+"/items", nil)
	if err != nil {
		return nil, err
	}

	var items []dto.Item
	if err := c.doJSON(req, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) Insert(ctx context.Context, collection string, body dto.CreateItemRequest) (*dto.Item, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/collections/"+collection+"/items", body)
	if err != nil {
		return nil, err
	}

	var item dto.Item
	if err := c.doJSON(req, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) Update(ctx context.Context, collection string, id uuid.UUID, body dto.UpdateItemRequest) (*dto.Item, error) {
	req, err := c.newRequest(ctx, http.MethodPatch, "/api/v1/collections/"+collection+"/items/"+id.String(), body)
	if err != nil {
		return nil, err
	}

	var item dto.Item
	if err := c.doJSON(req, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) Delete(ctx context.Context, collection string, id uuid.UUID) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/api/v1/collections/"+collection+"/items/"+id.String(), nil)
	if err != nil {
		return err
	}
	return c.doJSON(req, nil)
}

// User fetches the authenticated user's profile.
func (c *Client) User(ctx context.Context) (*dto.UserResponse, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/users/me", nil)
	if err != nil {
		return nil, err
	}

	var user dto.UserResponse
	if err := c.doJSON(req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Notifications lists the newest notifications for the authenticated user.
func (c *Client) Notifications(ctx context.Context, limit int) ([]dto.NotificationResponse, error) {
	path := "/api/v1/notifications"
	if limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var notifications []dto.NotificationResponse
	if err := c.doJSON(req, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// SuggestTools asks the hub's AI suggestion endpoint for tool ideas.
func (c *Client) SuggestTools(ctx context.Context, topic string, count int) ([]dto.SuggestedToolResponse, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/suggest/tools", dto.SuggestToolsRequest{
		Topic: topic,
		Count: count,
	})
	if err != nil {
		return nil, err
	}

	var tools []dto.SuggestedToolResponse
	if err := c.doJSON(req, &tools); err != nil {
		return nil, err
	}
	return tools, nil
}
