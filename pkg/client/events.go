package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	stdsync "sync"

	"github.com/adolfohrq/designali-hub-google/pkg/dto"
	"github.com/adolfohrq/designali-hub-google/pkg/sync"
)

type subscription struct {
	cancel context.CancelFunc
	body   io.Closer
	once   stdsync.Once
}

func (s *subscription) Dispose() {
	s.once.Do(func() {
		s.cancel()
		_ = s.body.Close()
	})
}

// SubscribeChanges opens the hub's SSE event stream and delivers change
// events for the given collection to handler until disposed. The feed is not
// re-established on failure; retrying is the caller's decision.
func (c *Client) SubscribeChanges(ctx context.Context, collection string, handler func(dto.ChangeEvent)) (sync.Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/events", nil)
	if err != nil {
		cancel()
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "text/event-stream")

	// The regular client has a request timeout, which would sever a
	// long-lived stream. Share its transport without the deadline.
	streamClient := &http.Client{Transport: c.httpClient.Transport}

	resp, err := streamClient.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %v", sync.ErrRemoteUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("%w: %s", statusError(resp.StatusCode), resp.Status)
	}

	sub := &subscription{cancel: cancel, body: resp.Body}

	go c.readEvents(ctx, collection, resp.Body, handler)

	return sub, nil
}

// readEvents parses the text/event-stream wire format: "event:" and "data:"
// lines accumulate until a blank line dispatches the event.
func (c *Client) readEvents(ctx context.Context, collection string, body io.Reader, handler func(dto.ChangeEvent)) {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var eventName string
	var data strings.Builder

	dispatch := func() {
		defer func() {
			eventName = ""
			data.Reset()
		}()

		if eventName != "change" || data.Len() == 0 {
			return
		}

		var ev dto.ChangeEvent
		if err := json.Unmarshal([]byte(data.String()), &ev); err != nil {
			c.logger.Warn("dropping unparseable change event", slog.Any("error", err))
			return
		}
		if ev.Collection != collection {
			return
		}
		handler(ev)
	}

	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		line := scanner.Text()
		switch {
		case line == "":
			dispatch()
		case strings.HasPrefix(line, "event:"):
			eventName = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		case strings.HasPrefix(line, ":"):
			// comment/keep-alive line, ignore
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		c.logger.Warn("event stream closed", slog.Any("error", err))
	}
}
