package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/granjalink/farm-backend-go/internal/domain/auth"
)

// StreamRetryDelay is the pause between event stream reconnects.
const StreamRetryDelay = 5 * time.Second

type serverEvent struct {
	name string
	data string
}

// StreamEvents follows the server's session event stream until ctx is done,
// reconnecting after failures. A SIGNED_OUT pushed by the server (another device
// signed out, or an admin revoked the account) clears the local session and is
// announced to listeners.
func (c *AuthClient) StreamEvents(ctx context.Context) error {
	for {
		err := c.streamOnce(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil && !errors.Is(err, ErrNotAuthenticated) {
			c.logger.Warn("session event stream interrupted", "error", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(StreamRetryDelay):
		}
	}
}

func (c *AuthClient) streamOnce(ctx context.Context) error {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/events", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	return readEvents(resp, func(ev serverEvent) {
		switch auth.EventType(ev.name) {
		case auth.EventSignedOut:
			c.logger.Info("server ended the session")
			c.clearSession()
			c.emit(auth.Event{Type: auth.EventSignedOut})
		case auth.EventTokenRefreshed:
			c.logger.Debug("session refreshed elsewhere", "data", ev.data)
		}
	})
}

func readEvents(resp *http.Response, handle func(serverEvent)) error {
	scanner := bufio.NewScanner(resp.Body)
	var current serverEvent
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if current.name != "" {
				handle(current)
			}
			current = serverEvent{}
		case strings.HasPrefix(line, "event:"):
			current.name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			current.data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read event stream: %w", err)
	}
	return nil
}
