// Package client talks to the farm API on behalf of CLI and background processes.
// AuthClient owns the persisted session; DataClient issues farm data requests with it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds every request made through the client.
const DefaultTimeout = 15 * time.Second

var (
	// ErrInvalidRefreshToken means the stored refresh token was rejected and the user must sign in again.
	ErrInvalidRefreshToken = errors.New("invalid refresh_token")
	ErrNotAuthenticated    = errors.New("not authenticated")
)

// APIError is a non-2xx answer from the API, decoded from the error envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Message)
}

// Is lets callers match API errors against the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrInvalidRefreshToken:
		return e.Code == "SESSION_EXPIRED"
	case ErrNotAuthenticated:
		return e.Status == http.StatusUnauthorized
	}
	return false
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

type Options struct {
	HTTPClient *http.Client
	Logger     *slog.Logger
	Timeout    time.Duration
	Now        func() time.Time
}

func (o Options) withDefaults() Options {
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// transport is the JSON request layer shared by the auth and data clients.
type transport struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

func newTransport(baseURL string, opts Options) transport {
	return transport{
		baseURL: strings.TrimRight(baseURL, "/") + "/api/v1",
		http:    opts.HTTPClient,
		timeout: opts.Timeout,
		logger:  opts.Logger,
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= d {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// do sends body as JSON and decodes the envelope's data into out. out may be nil.
func (t transport) do(ctx context.Context, method, path, token string, body any, out any) error {
	ctx, cancel := withTimeout(ctx, t.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && !errors.Is(err, io.EOF) {
		if resp.StatusCode >= 300 {
			return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}

	if resp.StatusCode >= 300 || !env.Success {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		t.logger.Debug("api request failed", "method", method, "path", path, "status", resp.StatusCode, "code", apiErr.Code)
		return apiErr
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s %s data: %w", method, path, err)
	}
	return nil
}
