package authsync

import (
	"io"
	"log/slog"
	"sync"
)

// ClientHolder owns the one data client handle of a process. The handle is
// created on first use and replaced only after Reset.
type ClientHolder[C any] struct {
	factory func() C
	logger  *slog.Logger

	mu     sync.Mutex
	client C
	ok     bool
}

func NewClientHolder[C any](factory func() C, logger *slog.Logger) *ClientHolder[C] {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClientHolder[C]{factory: factory, logger: logger}
}

func (h *ClientHolder[C]) Get() C {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.ok {
		h.client = h.factory()
		h.ok = true
	}
	return h.client
}

// Reset drops the current handle, closing it if it is an io.Closer.
func (h *ClientHolder[C]) Reset() {
	h.mu.Lock()
	current, ok := h.client, h.ok
	var zero C
	h.client, h.ok = zero, false
	h.mu.Unlock()

	if !ok {
		return
	}
	if closer, isCloser := any(current).(io.Closer); isCloser {
		if err := closer.Close(); err != nil {
			h.logger.Warn("close client handle failed", "error", err)
		}
	}
}
