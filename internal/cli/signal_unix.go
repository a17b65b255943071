//go:build !windows

package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// notifyForeground reports SIGCONT, sent when a stopped process is resumed.
// The channel is closed when ctx is done.
func notifyForeground(ctx context.Context) <-chan struct{} {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGCONT)

	out := make(chan struct{})
	go func() {
		defer close(out)
		defer signal.Stop(sigs)
		for {
			select {
			case <-ctx.Done():
				return
			case <-sigs:
				select {
				case out <- struct{}{}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
