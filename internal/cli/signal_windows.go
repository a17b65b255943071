//go:build windows

package cli

import "context"

// notifyForeground never fires on Windows, which has no SIGCONT.
func notifyForeground(ctx context.Context) <-chan struct{} {
	out := make(chan struct{})
	go func() {
		<-ctx.Done()
		close(out)
	}()
	return out
}
