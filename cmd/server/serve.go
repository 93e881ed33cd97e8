package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// serve runs srv on ln until ctx is done, then shuts it down. It returns only
// after in-flight requests have finished or timeout has passed, so resources
// closed by the caller afterwards are no longer in use. beforeShutdown, if set,
// runs first with the shutdown context.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, timeout time.Duration, beforeShutdown func(context.Context)) error {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down", "timeout", timeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if beforeShutdown != nil {
		beforeShutdown(shutdownCtx)
	}

	shutdownErr := srv.Shutdown(shutdownCtx)
	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	if shutdownErr != nil {
		return fmt.Errorf("failed to drain requests: %w", shutdownErr)
	}
	return nil
}
