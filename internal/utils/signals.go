package utils

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Merith-TK/tftpd/internal/tftplog"
)

// GracefulShutdown blocks until SIGINT/SIGTERM/SIGQUIT, cancels ctx, then
// runs shutdownFn with a 30s budget before forcing a return.
func GracefulShutdown(ctx context.Context, cancel context.CancelFunc, logger *tftplog.Logger, shutdownFn func() error) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	sig := <-sigChan
	logger.Info("Received signal %s, initiating graceful shutdown...", sig)

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	done := make(chan error, 1)
	go func() {
		if shutdownFn != nil {
			done <- shutdownFn()
		} else {
			done <- nil
		}
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.Error("Error during shutdown: %v", err)
		} else {
			logger.Info("Graceful shutdown completed")
		}
	case <-shutdownCtx.Done():
		logger.Warn("Shutdown timeout exceeded, forcing exit")
	}
}
