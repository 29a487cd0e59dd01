// Package lifecycle runs a long-lived service until an interrupt or
// termination signal arrives, then shuts it down cleanly.
package lifecycle

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/RobertasVasiliauskas/lms-zabbix-sync/pkg/logger"
)

// Service is the contract a runnable service implements.
type Service interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Run starts the service and blocks until the context is canceled by a
// signal, then stops the service. Stop always runs, even when Start's
// context is already canceled.
func Run(ctx context.Context, svc Service, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := svc.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info().Msg("Shutdown signal received")

	// A fresh context so shutdown work is not canceled by the signal.
	return svc.Stop(context.Background())
}
