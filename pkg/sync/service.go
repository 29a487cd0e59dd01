// Package sync runs the LMS to Zabbix mirror: it consumes change-capture
// events from NATS JetStream and drives them through the reconciliation
// pipeline.
package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/RobertasVasiliauskas/lms-zabbix-sync/pkg/buffer"
	"github.com/RobertasVasiliauskas/lms-zabbix-sync/pkg/config"
	"github.com/RobertasVasiliauskas/lms-zabbix-sync/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// Service owns the transport connection and the processing goroutine.
type Service struct {
	cfg     config.NATSConfig
	handler Handler
	buffer  *buffer.Buffer
	logger  logger.Logger

	nc       *nats.Conn
	consumer *Consumer
	cancel   context.CancelFunc
	wg       gosync.WaitGroup
}

// NewService wires the service. The handler is typically the event
// router; the buffer is flushed to its snapshot on shutdown.
func NewService(cfg config.NATSConfig, handler Handler, buf *buffer.Buffer, log logger.Logger) *Service {
	return &Service{
		cfg:     cfg,
		handler: handler,
		buffer:  buf,
		logger:  log,
	}
}

// Start connects to NATS, binds the durable consumer and begins
// processing in a background goroutine.
func (s *Service) Start(ctx context.Context) error {
	nc, err := nats.Connect(s.cfg.URL)
	if err != nil {
		return fmt.Errorf("connect to NATS %s: %w", s.cfg.URL, err)
	}

	s.nc = nc

	var js jetstream.JetStream
	if s.cfg.Domain != "" {
		js, err = jetstream.NewWithDomain(nc, s.cfg.Domain)
	} else {
		js, err = jetstream.New(nc)
	}

	if err != nil {
		nc.Close()
		return fmt.Errorf("initialize JetStream: %w", err)
	}

	if _, err = js.Stream(ctx, s.cfg.StreamName); err != nil {
		nc.Close()
		return fmt.Errorf("get stream %s: %w", s.cfg.StreamName, err)
	}

	s.consumer, err = NewConsumer(ctx, js, s.cfg.StreamName, s.cfg.ConsumerName, s.cfg.Subject, s.logger)
	if err != nil {
		nc.Close()
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		s.consumer.ProcessMessages(runCtx, s.handler)
	}()

	s.logger.Info().
		Str("stream", s.cfg.StreamName).
		Str("consumer", s.cfg.ConsumerName).
		Msg("Sync service started")

	return nil
}

// Stop halts processing, waits for the in-flight event to finish and
// flushes the buffer snapshot before closing the transport.
func (s *Service) Stop(_ context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})

	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		s.logger.Warn().Msg("Timed out waiting for the in-flight event")
	}

	if err := s.buffer.Save(); err != nil {
		s.logger.Error().Err(err).Msg("Failed to flush buffer snapshot on shutdown")
	}

	if s.nc != nil {
		s.nc.Close()
	}

	s.logger.Info().Msg("Sync service stopped")

	return nil
}
