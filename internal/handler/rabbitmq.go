package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MichalMitros/restock-monitor/internal/platform"
	"github.com/MichalMitros/restock-monitor/internal/platform/models"
	"github.com/MichalMitros/restock-monitor/internal/platform/rabbitmq"
	"github.com/MichalMitros/restock-monitor/pkg/v1/commander"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

//go:generate mockery --name Monitor --filename monitor.go
//go:generate mockery --name Consumer --filename consumer.go

// Monitor runs monitoring cycles.
type Monitor interface {
	RunCycle(ctx context.Context, brands ...string) (*models.Run, error)
}

// Consumer consumes messages from queue.
type Consumer interface {
	Consume(ctx context.Context, queue string, handler rabbitmq.HandlerFunc) (<-chan error, error)
}

// RMQHandler handles check commands received from RMQ.
type RMQHandler struct {
	consumer Consumer
	monitor  Monitor
	logger   *zerolog.Logger
}

// NewHandler returns new RMQHandler.
func NewHandler(consumer Consumer, monitor Monitor, logger *zerolog.Logger) *RMQHandler {
	return &RMQHandler{
		consumer: consumer,
		monitor:  monitor,
		logger:   logger,
	}
}

// Start starts consuming and handling check commands from RMQ.
func (h *RMQHandler) Start(ctx context.Context, queue string) error {
	errorsChan, err := h.consumer.Consume(ctx, queue, h.Handle)
	if err != nil {
		return err
	}

	go func() {
		for err := range errorsChan {
			h.logger.Error().
				Err(err).
				Msg("can't handle message")
		}
	}()

	return nil
}

// Handle runs monitoring cycle requested by check command message.
// Command received while other cycle is running is dropped.
func (h *RMQHandler) Handle(ctx context.Context, message []byte) error {
	cmd, err := decodeMessage(message)
	if err != nil {
		return err
	}

	h.logger.Debug().
		Strs("brands", cmd.Brands).
		Msg("monitoring started")

	run, err := h.monitor.RunCycle(ctx, cmd.Brands...)
	if errors.Is(err, platform.ErrAlreadyRunning) {
		h.logger.Warn().
			Strs("brands", cmd.Brands).
			Msg("check command dropped, monitoring cycle already running")
		return nil
	}
	if err != nil {
		return fmt.Errorf("monitoring failed: %w", err)
	}

	h.logger.Debug().
		Strs("brands", cmd.Brands).
		Int("run", run.ID).
		Int32("restocks", lo.FromPtr(run.RestocksDetected)).
		Msg("monitoring finished")

	return nil
}

func decodeMessage(msg []byte) (*commander.CheckCommand, error) {
	var cmd commander.CheckCommand
	err := json.Unmarshal(msg, &cmd)
	if err != nil {
		return nil, fmt.Errorf("can't decode check command: %w", err)
	}

	return &cmd, err
}
