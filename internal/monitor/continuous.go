package monitor

import (
	"context"
	"errors"
	"fmt"

	"github.com/MichalMitros/restock-monitor/internal/platform"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// RunContinuous runs monitoring cycles until ctx is done.
// Cycles are never interrupted, ctx is checked only between them.
func (m *Monitor) RunContinuous(ctx context.Context) error {
	for cycle := 1; ctx.Err() == nil; cycle++ {
		m.logger.Info().Int("cycle", cycle).Msg("continuous monitoring cycle started")

		_, err := m.RunCycle(context.WithoutCancel(ctx))
		delay := m.pacer.NextInterval(m.cfg.Interval, cycle, *m.clock.Now())

		switch {
		case errors.Is(err, platform.ErrAlreadyRunning):
			m.logger.Warn().Int("cycle", cycle).Msg("cycle skipped, previous one is still running")
		case err != nil && m.cfg.HaltOnFailure:
			return fmt.Errorf("monitoring halted after cycle %d: %w", cycle, err)
		case err != nil:
			m.logger.Error().Err(err).Int("cycle", cycle).Msg("monitoring cycle failed")
			delay = m.cfg.Interval
		}

		m.logger.Info().Int("cycle", cycle).Dur("delay", delay).Msg("next cycle scheduled")

		if err := sleep(ctx, delay); err != nil {
			break
		}
	}

	m.logger.Info().Msg("continuous monitoring stopped")

	return nil
}

// RunScheduled runs monitoring cycles according to cron spec until ctx is done.
// Cycle triggered while previous one is still running is skipped.
func (m *Monitor) RunScheduled(ctx context.Context, spec string) error {
	logger := cronLogger{logger: m.logger}
	scheduler := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	_, err := scheduler.AddFunc(spec, func() {
		if _, err := m.RunCycle(context.WithoutCancel(ctx)); err != nil {
			m.logger.Error().Err(err).Msg("scheduled monitoring cycle failed")
		}
	})
	if err != nil {
		return fmt.Errorf("can't schedule monitoring: %w", err)
	}

	scheduler.Start()
	m.logger.Info().Str("schedule", spec).Msg("scheduled monitoring started")

	<-ctx.Done()

	// wait for running cycle.
	<-scheduler.Stop().Done()
	m.logger.Info().Msg("scheduled monitoring stopped")

	return nil
}

// cronLogger writes cron logs with zerolog.
type cronLogger struct {
	logger *zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
