package monitor_test

import (
	"context"
	"testing"
	"time"

	"github.com/MichalMitros/restock-monitor/internal/catalog"
	"github.com/MichalMitros/restock-monitor/internal/monitor/mocks"
	"github.com/MichalMitros/restock-monitor/internal/notifier"
	"github.com/MichalMitros/restock-monitor/internal/platform/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUnitRunContinuous(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fet := mocks.NewFetcher(t)
	store := mocks.NewStore(t)
	ntf := mocks.NewNotifier(t)

	store.On("StartRun", mock.Anything).Return(&models.Run{ID: runID, CreatedAt: createdAt}, nil).Twice()
	fet.On("FetchPage", mock.Anything, isuzuURL).Return([]byte(unknownPage), nil).Twice()
	fet.On("FetchInventory", mock.Anything, isuzuJSONURL).Return([]byte(isuzuJSON), nil).Twice()
	store.On("UpsertStock", mock.Anything, observation(marukyu, "Isuzu", isuzuURL, true)).
		Return(models.TransitionOutcome{}, nil).Twice()
	ntf.On("Notify", mock.Anything, now).Return(notifier.Report{}, nil).Once()
	// interrupt during second cycle.
	ntf.On("Notify", mock.Anything, now).Return(notifier.Report{}, nil).Run(func(args mock.Arguments) {
		cancel()
		assert.NoError(t, args.Get(0).(context.Context).Err(), "running cycle shouldn't be interrupted")
	}).Once()
	store.On("FinishRun", mock.Anything, mock.MatchedBy(func(run *models.Run) bool { return *run.IsSuccess })).
		Return(nil).Twice()

	cat, err := catalog.Parse([]byte("brands:\n  - name: Marukyu Koyamaen\n    strategy: shopify_html_first\n" +
		"    products: ['https://marukyu.example/products/isuzu']"))
	require.NoError(t, err)
	mon := newCatalogMonitor(t, cat, fet, store, ntf, testConfig())

	err = mon.RunContinuous(ctx)

	require.NoError(t, err, "interrupt shouldn't be reported as error")
}

func TestUnitRunContinuousFailure(t *testing.T) {
	t.Run("halt on failure", func(t *testing.T) {
		store := mocks.NewStore(t)
		store.On("StartRun", mock.Anything).Return(nil, assert.AnError).Once()

		cfg := testConfig()
		cfg.HaltOnFailure = true
		mon := newMonitor(t, mocks.NewFetcher(t), store, mocks.NewNotifier(t), cfg)

		err := mon.RunContinuous(context.TODO())

		require.ErrorContains(t, err, "monitoring halted after cycle 1", "should return halting error")
		require.ErrorIs(t, err, assert.AnError, errShouldContainAssertErrorMsg)
	})

	t.Run("retry after failure", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		store := mocks.NewStore(t)
		store.On("StartRun", mock.Anything).Return(nil, assert.AnError).Once()
		store.On("StartRun", mock.Anything).Return(nil, assert.AnError).Run(func(mock.Arguments) { cancel() }).Once()

		mon := newMonitor(t, mocks.NewFetcher(t), store, mocks.NewNotifier(t), testConfig())

		err := mon.RunContinuous(ctx)

		require.NoError(t, err, "failed cycles shouldn't stop monitoring")
	})
}

func TestUnitRunScheduled(t *testing.T) {
	t.Run("invalid schedule", func(t *testing.T) {
		mon := newMonitor(t, mocks.NewFetcher(t), mocks.NewStore(t), mocks.NewNotifier(t), testConfig())

		err := mon.RunScheduled(context.TODO(), "every day")

		require.ErrorContains(t, err, "can't schedule monitoring", "should return schedule error")
	})

	t.Run("runs cycles until stopped", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		fet := mocks.NewFetcher(t)
		store := mocks.NewStore(t)
		ntf := mocks.NewNotifier(t)

		store.On("StartRun", mock.Anything).Return(&models.Run{ID: runID, CreatedAt: createdAt}, nil)
		fet.On("FetchPage", mock.Anything, mock.Anything).Return([]byte(soldOutPage), nil)
		store.On("UpsertStock", mock.Anything, mock.Anything).Return(models.TransitionOutcome{}, nil)
		ntf.On("Notify", mock.Anything, now).Return(notifier.Report{}, nil).Run(func(mock.Arguments) { cancel() })
		store.On("FinishRun", mock.Anything, mock.Anything).Return(nil)

		mon := newMonitor(t, fet, store, ntf, testConfig())

		done := make(chan error)
		go func() { done <- mon.RunScheduled(ctx, "@every 1s") }()

		select {
		case err := <-done:
			require.NoError(t, err, "shouldn't return any error")
		case <-time.After(5 * time.Second):
			t.Fatal("scheduled monitoring should stop after context is cancelled")
		}
		store.AssertCalled(t, "FinishRun", mock.Anything, mock.Anything)
	})
}
