package monitor_test

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/MichalMitros/restock-monitor/internal/monitor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitPacerNextInterval(t *testing.T) {
	base := 10 * time.Minute

	tests := map[string]struct {
		cycle   int
		now     time.Time
		wantMin time.Duration
		wantMax time.Duration
	}{
		"regular cycle": {
			cycle:   1,
			now:     time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC),
			wantMin: 8 * time.Minute,
			wantMax: 15 * time.Minute,
		},
		"quiet hours start": {
			cycle:   1,
			now:     time.Date(2024, time.May, 1, 2, 0, 0, 0, time.UTC),
			wantMin: 24 * time.Minute,
			wantMax: 45 * time.Minute,
		},
		"quiet hours end": {
			cycle:   3,
			now:     time.Date(2024, time.May, 1, 6, 59, 0, 0, time.UTC),
			wantMin: 24 * time.Minute,
			wantMax: 45 * time.Minute,
		},
		"after quiet hours": {
			cycle:   1,
			now:     time.Date(2024, time.May, 1, 7, 0, 0, 0, time.UTC),
			wantMin: 8 * time.Minute,
			wantMax: 15 * time.Minute,
		},
		"every tenth cycle": {
			cycle:   20,
			now:     time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC),
			wantMin: 9 * time.Minute,
			wantMax: 20 * time.Minute,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			pacer := monitor.NewPacer(monitor.DefaultPacing(), time.Now().UnixNano())

			for range 50 {
				got := pacer.NextInterval(base, tt.cycle, tt.now)

				assert.GreaterOrEqual(t, got, tt.wantMin, "interval shouldn't be shorter than minimum")
				assert.LessOrEqual(t, got, tt.wantMax, "interval shouldn't be longer than maximum")
			}
		})
	}
}

func TestUnitPacerWithoutPauses(t *testing.T) {
	pacer := monitor.NewPacer(monitor.PacingConfig{}, 1)
	start := time.Now()

	for ix := range 5 {
		require.NoError(t, pacer.BeforeProduct(context.TODO(), "Ippodo", ix))
	}
	require.NoError(t, pacer.BetweenBrands(context.TODO()))

	assert.Less(t, time.Since(start), 100*time.Millisecond, "shouldn't wait")
	assert.Zero(t, pacer.NextInterval(0, 10, time.Now()), "should return zero interval")
}

func TestUnitPacerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := monitor.DefaultPacing()
	cfg.RequestsPerMinute = 0
	pacer := monitor.NewPacer(cfg, 1)

	require.ErrorIs(t, pacer.BeforeProduct(ctx, "Ippodo", 1), context.Canceled, "should stop product pause")
	require.ErrorIs(t, pacer.BetweenBrands(ctx), context.Canceled, "should stop brand pause")
}

func TestUnitPacerFirstProduct(t *testing.T) {
	pacer := monitor.NewPacer(monitor.DefaultPacing(), 1)
	start := time.Now()

	require.NoError(t, pacer.BeforeProduct(context.TODO(), "Ippodo", 0))
	require.NoError(t, pacer.BeforeProduct(context.TODO(), "Marukyu Koyamaen", 0))

	assert.Less(t, time.Since(start), 100*time.Millisecond, "first products of brands shouldn't wait")
}

func TestUnitPacerShuffle(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8}
	shuffled := slices.Clone(items)

	monitor.NewPacer(monitor.PacingConfig{}, 42).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	assert.ElementsMatch(t, items, shuffled, "should keep all elements")
}
