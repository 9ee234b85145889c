package monitor_test

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/MichalMitros/restock-monitor/internal/catalog"
	"github.com/MichalMitros/restock-monitor/internal/fetcher"
	"github.com/MichalMitros/restock-monitor/internal/monitor"
	"github.com/MichalMitros/restock-monitor/internal/monitor/mocks"
	"github.com/MichalMitros/restock-monitor/internal/notifier"
	"github.com/MichalMitros/restock-monitor/internal/platform"
	"github.com/MichalMitros/restock-monitor/internal/platform/models"
	"github.com/MichalMitros/restock-monitor/internal/platform/models/modelstesting"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	ippodo  = "Ippodo"
	marukyu = "Marukyu Koyamaen"

	sayakaURL    = "https://ippodo.example/products/sayaka"
	kanURL       = "https://ippodo.example/products/kan"
	isuzuURL     = "https://marukyu.example/products/isuzu"
	isuzuJSONURL = "https://marukyu.example/products/isuzu.json"

	catalogYAML = `
brands:
  - name: Ippodo
    strategy: text
    products:
      - https://ippodo.example/products/sayaka
      - https://ippodo.example/products/kan
  - name: Marukyu Koyamaen
    strategy: shopify_html_first
    products:
      - https://marukyu.example/products/isuzu
`
	inStockPage  = `<html><body><h1>Sayaka</h1><button type="submit">Add to cart</button></body></html>`
	soldOutPage  = `<html><body><h1>Kan</h1><p>This product is sold out.</p></body></html>`
	unknownPage  = `<html><body><h1>Isuzu</h1><p>Fine matcha from Uji.</p></body></html>`
	preOrderPage = `<html><body><h1>Sayaka</h1><button type="submit">Pre-order</button></body></html>`
	isuzuJSON    = `{"product":{"id":1,"title":"Isuzu 20g","handle":"isuzu","tags":"","variants":[` +
		`{"id":11,"title":"20g","price":"1080.00","available":true}]}}`
)

// reusable test data
var (
	createdAt = time.Date(2024, time.May, 1, 7, 59, 0, 0, time.UTC)
	now       = time.Date(2024, time.May, 1, 8, 0, 0, 0, time.UTC)
	runID     = rand.Int()
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	cat, err := catalog.Parse([]byte(catalogYAML))
	require.NoError(t, err)

	return cat
}

func testConfig() monitor.Config {
	return monitor.Config{
		BrandTimeout:      time.Minute,
		PreOrderCounts:    true,
		InventoryFallback: true,
		FetchAttempts:     2,
	}
}

func newMonitor(
	t *testing.T,
	fet monitor.Fetcher,
	store monitor.Store,
	ntf monitor.Notifier,
	cfg monitor.Config,
) *monitor.Monitor {
	t.Helper()

	return newCatalogMonitor(t, testCatalog(t), fet, store, ntf, cfg)
}

func newCatalogMonitor(
	t *testing.T,
	cat monitor.Catalog,
	fet monitor.Fetcher,
	store monitor.Store,
	ntf monitor.Notifier,
	cfg monitor.Config,
) *monitor.Monitor {
	t.Helper()

	logger := zerolog.Nop()

	return monitor.NewMonitor(
		cat,
		fet,
		store,
		ntf,
		&logger,
		cfg,
		monitor.WithClock(fakeClock{timestamp: now.UnixMilli(), now: &now}),
		monitor.WithPacer(monitor.NewPacer(monitor.PacingConfig{}, 1)),
	)
}

func observation(brand, name, url string, inStock bool) models.Observation {
	return models.Observation{
		Identity:  models.ProductIdentity{Brand: brand, ProductName: name},
		IsInStock: inStock,
		URL:       url,
		At:        now,
	}
}

func TestUnitRunCycle(t *testing.T) {
	wantRun := &models.Run{
		ID:                  runID,
		CreatedAt:           createdAt,
		FinishedAt:          &now,
		IsSuccess:           lo.ToPtr(true),
		CheckedProducts:     lo.ToPtr(int32(3)),
		InStockProducts:     lo.ToPtr(int32(2)),
		SkippedProducts:     lo.ToPtr(int32(0)),
		FailedProducts:      lo.ToPtr(int32(0)),
		RestocksDetected:    lo.ToPtr(int32(2)),
		BrandsNotified:      lo.ToPtr(int32(2)),
		FailedNotifications: lo.ToPtr(int32(0)),
	}

	for name, sequential := range map[string]bool{"parallel": false, "sequential": true} {
		t.Run(name, func(t *testing.T) {
			fet := mocks.NewFetcher(t)
			store := mocks.NewStore(t)
			ntf := mocks.NewNotifier(t)

			mockStoreStartRun(store, &models.Run{ID: runID, CreatedAt: createdAt}, nil)
			mockFetchPage(fet, sayakaURL, inStockPage, nil)
			mockFetchPage(fet, kanURL, soldOutPage, nil)
			mockFetchPage(fet, isuzuURL, unknownPage, nil)
			fet.On("FetchInventory", mock.Anything, isuzuJSONURL).Return([]byte(isuzuJSON), nil).Once()
			mockStoreUpsertStock(store, observation(ippodo, "Sayaka", sayakaURL, true),
				models.TransitionOutcome{Restocked: true, WasInStock: lo.ToPtr(false)}, nil)
			mockStoreUpsertStock(store, observation(ippodo, "Kan", kanURL, false),
				models.TransitionOutcome{WasInStock: lo.ToPtr(false)}, nil)
			mockStoreUpsertStock(store, observation(marukyu, "Isuzu", isuzuURL, true),
				models.TransitionOutcome{Created: true, Restocked: true}, nil)
			ntf.On("Notify", mock.Anything, now).Return(notifier.Report{Notifications: 2, Batches: 2, Delivered: 2}, nil).Once()
			mockStoreFinishRun(store, wantRun, nil)

			cfg := testConfig()
			cfg.Sequential = sequential
			got, err := newMonitor(t, fet, store, ntf, cfg).RunCycle(context.TODO())

			require.NoError(t, err, "shouldn't return any error")
			assert.Equal(t, wantRun, got, "should return finished run")
		})
	}
}

func TestUnitRunCycleSelectedBrand(t *testing.T) {
	fet := mocks.NewFetcher(t)
	store := mocks.NewStore(t)
	ntf := mocks.NewNotifier(t)

	mockStoreStartRun(store, &models.Run{ID: runID, CreatedAt: createdAt}, nil)
	mockFetchPage(fet, isuzuURL, unknownPage, nil)
	fet.On("FetchInventory", mock.Anything, isuzuJSONURL).Return([]byte(isuzuJSON), nil).Once()
	mockStoreUpsertStock(store, observation(marukyu, "Isuzu", isuzuURL, true), models.TransitionOutcome{}, nil)
	ntf.On("Notify", mock.Anything, now).Return(notifier.Report{}, nil).Once()
	store.On("FinishRun", mock.Anything, mock.Anything).Return(nil).Once()

	run, err := newMonitor(t, fet, store, ntf, testConfig()).RunCycle(context.TODO(), "marukyu koyamaen")

	require.NoError(t, err, "shouldn't return any error")
	assert.Equal(t, int32(1), *run.CheckedProducts, "should check only selected brand")
}

func TestUnitRunCycleUnknownBrand(t *testing.T) {
	fet := mocks.NewFetcher(t)
	store := mocks.NewStore(t)
	ntf := mocks.NewNotifier(t)

	_, err := newMonitor(t, fet, store, ntf, testConfig()).RunCycle(context.TODO(), "Sazen")

	require.ErrorIs(t, err, platform.ErrUnknownBrand, "should return unknown brand error")
}

func TestUnitRunCycleSkippedAndFailedProducts(t *testing.T) {
	wantRun := &models.Run{
		ID:                  runID,
		CreatedAt:           createdAt,
		FinishedAt:          &now,
		IsSuccess:           lo.ToPtr(true),
		CheckedProducts:     lo.ToPtr(int32(1)),
		InStockProducts:     lo.ToPtr(int32(0)),
		SkippedProducts:     lo.ToPtr(int32(1)),
		FailedProducts:      lo.ToPtr(int32(1)),
		RestocksDetected:    lo.ToPtr(int32(0)),
		BrandsNotified:      lo.ToPtr(int32(0)),
		FailedNotifications: lo.ToPtr(int32(0)),
	}

	fet := mocks.NewFetcher(t)
	store := mocks.NewStore(t)
	ntf := mocks.NewNotifier(t)

	mockStoreStartRun(store, &models.Run{ID: runID, CreatedAt: createdAt}, nil)
	// failed fetch is retried.
	fet.On("FetchPage", mock.Anything, sayakaURL).Return(nil, assert.AnError).Twice()
	mockFetchPage(fet, kanURL, soldOutPage, nil)
	mockFetchPage(fet, isuzuURL, unknownPage, nil)
	// missing inventory leaves page unknown.
	fet.On("FetchInventory", mock.Anything, isuzuJSONURL).Return(nil, fetcher.ErrContentTypeNotSupported).Once()
	mockStoreUpsertStock(store, observation(ippodo, "Kan", kanURL, false), models.TransitionOutcome{}, nil)
	ntf.On("Notify", mock.Anything, now).Return(notifier.Report{}, nil).Once()
	mockStoreFinishRun(store, wantRun, nil)

	_, err := newMonitor(t, fet, store, ntf, testConfig()).RunCycle(context.TODO())

	require.NoError(t, err, "product failures shouldn't fail the cycle")
}

func TestUnitRunCyclePersistenceError(t *testing.T) {
	fet := mocks.NewFetcher(t)
	store := mocks.NewStore(t)
	ntf := mocks.NewNotifier(t)

	mockStoreStartRun(store, &models.Run{ID: runID, CreatedAt: createdAt}, nil)
	fet.On("FetchPage", mock.Anything, sayakaURL).Return([]byte(inStockPage), nil).Maybe()
	fet.On("FetchPage", mock.Anything, kanURL).Return([]byte(soldOutPage), nil).Maybe()
	store.On("UpsertStock", mock.Anything, mock.Anything).Return(models.TransitionOutcome{}, assert.AnError).Once()
	store.On("FinishRun", mock.Anything, mock.MatchedBy(func(run *models.Run) bool {
		return !*run.IsSuccess && run.StatusMessage != nil && *run.FailedProducts == 1
	})).Return(nil).Once()

	_, err := newMonitor(t, fet, store, ntf, testConfig()).RunCycle(context.TODO(), ippodo)

	require.ErrorIs(t, err, platform.ErrPersistence, "should return persistence error")
	require.ErrorIs(t, err, assert.AnError, errShouldContainAssertErrorMsg)
}

func TestUnitRunCycleStoreError(t *testing.T) {
	t.Run("start run error", func(t *testing.T) {
		fet := mocks.NewFetcher(t)
		store := mocks.NewStore(t)
		ntf := mocks.NewNotifier(t)

		mockStoreStartRun(store, nil, assert.AnError)

		_, err := newMonitor(t, fet, store, ntf, testConfig()).RunCycle(context.TODO())

		require.ErrorContains(t, err, "can't start monitoring", "should return error about failed start")
		require.ErrorIs(t, err, assert.AnError, errShouldContainAssertErrorMsg)
	})

	t.Run("finish run error", func(t *testing.T) {
		fet := mocks.NewFetcher(t)
		store := mocks.NewStore(t)
		ntf := mocks.NewNotifier(t)

		mockStoreStartRun(store, &models.Run{ID: runID, CreatedAt: createdAt}, nil)
		mockFetchPage(fet, isuzuURL, unknownPage, nil)
		fet.On("FetchInventory", mock.Anything, isuzuJSONURL).Return([]byte(isuzuJSON), nil).Once()
		mockStoreUpsertStock(store, observation(marukyu, "Isuzu", isuzuURL, true), models.TransitionOutcome{}, nil)
		ntf.On("Notify", mock.Anything, now).Return(notifier.Report{}, nil).Once()
		store.On("FinishRun", mock.Anything, mock.Anything).Return(assert.AnError).Once()

		_, err := newMonitor(t, fet, store, ntf, testConfig()).RunCycle(context.TODO(), marukyu)

		require.ErrorContains(t, err, "can't finish monitoring", "should return error about failed finish")
		require.ErrorIs(t, err, assert.AnError, errShouldContainAssertErrorMsg)
	})
}

func TestUnitRunCycleNotifyError(t *testing.T) {
	fet := mocks.NewFetcher(t)
	store := mocks.NewStore(t)
	ntf := mocks.NewNotifier(t)

	mockStoreStartRun(store, &models.Run{ID: runID, CreatedAt: createdAt}, nil)
	mockFetchPage(fet, isuzuURL, unknownPage, nil)
	fet.On("FetchInventory", mock.Anything, isuzuJSONURL).Return([]byte(isuzuJSON), nil).Once()
	mockStoreUpsertStock(store, observation(marukyu, "Isuzu", isuzuURL, true), models.TransitionOutcome{}, nil)
	ntf.On("Notify", mock.Anything, now).Return(notifier.Report{Delivered: 1, Failed: 1}, assert.AnError).Once()
	store.On("FinishRun", mock.Anything, mock.MatchedBy(func(run *models.Run) bool {
		return !*run.IsSuccess && *run.BrandsNotified == 1 && *run.FailedNotifications == 1
	})).Return(nil).Once()

	_, err := newMonitor(t, fet, store, ntf, testConfig()).RunCycle(context.TODO(), marukyu)

	require.ErrorContains(t, err, "can't notify subscribers", "should return notifying error")
	require.ErrorIs(t, err, assert.AnError, errShouldContainAssertErrorMsg)
}

func TestUnitRunCycleAlreadyRunning(t *testing.T) {
	fet := mocks.NewFetcher(t)
	store := mocks.NewStore(t)
	ntf := mocks.NewNotifier(t)
	mon := newMonitor(t, fet, store, ntf, testConfig())

	mockStoreStartRun(store, &models.Run{ID: runID, CreatedAt: createdAt}, nil)
	mockFetchPage(fet, isuzuURL, unknownPage, nil)
	fet.On("FetchInventory", mock.Anything, isuzuJSONURL).Return([]byte(isuzuJSON), nil).Once()
	mockStoreUpsertStock(store, observation(marukyu, "Isuzu", isuzuURL, true), models.TransitionOutcome{}, nil)
	ntf.On("Notify", mock.Anything, now).Return(notifier.Report{}, nil).Run(func(mock.Arguments) {
		_, err := mon.RunCycle(context.TODO())
		assert.ErrorIs(t, err, platform.ErrAlreadyRunning, "overlapping cycle should be rejected")
	}).Once()
	store.On("FinishRun", mock.Anything, mock.Anything).Return(nil).Once()

	_, err := mon.RunCycle(context.TODO(), marukyu)

	require.NoError(t, err, "shouldn't return any error")
}

func TestUnitRunCycleBrandTimeout(t *testing.T) {
	fet := mocks.NewFetcher(t)
	store := mocks.NewStore(t)
	ntf := mocks.NewNotifier(t)

	mockStoreStartRun(store, &models.Run{ID: runID, CreatedAt: createdAt}, nil)
	fet.On("FetchPage", mock.Anything, isuzuURL).Return(func(ctx context.Context, _ string) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}).Once()
	ntf.On("Notify", mock.Anything, now).Return(notifier.Report{}, nil).Once()
	store.On("FinishRun", mock.Anything, mock.MatchedBy(func(run *models.Run) bool {
		return *run.IsSuccess && *run.FailedProducts == 1
	})).Return(nil).Once()

	cfg := testConfig()
	cfg.BrandTimeout = 10 * time.Millisecond
	_, err := newMonitor(t, fet, store, ntf, cfg).RunCycle(context.TODO(), marukyu)

	require.NoError(t, err, "brand timeout shouldn't fail the cycle")
}

func TestUnitRunCycleCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fet := mocks.NewFetcher(t)
	store := mocks.NewStore(t)
	ntf := mocks.NewNotifier(t)

	mockStoreStartRun(store, &models.Run{ID: runID, CreatedAt: createdAt}, nil)
	fet.On("FetchPage", mock.Anything, mock.Anything).Return([]byte(soldOutPage), nil).Run(func(mock.Arguments) {
		cancel()
	}).Once()
	store.On("UpsertStock", mock.Anything, mock.MatchedBy(func(obs models.Observation) bool {
		return obs.Identity.ProductName == "Kan" && !obs.IsInStock
	})).Return(models.TransitionOutcome{}, nil).Once()
	store.On("FinishRun", mock.Anything, mock.MatchedBy(func(run *models.Run) bool {
		return !*run.IsSuccess
	})).Return(nil).Once()

	cfg := testConfig()
	cfg.Sequential = true
	_, err := newMonitor(t, fet, store, ntf, cfg).RunCycle(ctx, ippodo)

	require.ErrorIs(t, err, context.Canceled, "should stop when context is cancelled")
}

func TestUnitInspect(t *testing.T) {
	cat := testCatalog(t)
	targets, err := cat.Targets()
	require.NoError(t, err)
	ippodoTarget, marukyuTarget := targets[0], targets[1]

	tests := map[string]struct {
		target       catalog.Target
		product      string
		page         string
		inventory    *string
		fallbackOff  bool
		wantStatus   models.Status
		wantName     string
		wantFallback bool
	}{
		"in stock": {
			target:     ippodoTarget,
			product:    sayakaURL,
			page:       inStockPage,
			wantStatus: models.StatusInStock,
			wantName:   "Sayaka",
		},
		"pre-order": {
			target:     ippodoTarget,
			product:    sayakaURL,
			page:       preOrderPage,
			wantStatus: models.StatusPreOrder,
			wantName:   "Sayaka",
		},
		"unknown without inventory source": {
			target:     ippodoTarget,
			product:    kanURL,
			page:       unknownPage,
			wantStatus: models.StatusUnknown,
			wantName:   "Isuzu",
		},
		"inventory fallback": {
			target:       marukyuTarget,
			product:      isuzuURL,
			page:         unknownPage,
			inventory:    lo.ToPtr(isuzuJSON),
			wantStatus:   models.StatusInStock,
			wantName:     "Isuzu",
			wantFallback: true,
		},
		"inventory fallback disabled": {
			target:      marukyuTarget,
			product:     isuzuURL,
			page:        unknownPage,
			fallbackOff: true,
			wantStatus:  models.StatusUnknown,
			wantName:    "Isuzu",
		},
		"undecodable inventory": {
			target:     marukyuTarget,
			product:    isuzuURL,
			page:       unknownPage,
			inventory:  lo.ToPtr("{"),
			wantStatus: models.StatusUnknown,
			wantName:   "Isuzu",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			fet := mocks.NewFetcher(t)
			mockFetchPage(fet, tt.product, tt.page, nil)
			if tt.inventory != nil {
				fet.On("FetchInventory", mock.Anything, isuzuJSONURL).Return([]byte(*tt.inventory), nil).Once()
			}

			cfg := testConfig()
			cfg.InventoryFallback = !tt.fallbackOff
			mon := newMonitor(t, fet, mocks.NewStore(t), mocks.NewNotifier(t), cfg)

			product := modelstesting.FakeTrackedProduct(func(p *models.TrackedProduct) {
				p.Brand = tt.target.Brand
				p.URL = tt.product
			})
			got := mon.Inspect(context.TODO(), tt.target, product)

			assert.Equal(t, tt.wantStatus, got.Classification.Status, "should return correct status")
			assert.Equal(t, tt.wantName, got.Extraction.Name, "should return product name")
			assert.Equal(t, tt.wantFallback, got.Fallback, "should mark inventory fallback")
		})
	}
}

func TestUnitInspectFetchError(t *testing.T) {
	tests := map[string]struct {
		err       error
		wantCalls int
	}{
		"retried error": {
			err:       assert.AnError,
			wantCalls: 3,
		},
		"not retried content type error": {
			err:       fetcher.ErrContentTypeNotSupported,
			wantCalls: 1,
		},
		"not retried page gone error": {
			err:       fmt.Errorf("%w: %d", fetcher.ErrPageGone, 404),
			wantCalls: 1,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			fet := mocks.NewFetcher(t)
			fet.On("FetchPage", mock.Anything, sayakaURL).Return(nil, tt.err).Times(tt.wantCalls)

			cfg := testConfig()
			cfg.FetchAttempts = 3
			mon := newMonitor(t, fet, mocks.NewStore(t), mocks.NewNotifier(t), cfg)
			targets, err := testCatalog(t).Targets(ippodo)
			require.NoError(t, err)

			got := mon.Inspect(context.TODO(), targets[0], modelstesting.FakeTrackedProduct(func(p *models.TrackedProduct) {
				p.Brand = ippodo
				p.URL = sayakaURL
			}))

			assert.Equal(t, models.StatusError, got.Classification.Status, "should return error status")
		})
	}
}

func mockStoreStartRun(store *mocks.Store, run *models.Run, err error) {
	store.On("StartRun", mock.Anything).Return(run, err).Once()
}

func mockStoreFinishRun(store *mocks.Store, run *models.Run, err error) {
	store.On("FinishRun", mock.Anything, run).Return(err).Once()
}

func mockStoreUpsertStock(store *mocks.Store, obs models.Observation, outcome models.TransitionOutcome, err error) {
	store.On("UpsertStock", mock.Anything, obs).Return(outcome, err).Once()
}

func mockFetchPage(fet *mocks.Fetcher, url, page string, err error) {
	fet.On("FetchPage", mock.Anything, url).Return([]byte(page), err).Once()
}

const errShouldContainAssertErrorMsg = "should return error containing assert.AnError"

type fakeClock struct {
	timestamp int64
	now       *time.Time
}

func (c fakeClock) Timestamp() int64 {
	return c.timestamp
}

func (c fakeClock) Now() *time.Time {
	return c.now
}
