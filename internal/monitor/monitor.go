// Package monitor runs monitoring cycles: it checks every tracked product page, records availability
// transitions and finally hands pending restock notifications to the notifier.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/MichalMitros/restock-monitor/internal/catalog"
	"github.com/MichalMitros/restock-monitor/internal/classifier"
	"github.com/MichalMitros/restock-monitor/internal/extractor"
	"github.com/MichalMitros/restock-monitor/internal/fetcher"
	"github.com/MichalMitros/restock-monitor/internal/notifier"
	"github.com/MichalMitros/restock-monitor/internal/platform"
	"github.com/MichalMitros/restock-monitor/internal/platform/models"
	"github.com/MichalMitros/restock-monitor/internal/stockstate"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

//go:generate mockery --name Fetcher --filename fetcher.go
//go:generate mockery --name Store --filename store.go
//go:generate mockery --name Notifier --filename notifier.go

// Fetcher fetches product pages and structured inventory.
type Fetcher interface {
	FetchPage(ctx context.Context, url string) ([]byte, error)
	FetchInventory(ctx context.Context, url string) ([]byte, error)
}

// Store is stock state and runs storage.
type Store interface {
	// StartRun creates new monitoring cycle run.
	StartRun(ctx context.Context) (*models.Run, error)
	// FinishRun finishes provided run and updates its statistics.
	FinishRun(ctx context.Context, run *models.Run) error
	// UpsertStock records observation and returns resulting transition.
	UpsertStock(ctx context.Context, obs models.Observation) (models.TransitionOutcome, error)
}

// Notifier delivers pending restock notifications.
type Notifier interface {
	Notify(ctx context.Context, now time.Time) (notifier.Report, error)
}

// Catalog provides monitoring targets.
type Catalog interface {
	Targets(brands ...string) ([]catalog.Target, error)
}

// Clock provides times.
type Clock interface {
	// Timestamp returns UTC unix timestamp.
	Timestamp() int64
	// Now returns current UTC time.
	Now() *time.Time
}

// Config is Monitor configuration.
type Config struct {
	// Sequential checks brands one by one in random order instead of in parallel.
	Sequential bool `env:"SEQUENTIAL" envDefault:"false"`
	// BrandTimeout bounds checking of all products of a single brand.
	BrandTimeout time.Duration `env:"BRAND_TIMEOUT" envDefault:"5m"`
	// SettleDelay is wait between last stock write and notifying.
	SettleDelay time.Duration `env:"SETTLE_DELAY" envDefault:"3s"`
	// PreOrderCounts makes pre-order products purchasable.
	PreOrderCounts bool `env:"PRE_ORDER_COUNTS" envDefault:"true"`
	// InventoryFallback classifies structured inventory of products with inconclusive pages.
	InventoryFallback bool          `env:"INVENTORY_FALLBACK" envDefault:"true"`
	FetchAttempts     int           `env:"FETCH_ATTEMPTS" envDefault:"3"`
	RetryBackoff      time.Duration `env:"RETRY_BACKOFF" envDefault:"2s"`
	// Interval is base delay between continuous cycles.
	Interval time.Duration `env:"INTERVAL" envDefault:"10m"`
	// HaltOnFailure stops continuous monitoring after first failed cycle.
	HaltOnFailure bool `env:"HALT_ON_FAILURE" envDefault:"false"`
}

// DefaultConfig returns configuration used when no configuration is provided.
func DefaultConfig() Config {
	return Config{
		BrandTimeout:      5 * time.Minute,
		SettleDelay:       3 * time.Second,
		PreOrderCounts:    true,
		InventoryFallback: true,
		FetchAttempts:     3,
		RetryBackoff:      2 * time.Second,
		Interval:          10 * time.Minute,
	}
}

// Inspection is outcome of checking single product page.
type Inspection struct {
	Product        models.TrackedProduct
	Extraction     models.Extraction
	Classification models.Classification
	// Fallback is set when classification comes from structured inventory alone.
	Fallback bool
}

// Option is custom configuration of Monitor.
type Option func(m *Monitor)

// Monitor checks tracked products and notifies about restocks.
type Monitor struct {
	catalog  Catalog
	fetcher  Fetcher
	store    Store
	notifier Notifier
	logger   *zerolog.Logger
	cfg      Config
	pacer    *Pacer
	clock    Clock
	running  atomic.Bool
}

// NewMonitor returns new Monitor.
func NewMonitor(
	cat Catalog,
	fet Fetcher,
	store Store,
	ntf Notifier,
	logger *zerolog.Logger,
	cfg Config,
	ops ...Option,
) *Monitor {
	mon := &Monitor{
		catalog:  cat,
		fetcher:  fet,
		store:    store,
		notifier: ntf,
		logger:   logger,
		cfg:      cfg,
		clock:    systemClock{},
	}

	for _, op := range ops {
		op(mon)
	}

	if mon.pacer == nil {
		mon.pacer = NewPacer(DefaultPacing(), mon.clock.Timestamp())
	}

	return mon
}

type cycleStats struct {
	checked  atomic.Int32
	inStock  atomic.Int32
	skipped  atomic.Int32
	failed   atomic.Int32
	restocks atomic.Int32
}

// RunCycle runs single monitoring cycle of provided brands, or of all brands when none is provided.
// Only one cycle of a Monitor runs at a time, overlapping calls fail with platform.ErrAlreadyRunning.
func (m *Monitor) RunCycle(ctx context.Context, brands ...string) (*models.Run, error) {
	if !m.running.CompareAndSwap(false, true) {
		return nil, platform.ErrAlreadyRunning
	}
	defer m.running.Store(false)

	targets, err := m.catalog.Targets(brands...)
	if err != nil {
		return nil, fmt.Errorf("can't select brands: %w", err)
	}

	// insert new run in storage.
	run, err := m.store.StartRun(ctx)
	if err != nil {
		return nil, fmt.Errorf("can't start monitoring: %w", err)
	}

	m.logger.Info().
		Int("run", run.ID).
		Strs("brands", lo.Map(targets, func(t catalog.Target, _ int) string { return t.Brand })).
		Bool("sequential", m.cfg.Sequential).
		Msg("monitoring cycle started")

	// check products.
	stats := &cycleStats{}
	err = m.checkBrands(ctx, targets, stats)

	run.CheckedProducts = lo.ToPtr(stats.checked.Load())
	run.InStockProducts = lo.ToPtr(stats.inStock.Load())
	run.SkippedProducts = lo.ToPtr(stats.skipped.Load())
	run.FailedProducts = lo.ToPtr(stats.failed.Load())
	run.RestocksDetected = lo.ToPtr(stats.restocks.Load())

	if err != nil {
		return run, m.finishCycle(ctx, run, err)
	}

	// let stored transitions settle before reading pending notifications.
	if err := sleep(ctx, m.cfg.SettleDelay); err != nil {
		return run, m.finishCycle(ctx, run, fmt.Errorf("monitoring interrupted: %w", err))
	}

	// notify subscribers.
	report, err := m.notifier.Notify(ctx, *m.clock.Now())
	run.BrandsNotified = lo.ToPtr(int32(report.Delivered))
	run.FailedNotifications = lo.ToPtr(int32(report.Failed))

	if err != nil {
		return run, m.finishCycle(ctx, run, fmt.Errorf("can't notify subscribers: %w", err))
	}

	return run, m.finishCycle(ctx, run, nil)
}

func (m *Monitor) checkBrands(ctx context.Context, targets []catalog.Target, stats *cycleStats) error {
	if m.cfg.Sequential {
		order := slices.Clone(targets)
		m.pacer.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		for ix, target := range order {
			if ix > 0 {
				if err := m.pacer.BetweenBrands(ctx); err != nil {
					return fmt.Errorf("monitoring interrupted: %w", err)
				}
			}
			if err := m.checkBrand(ctx, target, stats); err != nil {
				return err
			}
		}

		return nil
	}

	errGroup, egCtx := errgroup.WithContext(ctx)
	for _, target := range targets {
		errGroup.Go(func() error {
			return m.checkBrand(egCtx, target, stats)
		})
	}

	return errGroup.Wait()
}

// checkBrand checks all products of a brand. Only persistence failures and cancellation of ctx are returned,
// brand timeout ends the brand early without failing the cycle.
func (m *Monitor) checkBrand(ctx context.Context, target catalog.Target, stats *cycleStats) error {
	brandCtx, cancel := context.WithTimeout(ctx, m.cfg.BrandTimeout)
	defer cancel()

	products := slices.Clone(target.Products)
	m.pacer.Shuffle(len(products), func(i, j int) { products[i], products[j] = products[j], products[i] })

	logger := m.logger.With().Str("brand", target.Brand).Logger()
	logger.Info().Int("products", len(products)).Msg("brand check started")

	for ix, product := range products {
		if err := m.pacer.BeforeProduct(brandCtx, target.Brand, ix); err != nil {
			return m.brandInterrupted(ctx, &logger, target, len(products)-ix, err)
		}

		if err := m.checkProduct(brandCtx, &logger, target, product, stats); err != nil {
			return err
		}

		if brandCtx.Err() != nil {
			return m.brandInterrupted(ctx, &logger, target, len(products)-ix-1, brandCtx.Err())
		}
	}

	logger.Info().Msg("brand check finished")

	return nil
}

func (m *Monitor) brandInterrupted(
	ctx context.Context,
	logger *zerolog.Logger,
	target catalog.Target,
	remaining int,
	err error,
) error {
	if ctx.Err() != nil {
		return fmt.Errorf("checking %s interrupted: %w", target.Brand, ctx.Err())
	}

	logger.Warn().Err(err).Int("remaining", remaining).Msg("brand check timed out")

	return nil
}

func (m *Monitor) checkProduct(
	ctx context.Context,
	logger *zerolog.Logger,
	target catalog.Target,
	product models.TrackedProduct,
	stats *cycleStats,
) error {
	inspection := m.Inspect(ctx, target, product)
	cls := inspection.Classification

	productLogger := logger.With().
		Str("url", product.URL).
		Str("product", inspection.Extraction.Name).
		Str("status", string(cls.Status)).
		Float64("confidence", cls.Confidence).
		Logger()

	if cls.Status == models.StatusError {
		stats.failed.Add(1)
		productLogger.Warn().Strs("evidence", cls.Evidence).Msg("product check failed")
		return nil
	}

	if inspection.Extraction.Name == "" {
		stats.skipped.Add(1)
		productLogger.Warn().Msg("product skipped: name not found")
		return nil
	}

	identity := models.ProductIdentity{Brand: target.Brand, ProductName: inspection.Extraction.Name}
	obs, ok := stockstate.Observe(identity, cls, product.URL, m.cfg.PreOrderCounts, *m.clock.Now())
	if !ok {
		stats.skipped.Add(1)
		productLogger.Info().Strs("evidence", cls.Evidence).Msg("product skipped: availability unknown")
		return nil
	}

	// status writes must survive brand timeout once page is classified.
	outcome, err := m.store.UpsertStock(context.WithoutCancel(ctx), obs)
	if err != nil {
		stats.failed.Add(1)
		if !errors.Is(err, platform.ErrPersistence) {
			err = fmt.Errorf("%w: %w", platform.ErrPersistence, err)
		}
		return fmt.Errorf("can't record %s: %w", identity, err)
	}

	stats.checked.Add(1)
	if obs.IsInStock {
		stats.inStock.Add(1)
	}

	event := productLogger.Debug()
	if outcome.Restocked {
		stats.restocks.Add(1)
		event = productLogger.Info()
	}
	event.
		Bool("in_stock", obs.IsInStock).
		Bool("restocked", outcome.Restocked).
		Bool("fallback", inspection.Fallback).
		Strs("evidence", cls.Evidence).
		Msg("product checked")

	return nil
}

// Inspect fetches, extracts and classifies single product page without recording the result.
func (m *Monitor) Inspect(ctx context.Context, target catalog.Target, product models.TrackedProduct) Inspection {
	inspection := Inspection{Product: product}

	page, err := m.fetchWithRetry(ctx, m.fetcher.FetchPage, product.URL)
	if err != nil {
		inspection.Classification = classifier.Error(err)
		return inspection
	}

	doc := extractor.Document{URL: product.URL, Page: page}
	source, hasSource := target.Extractor.(extractor.InventorySource)

	if hasSource && source.StructuredFirst() {
		doc.Inventory = m.fetchInventory(ctx, source, product.URL)
	}

	inspection.Extraction = target.Extractor.Extract(doc)
	inspection.Classification = classifier.Classify(inspection.Extraction.Bundle)

	if inspection.Classification.Status != models.StatusUnknown ||
		!hasSource || source.StructuredFirst() || !m.cfg.InventoryFallback {
		return inspection
	}

	// re-check inconclusive page with structured inventory.
	payload := m.fetchInventory(ctx, source, product.URL)
	if payload == nil {
		return inspection
	}

	inventory, err := source.DecodeInventory(payload)
	if err != nil {
		m.logger.Debug().Err(err).Str("url", product.URL).Msg("can't decode inventory")
		return inspection
	}

	if fallback := classifier.ClassifyInventory(inventory); fallback.Status.Conclusive() {
		inspection.Classification = fallback
		inspection.Fallback = true
	}

	return inspection
}

func (m *Monitor) fetchInventory(ctx context.Context, source extractor.InventorySource, productURL string) []byte {
	inventoryURL, err := source.InventoryURL(productURL)
	if err != nil {
		m.logger.Debug().Err(err).Str("url", productURL).Msg("product has no inventory url")
		return nil
	}

	payload, err := m.fetchWithRetry(ctx, m.fetcher.FetchInventory, inventoryURL)
	if err != nil {
		m.logger.Debug().Err(err).Str("url", inventoryURL).Msg("can't fetch inventory")
		return nil
	}

	return payload
}

type fetchFunc func(ctx context.Context, url string) ([]byte, error)

// fetchWithRetry retries failed fetches with exponential backoff.
func (m *Monitor) fetchWithRetry(ctx context.Context, fetch fetchFunc, url string) ([]byte, error) {
	attempts := max(m.cfg.FetchAttempts, 1)
	backoff := m.cfg.RetryBackoff

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		var body []byte
		if body, err = fetch(ctx, url); err == nil {
			return body, nil
		}

		if attempt == attempts || !retryable(err) {
			break
		}

		m.logger.Debug().Err(err).Str("url", url).Int("attempt", attempt).Msg("fetch failed, retrying")
		if sleepErr := sleep(ctx, backoff); sleepErr != nil {
			break
		}
		backoff *= 2
	}

	return nil, err
}

func retryable(err error) bool {
	return !errors.Is(err, fetcher.ErrContentTypeNotSupported) &&
		!errors.Is(err, fetcher.ErrPageGone) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

func (m *Monitor) finishCycle(ctx context.Context, run *models.Run, status error) error {
	if status != nil {
		run.StatusMessage = lo.ToPtr(status.Error())
	}
	run.IsSuccess = lo.ToPtr(status == nil)
	run.FinishedAt = m.clock.Now()

	err := m.store.FinishRun(context.WithoutCancel(ctx), run)

	m.logger.Info().
		Int("run", run.ID).
		Bool("success", status == nil).
		Int32("checked", lo.FromPtr(run.CheckedProducts)).
		Int32("in_stock", lo.FromPtr(run.InStockProducts)).
		Int32("skipped", lo.FromPtr(run.SkippedProducts)).
		Int32("failed", lo.FromPtr(run.FailedProducts)).
		Int32("restocks", lo.FromPtr(run.RestocksDetected)).
		Int32("brands_notified", lo.FromPtr(run.BrandsNotified)).
		Msg("monitoring cycle finished")

	if err != nil && status == nil {
		return fmt.Errorf("can't finish monitoring: %w", err)
	}

	if err != nil && status != nil {
		return fmt.Errorf("can't finish failed monitoring: %w (fail reason: %w)", err, status)
	}

	return status
}

// WithClock sets Monitor's custom Clock.
func WithClock(c Clock) Option {
	return func(m *Monitor) {
		m.clock = c
	}
}

// WithPacer sets Monitor's custom Pacer.
func WithPacer(p *Pacer) Option {
	return func(m *Monitor) {
		m.pacer = p
	}
}
