// Package notifier delivers restock notifications created by the stock state store.
// Pending notifications are claimed, grouped into one batch per brand and handed to a Sender.
package notifier

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/MichalMitros/restock-monitor/internal/platform"
	"github.com/MichalMitros/restock-monitor/internal/platform/models"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

//go:generate mockery --name Store --filename store.go
//go:generate mockery --name Sender --filename sender.go

// Defaults of Aggregator.
const (
	DefaultWindow     = time.Hour
	DefaultClaimTTL   = 2 * time.Minute
	DefaultBrandPause = time.Second
)

// Store is restock notifications storage.
type Store interface {
	// FetchPending claims undelivered notifications matching the query and returns them ordered by creation time.
	FetchPending(ctx context.Context, query models.PendingQuery) ([]models.RestockNotification, error)
	// RenewClaim moves claim of undelivered notifications still claimed until claimedUntil to until.
	// It returns ids of notifications which are still held.
	RenewClaim(ctx context.Context, ids []int64, claimedUntil, until time.Time) ([]int64, error)
	// ReleaseClaim makes notifications pending again without recording any delivery.
	ReleaseClaim(ctx context.Context, ids []int64) error
	// MarkDelivered sets delivery outcome of notifications and releases their claim.
	MarkDelivered(ctx context.Context, ids []int64, delivery models.Delivery) error
}

// Sender delivers batched restock payload to subscribers.
type Sender interface {
	Send(ctx context.Context, payload models.RestockPayload) (Receipt, error)
}

// Receipt is what the sender learned about accepted delivery.
type Receipt struct {
	// Notified is number of subscribers reached as reported by the endpoint, nil when unknown.
	Notified *int32
}

// Batch is set of notifications of single brand delivered together.
type Batch struct {
	Brand    string
	Products []models.PayloadProduct
	// IDs are ids of all notifications covered by the batch, duplicates included.
	IDs []int64
}

// Report summarizes single aggregation pass.
type Report struct {
	Notifications int
	Batches       int
	Delivered     int
	Failed        int
	// Skipped counts batches whose notifications were claimed by other cycle before sending.
	Skipped int
}

// Option is custom configuration of Aggregator.
type Option func(a *Aggregator)

// Aggregator groups pending restock notifications per brand and delivers them.
type Aggregator struct {
	store      Store
	sender     Sender
	logger     *zerolog.Logger
	window     time.Duration
	claimTTL   time.Duration
	brandPause time.Duration
	credential string
	dryRun     bool
	clock      func() time.Time
}

// NewAggregator returns new Aggregator.
func NewAggregator(store Store, sender Sender, logger *zerolog.Logger, ops ...Option) *Aggregator {
	agg := &Aggregator{
		store:      store,
		sender:     sender,
		logger:     logger,
		window:     DefaultWindow,
		claimTTL:   DefaultClaimTTL,
		brandPause: DefaultBrandPause,
		clock:      time.Now,
	}

	for _, op := range ops {
		op(agg)
	}

	return agg
}

// Notify delivers notifications created within recency window before now.
// Delivery failures are reported and left for retry, storage failures are returned.
func (a *Aggregator) Notify(ctx context.Context, now time.Time) (Report, error) {
	claim := claimUntil(now, a.claimTTL)
	pending, err := a.store.FetchPending(ctx, models.PendingQuery{
		CreatedAfter: now.Add(-a.window),
		Now:          now,
		ClaimUntil:   claim,
	})
	if err != nil {
		return Report{}, fmt.Errorf("%w: can't fetch pending notifications: %w", platform.ErrPersistence, err)
	}

	report := Report{Notifications: len(pending)}
	if len(pending) == 0 {
		a.logger.Debug().Msg("no pending restock notifications")
		return report, nil
	}

	batches := GroupByBrand(pending)
	report.Batches = len(batches)

	for ix, batch := range batches {
		if ix > 0 {
			if err := pause(ctx, a.brandPause); err != nil {
				return report, fmt.Errorf("notifying interrupted: %w", err)
			}
		}

		batch, held, err := a.renewClaim(ctx, batch, pending, claim)
		if err != nil {
			return report, err
		}
		if !held {
			report.Skipped++
			continue
		}

		receipt, success := a.deliver(ctx, batch)
		if success {
			report.Delivered++
		} else {
			report.Failed++
		}

		if a.dryRun {
			if err := a.store.ReleaseClaim(ctx, batch.IDs); err != nil {
				return report, fmt.Errorf("%w: can't release %s notifications: %w", platform.ErrPersistence, batch.Brand, err)
			}
			continue
		}

		delivery := models.Delivery{Success: success, At: now, Notified: receipt.Notified}
		if err := a.store.MarkDelivered(ctx, batch.IDs, delivery); err != nil {
			return report, fmt.Errorf("%w: can't mark %s notifications: %w", platform.ErrPersistence, batch.Brand, err)
		}
	}

	return report, nil
}

// renewClaim extends claim of the batch to claim TTL from current time right before sending.
// Notifications taken by other cycle meanwhile are dropped from the batch.
func (a *Aggregator) renewClaim(
	ctx context.Context,
	batch Batch,
	pending []models.RestockNotification,
	claim time.Time,
) (Batch, bool, error) {
	held, err := a.store.RenewClaim(ctx, batch.IDs, claim, claimUntil(a.clock(), a.claimTTL))
	if err != nil {
		return batch, false, fmt.Errorf("%w: can't renew claim of %s notifications: %w", platform.ErrPersistence, batch.Brand, err)
	}

	if len(held) == 0 {
		a.logger.Warn().
			Str("brand", batch.Brand).
			Int("notifications", len(batch.IDs)).
			Msg("restock notifications claimed by other cycle, skipping")
		return batch, false, nil
	}

	if len(held) == len(batch.IDs) {
		return batch, true, nil
	}

	kept := lo.Filter(pending, func(n models.RestockNotification, _ int) bool {
		return lo.Contains(held, n.ID)
	})

	a.logger.Warn().
		Str("brand", batch.Brand).
		Int("lost", len(batch.IDs)-len(held)).
		Msg("some restock notifications claimed by other cycle")

	return GroupByBrand(kept)[0], true, nil
}

func (a *Aggregator) deliver(ctx context.Context, batch Batch) (Receipt, bool) {
	payload := models.RestockPayload{
		Brand:      batch.Brand,
		Products:   batch.Products,
		Credential: a.credential,
	}

	receipt, err := a.sender.Send(ctx, payload)
	if err != nil {
		a.logger.Warn().
			Err(fmt.Errorf("%w: %w", platform.ErrDelivery, err)).
			Str("brand", batch.Brand).
			Int("products", len(batch.Products)).
			Msg("can't deliver restock notification")
		return Receipt{}, false
	}

	event := a.logger.Info().
		Str("brand", batch.Brand).
		Int("products", len(batch.Products))
	if receipt.Notified != nil {
		event = event.Int32("notified", *receipt.Notified)
	}
	event.Msg("restock notification delivered")

	return receipt, true
}

// claimUntil is truncated to milliseconds, the coarsest precision of stores, so it can be compared after reading back.
func claimUntil(from time.Time, ttl time.Duration) time.Time {
	return from.Add(ttl).Truncate(time.Millisecond)
}

// GroupByBrand groups notifications into batches, one per brand ignoring case, ordered by brand name.
// Products within a batch are deduplicated by URL, or by name when URL is missing.
// Every notification ID is kept in its batch.
func GroupByBrand(notifications []models.RestockNotification) []Batch {
	byBrand := lo.GroupBy(notifications, func(n models.RestockNotification) string {
		return strings.ToLower(strings.TrimSpace(n.Brand))
	})

	keys := lo.Keys(byBrand)
	sort.Strings(keys)

	return lo.Map(keys, func(key string, _ int) Batch {
		group := byBrand[key]
		batch := Batch{
			Brand: strings.TrimSpace(group[0].Brand),
			IDs:   lo.Map(group, func(n models.RestockNotification, _ int) int64 { return n.ID }),
		}

		unique := lo.UniqBy(group, productKey)
		batch.Products = lo.Map(unique, func(n models.RestockNotification, _ int) models.PayloadProduct {
			return models.PayloadProduct{
				Name: n.ProductName,
				URL:  lo.FromPtr(n.ProductURL),
			}
		})

		return batch
	})
}

func productKey(n models.RestockNotification) string {
	if url := normalizeURL(lo.FromPtr(n.ProductURL)); url != "" {
		return "url:" + url
	}
	return "name:" + strings.ToLower(strings.TrimSpace(n.ProductName))
}

func normalizeURL(url string) string {
	url = strings.ToLower(strings.TrimSpace(url))
	if ix := strings.IndexAny(url, "?#"); ix >= 0 {
		url = url[:ix]
	}
	return strings.TrimRight(url, "/")
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// WithWindow sets recency window of notifications eligible for delivery.
func WithWindow(window time.Duration) Option {
	return func(a *Aggregator) {
		a.window = window
	}
}

// WithClaimTTL sets how long fetched notifications stay reserved for the cycle.
func WithClaimTTL(ttl time.Duration) Option {
	return func(a *Aggregator) {
		a.claimTTL = ttl
	}
}

// WithBrandPause sets pause between deliveries of consecutive brands.
func WithBrandPause(d time.Duration) Option {
	return func(a *Aggregator) {
		a.brandPause = d
	}
}

// WithCredential sets credential attached to every payload.
func WithCredential(credential string) Option {
	return func(a *Aggregator) {
		a.credential = credential
	}
}

// WithDryRun keeps notifications pending after delivery. It's used in test mode together with LogSender.
func WithDryRun() Option {
	return func(a *Aggregator) {
		a.dryRun = true
	}
}

// WithClock sets source of current time used for claim renewals.
func WithClock(clock func() time.Time) Option {
	return func(a *Aggregator) {
		a.clock = clock
	}
}
