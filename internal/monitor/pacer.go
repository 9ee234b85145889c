package monitor

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// PacingConfig configures pauses between requests and cycles.
type PacingConfig struct {
	ProductPauseMin time.Duration `env:"PRODUCT_PAUSE_MIN" envDefault:"2s"`
	ProductPauseMax time.Duration `env:"PRODUCT_PAUSE_MAX" envDefault:"4s"`
	// WarmupProducts is number of first products of a brand followed by an additional pause.
	WarmupProducts int           `env:"WARMUP_PRODUCTS" envDefault:"2"`
	WarmupPauseMin time.Duration `env:"WARMUP_PAUSE_MIN" envDefault:"500ms"`
	WarmupPauseMax time.Duration `env:"WARMUP_PAUSE_MAX" envDefault:"1500ms"`
	BrandPauseMin  time.Duration `env:"BRAND_PAUSE_MIN" envDefault:"5s"`
	BrandPauseMax  time.Duration `env:"BRAND_PAUSE_MAX" envDefault:"15s"`
	// RequestsPerMinute limits requests sent to a single brand, zero means no limit.
	RequestsPerMinute float64 `env:"REQUESTS_PER_MINUTE" envDefault:"20"`
	// Quiet hours are inclusive UTC hours during which cycle interval is multiplied.
	QuietHourFrom   int     `env:"QUIET_HOUR_FROM" envDefault:"2"`
	QuietHourTo     int     `env:"QUIET_HOUR_TO" envDefault:"6"`
	QuietMultiplier float64 `env:"QUIET_MULTIPLIER" envDefault:"3"`
	IntervalMinRate float64 `env:"INTERVAL_MIN_RATE" envDefault:"0.8"`
	IntervalMaxRate float64 `env:"INTERVAL_MAX_RATE" envDefault:"1.5"`
	// Every BreakEvery cycle gets an additional break.
	BreakEvery int           `env:"BREAK_EVERY" envDefault:"10"`
	BreakMin   time.Duration `env:"BREAK_MIN" envDefault:"1m"`
	BreakMax   time.Duration `env:"BREAK_MAX" envDefault:"5m"`
}

// DefaultPacing returns pacing used when no configuration is provided.
func DefaultPacing() PacingConfig {
	return PacingConfig{
		ProductPauseMin:   2 * time.Second,
		ProductPauseMax:   4 * time.Second,
		WarmupProducts:    2,
		WarmupPauseMin:    500 * time.Millisecond,
		WarmupPauseMax:    1500 * time.Millisecond,
		BrandPauseMin:     5 * time.Second,
		BrandPauseMax:     15 * time.Second,
		RequestsPerMinute: 20,
		QuietHourFrom:     2,
		QuietHourTo:       6,
		QuietMultiplier:   3,
		IntervalMinRate:   0.8,
		IntervalMaxRate:   1.5,
		BreakEvery:        10,
		BreakMin:          time.Minute,
		BreakMax:          5 * time.Minute,
	}
}

// Pacer spaces requests sent to brands and randomizes checking order.
// It is safe for concurrent use.
type Pacer struct {
	cfg      PacingConfig
	mu       sync.Mutex
	rnd      *rand.Rand
	limiters map[string]*rate.Limiter
}

// NewPacer returns new Pacer using provided random seed.
func NewPacer(cfg PacingConfig, seed int64) *Pacer {
	return &Pacer{
		cfg:      cfg,
		rnd:      rand.New(rand.NewSource(seed)),
		limiters: map[string]*rate.Limiter{},
	}
}

// BeforeProduct waits before checking product with provided index of brand's checking order.
// First product is checked immediately, every next one after a random pause,
// and products following the warm-up ones wait longer.
func (p *Pacer) BeforeProduct(ctx context.Context, brand string, ix int) error {
	if err := p.limiter(brand).Wait(ctx); err != nil {
		return err
	}

	if ix == 0 {
		return nil
	}

	delay := p.uniform(p.cfg.ProductPauseMin, p.cfg.ProductPauseMax)
	if ix <= p.cfg.WarmupProducts {
		delay += p.uniform(p.cfg.WarmupPauseMin, p.cfg.WarmupPauseMax)
	}

	return sleep(ctx, delay)
}

// BetweenBrands waits between brands checked sequentially.
func (p *Pacer) BetweenBrands(ctx context.Context) error {
	return sleep(ctx, p.uniform(p.cfg.BrandPauseMin, p.cfg.BrandPauseMax))
}

// Shuffle randomizes order of n elements.
func (p *Pacer) Shuffle(n int, swap func(i, j int)) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.rnd.Shuffle(n, swap)
}

// NextInterval returns delay before next cycle.
// Base interval is randomized, stretched during quiet hours
// and every BreakEvery cycle extended with an additional break.
func (p *Pacer) NextInterval(base time.Duration, cycle int, now time.Time) time.Duration {
	delay := time.Duration(float64(base) * p.uniformRate(p.cfg.IntervalMinRate, p.cfg.IntervalMaxRate))

	if hour := now.UTC().Hour(); hour >= p.cfg.QuietHourFrom && hour <= p.cfg.QuietHourTo && p.cfg.QuietMultiplier > 0 {
		delay = time.Duration(float64(delay) * p.cfg.QuietMultiplier)
	}

	if p.cfg.BreakEvery > 0 && cycle > 0 && cycle%p.cfg.BreakEvery == 0 {
		delay += p.uniform(p.cfg.BreakMin, p.cfg.BreakMax)
	}

	return delay
}

func (p *Pacer) limiter(brand string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	lim, ok := p.limiters[brand]
	if !ok {
		limit := rate.Inf
		if p.cfg.RequestsPerMinute > 0 {
			limit = rate.Limit(p.cfg.RequestsPerMinute / 60)
		}
		lim = rate.NewLimiter(limit, 1)
		p.limiters[brand] = lim
	}

	return lim
}

func (p *Pacer) uniform(from, to time.Duration) time.Duration {
	if to <= from {
		return from
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	return from + time.Duration(p.rnd.Int63n(int64(to-from)))
}

func (p *Pacer) uniformRate(from, to float64) float64 {
	if to <= from {
		return from
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	return from + p.rnd.Float64()*(to-from)
}

// sleep waits for provided duration or until context is done.
func sleep(ctx context.Context, d time.Duration) error {
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
