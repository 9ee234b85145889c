package main

import (
	"context"
	"fmt"

	"github.com/MichalMitros/restock-monitor/cmd/monitor/config"
	"github.com/MichalMitros/restock-monitor/internal/catalog"
	"github.com/MichalMitros/restock-monitor/internal/platform"
	"github.com/samber/lo"
)

// subscriptionStore keeps restock subscriptions counted when notifications are created.
type subscriptionStore interface {
	Subscribe(ctx context.Context, email, brand string) error
	Unsubscribe(ctx context.Context, email, brand string) error
}

// manageSubscriptions subscribes or unsubscribes options email to requested catalog brands.
// Brands are stored under their catalog names and returned.
func manageSubscriptions(ctx context.Context, st subscriptionStore, cat *catalog.Catalog, opts config.Options) ([]string, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	email, err := opts.Subscriber()
	if err != nil {
		return nil, err
	}

	targets, err := cat.Targets(opts.Brands...)
	if err != nil {
		return nil, err
	}
	brands := lo.Map(targets, func(t catalog.Target, _ int) string { return t.Brand })

	for _, brand := range brands {
		if opts.Mode == config.ModeSubscribe {
			err = st.Subscribe(ctx, email, brand)
		} else {
			err = st.Unsubscribe(ctx, email, brand)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", platform.ErrPersistence, err)
		}
	}

	return brands, nil
}
