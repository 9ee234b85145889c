// Package stockstate holds stock state transition rules shared by storage implementations.
package stockstate

import (
	"time"

	"github.com/MichalMitros/restock-monitor/internal/platform/models"
	"github.com/samber/lo"
)

// Apply returns new stock state for observation and describes the transition.
// Stock change timestamp is set on first insert of an in stock product and on every false to true flip.
// It stays untouched otherwise.
func Apply(prev *models.StockState, obs models.Observation) (models.StockState, models.TransitionOutcome) {
	next := models.StockState{
		Identity:    obs.Identity,
		IsInStock:   obs.IsInStock,
		LastChecked: obs.At,
	}
	if obs.URL != "" {
		next.StockURL = lo.ToPtr(obs.URL)
	}

	if prev == nil {
		if obs.IsInStock {
			next.StockChangeDetectedAt = lo.ToPtr(obs.At)
		}
		return next, models.TransitionOutcome{
			Created:   true,
			Restocked: obs.IsInStock,
		}
	}

	next.ID = prev.ID
	next.StockChangeDetectedAt = prev.StockChangeDetectedAt
	if next.StockURL == nil {
		next.StockURL = prev.StockURL
	}

	restocked := !prev.IsInStock && obs.IsInStock
	if restocked {
		next.StockChangeDetectedAt = lo.ToPtr(obs.At)
	}

	return next, models.TransitionOutcome{
		Restocked:  restocked,
		WasInStock: lo.ToPtr(prev.IsInStock),
	}
}

// Observe builds observation from classification.
// It reports false when classification status is not conclusive and shouldn't be stored.
func Observe(
	identity models.ProductIdentity,
	cls models.Classification,
	url string,
	preOrderCounts bool,
	at time.Time,
) (models.Observation, bool) {
	if !cls.Status.Conclusive() {
		return models.Observation{}, false
	}

	return models.Observation{
		Identity:  identity,
		IsInStock: cls.Status.Purchasable(preOrderCounts),
		URL:       url,
		At:        at,
	}, true
}
