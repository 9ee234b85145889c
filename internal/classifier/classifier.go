// Package classifier turns signal bundles into availability classifications.
//
// Classification is a priority cascade where the first matching branch wins:
// purchase, pre-order, notify or sold out, and finally unknown.
// Confidence values are fixed per branch and express trust in the source of the decision.
package classifier

import (
	"fmt"

	"github.com/MichalMitros/restock-monitor/internal/platform/models"
	"github.com/samber/lo"
)

// Confidence of each cascade branch.
const (
	ConfidenceDirect     = 0.95
	ConfidenceHeuristic  = 0.9
	ConfidenceStructured = 0.8
	ConfidenceNone       = 0.0
)

// Classify returns classification of provided signal bundle.
// A text purchase signal always wins. Otherwise structured inventory decides between purchasable and not,
// and text signals decide between pre-order and out of stock.
func Classify(bundle models.SignalBundle) models.Classification {
	if bundle.Failure != nil {
		return models.Classification{
			Status:     models.StatusUnknown,
			Confidence: ConfidenceNone,
			Evidence:   []string{fmt.Sprintf("extraction failed: %s", bundle.Failure)},
		}
	}

	if cls, ok := purchasable(bundle); ok {
		return cls
	}

	if len(bundle.PreOrder) > 0 {
		return models.Classification{
			Status:       models.StatusPreOrder,
			Confidence:   ConfidenceDirect,
			Evidence:     append(evidence("Pre-order available", bundle.PreOrder), structuredEvidence(bundle.Structured)...),
			CallToAction: callToAction(bundle.PreOrder),
		}
	}

	if cls, ok := unavailable(bundle); ok {
		return cls
	}

	return models.Classification{
		Status:     models.StatusUnknown,
		Confidence: ConfidenceNone,
		Evidence:   []string{"No availability signals found"},
	}
}

// ClassifyInventory classifies structured inventory alone.
// It is lower trust fallback used when page classification is unknown.
func ClassifyInventory(inventory *models.Inventory) models.Classification {
	if !inventory.Conclusive() {
		return models.Classification{
			Status:     models.StatusUnknown,
			Confidence: ConfidenceNone,
			Evidence:   []string{"No variants in product data"},
		}
	}

	status := models.StatusOutOfStock
	if inventory.AvailableCount() > 0 {
		status = models.StatusInStock
	}

	return models.Classification{
		Status:     status,
		Confidence: ConfidenceStructured,
		Evidence:   structuredEvidence(inventory),
	}
}

// Error returns classification of product which page couldn't be fetched.
func Error(err error) models.Classification {
	return models.Classification{
		Status:     models.StatusError,
		Confidence: ConfidenceNone,
		Evidence:   []string{fmt.Sprintf("fetch failed: %s", err)},
	}
}

func purchasable(bundle models.SignalBundle) (models.Classification, bool) {
	available := bundle.Structured.AvailableCount()
	if len(bundle.Purchase) == 0 && available == 0 {
		return models.Classification{}, false
	}

	return models.Classification{
		Status:       models.StatusInStock,
		Confidence:   ConfidenceDirect,
		Evidence:     append(evidence("Purchase available", bundle.Purchase), structuredEvidence(bundle.Structured)...),
		CallToAction: callToAction(bundle.Purchase),
	}, true
}

func unavailable(bundle models.SignalBundle) (models.Classification, bool) {
	soldOutByData := bundle.Structured.Conclusive()
	if len(bundle.Notify) == 0 && len(bundle.SoldOut) == 0 && !soldOutByData {
		return models.Classification{}, false
	}

	confidence := ConfidenceHeuristic
	if lo.SomeBy(bundle.SoldOut, func(s models.Signal) bool { return s.Definitive }) {
		confidence = ConfidenceDirect
	}

	reasons := evidence("Only notification available", bundle.Notify)
	reasons = append(reasons, evidence("Sold out text", bundle.SoldOut)...)
	reasons = append(reasons, structuredEvidence(bundle.Structured)...)

	return models.Classification{
		Status:       models.StatusOutOfStock,
		Confidence:   confidence,
		Evidence:     reasons,
		CallToAction: callToAction(bundle.Notify),
	}, true
}

func evidence(prefix string, signals []models.Signal) []string {
	return lo.Map(signals, func(s models.Signal, _ int) string {
		return fmt.Sprintf("%s: %s", prefix, s)
	})
}

func structuredEvidence(inventory *models.Inventory) []string {
	if !inventory.Conclusive() {
		return nil
	}
	return []string{fmt.Sprintf("%d of %d variants available", inventory.AvailableCount(), len(inventory.Variants))}
}

// callToAction returns label of the first interactive signal with visible text.
func callToAction(signals []models.Signal) *string {
	signal, ok := lo.Find(signals, func(s models.Signal) bool { return s.Text != "" && s.Source != models.SourcePageText })
	if !ok {
		return nil
	}
	return lo.ToPtr(signal.Text)
}
