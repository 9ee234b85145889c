package extractor

import (
	"fmt"

	"github.com/MichalMitros/restock-monitor/internal/platform"
	"github.com/MichalMitros/restock-monitor/internal/platform/models"
)

// Extraction strategies.
const (
	StrategyText             = "text"
	StrategyShopify          = "shopify"
	StrategyShopifyHTMLFirst = "shopify_html_first"
)

// Document is fetched product page with optional structured inventory payload.
type Document struct {
	URL       string
	Page      []byte
	Inventory []byte
}

// Extractor turns fetched documents into signal bundles.
// Extract never fails, extraction problems are reported with bundle's Failure.
type Extractor interface {
	Extract(doc Document) models.Extraction
}

// InventorySource is implemented by extractors of brands exposing structured inventory.
type InventorySource interface {
	// InventoryURL returns structured inventory URL for product page URL.
	InventoryURL(productURL string) (string, error)
	// DecodeInventory decodes structured inventory payload.
	DecodeInventory(payload []byte) (*models.Inventory, error)
	// StructuredFirst reports if inventory should be fetched before every extraction.
	// Otherwise it is used only as a fallback for inconclusive pages.
	StructuredFirst() bool
}

// New returns extractor implementing provided strategy.
func New(strategy string, phrases Phrases) (Extractor, error) {
	switch strategy {
	case StrategyText, "":
		return NewTextExtractor(phrases), nil
	case StrategyShopify:
		return NewShopifyExtractor(phrases, false), nil
	case StrategyShopifyHTMLFirst:
		return NewShopifyExtractor(phrases, true), nil
	default:
		return nil, fmt.Errorf("unsupported extraction strategy %q", strategy)
	}
}

func failed(err error) models.Extraction {
	return models.Extraction{
		Bundle: models.SignalBundle{
			Failure: fmt.Errorf("%w: %w", platform.ErrExtraction, err),
		},
	}
}
