package extractor

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/MichalMitros/restock-monitor/internal/platform/models"
	"github.com/samber/lo"
)

var errNoProductHandle = errors.New("no product handle in url")

// shopifyPayload is model of Shopify product endpoint response.
type shopifyPayload struct {
	Product shopifyProduct `json:"product"`
}

// shopifyProduct is model of Shopify product.
type shopifyProduct struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	Handle      string           `json:"handle"`
	ProductType string           `json:"product_type"`
	Tags        shopifyTags      `json:"tags"`
	Variants    []shopifyVariant `json:"variants"`
}

// shopifyVariant is model of Shopify product variant.
type shopifyVariant struct {
	ID                int64       `json:"id"`
	Title             string      `json:"title"`
	Price             json.Number `json:"price"`
	Available         *bool       `json:"available"`
	InventoryQuantity *int        `json:"inventory_quantity"`
}

// shopifyTags accepts both comma separated string and array of tags.
type shopifyTags []string

// UnmarshalJSON decodes tags from string or array.
func (t *shopifyTags) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = list
		return nil
	}

	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return fmt.Errorf("can't decode tags: %w", err)
	}

	*t = lo.FilterMap(strings.Split(joined, ","), func(tag string, _ int) (string, bool) {
		tag = strings.TrimSpace(tag)
		return tag, tag != ""
	})

	return nil
}

// ShopifyExtractor extracts signals from Shopify storefronts.
type ShopifyExtractor struct {
	scanner   scanner
	htmlFirst bool
}

// NewShopifyExtractor returns new ShopifyExtractor.
// With htmlFirst set only page is scanned and product JSON serves as fallback source.
func NewShopifyExtractor(phrases Phrases, htmlFirst bool) *ShopifyExtractor {
	return &ShopifyExtractor{
		scanner:   newScanner(phrases),
		htmlFirst: htmlFirst,
	}
}

// StructuredFirst reports if product JSON is fetched before every extraction.
func (e *ShopifyExtractor) StructuredFirst() bool {
	return !e.htmlFirst
}

// InventoryURL returns product JSON url for product page url.
func (e *ShopifyExtractor) InventoryURL(productURL string) (string, error) {
	parsed, err := url.Parse(productURL)
	if err != nil {
		return "", fmt.Errorf("can't parse product url: %w", err)
	}

	_, handle, found := strings.Cut(parsed.Path, "/products/")
	handle = strings.Trim(handle, "/")
	if !found || handle == "" {
		return "", fmt.Errorf("%w: %s", errNoProductHandle, productURL)
	}
	handle, _, _ = strings.Cut(handle, "/")

	inventoryURL := url.URL{
		Scheme: parsed.Scheme,
		Host:   parsed.Host,
		Path:   "/products/" + handle + ".json",
	}

	return inventoryURL.String(), nil
}

// DecodeInventory decodes product JSON into inventory.
func (e *ShopifyExtractor) DecodeInventory(payload []byte) (*models.Inventory, error) {
	product, err := decodeShopifyProduct(payload)
	if err != nil {
		return nil, err
	}

	return toInventory(product), nil
}

// Extract builds bundle from product JSON and page text.
func (e *ShopifyExtractor) Extract(doc Document) models.Extraction {
	var extraction models.Extraction

	if !e.htmlFirst && len(doc.Inventory) > 0 {
		product, err := decodeShopifyProduct(doc.Inventory)
		if err != nil && len(doc.Page) == 0 {
			return failed(err)
		}
		if err == nil {
			extraction.Name = html.UnescapeString(product.Title)
			extraction.Price = firstPrice(product)
			extraction.Bundle.Structured = toInventory(product)
			extraction.Bundle.PreOrder = preOrderMarkers(product, e.scanner.phrases.PreOrder)
		}
	}

	if len(doc.Page) == 0 {
		if extraction.Bundle.Structured == nil {
			return failed(fmt.Errorf("can't extract %s: %w", doc.URL, errEmptyPage))
		}
		return extraction
	}

	root, err := parsePage(doc.Page)
	if err != nil {
		if extraction.Bundle.Structured != nil {
			return extraction
		}
		return failed(fmt.Errorf("can't parse page %s: %w", doc.URL, err))
	}

	if extraction.Name == "" {
		extraction.Name = pageName(root)
	}
	if extraction.Price == nil {
		extraction.Price = pagePrice(root)
	}
	e.scanner.scan(root, &extraction.Bundle)

	return extraction
}

func decodeShopifyProduct(payload []byte) (*shopifyProduct, error) {
	var decoded shopifyPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("can't decode product json: %w", err)
	}

	return &decoded.Product, nil
}

// toInventory copies availability of variants verbatim.
// Variants without availability flag fall back to inventory quantity, variants with neither are skipped.
func toInventory(product *shopifyProduct) *models.Inventory {
	inventory := &models.Inventory{
		Variants: make([]models.Variant, 0, len(product.Variants)),
	}

	for _, variant := range product.Variants {
		var available bool
		switch {
		case variant.Available != nil:
			available = *variant.Available
		case variant.InventoryQuantity != nil:
			available = *variant.InventoryQuantity > 0
		default:
			continue
		}

		inventory.Variants = append(inventory.Variants, models.Variant{
			ID:        variant.ID,
			Title:     html.UnescapeString(variant.Title),
			Price:     priceOf(variant),
			Available: available,
			Quantity:  variant.InventoryQuantity,
		})
	}

	return inventory
}

// preOrderMarkers returns strict pre-order signals from product tags and type.
func preOrderMarkers(product *shopifyProduct, phrases []string) []models.Signal {
	candidates := append([]string{product.ProductType}, product.Tags...)

	var signals []models.Signal
	for _, candidate := range candidates {
		if phrase, ok := firstMatch(normalize(candidate), phrases); ok {
			signals = append(signals, newSignal(phrase, candidate, models.SourceProductData))
		}
	}

	return signals
}

func firstPrice(product *shopifyProduct) *string {
	for _, variant := range product.Variants {
		if price := priceOf(variant); price != nil {
			return price
		}
	}
	return nil
}

func priceOf(variant shopifyVariant) *string {
	if variant.Price == "" {
		return nil
	}
	return lo.ToPtr(variant.Price.String())
}
