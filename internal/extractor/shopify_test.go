package extractor_test

import (
	"testing"

	"github.com/MichalMitros/restock-monitor/internal/extractor"
	"github.com/MichalMitros/restock-monitor/internal/platform"
	"github.com/MichalMitros/restock-monitor/internal/platform/models"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitShopifyExtractorInventoryURL(t *testing.T) {
	tests := map[string]struct {
		productURL string
		want       string
		wantErr    bool
	}{
		"collection product url": {
			productURL: "https://ippodotea.com/collections/matcha/products/sayaka-no-mukashi",
			want:       "https://ippodotea.com/products/sayaka-no-mukashi.json",
		},
		"product url with query and trailing slash": {
			productURL: "https://ippodotea.com/products/kan/?variant=40011#details",
			want:       "https://ippodotea.com/products/kan.json",
		},
		"no product handle": {
			productURL: "https://ippodotea.com/collections/matcha",
			wantErr:    true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			ext := extractor.NewShopifyExtractor(extractor.DefaultPhrases(), false)

			got, err := ext.InventoryURL(tt.productURL)
			if tt.wantErr {
				require.Error(t, err, "should return error")
				return
			}

			require.NoError(t, err, "shouldn't return error")
			assert.Equal(t, tt.want, got, "should return correct inventory url")
		})
	}
}

func TestUnitShopifyExtractorExtract(t *testing.T) {
	inStockInventory := &models.Inventory{
		Variants: []models.Variant{
			{ID: 40011, Title: "40g box", Price: lo.ToPtr("4860.00"), Available: true, Quantity: lo.ToPtr(5)},
			{ID: 40012, Title: "40g can", Price: lo.ToPtr("5400.00"), Available: false, Quantity: lo.ToPtr(0)},
		},
	}

	tests := map[string]struct {
		htmlFirst bool
		doc       extractor.Document
		wantName  string
		wantPrice *string
		want      models.SignalBundle
	}{
		"structured first with page": {
			doc: extractor.Document{
				Page:      readTestdata(t, "notify_only.html"),
				Inventory: readTestdata(t, "product.json"),
			},
			wantName:  "Sayaka-no-mukashi 40g",
			wantPrice: lo.ToPtr("4860.00"),
			want: models.SignalBundle{
				Structured: inStockInventory,
				Notify: []models.Signal{
					{Phrase: "notify me", Text: "Notify Me", Source: models.SourceButton},
				},
			},
		},
		"structured first without page": {
			doc: extractor.Document{
				Inventory: readTestdata(t, "product.json"),
			},
			wantName:  "Sayaka-no-mukashi 40g",
			wantPrice: lo.ToPtr("4860.00"),
			want: models.SignalBundle{
				Structured: inStockInventory,
			},
		},
		"pre-order tag": {
			doc: extractor.Document{
				Inventory: readTestdata(t, "product_pre_order.json"),
			},
			wantName:  "Ummon-no-mukashi 20g",
			wantPrice: lo.ToPtr("3240"),
			want: models.SignalBundle{
				Structured: &models.Inventory{
					Variants: []models.Variant{
						{ID: 40021, Title: "Default Title", Price: lo.ToPtr("3240"), Available: false},
					},
				},
				PreOrder: []models.Signal{
					{Phrase: "pre order", Text: "Pre-order", Source: models.SourceProductData},
				},
			},
		},
		"html first ignores inventory": {
			htmlFirst: true,
			doc: extractor.Document{
				Page:      readTestdata(t, "in_stock.html"),
				Inventory: readTestdata(t, "product.json"),
			},
			wantName:  "Sayaka-no-mukashi 40g",
			wantPrice: lo.ToPtr("4,860"),
			want: models.SignalBundle{
				Purchase: []models.Signal{
					{Phrase: "add to cart", Text: "Add to cart", Source: models.SourceButton},
				},
			},
		},
		"broken inventory falls back to page": {
			doc: extractor.Document{
				Page:      readTestdata(t, "pre_order.html"),
				Inventory: []byte(`{"product":`),
			},
			wantName: "Ummon-no-mukashi 20g",
			want: models.SignalBundle{
				PreOrder: []models.Signal{
					{Phrase: "pre order", Text: "Pre-order", Source: models.SourceButton},
				},
				Notify: []models.Signal{
					{Phrase: "email me", Text: "Email me when available", Source: models.SourceLink},
				},
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			ext := extractor.NewShopifyExtractor(extractor.DefaultPhrases(), tt.htmlFirst)

			got := ext.Extract(tt.doc)

			require.NoError(t, got.Bundle.Failure, "shouldn't report extraction failure")
			assert.Equal(t, tt.wantName, got.Name, "should return correct product name")
			assert.Equal(t, tt.wantPrice, got.Price, "should return correct price")
			assert.Equal(t, tt.want, got.Bundle, "should return correct signals")
		})
	}
}

func TestUnitShopifyExtractorExtractFailure(t *testing.T) {
	tests := map[string]struct {
		htmlFirst bool
		doc       extractor.Document
	}{
		"broken inventory without page": {
			doc: extractor.Document{Inventory: []byte(`not json`)},
		},
		"empty document": {
			doc: extractor.Document{},
		},
		"html first without page": {
			htmlFirst: true,
			doc:       extractor.Document{Inventory: readTestdata(t, "product.json")},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			ext := extractor.NewShopifyExtractor(extractor.DefaultPhrases(), tt.htmlFirst)

			got := ext.Extract(tt.doc)

			require.ErrorIs(t, got.Bundle.Failure, platform.ErrExtraction, "should report extraction failure")
		})
	}
}

func TestUnitShopifyExtractorDecodeInventory(t *testing.T) {
	ext := extractor.NewShopifyExtractor(extractor.DefaultPhrases(), true)

	got, err := ext.DecodeInventory([]byte(`{"product":{"tags":[],"variants":[
		{"id":1,"title":"A","price":"10.00","inventory_quantity":3},
		{"id":2,"title":"B","price":"10.00","inventory_quantity":0},
		{"id":3,"title":"C","price":"10.00"}
	]}}`))

	require.NoError(t, err, "shouldn't return error")
	assert.Len(t, got.Variants, 2, "should skip variants without availability")
	assert.Equal(t, 1, got.AvailableCount(), "should derive availability from quantity")
	assert.False(t, ext.StructuredFirst(), "html first extractor shouldn't be structured first")
}
