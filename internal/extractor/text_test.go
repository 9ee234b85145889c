package extractor_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/MichalMitros/restock-monitor/internal/classifier"
	"github.com/MichalMitros/restock-monitor/internal/extractor"
	"github.com/MichalMitros/restock-monitor/internal/platform"
	"github.com/MichalMitros/restock-monitor/internal/platform/models"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitTextExtractorExtract(t *testing.T) {
	tests := map[string]struct {
		file      string
		wantName  string
		wantPrice *string
		want      models.SignalBundle
	}{
		"enabled purchase button": {
			file:      "in_stock.html",
			wantName:  "Sayaka-no-mukashi 40g",
			wantPrice: lo.ToPtr("4,860"),
			want: models.SignalBundle{
				Purchase: []models.Signal{
					{Phrase: "add to cart", Text: "Add to cart", Source: models.SourceButton},
				},
			},
		},
		"strict pre-order button with notify link": {
			file:     "pre_order.html",
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
		"disabled purchase button": {
			file:     "notify_only.html",
			wantName: "Kan 30g",
			want: models.SignalBundle{
				Notify: []models.Signal{
					{Phrase: "notify me", Text: "Notify Me", Source: models.SourceButton},
				},
			},
		},
		"definitive sold out sentence": {
			file:     "definitive_sold_out.html",
			wantName: "Wako",
			want: models.SignalBundle{
				SoldOut: []models.Signal{
					{
						Phrase:     "this product is currently out of stock and unavailable",
						Text:       "This product is currently out of stock and unavailable.",
						Source:     models.SourcePageText,
						Definitive: true,
					},
					{
						Phrase: "out of stock",
						Text:   "This product is currently out of stock and unavailable.",
						Source: models.SourcePageText,
					},
				},
			},
		},
		"no signals": {
			file:     "no_signals.html",
			wantName: "About us",
			want:     models.SignalBundle{},
		},
		"full width text, aria disabled and email field": {
			file:     "fullwidth.html",
			wantName: "抹茶 40g",
			want: models.SignalBundle{
				Purchase: []models.Signal{
					{Phrase: "add to cart", Text: "ＡＤＤ ＴＯ ＣＡＲＴ", Source: models.SourceInput},
				},
				Notify: []models.Signal{
					{Phrase: "email input field", Source: models.SourceInput},
				},
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			ext := extractor.NewTextExtractor(extractor.DefaultPhrases())

			got := ext.Extract(extractor.Document{
				URL:  "https://example.com/products/" + tt.file,
				Page: readTestdata(t, tt.file),
			})

			require.NoError(t, got.Bundle.Failure, "shouldn't report extraction failure")
			assert.Equal(t, tt.wantName, got.Name, "should return correct product name")
			assert.Equal(t, tt.wantPrice, got.Price, "should return correct price")
			assert.Equal(t, tt.want, got.Bundle, "should return correct signals")
		})
	}
}

func TestUnitTextExtractorExtractFailure(t *testing.T) {
	ext := extractor.NewTextExtractor(extractor.DefaultPhrases())

	got := ext.Extract(extractor.Document{URL: "https://example.com", Page: []byte("  \n")})

	require.ErrorIs(t, got.Bundle.Failure, platform.ErrExtraction, "should report extraction failure")
	assert.False(t, got.Bundle.HasTextSignals(), "should return empty bundle")
	assert.Nil(t, got.Bundle.Structured, "should return empty bundle")
}

func TestUnitTextExtractorPhraseOverride(t *testing.T) {
	phrases := extractor.DefaultPhrases().Override(extractor.Phrases{
		Purchase: []string{"in den warenkorb"},
	})
	ext := extractor.NewTextExtractor(phrases)

	got := ext.Extract(extractor.Document{
		Page: []byte(`<html><body><button>In den Warenkorb</button><button>Add to cart</button></body></html>`),
	})

	assert.Equal(t, []models.Signal{
		{Phrase: "in den warenkorb", Text: "In den Warenkorb", Source: models.SourceButton},
	}, got.Bundle.Purchase, "should use overridden purchase phrases only")
}

func TestUnitTextExtractorClassAndID(t *testing.T) {
	tests := map[string]struct {
		page         string
		wantPurchase []models.Signal
		wantStatus   models.Status
	}{
		"sold out label with add to cart class": {
			page:       `<h1>Kan</h1><button class="btn add-to-cart">Sold out</button>`,
			wantStatus: models.StatusOutOfStock,
		},
		"sold out label with add to cart id": {
			page:       `<h1>Kan</h1><button id="add_to_cart">Sold out</button>`,
			wantStatus: models.StatusOutOfStock,
		},
		"theme token alone isn't a phrase": {
			page:       `<h1>Kan</h1><button class="add-to-cart">Choose</button>`,
			wantStatus: models.StatusUnknown,
		},
		"class written as phrase": {
			page: `<h1>Kan</h1><a class="buy now">Kan 30g</a>`,
			wantPurchase: []models.Signal{
				{Phrase: "buy now", Text: "Kan 30g", Source: models.SourceLink},
			},
			wantStatus: models.StatusInStock,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := extractor.NewTextExtractor(extractor.DefaultPhrases()).Extract(extractor.Document{
				Page: []byte("<html><body>" + tt.page + "</body></html>"),
			})

			assert.Equal(t, tt.wantPurchase, got.Bundle.Purchase, "should return correct purchase signals")
			assert.Equal(t, tt.wantStatus, classifier.Classify(got.Bundle).Status, "should classify correctly")
		})
	}
}

func TestUnitTextExtractorExpectedDate(t *testing.T) {
	tests := map[string]struct {
		text     string
		wantDate string
	}{
		"expected in stock": {
			text:     "Sold out. Expected in stock by 12 June.",
			wantDate: "Expected in stock by 12 June",
		},
		"back in stock": {
			text:     "Back in stock by early July",
			wantDate: "Back in stock by early July",
		},
		"weekday": {
			text:     "Available again next Tuesday morning.",
			wantDate: "Available again next Tuesday morning",
		},
		"restocked with day": {
			text:     "Restocked on the 3rd of May.",
			wantDate: "Restocked on the 3rd of May",
		},
		"no date": {
			text: "Fine matcha from Uji.",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := extractor.NewTextExtractor(extractor.DefaultPhrases()).Extract(extractor.Document{
				Page: []byte("<html><body><h1>Kan</h1><p>" + tt.text + "</p></body></html>"),
			})

			signal, found := lo.Find(got.Bundle.Notify, func(s models.Signal) bool { return s.Phrase == "expected date" })
			if tt.wantDate == "" {
				assert.False(t, found, "shouldn't find expected date")
				return
			}

			require.True(t, found, "should find expected date")
			assert.Equal(t, models.Signal{Phrase: "expected date", Text: tt.wantDate, Source: models.SourcePageText}, signal)

			cls := classifier.Classify(got.Bundle)
			assert.Equal(t, models.StatusOutOfStock, cls.Status, "announced date means product isn't available")
			assert.Contains(t, cls.Evidence, "Only notification available: page text: "+tt.wantDate, "should report date")
			assert.Nil(t, cls.CallToAction, "page text isn't call to action")
		})
	}
}

func TestUnitExtractorNew(t *testing.T) {
	tests := map[string]struct {
		strategy string
		wantType any
		wantErr  bool
	}{
		"text":               {strategy: extractor.StrategyText, wantType: &extractor.TextExtractor{}},
		"default":            {strategy: "", wantType: &extractor.TextExtractor{}},
		"shopify":            {strategy: extractor.StrategyShopify, wantType: &extractor.ShopifyExtractor{}},
		"shopify html first": {strategy: extractor.StrategyShopifyHTMLFirst, wantType: &extractor.ShopifyExtractor{}},
		"unsupported":        {strategy: "playwright", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := extractor.New(tt.strategy, extractor.DefaultPhrases())
			if tt.wantErr {
				require.Error(t, err, "should return error")
				return
			}

			require.NoError(t, err, "shouldn't return error")
			assert.IsType(t, tt.wantType, got, "should return correct extractor")
		})
	}
}

func readTestdata(t *testing.T, name string) []byte {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err, "can't read test data")

	return data
}
