package extractor

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Phrases are ordered phrase lists used for text scanning.
type Phrases struct {
	Purchase          []string `yaml:"purchase"`
	PreOrder          []string `yaml:"pre_order"`
	Notify            []string `yaml:"notify"`
	SoldOut           []string `yaml:"sold_out"`
	DefinitiveSoldOut []string `yaml:"definitive_sold_out"`
}

// DefaultPhrases returns phrase lists shared by all brands.
// Pre-order list is strict on purpose: only literal pre-order wording qualifies.
func DefaultPhrases() Phrases {
	return Phrases{
		Purchase: []string{
			"add to cart",
			"add to bag",
			"add to basket",
			"buy now",
			"buy it now",
		},
		PreOrder: []string{
			"pre-order",
			"preorder",
		},
		Notify: []string{
			"notify me",
			"notify when",
			"email me",
			"back in stock",
			"restock",
			"waitlist",
			"email when available",
		},
		SoldOut: []string{
			"sold out",
			"out of stock",
			"currently unavailable",
			"temporarily out of stock",
			"not available",
		},
		DefinitiveSoldOut: []string{
			"this product is currently out of stock and unavailable",
		},
	}
}

// Override returns copy of phrases with every non-empty list of o replacing the original one.
func (p Phrases) Override(o Phrases) Phrases {
	result := p
	if len(o.Purchase) > 0 {
		result.Purchase = o.Purchase
	}
	if len(o.PreOrder) > 0 {
		result.PreOrder = o.PreOrder
	}
	if len(o.Notify) > 0 {
		result.Notify = o.Notify
	}
	if len(o.SoldOut) > 0 {
		result.SoldOut = o.SoldOut
	}
	if len(o.DefinitiveSoldOut) > 0 {
		result.DefinitiveSoldOut = o.DefinitiveSoldOut
	}
	return result
}

// normalized returns phrases in the same form as scanned haystacks.
func (p Phrases) normalized() Phrases {
	return Phrases{
		Purchase:          normalizeAll(p.Purchase),
		PreOrder:          normalizeAll(p.PreOrder),
		Notify:            normalizeAll(p.Notify),
		SoldOut:           normalizeAll(p.SoldOut),
		DefinitiveSoldOut: normalizeAll(p.DefinitiveSoldOut),
	}
}

var separators = strings.NewReplacer("-", " ", "_", " ")

// normalize folds full-width characters, case, separators and whitespace.
func normalize(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ToLower(s)
	s = separators.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// lowered returns phrases for matching class and id tokens, separators are kept as written.
func (p Phrases) lowered() Phrases {
	return Phrases{
		Purchase:          lowerAll(p.Purchase),
		PreOrder:          lowerAll(p.PreOrder),
		Notify:            lowerAll(p.Notify),
		SoldOut:           lowerAll(p.SoldOut),
		DefinitiveSoldOut: lowerAll(p.DefinitiveSoldOut),
	}
}

func lowerAll(phrases []string) []string {
	result := make([]string, 0, len(phrases))
	for _, phrase := range phrases {
		if l := strings.ToLower(strings.TrimSpace(phrase)); l != "" {
			result = append(result, l)
		}
	}
	return result
}

func normalizeAll(phrases []string) []string {
	result := make([]string, 0, len(phrases))
	for _, phrase := range phrases {
		if n := normalize(phrase); n != "" {
			result = append(result, n)
		}
	}
	return result
}

// firstMatch returns first phrase contained in haystack.
func firstMatch(haystack string, phrases []string) (string, bool) {
	for _, phrase := range phrases {
		if strings.Contains(haystack, phrase) {
			return phrase, true
		}
	}
	return "", false
}
