package extractor

import (
	"fmt"

	"github.com/MichalMitros/restock-monitor/internal/platform/models"
)

// TextExtractor scans product page text only.
type TextExtractor struct {
	scanner scanner
}

// NewTextExtractor returns new TextExtractor.
func NewTextExtractor(phrases Phrases) *TextExtractor {
	return &TextExtractor{
		scanner: newScanner(phrases),
	}
}

// Extract scans interactive elements and page text of the document.
func (e *TextExtractor) Extract(doc Document) models.Extraction {
	root, err := parsePage(doc.Page)
	if err != nil {
		return failed(fmt.Errorf("can't parse page %s: %w", doc.URL, err))
	}

	extraction := models.Extraction{
		Name:  pageName(root),
		Price: pagePrice(root),
	}
	e.scanner.scan(root, &extraction.Bundle)

	return extraction
}
