package models

import (
	"fmt"
	"strings"
	"time"
)

// Status is availability status of a product.
type Status string

// Availability statuses.
const (
	StatusInStock    Status = "in_stock"
	StatusPreOrder   Status = "pre_order"
	StatusOutOfStock Status = "out_of_stock"
	StatusUnknown    Status = "unknown"
	StatusError      Status = "error"
)

// Conclusive reports if status says anything about availability and can be stored.
func (s Status) Conclusive() bool {
	return s == StatusInStock || s == StatusPreOrder || s == StatusOutOfStock
}

// Purchasable reports if status means that customer can buy the product.
// Pre-orders are purchasable only when preOrderCounts is set.
func (s Status) Purchasable(preOrderCounts bool) bool {
	return s == StatusInStock || (preOrderCounts && s == StatusPreOrder)
}

// TrackedProduct is product page monitored for availability changes.
type TrackedProduct struct {
	Brand string
	URL   string
}

// ProductIdentity identifies product in stock state storage.
type ProductIdentity struct {
	Brand       string
	ProductName string
}

// String returns identity in "brand/product name" form.
func (p ProductIdentity) String() string {
	return p.Brand + "/" + p.ProductName
}

// Key returns case insensitive identity key.
func (p ProductIdentity) Key() string {
	return strings.ToLower(p.Brand) + "::" + strings.ToLower(p.ProductName)
}

// Signal sources.
const (
	SourceButton      = "button"
	SourceLink        = "link"
	SourceInput       = "input"
	SourcePageText    = "page text"
	SourceProductData = "product data"
)

// Signal is single piece of availability evidence found on product page.
type Signal struct {
	// Phrase is matched phrase from phrase list.
	Phrase string
	// Text is visible text of matched element in original case.
	Text string
	// Source is kind of element signal was found in.
	Source string
	// Definitive marks brand declared sold out sentences.
	Definitive bool
}

// String returns human readable evidence.
func (s Signal) String() string {
	if s.Text == "" {
		return fmt.Sprintf("%s: %q", s.Source, s.Phrase)
	}
	return fmt.Sprintf("%s: %s", s.Source, s.Text)
}

// Variant is product variant from structured inventory.
type Variant struct {
	ID        int64
	Title     string
	Price     *string
	Available bool
	Quantity  *int
}

// Inventory is structured inventory snapshot supplied by the brand.
type Inventory struct {
	Variants []Variant
}

// AvailableCount returns number of available variants.
func (i *Inventory) AvailableCount() int {
	if i == nil {
		return 0
	}
	count := 0
	for ix := range i.Variants {
		if i.Variants[ix].Available {
			count++
		}
	}
	return count
}

// Conclusive reports if inventory contains any variants.
func (i *Inventory) Conclusive() bool {
	return i != nil && len(i.Variants) > 0
}

// SignalBundle holds signals from exactly one extraction attempt.
type SignalBundle struct {
	Purchase   []Signal
	PreOrder   []Signal
	Notify     []Signal
	SoldOut    []Signal
	Structured *Inventory
	// Failure is set when extraction failed and bundle is empty.
	Failure error
}

// HasTextSignals reports if any text signal was found.
func (b SignalBundle) HasTextSignals() bool {
	return len(b.Purchase)+len(b.PreOrder)+len(b.Notify)+len(b.SoldOut) > 0
}

// Extraction is result of product page extraction.
type Extraction struct {
	Name   string
	Price  *string
	Bundle SignalBundle
}

// Classification is availability decision for one signal bundle.
type Classification struct {
	Status       Status
	Confidence   float64
	Evidence     []string
	CallToAction *string
}

// StockState is current known availability of a product.
type StockState struct {
	ID                    int64
	Identity              ProductIdentity
	IsInStock             bool
	LastChecked           time.Time
	StockChangeDetectedAt *time.Time
	StockURL              *string
}

// Observation is classified availability of a product at a point in time.
type Observation struct {
	Identity  ProductIdentity
	IsInStock bool
	URL       string
	At        time.Time
}

// TransitionOutcome describes what stock state upsert changed.
type TransitionOutcome struct {
	// Created is set when product was seen for the first time.
	Created bool
	// Restocked is set when stock change timestamp was updated.
	Restocked bool
	// WasInStock is previous availability, nil for new products.
	WasInStock *bool
}

// RestockNotification is pending restock alert created by storage for detected transition.
type RestockNotification struct {
	ID                  int64
	Brand               string
	ProductName         string
	ProductURL          *string
	SubscribersNotified int32
	EmailSent           bool
	SentAt              *time.Time
	CreatedAt           time.Time
}

// RestockPayload is batched notification sent for single brand.
type RestockPayload struct {
	Brand      string           `json:"brand"`
	Products   []PayloadProduct `json:"products"`
	Credential string           `json:"credential"`
}

// PayloadProduct is single product of restock payload.
type PayloadProduct struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Run is monitoring cycle run model.
type Run struct {
	ID                  int
	CreatedAt           time.Time
	FinishedAt          *time.Time
	IsSuccess           *bool
	StatusMessage       *string
	CheckedProducts     *int32
	InStockProducts     *int32
	SkippedProducts     *int32
	FailedProducts      *int32
	RestocksDetected    *int32
	BrandsNotified      *int32
	FailedNotifications *int32
}

// PendingQuery selects undelivered restock notifications.
type PendingQuery struct {
	// CreatedAfter is start of recency window.
	CreatedAfter time.Time
	// Now is current time, claims expired before it are ignored.
	Now time.Time
	// ClaimUntil is time until which selected notifications are reserved for the caller.
	ClaimUntil time.Time
}

// Delivery is outcome of single batch delivery.
type Delivery struct {
	Success bool
	At      time.Time
	// Notified replaces stored subscribers count of delivered notifications when endpoint reported one.
	Notified *int32
}
