package platform

import (
	"errors"
)

var (
	// ErrAlreadyRunning is returned when monitoring cycle can't be started because previous one is not finished yet.
	ErrAlreadyRunning = errors.New("monitoring cycle already running")
	// ErrPersistence marks stock state write failures. They fail the whole cycle.
	ErrPersistence = errors.New("can't persist stock state")
	// ErrExtraction marks fetch and parse failures of a single product page.
	ErrExtraction = errors.New("can't extract availability signals")
	// ErrDelivery marks failed notification sends.
	ErrDelivery = errors.New("can't deliver notification")
	// ErrUnknownBrand is returned when requested brand is not present in catalog.
	ErrUnknownBrand = errors.New("unknown brand")
)
