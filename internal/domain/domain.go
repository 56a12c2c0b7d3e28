// Package domain holds the immutable value objects passed between use cases
// and capability providers.
package domain

import "errors"

var (
	ErrEmptyShare         = errors.New("share request has neither text nor url")
	ErrInvalidShareURL    = errors.New("share request url must be absolute http(s)")
	ErrInvalidHealthRange = errors.New("health query range is empty or inverted")
	ErrUnknownTier        = errors.New("unknown subscription tier")
	ErrInvalidPresence    = errors.New("unknown presence state")
)
