package service

import (
	apperrors "github.com/spec-kit/asset-desk/pkg/util/errorutil"
)

const (
	// DefaultPageLimit applies when the caller sends no limit.
	DefaultPageLimit = 50
	// MaxPageLimit caps any requested page.
	MaxPageLimit = 500
	// PendingTicketsLimit bounds the administrator pending queue.
	PendingTicketsLimit = 500
	// SpecificationListLimit bounds catalog listings.
	SpecificationListLimit = 1000
)

// Page is a normalized limit/skip pair.
type Page struct {
	Limit int
	Skip  int
}

// NormalizePage applies the default and maximum limit. A negative skip is a
// validation error.
func NormalizePage(limit, skip int) (Page, error) {
	if skip < 0 {
		return Page{}, apperrors.NewValidationError("skip must be zero or positive", map[string]any{"skip": skip})
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return Page{Limit: limit, Skip: skip}, nil
}
