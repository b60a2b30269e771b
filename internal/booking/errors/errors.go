package errors

import "errors"

var (
	// ErrRetriesExhausted means every search-and-reserve cycle lost the
	// compare-and-swap race within the configured attempt limit.
	ErrRetriesExhausted = errors.New("slot reservation retries exhausted")

	// ErrNotSatisfied guards Confirm and Cancel against being called on
	// a booking result that holds no slots.
	ErrNotSatisfied = errors.New("booking result holds no slots")
)
