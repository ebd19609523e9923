package scheduler

import "errors"

var (
	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrReconcileFailed is returned when one or more suppliers could not be refreshed
	ErrReconcileFailed = errors.New("rating reconciliation failed")
)
