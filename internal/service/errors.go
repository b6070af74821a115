package service

import (
	"context"
	"errors"
	"time"
)

// ActionScheduler enqueues a deferred action inside the caller's transaction.
// The production implementation is scheduler.Store.
type ActionScheduler interface {
	Enqueue(ctx context.Context, action string, fireAt time.Time, payload any) error
}

// Service-level error taxonomy. Handlers map these to HTTP statuses; anything
// else is a persistence or downstream failure and surfaces as a 500.
var (
	// ErrValidation marks a request rejected before any mutation.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a missing request, entry set, or delegate.
	ErrNotFound = errors.New("not found")
)
