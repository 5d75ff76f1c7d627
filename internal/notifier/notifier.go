// Package notifier defines the outbound notification contract. Adapters
// are fire-and-forget: a failed send is reported to the caller but never
// rolls back the operation that triggered it.
package notifier

import (
	"context"
	"errors"
)

// ErrNotConfigured means the adapter has no credentials. This is a valid
// runtime state, surfaced through Status rather than at startup.
var ErrNotConfigured = errors.New("notifier is not configured")

// Status describes an adapter's readiness. It is queryable over HTTP.
type Status struct {
	Channel    string `json:"channel"`
	Configured bool   `json:"configured"`
	Detail     string `json:"detail,omitempty"`
}

// Notifier sends a message to a destination address (phone number or
// email, depending on the channel).
type Notifier interface {
	Send(ctx context.Context, to, message string) error
	Status() Status
}
