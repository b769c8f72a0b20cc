// Package quote provides the motivational quote shown when a run ends.
// The upstream source is best effort: callers always get a quote back.
package quote

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Quote is a single motivational quote.
type Quote struct {
	Text      string    `json:"text"`
	Author    string    `json:"author"`
	Timestamp time.Time `json:"timestamp"`
}

// Formatted renders the quote as `"text" - author`.
func (q Quote) Formatted() string {
	return fmt.Sprintf("%q - %s", q.Text, q.Author)
}

// Fallback is returned whenever the upstream cannot be reached.
func Fallback(now time.Time) Quote {
	return Quote{
		Text:      "Keep going! You're doing great!",
		Author:    "Escape Room Game",
		Timestamp: now,
	}
}

// ErrMalformed is returned when the upstream body lacks text or author.
var ErrMalformed = errors.New("malformed quote")

// Provider is a remote quote source.
type Provider interface {
	// Fetch retrieves one quote.
	Fetch(ctx context.Context) (*Quote, error)

	// Name returns the provider name (for logging).
	Name() string

	// IsAvailable reports whether the provider is configured.
	IsAvailable() bool
}
