// Package perception talks to the external reasoning providers. Every
// provider satisfies Reasoner; the vendor is chosen once, in NewReasoner.
package perception

import (
	"context"
	"errors"
	"time"
)

// Reasoner submits one fully built instruction and returns the raw text the
// provider produced. Implementations make a single network call bounded by a
// fixed timeout and never retry.
type Reasoner interface {
	Submit(ctx context.Context, instruction string) (string, error)
}

// DefaultTimeout bounds one provider call.
const DefaultTimeout = 30 * time.Second

// Temperature used for every call; low values keep the JSON envelope stable.
const temperature = 0.3

// ErrNoProvider is returned by NewReasoner when no credential is configured.
var ErrNoProvider = errors.New("no reasoning provider configured (set GROQ_API_KEY or GEMINI_API_KEY)")

// withTimeout applies d unless ctx already carries an earlier deadline.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= d {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
