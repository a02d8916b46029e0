// Package source defines the Source interface and implementations for
// solver log input.
package source

import (
	"context"
)

// Line is one raw line of solver output.
type Line struct {
	Text   string
	Stream string // file, stdin, stdout, stderr
	// Replayed marks lines drained from pre-existing file content. The
	// pipeline accumulates them into history without reporting.
	Replayed bool
}

// Source reads solver output and emits raw lines on a channel.
// Implementations must close the returned channel when the source is
// exhausted or the context is cancelled.
type Source interface {
	// Start begins reading from the source. The returned channel receives
	// lines until the source is exhausted or ctx is cancelled.
	// The implementation must close the channel when done.
	Start(ctx context.Context) (<-chan Line, error)

	// Name returns a human-readable identifier for this source.
	Name() string
}
