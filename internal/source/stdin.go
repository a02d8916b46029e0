package source

import (
	"bufio"
	"context"
	"io"
	"os"
)

// ReaderSource reads lines from an arbitrary io.Reader until EOF.
type ReaderSource struct {
	r    io.Reader
	name string
}

// NewReaderSource creates a source over any reader. Lines are tagged with
// the given name as their stream.
func NewReaderSource(r io.Reader, name string) *ReaderSource {
	return &ReaderSource{r: r, name: name}
}

// Name returns the source identifier.
func (s *ReaderSource) Name() string {
	return s.name
}

// Start reads lines and returns a channel that closes at EOF.
func (s *ReaderSource) Start(ctx context.Context) (<-chan Line, error) {
	ch := make(chan Line, 256)

	go func() {
		defer close(ch)

		scanner := bufio.NewScanner(s.r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for scanner.Scan() {
			select {
			case ch <- Line{Text: scanner.Text(), Stream: s.name}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}

// NewStdinSource creates a source that reads from os.Stdin (pipe mode).
func NewStdinSource() *ReaderSource {
	return NewReaderSource(os.Stdin, "stdin")
}
