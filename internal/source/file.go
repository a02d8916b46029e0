package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// pollInterval is how often a followed file is re-checked for appended lines.
const pollInterval = time.Second

// FileSource reads solver log lines from a file. Pre-existing content is
// emitted with Replayed set; when follow is true, the source then polls for
// appended lines once per second indefinitely.
type FileSource struct {
	path   string
	follow bool
}

// NewFileSource creates a source that reads from a file.
func NewFileSource(path string, follow bool) *FileSource {
	return &FileSource{
		path:   path,
		follow: follow,
	}
}

// Name returns the source identifier.
func (s *FileSource) Name() string {
	return fmt.Sprintf("file:%s", s.path)
}

// Start opens the file and returns a channel of lines.
func (s *FileSource) Start(ctx context.Context) (<-chan Line, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open file %s: %w", s.path, err)
	}

	ch := make(chan Line, 256)

	go func() {
		defer close(ch)
		defer f.Close()

		reader := bufio.NewReader(f)

		// Drain existing content.
		replayed := true
		var pending strings.Builder

		for {
			chunk, err := reader.ReadString('\n')

			if err == nil {
				pending.WriteString(chunk)
				line := strings.TrimSuffix(pending.String(), "\n")
				pending.Reset()

				select {
				case ch <- Line{Text: line, Stream: "file", Replayed: replayed}:
				case <-ctx.Done():
					return
				}
				continue
			}

			if err != io.EOF {
				return
			}

			// Hold a partial trailing line until its newline arrives.
			pending.WriteString(chunk)

			if !s.follow {
				if pending.Len() > 0 {
					select {
					case ch <- Line{Text: pending.String(), Stream: "file", Replayed: replayed}:
					case <-ctx.Done():
					}
				}
				return
			}

			// First EOF ends the replay phase.
			replayed = false

			select {
			case <-ctx.Done():
				return
			case <-time.After(pollInterval):
			}
		}
	}()

	return ch, nil
}

// WaitForFile blocks until the path exists, polling at 1 Hz. notice is
// invoked once if the file is initially absent. Returns early on context
// cancellation.
func WaitForFile(ctx context.Context, path string, notice func(path string)) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if notice != nil {
		notice(path)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
		if _, err := os.Stat(path); err == nil {
			return nil
		}
	}
}
