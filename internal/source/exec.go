package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// ExecSource runs a solver command and streams its stdout and stderr.
// HiGHS writes its iteration log to stdout, but warnings and some status
// lines land on stderr, so both are monitored.
type ExecSource struct {
	command string
	args    []string
}

// NewExecSource creates a source that runs the given command with arguments.
func NewExecSource(command string, args []string) *ExecSource {
	return &ExecSource{
		command: command,
		args:    args,
	}
}

// Name returns the source identifier.
func (s *ExecSource) Name() string {
	return fmt.Sprintf("exec:%s", s.command)
}

// Start executes the command and returns a channel of lines.
// The channel is closed when the command exits or ctx is cancelled.
func (s *ExecSource) Start(ctx context.Context) (<-chan Line, error) {
	cmd := exec.CommandContext(ctx, s.command, s.args...)

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}

	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start command: %w", err)
	}

	ch := make(chan Line, 256)
	var wg sync.WaitGroup
	wg.Add(2)

	go s.readStream(ctx, "stdout", stdoutPipe, ch, &wg)
	go s.readStream(ctx, "stderr", stderrPipe, ch, &wg)

	go func() {
		wg.Wait()
		_ = cmd.Wait()
		close(ch)
	}()

	return ch, nil
}

// readStream reads lines from a pipe and sends them to the channel.
func (s *ExecSource) readStream(ctx context.Context, stream string, r io.ReadCloser, ch chan<- Line, wg *sync.WaitGroup) {
	defer wg.Done()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		select {
		case ch <- Line{Text: scanner.Text(), Stream: stream}:
		case <-ctx.Done():
			return
		}
	}
}
