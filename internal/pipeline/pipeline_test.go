package pipeline

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MaykThewessen/highsmon/internal/metrics"
	"github.com/MaykThewessen/highsmon/internal/monitor"
	"github.com/MaykThewessen/highsmon/internal/report"
	"github.com/MaykThewessen/highsmon/internal/source"
)

// recordingReporter captures everything reported for assertions.
type recordingReporter struct {
	events    []*monitor.Event
	summaries []*monitor.Summary
	flushed   bool
	closed    bool
}

func (r *recordingReporter) Report(ev *monitor.Event) error {
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingReporter) Summary(s *monitor.Summary) error {
	r.summaries = append(r.summaries, s)
	return nil
}

func (r *recordingReporter) Flush() error { r.flushed = true; return nil }
func (r *recordingReporter) Close() error { r.closed = true; return nil }
func (r *recordingReporter) Name() string { return "recording" }

// A run that converges fast enough to stay warning-free, so only
// iterations divisible by ten produce reports.
const sampleLog = `Running HiGHS 1.6.0
      5  9.500000e+02  1.000000e-01  1.000000e-01
     10  9.200000e+02  1.000000e-02  1.000000e-02
     15  9.000000e+02  1.000000e-03  1.000000e-03
     20  8.950000e+02  1.000000e-04  1.000000e-04
     25  8.920000e+02  1.000000e-05  1.000000e-05
     30  8.900000e+02  1.000000e-06  1.000000e-06
Model   status      : Optimal
     99  0.000000e+00  1.000000e+00  1.000000e+00
`

func TestRunReportsEveryTenthIteration(t *testing.T) {
	mon := monitor.New(monitor.Config{})
	rec := &recordingReporter{}

	err := Run(context.Background(), &Config{
		Source:    source.NewReaderSource(strings.NewReader(sampleLog), "test"),
		Monitor:   mon,
		Reporters: []report.Reporter{rec},
	})
	require.NoError(t, err)

	iterations := make([]int, 0, len(rec.events))
	for _, ev := range rec.events {
		iterations = append(iterations, ev.Metrics.Iteration)
	}
	assert.Equal(t, []int{10, 20, 30}, iterations)

	// Processing stops at the terminal status line; the trailing record
	// after it never enters the history.
	require.Len(t, rec.summaries, 1)
	assert.Equal(t, metrics.StatusOptimal, rec.summaries[0].Status)
	assert.Equal(t, 30, rec.summaries[0].TotalIterations)
	assert.True(t, rec.flushed)
	assert.True(t, rec.closed)
}

func TestRunReportsOnWarnings(t *testing.T) {
	mon := monitor.New(monitor.Config{})
	rec := &recordingReporter{}

	// A record above the blowup threshold warns regardless of iteration.
	log := "      3  1.000000e+03  5.000000e+11  1.000000e+00\n"
	err := Run(context.Background(), &Config{
		Source:    source.NewReaderSource(strings.NewReader(log), "test"),
		Monitor:   mon,
		Reporters: []report.Reporter{rec},
	})
	require.NoError(t, err)

	require.Len(t, rec.events, 1)
	assert.Equal(t, 3, rec.events[0].Metrics.Iteration)
	assert.Contains(t, rec.events[0].Warnings, "Very large infeasibilities detected - possible numerical issues")
}

func TestRunPrimesReplayedLines(t *testing.T) {
	mon := monitor.New(monitor.Config{})
	rec := &recordingReporter{}

	err := Run(context.Background(), &Config{
		Source:    replaySource{lines: []string{"     10  9.200000e+02  1.000000e-02  1.000000e-02"}},
		Monitor:   mon,
		Reporters: []report.Reporter{rec},
	})
	require.NoError(t, err)

	// Replayed content fills history but is never reported.
	assert.Empty(t, rec.events)
	assert.Equal(t, 1, mon.History().Len())
}

func TestRunCancellationReachesSummary(t *testing.T) {
	mon := monitor.New(monitor.Config{})
	rec := &recordingReporter{}

	// A pipe that never reaches EOF stands in for a quiet stdin: the
	// source goroutine stays blocked reading, so only cancellation can
	// end the run.
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, &Config{
			Source:    source.NewReaderSource(pr, "test"),
			Monitor:   mon,
			Reporters: []report.Reporter{rec},
		})
	}()

	_, err := pw.Write([]byte("     10  9.200000e+02  1.000000e-02  1.000000e-02\n"))
	require.NoError(t, err)

	// Wait for the record to be accepted before interrupting.
	require.Eventually(t, func() bool {
		return mon.History().Len() == 1
	}, 5*time.Second, 10*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancellation")
	}

	require.Len(t, rec.summaries, 1)
	assert.Equal(t, 10, rec.summaries[0].TotalIterations)
	assert.True(t, rec.closed)
}

func TestRunRequiresSourceAndMonitor(t *testing.T) {
	err := Run(context.Background(), &Config{Monitor: monitor.New(monitor.Config{})})
	assert.Error(t, err)

	err = Run(context.Background(), &Config{Source: source.NewReaderSource(strings.NewReader(""), "test")})
	assert.Error(t, err)
}

func TestRunEmptySourceSynthesizesSummary(t *testing.T) {
	mon := monitor.New(monitor.Config{})
	rec := &recordingReporter{}

	err := Run(context.Background(), &Config{
		Source:    source.NewReaderSource(strings.NewReader("no metrics here\n"), "test"),
		Monitor:   mon,
		Reporters: []report.Reporter{rec},
	})
	require.NoError(t, err)

	require.Len(t, rec.summaries, 1)
	assert.Equal(t, metrics.StatusRunning, rec.summaries[0].Status)
	assert.Zero(t, rec.summaries[0].TotalIterations)
}

// replaySource emits fixed lines tagged as replayed content.
type replaySource struct {
	lines []string
}

func (s replaySource) Name() string { return "replay" }

func (s replaySource) Start(ctx context.Context) (<-chan source.Line, error) {
	ch := make(chan source.Line, len(s.lines))
	for _, l := range s.lines {
		ch <- source.Line{Text: l, Stream: "replay", Replayed: true}
	}
	close(ch)
	return ch, nil
}
