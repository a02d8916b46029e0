// Package buffer provides the bounded metrics history for the monitor.
package buffer

import (
	"sync"

	"github.com/MaykThewessen/highsmon/internal/metrics"
)

// Ring is a fixed-capacity circular buffer of SolverMetrics records.
// When full, the oldest records are silently evicted.
// All operations are goroutine-safe.
type Ring struct {
	mu       sync.RWMutex
	records  []metrics.SolverMetrics
	head     int // next write position
	count    int // current number of records
	capacity int
	dropped  uint64 // total evicted records
}

// NewRing creates a ring buffer with the given capacity.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = 50
	}
	return &Ring{
		records:  make([]metrics.SolverMetrics, capacity),
		capacity: capacity,
	}
}

// Push adds a record to the ring buffer. If full, the oldest record is evicted.
func (r *Ring) Push(m metrics.SolverMetrics) {
	r.mu.Lock()
	r.records[r.head] = m
	r.head = (r.head + 1) % r.capacity
	if r.count < r.capacity {
		r.count++
	} else {
		r.dropped++
	}
	r.mu.Unlock()
}

// Snapshot returns a copy of all buffered records in arrival order.
func (r *Ring) Snapshot() []metrics.SolverMetrics {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]metrics.SolverMetrics, r.count)
	if r.count < r.capacity {
		copy(result, r.records[:r.count])
	} else {
		// Buffer is full: read from head (oldest) to end, then from start to head.
		start := r.head % r.capacity
		n := copy(result, r.records[start:])
		copy(result[n:], r.records[:start])
	}
	return result
}

// Tail returns a copy of the most recent n records in arrival order.
// If fewer than n records are buffered, all of them are returned.
func (r *Ring) Tail(n int) []metrics.SolverMetrics {
	all := r.Snapshot()
	if n >= len(all) {
		return all
	}
	return all[len(all)-n:]
}

// Oldest returns the earliest buffered record, or nil when empty.
func (r *Ring) Oldest() *metrics.SolverMetrics {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.count == 0 {
		return nil
	}
	if r.count < r.capacity {
		m := r.records[0]
		return &m
	}
	m := r.records[r.head%r.capacity]
	return &m
}

// Latest returns the most recent buffered record, or nil when empty.
func (r *Ring) Latest() *metrics.SolverMetrics {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.count == 0 {
		return nil
	}
	m := r.records[(r.head-1+r.capacity)%r.capacity]
	return &m
}

// Len returns the current number of records in the buffer.
func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}

// Dropped returns the total number of evicted records.
func (r *Ring) Dropped() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dropped
}

// Cap returns the buffer capacity.
func (r *Ring) Cap() int {
	return r.capacity
}
