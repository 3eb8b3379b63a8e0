package utils

import (
	"sync"
	"time"
)

// WorkerPool bounds how many order-book walks run at once. Each job prices one
// type id; job starts can be spaced out to stay under the ESI error budget.
type WorkerPool struct {
	slots    chan struct{}
	interval time.Duration
	jobs     sync.WaitGroup

	startMu   sync.Mutex
	lastStart time.Time
}

// NewWorkerPool allows maxWorkers jobs at a time, starting at most one job
// every rateLimitMs milliseconds (0 disables spacing).
func NewWorkerPool(maxWorkers, rateLimitMs int) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &WorkerPool{
		slots:    make(chan struct{}, maxWorkers),
		interval: time.Duration(max(rateLimitMs, 0)) * time.Millisecond,
	}
}

// Size is the number of jobs that may run at once.
func (wp *WorkerPool) Size() int {
	return cap(wp.slots)
}

// Submit blocks until a slot frees up, then runs job in its own goroutine.
func (wp *WorkerPool) Submit(job func()) {
	wp.jobs.Add(1)
	wp.slots <- struct{}{}

	go func() {
		defer wp.jobs.Done()
		defer func() { <-wp.slots }()

		wp.waitTurn()
		job()
	}()
}

// Wait returns once every submitted job has finished.
func (wp *WorkerPool) Wait() {
	wp.jobs.Wait()
}

// waitTurn holds startMu while sleeping so starts stay serialized.
func (wp *WorkerPool) waitTurn() {
	if wp.interval == 0 {
		return
	}
	wp.startMu.Lock()
	defer wp.startMu.Unlock()

	if wait := wp.interval - time.Since(wp.lastStart); wait > 0 {
		time.Sleep(wait)
	}
	wp.lastStart = time.Now()
}

// StringSet is a thread-safe set that remembers insertion order.
type StringSet struct {
	mu    sync.RWMutex
	seen  map[string]struct{}
	order []string
}

// NewStringSet creates an empty StringSet.
func NewStringSet() *StringSet {
	return &StringSet{seen: make(map[string]struct{})}
}

// Add returns true if s was newly added, false if already present.
func (s *StringSet) Add(v string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.seen[v]; exists {
		return false
	}
	s.seen[v] = struct{}{}
	s.order = append(s.order, v)
	return true
}

// Contains returns true if v has already been added.
func (s *StringSet) Contains(v string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.seen[v]
	return exists
}

// Size returns the number of unique values tracked.
func (s *StringSet) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seen)
}

// Values returns the unique values in first-added order.
func (s *StringSet) Values() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
