// Package supervisor owns the stage list and the shared stop flag, and
// orchestrates start/stop/join exactly as spec.md §4.2 describes: start
// launches every stage worker on its own goroutine, stop sets the shared
// cancellation and lets transports/sentinel-propagation drain the chain,
// and join blocks until every worker has exited.
package supervisor

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Runnable is anything a supervisor can start as a stage worker: its own
// goroutine loop that returns when it has drained its shutdown sentinel
// (or the context is cancelled).
type Runnable interface {
	Run(ctx context.Context) error
}

// Supervisor holds the stage list and the shared stop flag (a cancellable
// context, per SPEC_FULL §4: Go's idiomatic cancellation primitive doubles
// as the process-wide boolean described in spec.md §3).
type Supervisor struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	stages []Runnable
	wg     sync.WaitGroup
	errs   []error
}

// New creates a supervisor deriving its stop flag from parent.
func New(parent context.Context) *Supervisor {
	ctx, cancel := context.WithCancel(parent)
	return &Supervisor{ctx: ctx, cancel: cancel}
}

// Context returns the shared stop-flag context; stages select on
// ctx.Done() at their processing boundaries.
func (s *Supervisor) Context() context.Context {
	return s.ctx
}

// Add registers a stage to be launched by Start. Call before Start.
func (s *Supervisor) Add(r Runnable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stages = append(s.stages, r)
}

// Start launches every registered stage on its own goroutine, in
// registration order (the order is not semantically significant — each
// stage only interacts with its own input/output queues).
func (s *Supervisor) Start() {
	s.mu.Lock()
	stages := append([]Runnable(nil), s.stages...)
	s.mu.Unlock()

	for _, st := range stages {
		st := st
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := st.Run(s.ctx); err != nil {
				s.mu.Lock()
				s.errs = append(s.errs, err)
				s.mu.Unlock()
				logrus.WithError(err).Error("stage exited with error")
			}
		}()
	}
}

// Stop sets the stop flag. Callers that also need a sentinel injected at
// the head of the chain (e.g. after an external interrupt, rather than a
// transport-detected disconnect) should Put a sentinel on the head queue
// themselves before or after calling Stop; either order is safe because
// every stage treats "sentinel observed" and "ctx cancelled at a
// boundary" identically.
func (s *Supervisor) Stop() {
	s.cancel()
}

// Join blocks until every stage worker has exited.
func (s *Supervisor) Join() []error {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errs
}
