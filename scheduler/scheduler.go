/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package scheduler is the Cooperative Scheduler collaborator of spec
// §4.5 (component C5): a single-goroutine run loop that round-robins a
// bounded number of in-flight driver tasks, pulling new work from a
// priority queue and retaining, for later inspection, one error per
// request that terminated in Error (the request itself is not kept).
package scheduler

import (
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/nabbar/netreq/driver"
	liberr "github.com/nabbar/netreq/errors"
	"github.com/nabbar/netreq/errors/pool"
	libatm "github.com/nabbar/netreq/atomic"
	"github.com/nabbar/netreq/log"
	"github.com/nabbar/netreq/request"
	"github.com/nabbar/netreq/socket"
)

type flightEntry struct {
	req *request.Request
	drv *driver.Driver
}

// Scheduler is the cooperative, priority-ordered request processor of
// spec §4.5.
type Scheduler struct {
	mu  sync.Mutex
	cfg Config
	log log.Logger

	sem *semaphore.Weighted

	pending  pendingQueue
	inFlight map[string]*flightEntry

	errs pool.Pool

	working libatm.Value[bool]
	paused  libatm.Value[bool]

	exit exitList

	wake chan struct{}
	done chan struct{}
}

// New builds a Scheduler from cfg, rejecting it up front with
// ErrorInvalidConfig if cfg fails validation.
func New(cfg Config, logger log.Logger) (*Scheduler, liberr.Error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = log.Default()
	}

	s := &Scheduler{
		cfg:      cfg,
		log:      logger,
		sem:      semaphore.NewWeighted(int64(cfg.ActiveRequestsLimit)),
		inFlight: make(map[string]*flightEntry),
		errs:     pool.New(),
		wake:     make(chan struct{}, 1),
	}

	s.working = libatm.NewValue[bool]()
	s.paused = libatm.NewValue[bool]()

	return s, nil
}

// Start launches the run loop in its own goroutine. Returns
// ErrorAlreadyRunning if the scheduler is already started.
func (s *Scheduler) Start() liberr.Error {
	s.mu.Lock()
	if s.working.Load() {
		s.mu.Unlock()
		return ErrorAlreadyRunning.Errorf()
	}
	s.working.Store(true)
	s.paused.Store(false)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go s.run()
	return nil
}

// Stop requests the run loop to exit; exit callbacks fire once it
// actually does (spec §4.5).
func (s *Scheduler) Stop() {
	s.working.Store(false)
	s.nudge()
}

// Wait blocks until the run loop has exited and fired its exit callbacks.
func (s *Scheduler) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Pause stops the run loop from issuing further step() calls without
// touching in-flight or queued requests (spec §4.5: scheduler-level
// pause).
func (s *Scheduler) Pause() {
	s.paused.Store(true)
}

// Resume clears a scheduler-level pause.
func (s *Scheduler) Resume() {
	s.paused.Store(false)
	s.nudge()
}

// IsWorking reports whether the run loop is active.
func (s *Scheduler) IsWorking() bool { return s.working.Load() }

// IsPaused reports whether the scheduler is paused.
func (s *Scheduler) IsPaused() bool { return s.paused.Load() }

// OnExit registers fn to be called, in registration order, when the run
// loop exits.
func (s *Scheduler) OnExit(fn ExitFunc) *ExitHandle {
	return s.exit.subscribe(fn)
}

// Errors returns every error recorded for a request that terminated in
// the Error status, retained for inspection (spec §4.5).
func (s *Scheduler) Errors() []error {
	return s.errs.Slice()
}

// ActiveCount returns the number of in-flight driver tasks.
func (s *Scheduler) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inFlight)
}

// PendingCount returns the number of requests still waiting in the
// priority queue.
func (s *Scheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending.len()
}

// AddRequest enqueues r according to its priority (spec §4.5). If the
// scheduler is not running, r is failed immediately with
// ErrorNotRunning, matching spec's "set r's error to
// SCHEDULER_NOT_RUNNING and return".
func (s *Scheduler) AddRequest(r *request.Request) liberr.Error {
	if !s.working.Load() {
		_ = r.AsDriver().SetError(ErrorNotRunning)
		return ErrorNotRunning.Errorf()
	}

	s.mu.Lock()
	s.pending.push(r)
	s.mu.Unlock()

	s.nudge()
	return nil
}

// SetActiveRequestsLimit adjusts the concurrency cap N. Only permitted
// while stopped, since golang.org/x/sync/semaphore.Weighted cannot be
// resized in place; this mirrors the rest of the codebase's
// configure-before-start idiom (request.Request's setters reject changes
// after submission the same way).
func (s *Scheduler) SetActiveRequestsLimit(n int) liberr.Error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.working.Load() {
		return ErrorAlreadyRunning.Errorf()
	}
	if n < 1 {
		return ErrorInvalidConfig.Errorf()
	}

	s.cfg.ActiveRequestsLimit = n
	s.sem = semaphore.NewWeighted(int64(n))
	return nil
}

func (s *Scheduler) nudge() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) sleep() {
	t := time.NewTimer(s.cfg.TickInterval)
	defer t.Stop()
	select {
	case <-t.C:
	case <-s.wake:
	}
}

func (s *Scheduler) run() {
	defer close(s.done)

	for {
		if !s.working.Load() {
			s.exit.fire()
			return
		}

		if s.paused.Load() {
			s.sleep()
			continue
		}

		s.mu.Lock()
		idle := s.pending.empty() && len(s.inFlight) == 0
		s.mu.Unlock()

		if idle {
			s.sleep()
			continue
		}

		s.fill()
		s.stepAll()
	}
}

// fill pulls up to N-in_flight highest-priority requests off the queue
// and constructs a driver task per request (spec §4.5).
func (s *Scheduler) fill() {
	for {
		if !s.sem.TryAcquire(1) {
			return
		}

		s.mu.Lock()
		r, ok := s.pending.pop()
		s.mu.Unlock()

		if !ok {
			s.sem.Release(1)
			return
		}

		r.AsDriver().MarkSubmitted()
		d := driver.New(r, socket.New(), s.cfg.FrameMax, s.log)

		s.mu.Lock()
		s.inFlight[r.UUID()] = &flightEntry{req: r, drv: d}
		s.mu.Unlock()
	}
}

// stepAll iterates the in-flight list once, calling each task's step()
// (spec §4.5); finished tasks are removed and release their semaphore
// slot. For each request that terminated in Error, an error built from
// its error code is added to the error pool; the request is not kept.
func (s *Scheduler) stepAll() {
	s.mu.Lock()
	entries := make([]*flightEntry, 0, len(s.inFlight))
	for _, e := range s.inFlight {
		entries = append(entries, e)
	}
	s.mu.Unlock()

	for _, e := range entries {
		if e.drv.Step() != driver.Done {
			continue
		}

		s.mu.Lock()
		delete(s.inFlight, e.req.UUID())
		s.mu.Unlock()
		s.sem.Release(1)

		if e.req.Status() == request.Error {
			s.errs.Add(e.req.Error().Errorf())
		}
	}
}
