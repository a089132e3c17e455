// internal/events/scheduler.go
package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Scheduler owns the delayed callbacks and background tasks of one session.
// Everything it starts is stopped or joined by Close.
type Scheduler struct {
	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group
	log    *logrus.Entry

	mu       sync.Mutex
	timers   map[string]*time.Timer
	inflight sync.WaitGroup
	closed   bool
}

// NewScheduler creates a scheduler whose tasks are cancelled with parent or on Close.
func NewScheduler(parent context.Context, log *logrus.Entry) *Scheduler {
	ctx, cancel := context.WithCancel(parent)
	group, gctx := errgroup.WithContext(ctx)
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Scheduler{
		ctx:    gctx,
		cancel: cancel,
		group:  group,
		log:    log,
		timers: make(map[string]*time.Timer),
	}
}

// Context is cancelled when the scheduler closes or a supervised task fails.
func (s *Scheduler) Context() context.Context { return s.ctx }

// Debounce arms fn to run after d under key, stopping any timer already armed
// under the same key. It returns false once the scheduler is closed.
func (s *Scheduler) Debounce(key string, d time.Duration, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	if t, ok := s.timers[key]; ok {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		if s.timers[key] == t {
			delete(s.timers, key)
		}
		s.inflight.Add(1)
		s.mu.Unlock()
		defer s.inflight.Done()
		defer s.recoverPanic("timer " + key)
		fn()
	})
	s.timers[key] = t
	return true
}

// Cancel stops the timer armed under key, if any.
func (s *Scheduler) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[key]; ok {
		t.Stop()
		delete(s.timers, key)
	}
}

// Pending reports whether a timer is armed under key.
func (s *Scheduler) Pending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[key]
	return ok
}

// Go runs task in the background under the scheduler's context.
func (s *Scheduler) Go(name string, task func(ctx context.Context) error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.group.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				s.log.Errorf("task %s panicked: %v", name, r)
				err = fmt.Errorf("task %s panicked: %v", name, r)
			}
		}()
		if err := task(s.ctx); err != nil {
			s.log.WithError(err).Warnf("task %s failed", name)
			return err
		}
		return nil
	})
	return true
}

// Close stops every timer, cancels running tasks and waits for in-flight
// callbacks and tasks to return. It must not be called from inside one of them.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	for key, t := range s.timers {
		t.Stop()
		delete(s.timers, key)
	}
	s.mu.Unlock()

	s.cancel()
	s.inflight.Wait()
	return s.group.Wait()
}

func (s *Scheduler) recoverPanic(what string) {
	if r := recover(); r != nil {
		s.log.Errorf("%s panicked: %v", what, r)
	}
}
