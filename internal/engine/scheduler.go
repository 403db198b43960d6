package engine

import (
	"sync"
	"time"
)

// Token identifies a scheduled action and allows it to be voided.
type Token interface {
	// Cancel prevents the action from running. It reports whether the
	// action was still pending.
	Cancel() bool
}

// Scheduler runs deferred actions. Schedule must not invoke fn synchronously.
type Scheduler interface {
	Schedule(delay time.Duration, fn func()) Token
}

// TimerScheduler runs actions on runtime timers.
type TimerScheduler struct{}

// Schedule implements Scheduler.
func (TimerScheduler) Schedule(delay time.Duration, fn func()) Token {
	return timerToken{timer: time.AfterFunc(delay, fn)}
}

type timerToken struct {
	timer *time.Timer
}

func (t timerToken) Cancel() bool {
	return t.timer.Stop()
}

// ManualScheduler queues actions until the owner drains them with RunPending.
// Delays are recorded but not waited on; the owner decides when time has passed.
type ManualScheduler struct {
	mu    sync.Mutex
	tasks []*manualTask
}

type manualTask struct {
	owner *ManualScheduler
	delay time.Duration
	fn    func()
	done  bool
}

// Schedule implements Scheduler.
func (s *ManualScheduler) Schedule(delay time.Duration, fn func()) Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	task := &manualTask{owner: s, delay: delay, fn: fn}
	s.tasks = append(s.tasks, task)
	return task
}

// Pending returns the number of queued actions that have not been cancelled.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, task := range s.tasks {
		if !task.done {
			count++
		}
	}
	return count
}

// RunPending runs every queued action that was not cancelled and returns how
// many ran. Actions scheduled while draining are kept for the next call.
func (s *ManualScheduler) RunPending() int {
	s.mu.Lock()
	tasks := s.tasks
	s.tasks = nil
	runnable := make([]func(), 0, len(tasks))
	for _, task := range tasks {
		if task.done {
			continue
		}
		task.done = true
		runnable = append(runnable, task.fn)
	}
	s.mu.Unlock()

	for _, fn := range runnable {
		fn()
	}
	return len(runnable)
}

func (t *manualTask) Cancel() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	return true
}
