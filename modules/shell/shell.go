package shell

import "sync"

// Shell links task creations to list refreshes through a counter.
// Every creation bumps the counter by one and hands the new value to the
// refresh observers as the trigger.
type Shell struct {
	mu        sync.Mutex
	counter   int64
	observers []func(trigger int64)
}

// New creates a shell with the counter at zero.
func New() *Shell {
	return &Shell{}
}

// OnRefresh registers fn to receive every new trigger value.
func (s *Shell) OnRefresh(fn func(trigger int64)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// NotifyTaskCreated increments the counter and notifies the observers.
func (s *Shell) NotifyTaskCreated() int64 {
	s.mu.Lock()
	s.counter++
	trigger := s.counter
	observers := make([]func(int64), len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(trigger)
	}
	return trigger
}

// Counter returns the current counter value.
func (s *Shell) Counter() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counter
}
