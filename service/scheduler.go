package service

import (
	"sync"
	"time"
)

// Scheduler runs one periodic task per lobby. Tasks do not share a clock
// and never wait on each other.
type Scheduler struct {
	tasks map[string]*task
	sync.Mutex
}

type task struct {
	stop chan struct{}
	once sync.Once
}

func (t *task) halt() {
	t.once.Do(func() { close(t.stop) })
}

func NewScheduler() *Scheduler {
	return &Scheduler{tasks: make(map[string]*task)}
}

// Start runs fn every period until Stop is called for id. It returns false
// if a task for id is already running.
func (s *Scheduler) Start(id string, period time.Duration, fn func()) bool {
	s.Lock()
	defer s.Unlock()
	if _, ok := s.tasks[id]; ok {
		return false
	}
	t := &task{stop: make(chan struct{})}
	s.tasks[id] = t
	go t.run(period, fn)
	return true
}

// Stop cancels the task for id. Stopping an unknown or stopped task is a no-op.
func (s *Scheduler) Stop(id string) {
	s.Lock()
	t, ok := s.tasks[id]
	delete(s.tasks, id)
	s.Unlock()
	if ok {
		t.halt()
	}
}

func (s *Scheduler) StopAll() {
	s.Lock()
	tasks := s.tasks
	s.tasks = make(map[string]*task)
	s.Unlock()
	for _, t := range tasks {
		t.halt()
	}
}

func (s *Scheduler) Running(id string) bool {
	s.Lock()
	defer s.Unlock()
	_, ok := s.tasks[id]
	return ok
}

func (t *task) run(period time.Duration, fn func()) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			select {
			case <-t.stop:
				return
			default:
			}
			fn()
		}
	}
}
