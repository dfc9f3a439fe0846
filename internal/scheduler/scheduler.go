// Package scheduler fires posting slots according to cron expressions.
package scheduler

import (
	"container/heap"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// slotParser supports standard 5-field cron expressions and descriptors
// like @daily.
var slotParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// slotEntry is one scheduled slot in the heap.
type slotEntry struct {
	name     string
	expr     string
	schedule cron.Schedule
	nextRun  time.Time
}

// slotHeap is a min-heap of slot entries ordered by nextRun.
type slotHeap []slotEntry

func (h slotHeap) Len() int           { return len(h) }
func (h slotHeap) Less(i, j int) bool { return h[i].nextRun.Before(h[j].nextRun) }
func (h slotHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *slotHeap) Push(x any)        { *h = append(*h, x.(slotEntry)) }
func (h *slotHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// Scheduler runs posting slots from a min-heap with a single timer
// goroutine. Slots are registered before Start and stay fixed for the
// life of the process.
type Scheduler struct {
	mu    sync.Mutex
	heap  slotHeap
	timer *time.Timer
	done  chan struct{}
	wg    sync.WaitGroup
	fire  func(slot string)
	reset chan struct{} // signals the goroutine to re-read the timer
}

// NewScheduler creates a Scheduler that calls fire when a slot is due.
func NewScheduler(fire func(slot string)) *Scheduler {
	return &Scheduler{
		fire:  fire,
		done:  make(chan struct{}),
		reset: make(chan struct{}, 1),
	}
}

// AddSlot registers a slot with the given cron expression. Registering
// an existing name replaces its schedule.
func (s *Scheduler) AddSlot(name, expr string) error {
	schedule, err := slotParser.Parse(expr)
	if err != nil {
		return fmt.Errorf("parse schedule for slot %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.heap {
		if e.name == name {
			heap.Remove(&s.heap, i)
			break
		}
	}
	heap.Push(&s.heap, slotEntry{
		name:     name,
		expr:     expr,
		schedule: schedule,
		nextRun:  schedule.Next(time.Now()),
	})
	s.resetTimerLocked()
	return nil
}

// NextRunTime returns the next fire time for the named slot.
func (s *Scheduler) NextRunTime(name string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.heap {
		if e.name == name {
			return e.nextRun, true
		}
	}
	return time.Time{}, false
}

// SlotInfo describes one registered slot.
type SlotInfo struct {
	Name     string    `json:"name"`
	Schedule string    `json:"schedule"`
	NextRun  time.Time `json:"next_run"`
}

// Slots returns all registered slots sorted by name.
func (s *Scheduler) Slots() []SlotInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]SlotInfo, 0, len(s.heap))
	for _, e := range s.heap {
		infos = append(infos, SlotInfo{Name: e.name, Schedule: e.expr, NextRun: e.nextRun})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// Start launches the scheduler goroutine.
func (s *Scheduler) Start() {
	s.mu.Lock()
	// Create a stopped timer; resetTimerLocked sets the real deadline.
	s.timer = time.NewTimer(0)
	if !s.timer.Stop() {
		<-s.timer.C
	}
	s.resetTimerLocked()
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run()
}

// Stop signals the scheduler goroutine to exit and waits for it.
func (s *Scheduler) Stop() {
	close(s.done)
	s.wg.Wait()
}

func (s *Scheduler) run() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			s.mu.Lock()
			s.timer.Stop()
			s.mu.Unlock()
			return
		case <-s.reset:
			// Timer was reset externally; loop back to wait on the
			// updated timer.
			continue
		case <-s.timer.C:
			s.mu.Lock()
			if s.heap.Len() == 0 {
				s.mu.Unlock()
				continue
			}

			now := time.Now()
			e := s.heap[0]

			if e.nextRun.After(now) {
				// Spurious wake; reset and wait again.
				s.resetTimerLocked()
				s.mu.Unlock()
				continue
			}

			heap.Pop(&s.heap)
			name := e.name
			e.nextRun = e.schedule.Next(now)
			heap.Push(&s.heap, e)
			s.resetTimerLocked()
			s.mu.Unlock()

			s.fire(name)
		}
	}
}

// resetTimerLocked resets the timer to the earliest entry's nextRun.
// Caller must hold s.mu. Safe to call before Start (timer may be nil).
func (s *Scheduler) resetTimerLocked() {
	if s.timer == nil {
		return
	}
	s.timer.Stop()
	if s.heap.Len() == 0 {
		return
	}
	d := time.Until(s.heap[0].nextRun)
	if d < 0 {
		d = 0
	}
	s.timer.Reset(d)

	select {
	case s.reset <- struct{}{}:
	default:
	}
}
