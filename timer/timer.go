// timer/timer.go
package timer

import (
	"container/heap"
	"sync"
	"time"
)

const tickInterval = 100 * time.Millisecond

// task is one scheduled callback. every > 0 makes it periodic.
type task struct {
	id    int64
	at    time.Time
	every time.Duration
	fn    func()
}

// taskHeap orders tasks by their next run time.
type taskHeap []*task

func (h taskHeap) Len() int           { return len(h) }
func (h taskHeap) Less(i, j int) bool { return h[i].at.Before(h[j].at) }

func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *taskHeap) Push(x any) {
	*h = append(*h, x.(*task))
}

func (h *taskHeap) Pop() any {
	old := *h
	t := old[len(old)-1]
	old[len(old)-1] = nil
	*h = old[:len(old)-1]
	return t
}

// TimerManager runs delayed and periodic callbacks, each on its own
// goroutine so a slow callback never holds up the schedule.
type TimerManager struct {
	tasks    taskHeap
	mutex    sync.Mutex
	nextID   int64
	stopChan chan struct{}
	stopOnce sync.Once
}

func NewTimerManager() *TimerManager {
	m := newManager()
	go m.process()
	return m
}

func newManager() *TimerManager {
	return &TimerManager{
		nextID:   1,
		stopChan: make(chan struct{}),
	}
}

// AddTimer schedules callback after delay, then every interval if interval > 0.
func (m *TimerManager) AddTimer(delay time.Duration, interval time.Duration, callback func()) int64 {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	t := &task{
		id:    m.nextID,
		at:    time.Now().Add(delay),
		every: interval,
		fn:    callback,
	}
	m.nextID++

	heap.Push(&m.tasks, t)
	return t.id
}

// Every runs callback now and then every interval.
func (m *TimerManager) Every(interval time.Duration, callback func()) int64 {
	return m.AddTimer(0, interval, callback)
}

// Len is the number of pending tasks.
func (m *TimerManager) Len() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.tasks.Len()
}

func (m *TimerManager) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
}

func (m *TimerManager) process() {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			for _, fn := range m.due(now) {
				go fn()
			}
		case <-m.stopChan:
			return
		}
	}
}

// due pops every task whose time has come and reschedules periodic ones.
func (m *TimerManager) due(now time.Time) []func() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	var ready []func()
	for m.tasks.Len() > 0 && !m.tasks[0].at.After(now) {
		t := heap.Pop(&m.tasks).(*task)
		ready = append(ready, t.fn)

		if t.every > 0 {
			t.at = now.Add(t.every)
			heap.Push(&m.tasks, t)
		}
	}
	return ready
}
