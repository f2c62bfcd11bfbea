package task

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/sysprog21/linmo/internal/list"
)

// Scheduler holds the ready queues, the delayed-task registry, and the
// baton that is handed from the currently running task to the next. The
// kernel holds one instance and calls its methods directly; it is a
// constructible type so tests can run several independent schedulers in
// parallel.
type Scheduler struct {
	mu sync.Mutex

	ready   [NumPriority]*list.List[*Task]
	delayed *list.List[*delayWaiter]

	tasks  map[ID]*Task
	nextID ID

	current *Task

	// Preempt, when true, makes Tick hand the baton to the highest
	// priority ready task even if the current task is not blocked: the
	// "if preemption is enabled, pick the next runnable task" half of
	// the timer-tick contract.
	Preempt bool

	// OnSwitch, if set, is called with the task about to be dispatched
	// every time the scheduler picks a new current task, before that
	// task's goroutine resumes. This is the scheduler's only concession
	// to memory management: it stays policy-agnostic about what the
	// hook does (package kernel uses it to activate the dispatched
	// task's flexpages against the PMP), it just guarantees the hook
	// runs once per dispatch, from the dispatching goroutine, with no
	// scheduler lock held.
	OnSwitch func(next *Task)

	wg sync.WaitGroup
}

func (s *Scheduler) dispatched(t *Task) {
	if s.OnSwitch != nil && t != nil {
		s.OnSwitch(t)
	}
}

// delayWaiter pairs a delayed task with the callback that fires if its
// delay expires before something else wakes it. The callback lets a
// ksync primitive unlink its own waiter-list entry at the exact moment of
// expiry — the scheduler's generic delayed registry knows nothing about
// which primitive-owned list, if any, a task is linked into, so it cannot
// do that unlinking itself.
type delayWaiter struct {
	task      *Task
	onTimeout func()
}

// NewScheduler creates an empty scheduler. Call Boot to seed the idle task
// and start application tasks.
func NewScheduler() *Scheduler {
	s := &Scheduler{
		tasks:   make(map[ID]*Task),
		delayed: list.New[*delayWaiter](),
	}

	for i := range s.ready {
		s.ready[i] = list.New[*Task]()
	}

	return s
}

// Current returns the task the scheduler considers RUNNING.
func (s *Scheduler) Current() *Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current
}

// Lookup returns the task registered under id, if any.
func (s *Scheduler) Lookup(id ID) (*Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]

	return t, ok
}

// Spawn creates a new task running entry at the given priority, in state
// READY, and returns its control block. The task's goroutine is started
// immediately but will not execute entry until the scheduler hands it the
// baton.
func (s *Scheduler) Spawn(entry func(), priority Priority) *Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.spawnLocked(entry, priority, true)
}

func (s *Scheduler) spawnLocked(entry func(), priority Priority, countForWait bool) *Task {
	s.nextID++

	t := &Task{
		ID:       s.nextID,
		Priority: priority,
		State:    StateReady,
		entry:    entry,
		sched:    s,
		baton:    make(chan struct{}),
		exit:     make(chan struct{}),
	}

	s.tasks[t.ID] = t
	s.ready[priority].PushBack(t)

	if countForWait {
		s.wg.Add(1)
	}

	go t.run()

	return t
}

// Boot seeds the idle task as current before appMain runs, runs appMain
// synchronously to let it spawn application tasks, then performs the first
// dispatch into idle — which immediately yields to the highest priority
// ready task.
func (s *Scheduler) Boot(appMain func()) {
	s.mu.Lock()
	idle := s.spawnLocked(nil, PriorityIdle, false)
	idle.entry = func() {
		for {
			s.Yield(idle)
			// Nothing else was runnable. A real board would execute
			// WFI here; yield the host thread instead of spinning
			// it hot so an external timer driver (or a test calling
			// Tick directly) gets a chance to run.
			runtime.Gosched()
		}
	}
	s.current = idle
	s.mu.Unlock()

	appMain()

	idle.State = StateRunning
	idle.baton <- struct{}{}
}

// Wait blocks until every non-idle task spawned so far has finished.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// enqueueReady is called with s.mu held.
func (s *Scheduler) enqueueReady(t *Task) {
	t.State = StateReady
	s.ready[t.Priority].PushBack(t)
}

// popReady selects the next task to run: highest non-empty priority level,
// FIFO within the level. Returns nil if every queue is empty (should not
// happen in steady state since idle is always ready or running).
func (s *Scheduler) popReady() *Task {
	for pl := int(NumPriority) - 1; pl >= 0; pl-- {
		if t, ok := s.ready[pl].PopFront(); ok {
			return t
		}
	}

	return nil
}

// handoff gives the baton to next and blocks self's goroutine until the
// scheduler hands the baton back to it. Must be called without s.mu held.
func (s *Scheduler) handoff(self, next *Task) {
	next.baton <- struct{}{}
	<-self.baton
}

// Yield voluntarily gives up the remainder of self's turn. self is
// returned to READY and appended to its priority's ready queue, and the
// next runnable task (which may be self again, if nothing else is ready)
// is dispatched.
func (s *Scheduler) Yield(self *Task) {
	s.mu.Lock()
	s.enqueueReady(self)

	next := s.popReady()
	if next == nil {
		next = self
	}

	next.State = StateRunning
	s.current = next
	s.mu.Unlock()

	s.dispatched(next)

	if next != self {
		s.handoff(self, next)
	}
}

// YieldWhileBlocked is the primitive every blocking synchronization call in
// package ksync uses. The caller must already have transitioned self to
// StateBlocked and linked it into whatever waiter list it is blocking on
// before calling this — the lost-wakeup window is closed by that ordering,
// not by anything in this function. Returns once some other code path
// (Wake, or a timer tick via Tick) makes self READY again and the
// scheduler dispatches it.
func (s *Scheduler) YieldWhileBlocked(self *Task) {
	s.mu.Lock()

	next := s.popReady()
	if next == nil {
		panic("task: no runnable task (idle must never block)")
	}

	next.State = StateRunning
	s.current = next
	s.mu.Unlock()

	s.dispatched(next)
	s.handoff(self, next)
}

// Wake transitions a BLOCKED task to READY and enqueues it, without
// dispatching it immediately. The task runs the next time the scheduler
// picks a task to run (the next Yield, YieldWhileBlocked, or Tick).
func (s *Scheduler) Wake(t *Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.State != StateBlocked {
		return
	}

	s.cancelDelayLocked(t)
	s.enqueueReady(t)
}

// Delay registers self as blocked with a pending timeout of ticks. The
// caller must set self.State = StateBlocked (and link self into its own
// waiter list) before calling this, exactly as for YieldWhileBlocked, of
// which this is a convenience wrapper. If the delay elapses before
// anything else wakes self (see Wake), onTimeout runs synchronously,
// still under the scheduler's lock, right after self is made READY and
// before any other task can dispatch it — so by the time self's goroutine
// resumes and inspects its own state, any
// cleanup onTimeout performed (such as unlinking self from a mutex's
// waiter list) is already visible to it. onTimeout may be nil.
func (s *Scheduler) Delay(self *Task, ticks int, onTimeout func()) {
	s.mu.Lock()
	self.Delay = ticks
	h := s.delayed.PushBack(&delayWaiter{task: self, onTimeout: onTimeout})
	self.delayHandle = h
	s.mu.Unlock()

	s.YieldWhileBlocked(self)
}

// cancelDelayLocked removes t from the delayed registry, if present. Must
// be called with s.mu held.
func (s *Scheduler) cancelDelayLocked(t *Task) {
	if t.delayHandle != list.None {
		s.delayed.Remove(t.delayHandle)
		t.delayHandle = list.None
		t.Delay = 0
	}
}

// Tick drives one timer interrupt's worth of scheduling work: every
// delayed task's tick counter is decremented in a single pass, and any
// that reach zero are woken. If Preempt is set, the function also performs
// a voluntary-style yield of the current task afterwards, which is the
// "if preemption is enabled, pick the next runnable task" half of the
// contract; the caller (package kernel's trap dispatcher) invokes Tick
// from within the timer ISR path.
func (s *Scheduler) Tick() {
	s.mu.Lock()

	var woken []*delayWaiter

	s.delayed.Each(func(_ list.Handle, w *delayWaiter) bool {
		w.task.Delay--
		if w.task.Delay <= 0 {
			woken = append(woken, w)
		}

		return true
	})

	for _, w := range woken {
		s.cancelDelayLocked(w.task)
		s.enqueueReady(w.task)

		if w.onTimeout != nil {
			w.onTimeout()
		}
	}

	current := s.current
	preempt := s.Preempt
	s.mu.Unlock()

	if preempt && current != nil {
		s.Yield(current)
	}
}

// finish is called by a task's goroutine after its entry function returns.
// It marks the task DONE and, since a finished task's goroutine is about
// to exit and can no longer hand off the baton itself, dispatches whatever
// the scheduler picks next — exactly like Yield, except there is no
// self to return to.
func (s *Scheduler) finish(t *Task) {
	s.mu.Lock()
	t.State = StateDone
	isIdle := t.Priority == PriorityIdle
	next := s.popReady()

	if next != nil {
		next.State = StateRunning
		s.current = next
	} else {
		s.current = nil
	}

	s.mu.Unlock()

	if next != nil {
		s.dispatched(next)
		next.baton <- struct{}{}
	}

	if !isIdle {
		s.wg.Done()
	}
}

// Kill removes a task that has not yet run (still READY) from scheduling.
// It cannot forcibly unwind a task that is already executing — Go has no
// safe mechanism to do that to an arbitrary goroutine — so killing a
// RUNNING task returns ErrTaskRunning; the task must instead observe
// cancellation on its own and return from its entry function.
func (s *Scheduler) Kill(t *Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch t.State {
	case StateDone:
		return nil
	case StateReady:
		s.ready[t.Priority].Each(func(h list.Handle, v *Task) bool {
			if v == t {
				s.ready[t.Priority].Remove(h)
				return false
			}

			return true
		})

		s.cancelDelayLocked(t)
		t.State = StateDone

		if t.Priority != PriorityIdle {
			s.wg.Done()
		}

		return nil
	default:
		return fmt.Errorf("%w: task %d is %s", ErrTaskRunning, t.ID, t.State)
	}
}
