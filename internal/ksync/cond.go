package ksync

import (
	"github.com/sysprog21/linmo/internal/list"
	"github.com/sysprog21/linmo/internal/task"
)

// Cond is a condition variable used together with a Mutex the caller
// already holds. The classic lost-wakeup window is closed the same way as
// Mutex: the waiter is linked and marked BLOCKED before the mutex is
// released, so a Signal racing the release still finds it.
type Cond struct {
	lock    SpinLock
	waiters *list.List[*task.Task]
}

// NewCond returns a condition variable with no waiters.
func NewCond() *Cond {
	return &Cond{waiters: list.New[*task.Task]()}
}

// Destroy refuses to retire a condition variable that still has waiters.
func (c *Cond) Destroy() error {
	c.lock.IRQSave()
	defer c.lock.IRQRestore()

	if !c.waiters.Empty() {
		return ErrTaskBusy
	}

	return nil
}

// Wait releases m and blocks self until signaled, re-acquiring m before
// returning. self must own m.
func (c *Cond) Wait(self *task.Task, m *Mutex) error {
	c.lock.IRQSave()
	self.State = task.StateBlocked
	c.waiters.PushBack(self)
	c.lock.IRQRestore()

	if err := m.Unlock(self); err != nil {
		return err
	}

	self.Sched().YieldWhileBlocked(self)

	return m.Lock(self)
}

// TimedWait is Wait with a bound on how long self will wait. m is
// re-acquired before returning whether self was signaled or timed out.
func (c *Cond) TimedWait(self *task.Task, m *Mutex, ticks int) error {
	c.lock.IRQSave()
	self.State = task.StateBlocked
	h := c.waiters.PushBack(self)
	c.lock.IRQRestore()

	if err := m.Unlock(self); err != nil {
		return err
	}

	expired := false
	self.Sched().Delay(self, ticks, func() {
		c.lock.IRQSave()
		c.waiters.Remove(h)
		c.lock.IRQRestore()
		expired = true
	})

	if expired {
		if err := m.Lock(self); err != nil {
			return err
		}

		return ErrTimeout
	}

	// Woken by Signal/Broadcast, which already popped us.
	return m.Lock(self)
}

// Signal wakes one waiter, if any.
func (c *Cond) Signal(self *task.Task) {
	c.lock.IRQSave()
	next, ok := c.waiters.PopFront()
	c.lock.IRQRestore()

	if ok {
		self.Sched().Wake(next)
	}
}

// Broadcast wakes every waiter.
func (c *Cond) Broadcast(self *task.Task) {
	for {
		c.lock.IRQSave()
		next, ok := c.waiters.PopFront()
		c.lock.IRQRestore()

		if !ok {
			return
		}

		self.Sched().Wake(next)
	}
}
