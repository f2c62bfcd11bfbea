package ksync

import (
	"github.com/sysprog21/linmo/internal/list"
	"github.com/sysprog21/linmo/internal/task"
)

// Mutex is a non-recursive, FIFO, ownership-transfer mutex: a task that
// blocks in Lock is served in the order it arrived, and when the owner
// calls Unlock the mutex is handed directly to the head of the waiter
// queue rather than reopened to contention.
type Mutex struct {
	lock    SpinLock
	owner   task.ID
	waiters *list.List[*task.Task]
}

// NewMutex returns a free mutex, ready to use. There is no separate Init
// step: construction is initialization.
func NewMutex() *Mutex {
	return &Mutex{waiters: list.New[*task.Task]()}
}

// Destroy refuses to retire a mutex that is held or has waiters.
func (m *Mutex) Destroy() error {
	m.lock.IRQSave()
	defer m.lock.IRQRestore()

	if m.owner != 0 || !m.waiters.Empty() {
		return ErrTaskBusy
	}

	return nil
}

// Lock blocks until self owns the mutex.
func (m *Mutex) Lock(self *task.Task) error {
	m.lock.IRQSave()

	switch m.owner {
	case 0:
		m.owner = self.ID
		m.lock.IRQRestore()

		return nil
	case self.ID:
		m.lock.IRQRestore()

		return ErrTaskBusy
	}

	self.State = task.StateBlocked
	m.waiters.PushBack(self)
	m.lock.IRQRestore()

	self.Sched().YieldWhileBlocked(self)

	return nil
}

// TryLock acquires the mutex only if it is currently free.
func (m *Mutex) TryLock(self *task.Task) error {
	m.lock.IRQSave()
	defer m.lock.IRQRestore()

	if m.owner != 0 {
		return ErrTaskBusy
	}

	m.owner = self.ID

	return nil
}

// TimedLock is Lock with a bound on how long self will wait.
func (m *Mutex) TimedLock(self *task.Task, ticks int) error {
	m.lock.IRQSave()

	switch m.owner {
	case 0:
		m.owner = self.ID
		m.lock.IRQRestore()

		return nil
	case self.ID:
		m.lock.IRQRestore()

		return ErrTaskBusy
	}

	self.State = task.StateBlocked
	h := m.waiters.PushBack(self)
	m.lock.IRQRestore()

	expired := false
	self.Sched().Delay(self, ticks, func() {
		m.lock.IRQSave()
		m.waiters.Remove(h)
		m.lock.IRQRestore()
		expired = true
	})

	if expired {
		return ErrTimeout
	}

	// Woken by Unlock, which already popped us and transferred ownership.
	return nil
}

// Unlock releases the mutex. If a task is waiting, ownership transfers to
// it directly and it is returned to READY; it never re-contends for the
// mutex.
func (m *Mutex) Unlock(self *task.Task) error {
	m.lock.IRQSave()

	if m.owner != self.ID {
		m.lock.IRQRestore()

		return ErrNotOwner
	}

	next, ok := m.waiters.PopFront()
	if !ok {
		m.owner = 0
		m.lock.IRQRestore()

		return nil
	}

	m.owner = next.ID
	m.lock.IRQRestore()

	self.Sched().Wake(next)

	return nil
}
