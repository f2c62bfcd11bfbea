package ksync

import "sync"

// SpinLock guards one subsystem's short critical sections: a waiter-list
// push/pop and a state bit flip: each subsystem owns one spinlock, held
// with interrupts disabled. On
// real hardware this is spin_lock_irqsave/spin_unlock_irqrestore; here,
// where there is no second hart to spin against and "interrupts" are
// simulated by the cooperative scheduler never preempting mid-critical-
// section, a plain mutex gives the same mutual exclusion against the one
// concurrent hazard that exists: another goroutine-backed task calling
// into the same primitive.
type SpinLock struct {
	mu sync.Mutex
}

// IRQSave acquires the lock.
func (l *SpinLock) IRQSave() { l.mu.Lock() }

// IRQRestore releases the lock.
func (l *SpinLock) IRQRestore() { l.mu.Unlock() }
