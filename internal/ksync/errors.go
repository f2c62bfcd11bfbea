package ksync

import "errors"

var (
	// ErrTaskBusy is returned by Lock/TryLock/TimedLock when the caller
	// already owns the mutex (non-recursive), and by Destroy when the
	// primitive still has an owner or waiters.
	ErrTaskBusy = errors.New("ksync: resource busy")

	// ErrNotOwner is returned by Unlock when the caller does not own the
	// mutex.
	ErrNotOwner = errors.New("ksync: caller does not own mutex")

	// ErrTimeout is returned by TimedLock/TimedWait when the delay
	// elapsed before the primitive was signaled.
	ErrTimeout = errors.New("ksync: timed out")

	// ErrQueueFull is returned by Enqueue when the queue has no free
	// slots.
	ErrQueueFull = errors.New("ksync: queue full")

	// ErrQueueEmpty is returned by Dequeue and Peek when the queue has
	// nothing buffered.
	ErrQueueEmpty = errors.New("ksync: queue empty")
)
