/*
Package ksync implements the kernel's blocking synchronization primitives:
a FIFO ownership-transfer mutex, a condition variable, and a bounded
message queue, plus the spinlock that serializes access to each
primitive's own state.

Every primitive follows the same shape:
take the spinlock, mutate the waiter list and task state together, release
the spinlock, then — only for the blocking operations — hand control back
to the scheduler via [task.Scheduler.YieldWhileBlocked] or
[task.Scheduler.Delay]. Doing the state transition to BLOCKED and the
waiter-list insertion before releasing the spinlock is what closes the
lost-wakeup window: a concurrent Unlock or Signal cannot run until the
spinlock is released, by which point the waiter is already somewhere a
waker will find it.

A timed wait's caller is handed back from [task.Scheduler.Delay] either
because something woke it explicitly (Unlock/Signal popped it off the
waiter list) or because its delay expired on a timer tick. Each primitive
distinguishes the two through the onTimeout callback it passes to Delay:
on expiry the scheduler runs that callback under its lock, and the
callback unlinks the caller from the primitive's waiter list and records
that the wait timed out, which the caller checks once it resumes.
*/
package ksync
