/*
Package task implements the scheduler collaborator: the currently-running
task pointer and the yield-while-blocked
primitive every synchronization primitive in package ksync relies on to
close the lost-wakeup window.

The real kernel multiplexes a single hart across tasks by saving and
restoring register state at trap boundaries (see package kernel). This
package models the same externally-visible contract — exactly one task
RUNNING at a time, everyone else READY, BLOCKED, or DELAYED — using one Go
goroutine per task and a baton channel that the [Scheduler] hands from the
current task to the next: the goroutine holding the baton is, by
definition, the one and only RUNNING task, so the package gets the single-
hart illusion without reimplementing a context switch in user space.

Ready-queue selection is priority-ordered round-robin with a per-task tick
delay: highest non-empty priority list wins, FIFO within a level.
*/
package task
