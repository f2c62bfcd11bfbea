package task

import (
	"fmt"

	"github.com/sysprog21/linmo/internal/list"
)

// Priority is a task's scheduling priority. Higher numeric values run
// first, in priority-ordered round-robin.
type Priority uint8

// Priority levels. PriorityIdle is reserved for the scheduler's idle task
// and is never assigned to an application task.
const (
	PriorityIdle Priority = iota
	PriorityLow
	PriorityNormal
	PriorityHigh
	NumPriority
)

func (p Priority) String() string {
	switch p {
	case PriorityIdle:
		return "IDLE"
	case PriorityLow:
		return "LOW"
	case PriorityNormal:
		return "NORMAL"
	case PriorityHigh:
		return "HIGH"
	default:
		return fmt.Sprintf("PL(%d)", uint8(p))
	}
}

// State is a task's scheduling state.
type State uint8

const (
	StateInvalid State = iota
	StateReady
	StateRunning
	StateBlocked
	StateDone
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "READY"
	case StateRunning:
		return "RUNNING"
	case StateBlocked:
		return "BLOCKED"
	case StateDone:
		return "DONE"
	default:
		return "INVALID"
	}
}

// ID uniquely identifies a task. ID 0 is reserved to mean "no task", the
// same convention a mutex uses for its free owner field.
type ID uint16

// Task is the kernel's control block for one schedulable unit of
// execution.
type Task struct {
	ID       ID
	Priority Priority
	State    State
	Delay    int // Remaining timer ticks before an automatic wake.

	entry func()
	sched *Scheduler

	baton chan struct{} // Signaled by the scheduler to let this task run.
	exit  chan struct{} // Closed when the task's entry function returns.

	delayHandle list.Handle // Handle into the scheduler's delayed list, or list.None.
}

// Sched returns the scheduler a task belongs to, so package ksync can call
// back into Yield/YieldWhileBlocked/Wake/Delay without the caller having to
// thread a *Scheduler through every function signature alongside the task.
func (t *Task) Sched() *Scheduler { return t.sched }

func (t *Task) String() string {
	return fmt.Sprintf("task{id:%d pl:%s state:%s delay:%d}", t.ID, t.Priority, t.State, t.Delay)
}

// run is the goroutine body backing every task. It waits its turn for the
// baton, executes the task's entry function to completion, then tells the
// scheduler it is done and never asks for the baton again.
func (t *Task) run() {
	<-t.baton

	if t.entry != nil {
		t.entry()
	}

	close(t.exit)
	t.sched.finish(t)
}
