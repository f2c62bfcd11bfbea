// Package syscall implements the kernel's environment-call dispatch
// table: a fixed-size array of handlers indexed by syscall number, the
// same opcode-indexed dispatch shape an instruction decoder uses,
// generalized from instruction opcode to syscall number.
//
// Handlers never import package kernel — that would cycle, since kernel
// is what routes ecalls into this package. Instead a handler receives a
// [Context], a narrow interface kernel.Kernel satisfies, exposing only
// the scheduler and the synchronization-object registries a syscall
// needs to touch.
package syscall

import (
	"errors"

	"github.com/sysprog21/linmo/internal/ksync"
	"github.com/sysprog21/linmo/internal/task"
)

// Context is everything a Handler may touch. kernel.Kernel implements
// this; tests can supply a lighter fake.
type Context interface {
	Scheduler() *task.Scheduler

	Spawn(entry func(), priority task.Priority) *task.Task

	NewMutex() uint32
	Mutex(handle uint32) (*ksync.Mutex, bool)

	NewCond() uint32
	Cond(handle uint32) (*ksync.Cond, bool)

	NewQueue(capacity int) uint32
	Queue(handle uint32) (*ksync.Queue[uint32], bool)
}

// Handler services one syscall number. The return value is written
// verbatim into the frame's result register (a0): syscall failures are
// reported as a result value, not a Go error, so a Handler never returns
// one; ErrOK/ErrFail/etc (package kernel) are just small uint32 result
// values a handler packs by convention.
type Handler func(ctx Context, self *task.Task, a0, a1, a2 uint32) uint32

// Numbers assigned to each registered service. These are this
// implementation's own assignment, not a reverse-engineered ABI: the
// dispatcher contract is the binding surface, not any particular numbering.
const (
	SysYield = iota
	SysTaskSpawn
	SysTaskKill
	SysTaskID
	SysSleep
	SysMutexCreate
	SysMutexLock
	SysMutexTryLock
	SysMutexUnlock
	SysCondCreate
	SysCondWait
	SysCondSignal
	SysCondBroadcast
	SysMQCreate
	SysMQSend
	SysMQRecv
	SysMQPeek

	NumSyscalls = 256
)

// Gate is the syscall dispatch table: Dispatch looks up the handler for
// num and invokes it, mirroring the ecall-from-U-mode contract.
type Gate struct {
	handlers [NumSyscalls]Handler
}

// NewGate returns a Gate with every standard service registered.
func NewGate() *Gate {
	g := &Gate{}
	registerStandard(g)

	return g
}

// Register installs h as the handler for syscall number num, replacing
// any previous registration. Mainly useful for tests that want to stub a
// single service.
func (g *Gate) Register(num uint32, h Handler) {
	g.handlers[num] = h
}

// Dispatch invokes the handler registered for num, or returns ErrUnknown
// if none is registered.
func (g *Gate) Dispatch(ctx Context, self *task.Task, num, a0, a1, a2 uint32) uint32 {
	if int(num) >= len(g.handlers) || g.handlers[num] == nil {
		return ErrUnknown
	}

	return g.handlers[num](ctx, self, a0, a1, a2)
}

// Result codes a Handler packs into its return value. Package kernel
// reuses these same constants for Panic so the two vocabularies never
// drift apart.
const (
	ErrOK = iota
	ErrFail
	ErrTimeout
	ErrTaskBusy
	ErrNotOwner
	ErrSemOperation
	ErrMQNotEmpty
	ErrPMPInvalidRegion
	ErrPMPAddrRange
	ErrPMPLocked
	ErrNoTasks
	ErrUnknown
)

// CodeFromError maps a sentinel error returned by package ksync, pmp, or
// task to the result code a Handler should report. Unrecognized errors
// map to ErrFail, the generic "expected failure" code.
func CodeFromError(err error) uint32 {
	switch {
	case err == nil:
		return ErrOK
	case errors.Is(err, ksync.ErrTimeout):
		return ErrTimeout
	case errors.Is(err, ksync.ErrTaskBusy):
		return ErrTaskBusy
	case errors.Is(err, ksync.ErrNotOwner):
		return ErrNotOwner
	case errors.Is(err, ksync.ErrQueueFull), errors.Is(err, ksync.ErrQueueEmpty):
		return ErrMQNotEmpty
	default:
		return ErrFail
	}
}
