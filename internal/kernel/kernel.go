package kernel

import (
	"sync"

	"github.com/sysprog21/linmo/internal/csr"
	"github.com/sysprog21/linmo/internal/ksync"
	"github.com/sysprog21/linmo/internal/log"
	"github.com/sysprog21/linmo/internal/mspace"
	"github.com/sysprog21/linmo/internal/pmp"
	"github.com/sysprog21/linmo/internal/syscall"
	"github.com/sysprog21/linmo/internal/task"
)

// Kernel is the process-wide singleton binding every leaf subsystem
// together: the CSR file, the PMP shadow table, the scheduler, and the
// syscall gate. It also owns the handle registries (mutex/cond/queue)
// that let a syscall number address a synchronization object by a plain
// uint32 instead of a pointer, the way a real ABI must.
type Kernel struct {
	CSR   *csr.File
	PMP   *pmp.Config
	Sched *task.Scheduler
	Gate  *syscall.Gate

	log *log.Logger // Diagnostics sink for Panic; never nil.

	scratch uint32 // Simulated mscratch: 0 in M-mode, kernel stack base in U-mode.

	handles sync.Mutex
	next    uint32
	mutexes map[uint32]*ksync.Mutex
	conds   map[uint32]*ksync.Cond
	queues  map[uint32]*ksync.Queue[uint32]

	spacesMu sync.Mutex
	spaces   map[task.ID]*mspace.Space
}

// OptionFn configures a Kernel during construction, the same
// functional-options shape used to configure drivers and listeners before a
// machine starts running.
type OptionFn func(k *Kernel)

// WithLogger installs l as the Kernel's diagnostics sink, replacing the
// package-default logger New installs.
func WithLogger(l *log.Logger) OptionFn {
	return func(k *Kernel) { k.log = l }
}

// WithGate installs g as the Kernel's syscall dispatch table, replacing the
// standard set New installs. Mainly useful for tests that want a gate with
// only a handful of services registered.
func WithGate(g *syscall.Gate) OptionFn {
	return func(k *Kernel) { k.Gate = g }
}

// New constructs an uninitialized Kernel and applies opts over the default
// configuration. Call Boot before dispatching any trap.
func New(opts ...OptionFn) *Kernel {
	k := &Kernel{
		CSR:     &csr.File{},
		Sched:   task.NewScheduler(),
		Gate:    syscall.NewGate(),
		log:     log.DefaultLogger(),
		mutexes: map[uint32]*ksync.Mutex{},
		conds:   map[uint32]*ksync.Cond{},
		queues:  map[uint32]*ksync.Queue[uint32]{},
		spaces:  map[task.ID]*mspace.Space{},
	}

	for _, opt := range opts {
		opt(k)
	}

	return k
}

// Boot runs the sequence for steady-state entry:
// BSS is implicitly zero (Go zero-values CSR.File and every map at
// construction, so there is no separate zero-fill step); secondary harts
// need no parking since this model only ever runs one hart's worth of
// scheduling; the PMP shadow is primed from the five standard memory
// pools; and the scheduler is booted with appMain, per the adopted boot
// order (idle current before appMain runs, first dispatch yields to the
// highest priority ready task).
func (k *Kernel) Boot(layout pmp.BoardLayout, appMain func()) error {
	k.PMP = pmp.NewConfig(k.CSR)

	if err := k.PMP.InitKernel(layout); err != nil {
		return err
	}

	k.Sched.OnSwitch = k.onSwitch
	k.Sched.Boot(appMain)

	return nil
}

// onSwitch is the scheduler's dispatch hook: it brings the incoming task's
// memory space fully resident before the task's goroutine resumes, the
// concrete call site the flexpage eviction policy otherwise has no one to
// invoke it. Tasks with no assigned space (the idle task, or any task that
// never called AssignSpace) pay nothing.
func (k *Kernel) onSwitch(next *task.Task) {
	k.spacesMu.Lock()
	sp, ok := k.spaces[next.ID]
	k.spacesMu.Unlock()

	if !ok {
		return
	}

	if err := sp.ActivateAll(); err != nil {
		k.Panic(ErrPMPInvalidRegion, 0, 0)
	}
}

// AssignSpace binds t to sp, so every future dispatch of t activates sp's
// flexpages first. A task may be assigned at most one space at a time;
// reassigning replaces the previous binding.
func (k *Kernel) AssignSpace(t *task.Task, sp *mspace.Space) {
	k.spacesMu.Lock()
	defer k.spacesMu.Unlock()

	k.spaces[t.ID] = sp
}

// Scratch returns the simulated mscratch value.
func (k *Kernel) Scratch() uint32 { return k.scratch }

// SetScratch installs a new simulated mscratch value.
func (k *Kernel) SetScratch(v uint32) { k.scratch = v }

// Scheduler satisfies syscall.Context.
func (k *Kernel) Scheduler() *task.Scheduler { return k.Sched }

// Spawn satisfies syscall.Context.
func (k *Kernel) Spawn(entry func(), priority task.Priority) *task.Task {
	return k.Sched.Spawn(entry, priority)
}

func (k *Kernel) allocHandle() uint32 {
	k.handles.Lock()
	defer k.handles.Unlock()

	k.next++

	return k.next
}

// NewMutex creates a mutex and returns the handle a syscall uses to
// address it.
func (k *Kernel) NewMutex() uint32 {
	h := k.allocHandle()

	k.handles.Lock()
	k.mutexes[h] = ksync.NewMutex()
	k.handles.Unlock()

	return h
}

// Mutex resolves a handle to the mutex it names.
func (k *Kernel) Mutex(h uint32) (*ksync.Mutex, bool) {
	k.handles.Lock()
	defer k.handles.Unlock()

	m, ok := k.mutexes[h]

	return m, ok
}

// NewCond creates a condition variable and returns its handle.
func (k *Kernel) NewCond() uint32 {
	h := k.allocHandle()

	k.handles.Lock()
	k.conds[h] = ksync.NewCond()
	k.handles.Unlock()

	return h
}

// Cond resolves a handle to the condition variable it names.
func (k *Kernel) Cond(h uint32) (*ksync.Cond, bool) {
	k.handles.Lock()
	defer k.handles.Unlock()

	c, ok := k.conds[h]

	return c, ok
}

// NewQueue creates a bounded message queue of the given capacity and
// returns its handle.
func (k *Kernel) NewQueue(capacity int) uint32 {
	h := k.allocHandle()

	k.handles.Lock()
	k.queues[h] = ksync.NewQueue[uint32](capacity)
	k.handles.Unlock()

	return h
}

// Queue resolves a handle to the message queue it names.
func (k *Kernel) Queue(h uint32) (*ksync.Queue[uint32], bool) {
	k.handles.Lock()
	defer k.handles.Unlock()

	q, ok := k.queues[h]

	return q, ok
}

// NewSpace creates a memory space bound to this kernel's PMP shadow,
// owning the given hardware region indices.
func (k *Kernel) NewSpace(id uint32, shared bool, regionPool []int) *mspace.Space {
	return mspace.NewSpace(id, shared, k.PMP, regionPool)
}
