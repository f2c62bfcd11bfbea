package kernel

import (
	"github.com/sysprog21/linmo/internal/trapframe"
)

// Mode is the privilege level a trap was taken from.
type Mode uint8

const (
	ModeM Mode = iota
	ModeU
)

// Standard mcause values this dispatcher recognizes. Bit 31 set means
// interrupt; the low bits are the specific cause. Only the subset this
// kernel handles is enumerated — anything else escalates to Panic.
const (
	causeInterruptBit = 1 << 31

	interruptSoftware = 3
	interruptTimer    = 7
	interruptExternal = 11

	causeEcallFromU = 8
)

// Entry builds a trapframe.Frame the way the (unimplementable in pure Go)
// assembly trap vector would: by copying the interrupted context's
// general registers and CSR snapshot into the fixed 34-word layout. regs
// holds the 30 saved general-purpose registers in Frame order (RA..T6);
// sp is the interrupted context's stack pointer as observed at entry —
// under mode ModeU this is the value recovered via the scratch-register
// swap (see package doc), under ModeM it is whatever the kernel's own
// stack pointer already was.
//
// Because this is a model with no literal memory to corrupt, a garbage sp
// (as when a U-mode task smashes its own stack pointer) is carried
// through into the frame untouched and never
// dereferenced — proving the isolation property the scenario tests for
// is, at this level of the model, structural: Dispatch never treats SP as
// an address.
func (k *Kernel) Entry(mode Mode, regs [30]uint32, sp, cause, epc, status uint32) *trapframe.Frame {
	var f trapframe.Frame

	for i := 0; i < 30; i++ {
		f.SetReg(i, regs[i])
	}

	f[trapframe.Cause] = cause
	f[trapframe.EPC] = epc
	f[trapframe.Status] = status
	f[trapframe.SP] = sp

	// mode only informs callers' bookkeeping (SetScratch/Scratch on the
	// board layer) about which restore path to take; the frame itself is
	// laid out identically either way.
	return &f
}

// Exit reverses Entry: it returns the general registers, stack pointer,
// and epc a restore sequence would reload from f, for whichever mode
// f.Status says to return to.
func (k *Kernel) Exit(f *trapframe.Frame) (regs [30]uint32, sp, epc uint32) {
	for i := 0; i < 30; i++ {
		regs[i] = f.Reg(i)
	}

	return regs, f[trapframe.SP], f[trapframe.EPC]
}

// Dispatch is the C-level trap dispatcher: it decides, from f's saved
// cause, whether to drive the scheduler's timer tick, route an
// environment call to the syscall gate, or escalate to Panic.
// The mutated frame is returned for symmetry with Entry/Exit; this model
// never needs to "switch" which frame is returned; task-to-task switching
// happens inside package task's own goroutine scheduler, not by handing
// back a different stack here.
func (k *Kernel) Dispatch(f *trapframe.Frame) *trapframe.Frame {
	cause := f[trapframe.Cause]

	if cause&causeInterruptBit != 0 {
		switch cause &^ causeInterruptBit {
		case interruptTimer:
			k.Sched.Tick()
		case interruptSoftware, interruptExternal:
			// No software or external interrupt source is modeled;
			// acknowledged and otherwise ignored.
		}

		return f
	}

	if cause == causeEcallFromU {
		self := k.Sched.Current()
		num := f.Reg(trapframe.SyscallNum)
		a0 := f.Reg(trapframe.Arg0)
		a1 := f.Reg(trapframe.Arg1)
		a2 := f.Reg(trapframe.Arg2)

		result := k.Gate.Dispatch(k, self, num, a0, a1, a2)

		f.SetReg(trapframe.Result, result)
		f[trapframe.EPC] += 4 // Skip past the ecall instruction.

		return f
	}

	k.Panic(ErrUnknown, cause, f[trapframe.EPC])

	return f // Unreached: Panic does not return.
}

// Panic escalates a terminal kernel fault. It never returns to the
// faulting context; modeled here as an actual Go panic so that control
// genuinely does not come back —
// callers that need to observe a panic in a test use recover.
func (k *Kernel) Panic(code, cause, pc uint32) {
	k.log.Error("kernel panic", "code", code, "cause", cause, "pc", pc)
	panic(&PanicError{Code: code, Cause: cause, PC: pc})
}

// Invoke is the call path application task code actually uses: rather
// than encode a full ecall trap (meaningless without a real CPU to trap
// from), a task goroutine calls Invoke directly. It builds a synthetic
// frame carrying (num, a0, a1, a2) exactly as a real ecall trap would have
// populated a7/a0/a1/a2, runs it through the same Dispatch a hardware trap
// would take, and returns just the result register — the part of the
// frame a user task's ABI actually exposes.
func (k *Kernel) Invoke(num, a0, a1, a2 uint32) uint32 {
	var regs [30]uint32

	f := k.Entry(ModeU, regs, 0, causeEcallFromU, 0, 0)
	f.SetReg(trapframe.SyscallNum, num)
	f.SetReg(trapframe.Arg0, a0)
	f.SetReg(trapframe.Arg1, a1)
	f.SetReg(trapframe.Arg2, a2)

	k.Dispatch(f)

	return f.Reg(trapframe.Result)
}
