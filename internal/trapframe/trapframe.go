package trapframe

// NumWords is the fixed size of a Frame, in 32-bit words.
const NumWords = 34

// Frame is the fixed-layout register save area the trap entry sequence
// writes on every exception or interrupt. Index constants below name each
// slot; Frame itself is just the flat array so that the eventual assembly
// entry stub and this Go model agree on layout byte-for-byte.
type Frame [NumWords]uint32

// General-purpose register slots, in save order. There is no slot for x0
// (hardwired zero) or for the stack pointer, x2 — the interrupted
// context's SP is reconstructed from the pre-swap value or the scratch
// register (see package kernel's Entry) and lives at SP instead.
const (
	RA = iota
	GP
	TP
	T0
	T1
	T2
	S0
	S1
	A0
	A1
	A2
	A3
	A4
	A5
	A6
	A7
	S2
	S3
	S4
	S5
	S6
	S7
	S8
	S9
	S10
	S11
	T3
	T4
	T5
	T6

	Cause  // Trap cause (mcause).
	EPC    // Exception/interrupt PC (mepc).
	Status // Saved mstatus.
	SP     // Saved stack pointer of the interrupted context.
)

// Syscall argument/result slots, named for readability at call sites in
// package syscall: a7 carries the syscall number, a0..a2 the arguments,
// and the dispatcher overwrites A0 with the result before returning.
const (
	SyscallNum = A7
	Arg0       = A0
	Arg1       = A1
	Arg2       = A2
	Result     = A0
)

// Reg returns the value saved at general-purpose register slot idx (one
// of the named constants RA..T6).
func (f *Frame) Reg(idx int) uint32 { return f[idx] }

// SetReg stores v at general-purpose register slot idx.
func (f *Frame) SetReg(idx int, v uint32) { f[idx] = v }
