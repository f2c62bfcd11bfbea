/*
Package kernel wires the leaf collaborators — csr, pmp, task, ksync, and
syscall — into the single process-wide control block, the kernel
singleton: boot sequencing, the trap entry/exit contract, and the
C-level trap dispatcher that routes interrupts to the scheduler and
environment calls to the syscall gate.

This is a host-language model of a bare-metal kernel, not bare-metal code
itself: there is no real RISC-V hart underneath, no literal register file
belonging to a CPU, and no stack-pointer swap a debugger could observe.
[Kernel.Entry] and [Kernel.Exit] take and return the values a real trap
vector would have saved and restored — general registers, mcause, mepc,
mstatus, the interrupted stack pointer — as plain Go values, so the frame
layout and dispatch contract are exercised precisely without requiring an
assembler. Task-to-task context switching itself is
delegated entirely to package task's goroutine-and-baton scheduler; Entry
and Exit model the single-task trap path (what happens between a trap and
the syscall/interrupt handler it dispatches to), not a second, competing
context-switch mechanism.
*/
package kernel
