/*
Package trapframe defines the fixed-layout register frame the trap entry
sequence builds on every exception or interrupt and the dispatcher reads
and updates in place.

[Frame] is 34 words: 30 general registers (RA through T6) followed by
Cause, EPC, Status, and the saved stack pointer. Every trap path writes
all 34 words, and the frame's size is fixed at compile time rather than
derived from any summary description of it.
*/
package trapframe
