/*
Package csr provides typed accessors for the RV32 machine-mode control and
status registers the kernel depends on: mstatus, mie, mip, mcause, mepc,
mscratch, mtvec, pmpcfg0..3, pmpaddr0..15, and mhartid.

Real hardware encodes the CSR index directly in the csrrw/csrrs/csrrc
instruction, so a runtime implementation of "read CSR N" is naturally a
dispatch over an integer. Rather than emulate that with a large runtime
switch, each CSR is given a constant index and the [File] type holds one
machine word per register as a plain exported field. A jump table
([File.Read], [File.Write]) serves the call sites that must address a
register by a number they didn't choose at compile time — in this
repository, the PMP engine's pmpcfg/pmpaddr writes (e.g. "pmpaddr" +
region index).
*/
package csr
