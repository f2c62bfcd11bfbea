/*
Package pmp models the RISC-V Physical Memory Protection unit in
Top-Of-Range (TOR) mode: up to 16 hardware regions, each covering
[previous region's end, this region's end) once installed.

The shadow [Config] is the single source of truth a caller reads back from
GetRegion; every mutating operation writes the CSR-shaped configuration and
address bytes first (via package csr's bit-packing helpers) and only
updates the shadow after that write would have succeeded on real hardware,
so shadow and hardware configuration never observably diverge — a
validate-then-commit discipline: SetRegion checks the region index, that
start is below end, and that the slot is not locked before installing
anything. Overlap between regions is not checked.
*/
package pmp
