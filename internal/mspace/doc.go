/*
Package mspace implements flexpages and memory spaces: the per-task
protection currency layered on top of package pmp's sixteen hardware
slots.

A [Flexpage] describes one contiguous physical range together with its
access rights and eviction priority; a [Space] owns a set of flexpages
and, independently, the subset of them currently resident in a hardware
PMP slot. Because there are usually more flexpages than hardware regions,
[Space.Activate] evicts the least valuable resident flexpage — by
priority first, then by least-recently-used — to make room for the new
one: a region-ownership-by-map idiom generalized from "fixed device
table" to "evictable region set".
*/
package mspace
