package mspace

import "errors"

var (
	// ErrNoFreeRegion is returned when Activate cannot find any hardware
	// region to evict — every region in the pool is held by a resident
	// KERNEL-priority flexpage, whatever the priority of the page being
	// activated.
	ErrNoFreeRegion = errors.New("mspace: no evictable hardware region")

	// ErrNotResident is returned when Evict is called on a flexpage that
	// holds no hardware region.
	ErrNotResident = errors.New("mspace: flexpage is not resident")
)
