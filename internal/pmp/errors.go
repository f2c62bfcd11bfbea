package pmp

import "errors"

var (
	// ErrInvalidRegion is returned when a region index is out of [0,16).
	ErrInvalidRegion = errors.New("pmp: invalid region index")

	// ErrAddrRange is returned when start >= end for a region being set.
	ErrAddrRange = errors.New("pmp: invalid address range")

	// ErrLocked is returned when an operation would mutate a locked
	// region.
	ErrLocked = errors.New("pmp: region is locked")
)
