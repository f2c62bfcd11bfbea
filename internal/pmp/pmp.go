package pmp

import (
	"fmt"

	"github.com/sysprog21/linmo/internal/csr"
)

// NumRegions is the hardware's fixed PMP region count.
const NumRegions = 16

// Priority ranks a region's eligibility for eviction when hardware slots
// run out: a higher Priority value is more eligible. KERNEL regions are
// never evicted while the kernel is live.
type Priority uint8

const (
	PriorityKernel Priority = iota
	PriorityStack
	PriorityShared
	PriorityTemporary
)

func (p Priority) String() string {
	switch p {
	case PriorityKernel:
		return "KERNEL"
	case PriorityStack:
		return "STACK"
	case PriorityShared:
		return "SHARED"
	case PriorityTemporary:
		return "TEMPORARY"
	default:
		return fmt.Sprintf("Priority(%d)", uint8(p))
	}
}

// Region is the shadow's software-convenience view of one hardware PMP
// slot. Start is not hardware state — in TOR mode, the address register
// holds only End, and the true lower bound is whatever the previous
// active slot's End was — but carrying Start here lets CheckAccess and
// GetRegion work without walking the whole table to reconstruct it.
type Region struct {
	Start, End uint32
	R, W, X    bool
	Priority   Priority
	Index      int
	Locked     bool
}

// disabled reports whether r is the "start==end==0 && no permissions"
// sentinel for a cleared slot. This convention must be
// preserved exactly as written: the shadow does not always mirror the
// hardware A=OFF bit, so CheckAccess keys off this, not off the
// configuration byte's mode field.
func (r Region) disabled() bool {
	return r.Start == 0 && r.End == 0 && !r.R && !r.W && !r.X
}

// Config is the process-wide PMP shadow table: 16 regions plus the
// bookkeeping needed to allocate new ones. It shadows the pmpcfg0-3 and
// pmpaddr0-15 CSRs in f; every mutating method writes those CSRs before
// updating the shadow, so the two can never observably diverge.
type Config struct {
	csr *csr.File

	regions     [NumRegions]Region
	regionCount int
	nextFree    int
	initialized bool
}

// NewConfig returns a PMP shadow bound to f, uninitialized until Init is
// called.
func NewConfig(f *csr.File) *Config {
	return &Config{csr: f}
}

// Init resets all 16 hardware regions and the shadow table, and marks cfg
// initialized.
func (c *Config) Init() {
	for i := 0; i < NumRegions; i++ {
		c.regions[i] = Region{Index: i}
		c.csr.Pmpaddr[i] = 0
	}

	for i := range c.csr.Pmpcfg {
		c.csr.Pmpcfg[i] = 0
	}

	c.regionCount = 0
	c.nextFree = 0
	c.initialized = true
}

// SetRegion writes one region's hardware configuration and address
// registers, then updates the shadow to match.
func (c *Config) SetRegion(idx int, desc Region) error {
	if idx < 0 || idx >= NumRegions {
		return fmt.Errorf("%w: %d", ErrInvalidRegion, idx)
	}

	if desc.Start >= desc.End {
		return fmt.Errorf("%w: [%#x, %#x)", ErrAddrRange, desc.Start, desc.End)
	}

	if c.regions[idx].Locked {
		return fmt.Errorf("%w: region %d", ErrLocked, idx)
	}

	cfgIdx, slot := csr.PmpcfgIndex(idx)

	reg, err := c.csr.Read(cfgIdx)
	if err != nil {
		return err
	}

	byteVal := csr.PMPMakeCfg(csr.PMPTOR, desc.R, desc.W, desc.X, desc.Locked)
	reg = csr.PMPCfgSet(reg, slot, byteVal)

	if err := c.csr.Write(cfgIdx, reg); err != nil {
		return err
	}

	addrIdx := csr.PmpaddrIndex(idx)
	if err := c.csr.Write(addrIdx, csr.Word(desc.End)); err != nil {
		return err
	}

	desc.Index = idx
	c.regions[idx] = desc

	if idx >= c.regionCount {
		c.regionCount = idx + 1
	}

	if idx == c.nextFree {
		c.nextFree++
	}

	return nil
}

// DisableRegion clears a region's configuration byte (its address mode
// becomes OFF) and zeroes the shadow's start, end, and permissions.
func (c *Config) DisableRegion(idx int) error {
	if idx < 0 || idx >= NumRegions {
		return fmt.Errorf("%w: %d", ErrInvalidRegion, idx)
	}

	if c.regions[idx].Locked {
		return fmt.Errorf("%w: region %d", ErrLocked, idx)
	}

	cfgIdx, slot := csr.PmpcfgIndex(idx)

	reg, err := c.csr.Read(cfgIdx)
	if err != nil {
		return err
	}

	reg = csr.PMPCfgSet(reg, slot, 0)

	if err := c.csr.Write(cfgIdx, reg); err != nil {
		return err
	}

	priority := c.regions[idx].Priority
	c.regions[idx] = Region{Index: idx, Priority: priority}

	return nil
}

// LockRegion ORs the lock bit into a region's configuration byte and the
// shadow. Locking is irreversible until the next Init.
func (c *Config) LockRegion(idx int) error {
	if idx < 0 || idx >= NumRegions {
		return fmt.Errorf("%w: %d", ErrInvalidRegion, idx)
	}

	cfgIdx, slot := csr.PmpcfgIndex(idx)

	reg, err := c.csr.Read(cfgIdx)
	if err != nil {
		return err
	}

	byteVal := csr.PMPCfgByte(reg, slot) | csr.PMPLock
	reg = csr.PMPCfgSet(reg, slot, byteVal)

	if err := c.csr.Write(cfgIdx, reg); err != nil {
		return err
	}

	c.regions[idx].Locked = true

	return nil
}

// GetRegion reads back the shadow's view of region idx.
func (c *Config) GetRegion(idx int) (Region, error) {
	if idx < 0 || idx >= NumRegions {
		return Region{}, fmt.Errorf("%w: %d", ErrInvalidRegion, idx)
	}

	return c.regions[idx], nil
}

// CheckAccess scans active regions in index order and returns whether the
// first region fully containing [addr, addr+size) permits the requested
// access. Regions for which disabled() holds are skipped regardless of
// what their configuration byte says — a deliberate departure from the
// RISC-V hardware semantics, where A=OFF alone does not imply no access.
func (c *Config) CheckAccess(addr, size uint32, write, execute bool) bool {
	end := addr + size

	for i := 0; i < c.regionCount; i++ {
		r := c.regions[i]
		if r.disabled() {
			continue
		}

		if addr < r.Start || end > r.End {
			continue
		}

		if write && !r.W {
			return false
		}

		if execute && !r.X {
			return false
		}

		if !write && !execute && !r.R {
			return false
		}

		return true
	}

	return false
}

// Pool is one statically declared boot-time memory range, one of the
// standard memory pools (kernel_text, kernel_data, ...).
type Pool struct {
	Name       string
	Start, End uint32
	R, W, X    bool
}

// InitPools bulk-configures cfg from a slice of static pool descriptors,
// each installed as a KERNEL-priority region in declaration order.
func (c *Config) InitPools(pools []Pool) error {
	for i, p := range pools {
		if i >= NumRegions {
			return fmt.Errorf("%w: %d pools exceed %d hardware regions", ErrInvalidRegion, len(pools), NumRegions)
		}

		if err := c.SetRegion(i, Region{
			Start:    p.Start,
			End:      p.End,
			R:        p.R,
			W:        p.W,
			X:        p.X,
			Priority: PriorityKernel,
		}); err != nil {
			return fmt.Errorf("pool %q: %w", p.Name, err)
		}
	}

	return nil
}

// BoardLayout holds the start/end address pairs of the kernel's memory
// sections. The linker script furnishes the symbol pairs in a real build;
// here they are passed in explicitly so this package has no link-time
// dependency.
type BoardLayout struct {
	TextStart, TextEnd   uint32
	DataStart, DataEnd   uint32
	BSSStart, BSSEnd     uint32
	HeapStart, HeapEnd   uint32
	StackStart, StackEnd uint32
}

// StandardPools returns the five statically declared boot-time pools:
// kernel text (R+X) and data/bss/heap/stack (all R+W).
func StandardPools(layout BoardLayout) []Pool {
	return []Pool{
		{Name: "kernel_text", Start: layout.TextStart, End: layout.TextEnd, R: true, X: true},
		{Name: "kernel_data", Start: layout.DataStart, End: layout.DataEnd, R: true, W: true},
		{Name: "kernel_bss", Start: layout.BSSStart, End: layout.BSSEnd, R: true, W: true},
		{Name: "kernel_heap", Start: layout.HeapStart, End: layout.HeapEnd, R: true, W: true},
		{Name: "kernel_stack", Start: layout.StackStart, End: layout.StackEnd, R: true, W: true},
	}
}

// InitKernel resets cfg and installs the standard kernel pools.
func (c *Config) InitKernel(layout BoardLayout) error {
	c.Init()

	return c.InitPools(StandardPools(layout))
}
