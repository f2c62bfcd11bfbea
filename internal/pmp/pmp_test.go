package pmp

import (
	"errors"
	"testing"

	"github.com/sysprog21/linmo/internal/csr"
)

func TestSetRegionRoundTrips(t *testing.T) {
	t.Parallel()

	f := &csr.File{}
	cfg := NewConfig(f)
	cfg.Init()

	want := Region{Start: 0x1000, End: 0x2000, R: true, W: true, Priority: PriorityShared}
	if err := cfg.SetRegion(0, want); err != nil {
		t.Fatalf("SetRegion: %v", err)
	}

	got, err := cfg.GetRegion(0)
	if err != nil {
		t.Fatalf("GetRegion: %v", err)
	}

	if got.Start != want.Start || got.End != want.End || got.R != want.R || got.W != want.W {
		t.Fatalf("round trip mismatch: want %+v, got %+v", want, got)
	}
}

func TestSetRegionShadowsHardware(t *testing.T) {
	t.Parallel()

	f := &csr.File{}
	cfg := NewConfig(f)
	cfg.Init()

	if err := cfg.SetRegion(2, Region{Start: 0x4000, End: 0x8000, R: true, X: true}); err != nil {
		t.Fatalf("SetRegion: %v", err)
	}

	if f.Pmpaddr[2] != csr.Word(0x8000) {
		t.Fatalf("pmpaddr[2] = %#x, want 0x8000", f.Pmpaddr[2])
	}

	byteVal := csr.PMPCfgByte(f.Pmpcfg[0], 2)
	if csr.PMPModeOf(byteVal) != csr.PMPTOR {
		t.Fatalf("region 2 mode = %v, want TOR", csr.PMPModeOf(byteVal))
	}

	if byteVal&csr.PMPRead == 0 || byteVal&csr.PMPExec == 0 {
		t.Fatalf("region 2 cfg byte %#x missing R or X", byteVal)
	}

	if byteVal&csr.PMPWrite != 0 {
		t.Fatalf("region 2 cfg byte %#x has spurious W", byteVal)
	}
}

func TestSetRegionRejectsInvalidRange(t *testing.T) {
	t.Parallel()

	f := &csr.File{}
	cfg := NewConfig(f)
	cfg.Init()

	err := cfg.SetRegion(0, Region{Start: 0x2000, End: 0x1000})
	if !errors.Is(err, ErrAddrRange) {
		t.Fatalf("want ErrAddrRange, got %v", err)
	}
}

func TestSetRegionRejectsOutOfRangeIndex(t *testing.T) {
	t.Parallel()

	f := &csr.File{}
	cfg := NewConfig(f)
	cfg.Init()

	if err := cfg.SetRegion(NumRegions, Region{Start: 0, End: 0x1000}); !errors.Is(err, ErrInvalidRegion) {
		t.Fatalf("want ErrInvalidRegion, got %v", err)
	}
}

// TestLockedRegionNeverMutated covers invariant P6: once a region is
// locked, neither SetRegion nor DisableRegion may change it until the next
// Init, and the hardware bytes must reflect that refusal, not just the
// shadow.
func TestLockedRegionNeverMutated(t *testing.T) {
	t.Parallel()

	f := &csr.File{}
	cfg := NewConfig(f)
	cfg.Init()

	orig := Region{Start: 0x1000, End: 0x2000, R: true, X: true}
	if err := cfg.SetRegion(1, orig); err != nil {
		t.Fatalf("SetRegion: %v", err)
	}

	if err := cfg.LockRegion(1); err != nil {
		t.Fatalf("LockRegion: %v", err)
	}

	beforeAddr := f.Pmpaddr[1]
	beforeCfg := f.Pmpcfg[0]

	if err := cfg.SetRegion(1, Region{Start: 0x3000, End: 0x4000, W: true}); !errors.Is(err, ErrLocked) {
		t.Fatalf("want ErrLocked, got %v", err)
	}

	if err := cfg.DisableRegion(1); !errors.Is(err, ErrLocked) {
		t.Fatalf("DisableRegion on locked region: want ErrLocked, got %v", err)
	}

	if f.Pmpaddr[1] != beforeAddr {
		t.Fatalf("pmpaddr[1] changed despite lock: %#x -> %#x", beforeAddr, f.Pmpaddr[1])
	}

	if f.Pmpcfg[0] != beforeCfg {
		t.Fatalf("pmpcfg[0] changed despite lock: %#x -> %#x", beforeCfg, f.Pmpcfg[0])
	}

	got, _ := cfg.GetRegion(1)
	if got.Start != orig.Start || got.End != orig.End {
		t.Fatalf("shadow changed despite lock: %+v", got)
	}
}

func TestCheckAccessHonorsPermissionsAndBounds(t *testing.T) {
	t.Parallel()

	f := &csr.File{}
	cfg := NewConfig(f)
	cfg.Init()

	if err := cfg.SetRegion(0, Region{Start: 0x1000, End: 0x2000, R: true, X: true}); err != nil {
		t.Fatalf("SetRegion: %v", err)
	}

	if !cfg.CheckAccess(0x1000, 0x100, false, false) {
		t.Error("read within region should be permitted")
	}

	if !cfg.CheckAccess(0x1000, 0x100, false, true) {
		t.Error("execute within region should be permitted")
	}

	if cfg.CheckAccess(0x1000, 0x100, true, false) {
		t.Error("write should be denied: region has no W")
	}

	if cfg.CheckAccess(0x1f00, 0x200, false, false) {
		t.Error("access spanning past region end should be denied")
	}

	if cfg.CheckAccess(0x5000, 0x10, false, false) {
		t.Error("access to unmapped address should be denied")
	}
}

// TestDisableRegionIsSkippedByCheckAccess covers the documented departure
// from raw hardware semantics: a disabled shadow entry is skipped during
// CheckAccess regardless of what the configuration byte's mode field says.
func TestDisableRegionIsSkippedByCheckAccess(t *testing.T) {
	t.Parallel()

	f := &csr.File{}
	cfg := NewConfig(f)
	cfg.Init()

	if err := cfg.SetRegion(0, Region{Start: 0x1000, End: 0x2000, R: true}); err != nil {
		t.Fatalf("SetRegion: %v", err)
	}

	if err := cfg.DisableRegion(0); err != nil {
		t.Fatalf("DisableRegion: %v", err)
	}

	if cfg.CheckAccess(0x1000, 0x10, false, false) {
		t.Error("disabled region should never grant access")
	}

	r, _ := cfg.GetRegion(0)
	if !r.disabled() {
		t.Errorf("region not marked disabled after DisableRegion: %+v", r)
	}
}

// TestInitKernelInstallsStandardPools covers end-to-end scenario 1: after
// boot, pmpcfg0 is non-zero and pmpaddr0 equals the end of kernel text.
func TestInitKernelInstallsStandardPools(t *testing.T) {
	t.Parallel()

	f := &csr.File{}
	cfg := NewConfig(f)

	layout := BoardLayout{
		TextStart: 0x8000_0000, TextEnd: 0x8001_0000,
		DataStart: 0x8001_0000, DataEnd: 0x8001_8000,
		BSSStart: 0x8001_8000, BSSEnd: 0x8002_0000,
		HeapStart: 0x8002_0000, HeapEnd: 0x8004_0000,
		StackStart: 0x8004_0000, StackEnd: 0x8004_8000,
	}

	if err := cfg.InitKernel(layout); err != nil {
		t.Fatalf("InitKernel: %v", err)
	}

	if f.Pmpcfg[0] == 0 {
		t.Fatal("pmpcfg0 is zero after boot, want kernel_text region configured")
	}

	if f.Pmpaddr[0] != csr.Word(layout.TextEnd) {
		t.Fatalf("pmpaddr0 = %#x, want %#x (_etext)", f.Pmpaddr[0], layout.TextEnd)
	}

	textCfg := csr.PMPCfgByte(f.Pmpcfg[0], 0)
	if textCfg&csr.PMPWrite != 0 {
		t.Error("kernel_text region must not be writable")
	}

	if textCfg&csr.PMPExec == 0 {
		t.Error("kernel_text region must be executable")
	}

	stack, err := cfg.GetRegion(4)
	if err != nil {
		t.Fatalf("GetRegion(4): %v", err)
	}

	if stack.End != layout.StackEnd || !stack.W {
		t.Fatalf("kernel_stack region mismatch: %+v", stack)
	}
}

func TestInitResetsPreviousState(t *testing.T) {
	t.Parallel()

	f := &csr.File{}
	cfg := NewConfig(f)
	cfg.Init()

	if err := cfg.SetRegion(0, Region{Start: 0x1000, End: 0x2000, R: true}); err != nil {
		t.Fatalf("SetRegion: %v", err)
	}

	cfg.Init()

	if f.Pmpcfg[0] != 0 || f.Pmpaddr[0] != 0 {
		t.Fatalf("Init left stale hardware state: cfg=%#x addr=%#x", f.Pmpcfg[0], f.Pmpaddr[0])
	}

	r, _ := cfg.GetRegion(0)
	if !r.disabled() {
		t.Fatalf("Init left stale shadow state: %+v", r)
	}
}
