package csr

import (
	"errors"
	"testing"
)

func TestFileReadWriteRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		idx  Index
		val  Word
	}{
		{"mstatus", Mstatus, 0x00001880},
		{"mepc", Mepc, 0x80001000},
		{"mcause", Mcause, CauseInterruptBit | CauseTimerInterrupt},
		{"mscratch", Mscratch, 0xdeadbeef},
		{"mtvec", Mtvec, 0x80000000},
		{"pmpcfg0", Pmpcfg0, 0x0000001f},
		{"pmpcfg3", Pmpcfg3, 0x1f000000},
		{"pmpaddr0", Pmpaddr0, 0x20001fff},
		{"pmpaddr15", Pmpaddr15, 0xffffffff},
		{"mhartid", Mhartid, 0},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			var f File

			if err := f.Write(c.idx, c.val); err != nil {
				t.Fatalf("write: %s", err)
			}

			got, err := f.Read(c.idx)
			if err != nil {
				t.Fatalf("read: %s", err)
			}

			if got != c.val {
				t.Errorf("want: %s, got: %s", c.val, got)
			}
		})
	}
}

func TestFileUnknownIndex(t *testing.T) {
	t.Parallel()

	var f File

	if _, err := f.Read(0x999); !errors.Is(err, ErrUnknownCSR) {
		t.Errorf("want ErrUnknownCSR, got: %v", err)
	}

	if err := f.Write(0x999, 1); !errors.Is(err, ErrUnknownCSR) {
		t.Errorf("want ErrUnknownCSR, got: %v", err)
	}
}

func TestPmpcfgIndex(t *testing.T) {
	t.Parallel()

	cases := []struct {
		region int
		idx    Index
		slot   uint
	}{
		{0, Pmpcfg0, 0},
		{3, Pmpcfg0, 3},
		{4, Pmpcfg1, 0},
		{15, Pmpcfg3, 3},
	}

	for _, c := range cases {
		idx, slot := PmpcfgIndex(c.region)
		if idx != c.idx || slot != c.slot {
			t.Errorf("region %d: want (%#x, %d), got (%#x, %d)", c.region, c.idx, c.slot, idx, slot)
		}
	}
}

func TestPMPCfgSetByte(t *testing.T) {
	t.Parallel()

	var reg Word

	reg = PMPCfgSet(reg, 1, PMPMakeCfg(PMPTOR, true, true, false, false))

	got := PMPCfgByte(reg, 1)
	want := PMPMakeCfg(PMPTOR, true, true, false, false)

	if got != want {
		t.Errorf("want: %#02x, got: %#02x", want, got)
	}

	// Other slots remain untouched.
	if PMPCfgByte(reg, 0) != 0 || PMPCfgByte(reg, 2) != 0 || PMPCfgByte(reg, 3) != 0 {
		t.Errorf("unexpected bleed into other slots: %s", reg)
	}
}

func TestMStatusTrapEntryExit(t *testing.T) {
	t.Parallel()

	var m MStatus

	m.SetMIE(true)
	m.EnterTrap(PrivilegeUser)

	if m.MIE() {
		t.Error("MIE should be cleared on trap entry")
	}

	if !m.MPIE() {
		t.Error("MPIE should preserve the prior MIE value")
	}

	if m.MPP() != PrivilegeUser {
		t.Errorf("MPP: want %s, got %s", PrivilegeUser, m.MPP())
	}

	resume := m.LeaveTrap()

	if resume != PrivilegeUser {
		t.Errorf("resume privilege: want %s, got %s", PrivilegeUser, resume)
	}

	if !m.MIE() {
		t.Error("MIE should be restored from MPIE on trap exit")
	}
}
