package csr

// csr.go holds the register file and the numeric index of each CSR this
// kernel uses.

import "fmt"

// Index identifies one CSR by its hardware address, the same 12-bit value
// that appears in the immediate field of csrrw/csrrs/csrrc.
type Index uint16

// Hardware CSR addresses. Only the subset the kernel touches is named; an
// unrecognized index makes Read and Write return ErrUnknownCSR, never a
// silent zero.
const (
	Mstatus  Index = 0x300
	Misa     Index = 0x301
	Medeleg  Index = 0x302
	Mideleg  Index = 0x303
	Mie      Index = 0x304
	Mtvec    Index = 0x305
	Mscratch Index = 0x340
	Mepc     Index = 0x341
	Mcause   Index = 0x342
	Mtval    Index = 0x343
	Mip      Index = 0x344

	Pmpcfg0 Index = 0x3a0
	Pmpcfg1 Index = 0x3a1
	Pmpcfg2 Index = 0x3a2
	Pmpcfg3 Index = 0x3a3

	Pmpaddr0  Index = 0x3b0
	Pmpaddr15 Index = 0x3bf

	Mhartid Index = 0xf14
)

// File is the bank of machine-mode CSRs modeled by the simulator. Unlike
// real hardware, every register is just a uint32 field; the interesting
// behavior lives in the bit-layout accessors in mstatus.go and pmpbits.go,
// and in the PMP engine that owns Pmpcfg/Pmpaddr semantics.
type File struct {
	Mstatus  Word
	Misa     Word
	Medeleg  Word
	Mideleg  Word
	Mie      Word
	Mtvec    Word
	Mscratch Word
	Mepc     Word
	Mcause   Word
	Mtval    Word
	Mip      Word
	Mhartid  Word

	Pmpcfg  [4]Word     // Four configuration registers, 4 regions each.
	Pmpaddr [16]Word    // One address register per PMP region.
}

// Word is the 32-bit value a CSR holds.
type Word uint32

func (w Word) String() string {
	return fmt.Sprintf("%#010x", uint32(w))
}

// accessor is one entry in the register-file jump table: read the current
// value, or install a new one.
type accessor struct {
	get func(*File) Word
	set func(*File, Word)
}

// table is keyed by the raw hardware Index. A map rather than an array
// keeps the sparse hardware address space from costing a slot per
// possible address; only the indices the kernel knows about have entries.
var table = map[Index]accessor{
	Mstatus:  {func(f *File) Word { return f.Mstatus }, func(f *File, v Word) { f.Mstatus = v }},
	Misa:     {func(f *File) Word { return f.Misa }, func(f *File, v Word) { f.Misa = v }},
	Medeleg:  {func(f *File) Word { return f.Medeleg }, func(f *File, v Word) { f.Medeleg = v }},
	Mideleg:  {func(f *File) Word { return f.Mideleg }, func(f *File, v Word) { f.Mideleg = v }},
	Mie:      {func(f *File) Word { return f.Mie }, func(f *File, v Word) { f.Mie = v }},
	Mtvec:    {func(f *File) Word { return f.Mtvec }, func(f *File, v Word) { f.Mtvec = v }},
	Mscratch: {func(f *File) Word { return f.Mscratch }, func(f *File, v Word) { f.Mscratch = v }},
	Mepc:     {func(f *File) Word { return f.Mepc }, func(f *File, v Word) { f.Mepc = v }},
	Mcause:   {func(f *File) Word { return f.Mcause }, func(f *File, v Word) { f.Mcause = v }},
	Mtval:    {func(f *File) Word { return f.Mtval }, func(f *File, v Word) { f.Mtval = v }},
	Mip:      {func(f *File) Word { return f.Mip }, func(f *File, v Word) { f.Mip = v }},
	Mhartid:  {func(f *File) Word { return f.Mhartid }, func(f *File, v Word) { f.Mhartid = v }},
}

func init() {
	for i := 0; i < 4; i++ {
		i := i
		table[Pmpcfg0+Index(i)] = accessor{
			get: func(f *File) Word { return f.Pmpcfg[i] },
			set: func(f *File, v Word) { f.Pmpcfg[i] = v },
		}
	}

	for i := 0; i < 16; i++ {
		i := i
		table[Pmpaddr0+Index(i)] = accessor{
			get: func(f *File) Word { return f.Pmpaddr[i] },
			set: func(f *File, v Word) { f.Pmpaddr[i] = v },
		}
	}
}

// Read dispatches a CSR read by runtime index, as csrrs does in hardware.
func (f *File) Read(idx Index) (Word, error) {
	a, ok := table[idx]
	if !ok {
		return 0, fmt.Errorf("%w: %#x", ErrUnknownCSR, idx)
	}

	return a.get(f), nil
}

// Write dispatches a CSR write by runtime index, as csrrw does in hardware.
func (f *File) Write(idx Index, val Word) error {
	a, ok := table[idx]
	if !ok {
		return fmt.Errorf("%w: %#x", ErrUnknownCSR, idx)
	}

	a.set(f, val)

	return nil
}

// PmpcfgIndex returns the CSR index of the pmpcfg register holding region
// id's configuration byte, and that byte's slot (0..3) within it — the
// same slot convention PMPCfgByte/PMPCfgSet take.
func PmpcfgIndex(region int) (idx Index, slot uint) {
	return Pmpcfg0 + Index(region/4), uint(region % 4)
}

// PmpaddrIndex returns the CSR index of the pmpaddr register for region id.
func PmpaddrIndex(region int) Index {
	return Pmpaddr0 + Index(region)
}
