package riscv

import "fmt"

// Privilege is the lowest privilege level, and access mode, of a CSR.
type Privilege uint8

const (
	URW Privilege = iota // user read/write
	URO                  // user read-only
	SRW                  // supervisor read/write
	MRW                  // machine read/write
	MRO                  // machine read-only
)

func (p Privilege) String() string {
	switch p {
	case URW:
		return "URW"
	case URO:
		return "URO"
	case SRW:
		return "SRW"
	case MRW:
		return "MRW"
	case MRO:
		return "MRO"
	}
	return fmt.Sprintf("Privilege(%d)", uint8(p))
}

// CSR describes a catalogued control and status register.
type CSR struct {
	Num  uint16
	Name string
	Priv Privilege
}

// MaxCSR is the largest 12-bit CSR number.
const MaxCSR = 0xfff

var csrs = map[uint16]CSR{}

func defCSR(num uint16, name string, priv Privilege) {
	if _, dup := csrs[num]; dup {
		panic(fmt.Sprintf("riscv: duplicate CSR %#x", num))
	}
	csrs[num] = CSR{Num: num, Name: name, Priv: priv}
}

func init() {
	// User trap setup and handling.
	defCSR(0x000, "ustatus", URW)
	defCSR(0x004, "uie", URW)
	defCSR(0x005, "utvec", URW)
	defCSR(0x040, "uscratch", URW)
	defCSR(0x041, "uepc", URW)
	defCSR(0x042, "ucause", URW)
	defCSR(0x043, "utval", URW)
	defCSR(0x044, "uip", URW)

	// User floating point.
	defCSR(0x001, "fflags", URW)
	defCSR(0x002, "frm", URW)
	defCSR(0x003, "fcsr", URW)

	// User counters and timers; the *h halves exist on RV32 only.
	defCSR(0xc00, "cycle", URO)
	defCSR(0xc01, "time", URO)
	defCSR(0xc02, "instret", URO)
	defCSR(0xc80, "cycleh", URO)
	defCSR(0xc81, "timeh", URO)
	defCSR(0xc82, "instreth", URO)
	for n := uint16(3); n <= 31; n++ {
		defCSR(0xc00+n, fmt.Sprintf("hpmcounter%d", n), URO)
		defCSR(0xc80+n, fmt.Sprintf("hpmcounter%dh", n), URO)
	}

	// Supervisor.
	defCSR(0x100, "sstatus", SRW)
	defCSR(0x104, "sie", SRW)
	defCSR(0x105, "stvec", SRW)
	defCSR(0x106, "scounteren", SRW)
	defCSR(0x140, "sscratch", SRW)
	defCSR(0x141, "sepc", SRW)
	defCSR(0x142, "scause", SRW)
	defCSR(0x143, "stval", SRW)
	defCSR(0x144, "sip", SRW)
	defCSR(0x180, "satp", SRW)

	// Machine information.
	defCSR(0xf11, "mvendorid", MRO)
	defCSR(0xf12, "marchid", MRO)
	defCSR(0xf13, "mimpid", MRO)
	defCSR(0xf14, "mhartid", MRO)

	// Machine trap setup and handling.
	defCSR(0x300, "mstatus", MRW)
	defCSR(0x301, "misa", MRW)
	defCSR(0x302, "medeleg", MRW)
	defCSR(0x303, "mideleg", MRW)
	defCSR(0x304, "mie", MRW)
	defCSR(0x305, "mtvec", MRW)
	defCSR(0x306, "mcounteren", MRW)
	defCSR(0x340, "mscratch", MRW)
	defCSR(0x341, "mepc", MRW)
	defCSR(0x342, "mcause", MRW)
	defCSR(0x343, "mtval", MRW)
	defCSR(0x344, "mip", MRW)

	// Machine memory protection.
	for n := uint16(0); n < 4; n++ {
		defCSR(0x3a0+n, fmt.Sprintf("pmpcfg%d", n), MRW)
	}
	for n := uint16(0); n < 16; n++ {
		defCSR(0x3b0+n, fmt.Sprintf("pmpaddr%d", n), MRW)
	}

	// Machine counters.
	defCSR(0xb00, "mcycle", MRW)
	defCSR(0xb02, "minstret", MRW)
	defCSR(0xb80, "mcycleh", MRW)
	defCSR(0xb82, "minstreth", MRW)
}

// LookupCSR returns the catalogue entry for num, if any.
func LookupCSR(num uint16) (CSR, bool) {
	c, ok := csrs[num]
	return c, ok
}

// CSRFromIndex validates a raw CSR number and returns its catalogue entry.
// Uncatalogued but in-range numbers yield a CSR with an empty Name.
func CSRFromIndex(idx uint32) (CSR, error) {
	if idx > MaxCSR {
		return CSR{}, &IndexError{Kind: "csr", Index: idx, Max: MaxCSR}
	}
	if c, ok := csrs[uint16(idx)]; ok {
		return c, nil
	}
	return CSR{Num: uint16(idx)}, nil
}

// csrArg renders a CSR number by name where one is known.
func csrArg(num uint16) Arg {
	if c, ok := csrs[num]; ok {
		return Special(c.Name)
	}
	return Special(fmt.Sprintf("0x%03x", num))
}
