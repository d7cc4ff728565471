package riscv

import "fmt"

// Reg is an integer register, numbered by its 5-bit encoding.
// The zero value is Zero.
type Reg uint8

// Register mnemonics for the standard ABI.
// See https://github.com/riscv-non-isa/riscv-elf-psabi-doc (integer register convention).
const (
	Zero Reg = iota
	Ra
	Sp
	Gp
	Tp
	T0
	T1
	T2
	S0
	S1
	A0
	A1
	A2
	A3
	A4
	A5
	A6
	A7
	S2
	S3
	S4
	S5
	S6
	S7
	S8
	S9
	S10
	S11
	T3
	T4
	T5
	T6
)

// NumRegs is the size of the integer register file.
const NumRegs = 32

var regNames = [NumRegs]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

func (r Reg) String() string {
	if int(r) < NumRegs {
		return regNames[r]
	}
	return fmt.Sprintf("x%d?", uint8(r))
}

// Index returns the 5-bit encoding of r.
func (r Reg) Index() uint32 { return uint32(r) }

// RegFromIndex maps a register field to its Reg.
func RegFromIndex(idx uint32) (Reg, error) {
	if idx >= NumRegs {
		return Zero, &IndexError{Kind: "register", Index: idx, Max: NumRegs - 1}
	}
	return Reg(idx), nil
}

// ParseReg looks up a register by ABI name, or by its xN architectural name.
func ParseReg(name string) (Reg, bool) {
	for i, n := range regNames {
		if n == name {
			return Reg(i), true
		}
	}
	if name == "fp" {
		return S0, true
	}
	var n uint32
	if _, err := fmt.Sscanf(name, "x%d", &n); err == nil && fmt.Sprintf("x%d", n) == name {
		if r, err := RegFromIndex(n); err == nil {
			return r, true
		}
	}
	return Zero, false
}

// IndexError reports a register or CSR index that does not fit its field.
type IndexError struct {
	Kind  string
	Index uint32
	Max   uint32
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("riscv: %s index %d out of range (max %d)", e.Kind, e.Index, e.Max)
}
