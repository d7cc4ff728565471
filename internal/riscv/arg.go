package riscv

import (
	"fmt"
	"strings"
)

// Arg is one rendered operand of an instruction. The concrete types are
// Reg, UnsignedImm, SignedImm, Special and Address.
type Arg interface {
	fmt.Stringer
	isArg()
}

// UnsignedImm is an immediate that is unsigned for its instruction.
type UnsignedImm uint32

// SignedImm is an immediate that is sign-extended for its instruction.
type SignedImm int32

// Special is a named operand, such as a CSR name or fence ordering set.
type Special string

// Address is a base register plus signed offset, written offset(base).
type Address struct {
	Base   Reg
	Offset int32
}

func (Reg) isArg()         {}
func (UnsignedImm) isArg() {}
func (SignedImm) isArg()   {}
func (Special) isArg()     {}
func (Address) isArg()     {}

func (u UnsignedImm) String() string { return fmt.Sprintf("%d", uint32(u)) }
func (s SignedImm) String() string   { return fmt.Sprintf("%d", int32(s)) }
func (s Special) String() string     { return string(s) }
func (a Address) String() string     { return fmt.Sprintf("%d(%s)", a.Offset, a.Base) }

// Format renders an instruction as "name arg, arg, ...".
func Format(i Instr) string {
	return FormatArgs(i.Name(), i.Args())
}

// FormatArgs renders a mnemonic and operand list the way Format does.
func FormatArgs(name string, args []Arg) string {
	if len(args) == 0 {
		return name
	}
	parts := make([]string, len(args))
	for n, a := range args {
		parts[n] = a.String()
	}
	return name + " " + strings.Join(parts, ", ")
}

// Operand list builders shared by the instruction types.

func regRegReg(rd, rs1, rs2 Reg) []Arg { return []Arg{rd, rs1, rs2} }

func regRegImm(rd, rs1 Reg, imm int32) []Arg { return []Arg{rd, rs1, SignedImm(imm)} }

func regRegShamt(rd, rs1 Reg, shamt uint8) []Arg { return []Arg{rd, rs1, UnsignedImm(shamt)} }

func regAddr(r, base Reg, off int32) []Arg {
	return []Arg{r, Address{Base: base, Offset: off}}
}
