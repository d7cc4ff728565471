package riscv

import "fmt"

// Instr is a decoded instruction. Each supported form is its own struct
// type carrying only the operands meaningful to it.
type Instr interface {
	// Name is the canonical lowercase mnemonic.
	Name() string
	// Args lists the operands in assembly order.
	Args() []Arg
	isInstr()
}

// Illegal is the defined-illegal all-zero word.
type Illegal struct{}

// Loads. Imm is the sign-extended I-type offset.
type (
	Lb  struct{ Rd, Rs1 Reg; Imm int32 }
	Lh  struct{ Rd, Rs1 Reg; Imm int32 }
	Lw  struct{ Rd, Rs1 Reg; Imm int32 }
	Lbu struct{ Rd, Rs1 Reg; Imm int32 }
	Lhu struct{ Rd, Rs1 Reg; Imm int32 }
)

// Stores. Rs2 is the value, Rs1 the base; Imm is the S-type offset.
type (
	Sb struct{ Rs1, Rs2 Reg; Imm int32 }
	Sh struct{ Rs1, Rs2 Reg; Imm int32 }
	Sw struct{ Rs1, Rs2 Reg; Imm int32 }
)

// Register-immediate ALU operations.
type (
	Addi  struct{ Rd, Rs1 Reg; Imm int32 }
	Slti  struct{ Rd, Rs1 Reg; Imm int32 }
	Sltiu struct{ Rd, Rs1 Reg; Imm int32 }
	Xori  struct{ Rd, Rs1 Reg; Imm int32 }
	Ori   struct{ Rd, Rs1 Reg; Imm int32 }
	Andi  struct{ Rd, Rs1 Reg; Imm int32 }
	Slli  struct{ Rd, Rs1 Reg; Shamt uint8 }
	Srli  struct{ Rd, Rs1 Reg; Shamt uint8 }
	Srai  struct{ Rd, Rs1 Reg; Shamt uint8 }
)

// Register-register ALU operations.
type (
	Add  struct{ Rd, Rs1, Rs2 Reg }
	Sub  struct{ Rd, Rs1, Rs2 Reg }
	Sll  struct{ Rd, Rs1, Rs2 Reg }
	Slt  struct{ Rd, Rs1, Rs2 Reg }
	Sltu struct{ Rd, Rs1, Rs2 Reg }
	Xor  struct{ Rd, Rs1, Rs2 Reg }
	Srl  struct{ Rd, Rs1, Rs2 Reg }
	Sra  struct{ Rd, Rs1, Rs2 Reg }
	Or   struct{ Rd, Rs1, Rs2 Reg }
	And  struct{ Rd, Rs1, Rs2 Reg }
)

// Upper-immediate forms. Imm holds the raw 20 upper bits, not shifted.
type (
	// Lui places Imm<<12 in Rd.
	Lui struct {
		Rd  Reg
		Imm uint32
	}
	// Auipc adds Imm<<12 to its own address and places the result in Rd.
	Auipc struct {
		Rd  Reg
		Imm uint32
	}
)

// Conditional branches. Imm is the B-type byte offset from the branch.
type (
	Beq  struct{ Rs1, Rs2 Reg; Imm int32 }
	Bne  struct{ Rs1, Rs2 Reg; Imm int32 }
	Blt  struct{ Rs1, Rs2 Reg; Imm int32 }
	Bge  struct{ Rs1, Rs2 Reg; Imm int32 }
	Bltu struct{ Rs1, Rs2 Reg; Imm int32 }
	Bgeu struct{ Rs1, Rs2 Reg; Imm int32 }
)

// Jal jumps to its own address plus Imm and writes the return address to Rd.
type Jal struct {
	Rd  Reg
	Imm int32
}

// Jalr jumps to (Rs1 + Imm) with the low bit cleared, writing pc+4 to Rd.
type Jalr struct {
	Rd, Rs1 Reg
	Imm     int32
}

// Fence orders memory and I/O accesses. Pred and Succ are the 4-bit
// IORW sets; Fm is the fence mode.
type Fence struct {
	Rd, Rs1        Reg
	Pred, Succ, Fm uint8
}

// FenceI synchronizes the instruction and data streams.
type FenceI struct {
	Rd, Rs1 Reg
	Imm     int32
}

// System instructions without operands.
type (
	Ecall  struct{}
	Ebreak struct{}
	Uret   struct{}
	Sret   struct{}
	Mret   struct{}
	Wfi    struct{}
)

// CSR access with a register source.
type (
	Csrrw struct{ Rd, Rs1 Reg; Csr uint16 }
	Csrrs struct{ Rd, Rs1 Reg; Csr uint16 }
	Csrrc struct{ Rd, Rs1 Reg; Csr uint16 }
)

// CSR access with a 5-bit zero-extended immediate source.
type (
	Csrrwi struct{ Rd Reg; Uimm uint8; Csr uint16 }
	Csrrsi struct{ Rd Reg; Uimm uint8; Csr uint16 }
	Csrrci struct{ Rd Reg; Uimm uint8; Csr uint16 }
)

func (Illegal) Name() string { return "illegal" }
func (Lb) Name() string      { return "lb" }
func (Lh) Name() string      { return "lh" }
func (Lw) Name() string      { return "lw" }
func (Lbu) Name() string     { return "lbu" }
func (Lhu) Name() string     { return "lhu" }
func (Sb) Name() string      { return "sb" }
func (Sh) Name() string      { return "sh" }
func (Sw) Name() string      { return "sw" }
func (Addi) Name() string    { return "addi" }
func (Slti) Name() string    { return "slti" }
func (Sltiu) Name() string   { return "sltiu" }
func (Xori) Name() string    { return "xori" }
func (Ori) Name() string     { return "ori" }
func (Andi) Name() string    { return "andi" }
func (Slli) Name() string    { return "slli" }
func (Srli) Name() string    { return "srli" }
func (Srai) Name() string    { return "srai" }
func (Add) Name() string     { return "add" }
func (Sub) Name() string     { return "sub" }
func (Sll) Name() string     { return "sll" }
func (Slt) Name() string     { return "slt" }
func (Sltu) Name() string    { return "sltu" }
func (Xor) Name() string     { return "xor" }
func (Srl) Name() string     { return "srl" }
func (Sra) Name() string     { return "sra" }
func (Or) Name() string      { return "or" }
func (And) Name() string     { return "and" }
func (Lui) Name() string     { return "lui" }
func (Auipc) Name() string   { return "auipc" }
func (Beq) Name() string     { return "beq" }
func (Bne) Name() string     { return "bne" }
func (Blt) Name() string     { return "blt" }
func (Bge) Name() string     { return "bge" }
func (Bltu) Name() string    { return "bltu" }
func (Bgeu) Name() string    { return "bgeu" }
func (Jal) Name() string     { return "jal" }
func (Jalr) Name() string    { return "jalr" }
func (Fence) Name() string   { return "fence" }
func (FenceI) Name() string  { return "fence.i" }
func (Ecall) Name() string   { return "ecall" }
func (Ebreak) Name() string  { return "ebreak" }
func (Uret) Name() string    { return "uret" }
func (Sret) Name() string    { return "sret" }
func (Mret) Name() string    { return "mret" }
func (Wfi) Name() string     { return "wfi" }
func (Csrrw) Name() string   { return "csrrw" }
func (Csrrs) Name() string   { return "csrrs" }
func (Csrrc) Name() string   { return "csrrc" }
func (Csrrwi) Name() string  { return "csrrwi" }
func (Csrrsi) Name() string  { return "csrrsi" }
func (Csrrci) Name() string  { return "csrrci" }

func (Illegal) Args() []Arg { return nil }

func (i Lb) Args() []Arg  { return regAddr(i.Rd, i.Rs1, i.Imm) }
func (i Lh) Args() []Arg  { return regAddr(i.Rd, i.Rs1, i.Imm) }
func (i Lw) Args() []Arg  { return regAddr(i.Rd, i.Rs1, i.Imm) }
func (i Lbu) Args() []Arg { return regAddr(i.Rd, i.Rs1, i.Imm) }
func (i Lhu) Args() []Arg { return regAddr(i.Rd, i.Rs1, i.Imm) }

func (i Sb) Args() []Arg { return regAddr(i.Rs2, i.Rs1, i.Imm) }
func (i Sh) Args() []Arg { return regAddr(i.Rs2, i.Rs1, i.Imm) }
func (i Sw) Args() []Arg { return regAddr(i.Rs2, i.Rs1, i.Imm) }

func (i Addi) Args() []Arg  { return regRegImm(i.Rd, i.Rs1, i.Imm) }
func (i Slti) Args() []Arg  { return regRegImm(i.Rd, i.Rs1, i.Imm) }
func (i Sltiu) Args() []Arg { return regRegImm(i.Rd, i.Rs1, i.Imm) }
func (i Xori) Args() []Arg  { return regRegImm(i.Rd, i.Rs1, i.Imm) }
func (i Ori) Args() []Arg   { return regRegImm(i.Rd, i.Rs1, i.Imm) }
func (i Andi) Args() []Arg  { return regRegImm(i.Rd, i.Rs1, i.Imm) }
func (i Slli) Args() []Arg  { return regRegShamt(i.Rd, i.Rs1, i.Shamt) }
func (i Srli) Args() []Arg  { return regRegShamt(i.Rd, i.Rs1, i.Shamt) }
func (i Srai) Args() []Arg  { return regRegShamt(i.Rd, i.Rs1, i.Shamt) }

func (i Add) Args() []Arg  { return regRegReg(i.Rd, i.Rs1, i.Rs2) }
func (i Sub) Args() []Arg  { return regRegReg(i.Rd, i.Rs1, i.Rs2) }
func (i Sll) Args() []Arg  { return regRegReg(i.Rd, i.Rs1, i.Rs2) }
func (i Slt) Args() []Arg  { return regRegReg(i.Rd, i.Rs1, i.Rs2) }
func (i Sltu) Args() []Arg { return regRegReg(i.Rd, i.Rs1, i.Rs2) }
func (i Xor) Args() []Arg  { return regRegReg(i.Rd, i.Rs1, i.Rs2) }
func (i Srl) Args() []Arg  { return regRegReg(i.Rd, i.Rs1, i.Rs2) }
func (i Sra) Args() []Arg  { return regRegReg(i.Rd, i.Rs1, i.Rs2) }
func (i Or) Args() []Arg   { return regRegReg(i.Rd, i.Rs1, i.Rs2) }
func (i And) Args() []Arg  { return regRegReg(i.Rd, i.Rs1, i.Rs2) }

func (i Lui) Args() []Arg   { return []Arg{i.Rd, UnsignedImm(i.Imm)} }
func (i Auipc) Args() []Arg { return []Arg{i.Rd, UnsignedImm(i.Imm)} }

func (i Beq) Args() []Arg  { return []Arg{i.Rs1, i.Rs2, SignedImm(i.Imm)} }
func (i Bne) Args() []Arg  { return []Arg{i.Rs1, i.Rs2, SignedImm(i.Imm)} }
func (i Blt) Args() []Arg  { return []Arg{i.Rs1, i.Rs2, SignedImm(i.Imm)} }
func (i Bge) Args() []Arg  { return []Arg{i.Rs1, i.Rs2, SignedImm(i.Imm)} }
func (i Bltu) Args() []Arg { return []Arg{i.Rs1, i.Rs2, SignedImm(i.Imm)} }
func (i Bgeu) Args() []Arg { return []Arg{i.Rs1, i.Rs2, SignedImm(i.Imm)} }

func (i Jal) Args() []Arg { return []Arg{i.Rd, SignedImm(i.Imm)} }

// Args collapses the common "jalr rs1" form, where the link register is ra,
// into a single address operand.
func (i Jalr) Args() []Arg {
	if i.Rd == Ra {
		return []Arg{Address{Base: i.Rs1, Offset: i.Imm}}
	}
	return regAddr(i.Rd, i.Rs1, i.Imm)
}

func (i Fence) Args() []Arg {
	return []Arg{i.Rd, i.Rs1, Special(fmt.Sprintf("pred=%s succ=%s fm=%d",
		fenceSet(i.Pred), fenceSet(i.Succ), i.Fm))}
}

// fenceSet spells a 4-bit predecessor or successor set as its IORW letters.
func fenceSet(bits uint8) string {
	if bits&0xf == 0 {
		return "0"
	}
	var s []byte
	for n, c := range "iorw" {
		if bits&(8>>n) != 0 {
			s = append(s, byte(c))
		}
	}
	return string(s)
}

func (FenceI) Args() []Arg { return nil }
func (Ecall) Args() []Arg  { return nil }
func (Ebreak) Args() []Arg { return nil }
func (Uret) Args() []Arg   { return nil }
func (Sret) Args() []Arg   { return nil }
func (Mret) Args() []Arg   { return nil }
func (Wfi) Args() []Arg    { return nil }

func (i Csrrw) Args() []Arg  { return []Arg{i.Rd, csrArg(i.Csr), i.Rs1} }
func (i Csrrs) Args() []Arg  { return []Arg{i.Rd, csrArg(i.Csr), i.Rs1} }
func (i Csrrc) Args() []Arg  { return []Arg{i.Rd, csrArg(i.Csr), i.Rs1} }
func (i Csrrwi) Args() []Arg { return []Arg{i.Rd, csrArg(i.Csr), UnsignedImm(i.Uimm)} }
func (i Csrrsi) Args() []Arg { return []Arg{i.Rd, csrArg(i.Csr), UnsignedImm(i.Uimm)} }
func (i Csrrci) Args() []Arg { return []Arg{i.Rd, csrArg(i.Csr), UnsignedImm(i.Uimm)} }

func (Illegal) isInstr() {}
func (Lb) isInstr()      {}
func (Lh) isInstr()      {}
func (Lw) isInstr()      {}
func (Lbu) isInstr()     {}
func (Lhu) isInstr()     {}
func (Sb) isInstr()      {}
func (Sh) isInstr()      {}
func (Sw) isInstr()      {}
func (Addi) isInstr()    {}
func (Slti) isInstr()    {}
func (Sltiu) isInstr()   {}
func (Xori) isInstr()    {}
func (Ori) isInstr()     {}
func (Andi) isInstr()    {}
func (Slli) isInstr()    {}
func (Srli) isInstr()    {}
func (Srai) isInstr()    {}
func (Add) isInstr()     {}
func (Sub) isInstr()     {}
func (Sll) isInstr()     {}
func (Slt) isInstr()     {}
func (Sltu) isInstr()    {}
func (Xor) isInstr()     {}
func (Srl) isInstr()     {}
func (Sra) isInstr()     {}
func (Or) isInstr()      {}
func (And) isInstr()     {}
func (Lui) isInstr()     {}
func (Auipc) isInstr()   {}
func (Beq) isInstr()     {}
func (Bne) isInstr()     {}
func (Blt) isInstr()     {}
func (Bge) isInstr()     {}
func (Bltu) isInstr()    {}
func (Bgeu) isInstr()    {}
func (Jal) isInstr()     {}
func (Jalr) isInstr()    {}
func (Fence) isInstr()   {}
func (FenceI) isInstr()  {}
func (Ecall) isInstr()   {}
func (Ebreak) isInstr()  {}
func (Uret) isInstr()    {}
func (Sret) isInstr()    {}
func (Mret) isInstr()    {}
func (Wfi) isInstr()     {}
func (Csrrw) isInstr()   {}
func (Csrrs) isInstr()   {}
func (Csrrc) isInstr()   {}
func (Csrrwi) isInstr()  {}
func (Csrrsi) isInstr()  {}
func (Csrrci) isInstr()  {}

// Target returns the absolute destination of a pc-relative jump or branch
// located at pc. Register-indirect jumps have no static target.
func Target(i Instr, pc uint64) (uint64, bool) {
	var off int32
	switch i := i.(type) {
	case Jal:
		off = i.Imm
	case Beq:
		off = i.Imm
	case Bne:
		off = i.Imm
	case Blt:
		off = i.Imm
	case Bge:
		off = i.Imm
	case Bltu:
		off = i.Imm
	case Bgeu:
		off = i.Imm
	default:
		return 0, false
	}
	return uint64(int64(pc) + int64(off)), true
}
