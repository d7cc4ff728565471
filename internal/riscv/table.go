package riscv

import (
	"fmt"
	"strings"
)

// Major opcodes, bits 6:0.
const (
	opLoad    = 0x03
	opMiscMem = 0x0f
	opOpImm   = 0x13
	opAuipc   = 0x17
	opStore   = 0x23
	opOp      = 0x33
	opLui     = 0x37
	opBranch  = 0x63
	opJalr    = 0x67
	opJal     = 0x6f
	opSystem  = 0x73
)

// guardField selects which secondary field an arm is keyed on, beyond
// (opcode, funct3).
type guardField uint8

const (
	guardNone guardField = iota
	guardFunct7
	guardFunct12
)

func (g guardField) String() string {
	switch g {
	case guardFunct7:
		return "funct7"
	case guardFunct12:
		return "funct12"
	}
	return "none"
}

// arm is one row of the decode table.
type arm struct {
	name      string
	opcode    uint32
	funct3    uint32
	anyFunct3 bool
	guard     guardField
	value     uint32
	build     func(f *fields) Instr
}

func (a *arm) matches(f *fields) bool {
	switch a.guard {
	case guardFunct7:
		return f.funct7 == a.value
	case guardFunct12:
		return f.funct12 == a.value
	}
	return true
}

// slot holds every arm registered for one (opcode, funct3) pair. At most
// one guard in guarded can match a word; fallback applies only when none do.
type slot struct {
	guarded  []*arm
	fallback *arm
}

func (s *slot) empty() bool { return len(s.guarded) == 0 && s.fallback == nil }

func (s *slot) lookup(f *fields) *arm {
	for _, a := range s.guarded {
		if a.matches(f) {
			return a
		}
	}
	return s.fallback
}

type decodeTable [128][8]slot

// buildTable expands arms into a table and rejects any pair of arms that
// could both match the same word.
func buildTable(arms []arm) (*decodeTable, error) {
	t := new(decodeTable)
	var errs []string
	for n := range arms {
		a := &arms[n]
		if a.opcode > 0x7f || a.funct3 > 7 || a.build == nil {
			errs = append(errs, fmt.Sprintf("%s: malformed arm", a.name))
			continue
		}
		switch a.guard {
		case guardFunct7:
			if a.value > 0x7f {
				errs = append(errs, fmt.Sprintf("%s: funct7 guard %#x exceeds 7 bits", a.name, a.value))
				continue
			}
		case guardFunct12:
			if a.value > 0xfff {
				errs = append(errs, fmt.Sprintf("%s: funct12 guard %#x exceeds 12 bits", a.name, a.value))
				continue
			}
		}

		lo, hi := a.funct3, a.funct3
		if a.anyFunct3 {
			lo, hi = 0, 7
		}
		for f3 := lo; f3 <= hi; f3++ {
			s := &t[a.opcode][f3]
			if a.guard == guardNone {
				if s.fallback != nil {
					errs = append(errs, fmt.Sprintf("opcode %#02x funct3 %d: %s and %s are both unguarded",
						a.opcode, f3, s.fallback.name, a.name))
					continue
				}
				s.fallback = a
				continue
			}
			clash := false
			for _, b := range s.guarded {
				if guardsOverlap(a, b) {
					errs = append(errs, fmt.Sprintf("opcode %#02x funct3 %d: %s (%s=%#x) overlaps %s (%s=%#x)",
						a.opcode, f3, a.name, a.guard, a.value, b.name, b.guard, b.value))
					clash = true
				}
			}
			if !clash {
				s.guarded = append(s.guarded, a)
			}
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("riscv: invalid decode table:\n\t%s", strings.Join(errs, "\n\t"))
	}
	return t, nil
}

// guardsOverlap reports whether some word satisfies both guards. funct7 is
// the top seven bits of funct12, so the two can collide.
func guardsOverlap(a, b *arm) bool {
	if a.guard == b.guard {
		return a.value == b.value
	}
	f7, f12 := a, b
	if f7.guard != guardFunct7 {
		f7, f12 = b, a
	}
	return f12.value>>5 == f7.value
}

func mustBuildTable(arms []arm) *decodeTable {
	t, err := buildTable(arms)
	if err != nil {
		panic(err)
	}
	return t
}

func op(opcode, funct3 uint32, name string, build func(*fields) Instr) arm {
	return arm{name: name, opcode: opcode, funct3: funct3, build: build}
}

func opF7(opcode, funct3, funct7 uint32, name string, build func(*fields) Instr) arm {
	return arm{name: name, opcode: opcode, funct3: funct3, guard: guardFunct7, value: funct7, build: build}
}

func opF12(opcode, funct3, funct12 uint32, name string, build func(*fields) Instr) arm {
	return arm{name: name, opcode: opcode, funct3: funct3, guard: guardFunct12, value: funct12, build: build}
}

func opAny(opcode uint32, name string, build func(*fields) Instr) arm {
	return arm{name: name, opcode: opcode, anyFunct3: true, build: build}
}

// rv32Arms is the RV32I base set plus Zicsr, Zifencei and the privileged
// trap-return and wait instructions.
var rv32Arms = []arm{
	op(opLoad, 0, "lb", func(f *fields) Instr { return Lb{f.rd, f.rs1, f.immI} }),
	op(opLoad, 1, "lh", func(f *fields) Instr { return Lh{f.rd, f.rs1, f.immI} }),
	op(opLoad, 2, "lw", func(f *fields) Instr { return Lw{f.rd, f.rs1, f.immI} }),
	op(opLoad, 4, "lbu", func(f *fields) Instr { return Lbu{f.rd, f.rs1, f.immI} }),
	op(opLoad, 5, "lhu", func(f *fields) Instr { return Lhu{f.rd, f.rs1, f.immI} }),

	op(opMiscMem, 0, "fence", func(f *fields) Instr { return Fence{f.rd, f.rs1, f.pred, f.succ, f.fm} }),
	op(opMiscMem, 1, "fence.i", func(f *fields) Instr { return FenceI{f.rd, f.rs1, f.immI} }),

	op(opOpImm, 0, "addi", func(f *fields) Instr { return Addi{f.rd, f.rs1, f.immI} }),
	opF7(opOpImm, 1, 0x00, "slli", func(f *fields) Instr { return Slli{f.rd, f.rs1, f.shamt} }),
	op(opOpImm, 2, "slti", func(f *fields) Instr { return Slti{f.rd, f.rs1, f.immI} }),
	op(opOpImm, 3, "sltiu", func(f *fields) Instr { return Sltiu{f.rd, f.rs1, f.immI} }),
	op(opOpImm, 4, "xori", func(f *fields) Instr { return Xori{f.rd, f.rs1, f.immI} }),
	opF7(opOpImm, 5, 0x00, "srli", func(f *fields) Instr { return Srli{f.rd, f.rs1, f.shamt} }),
	opF7(opOpImm, 5, 0x20, "srai", func(f *fields) Instr { return Srai{f.rd, f.rs1, f.shamt} }),
	op(opOpImm, 6, "ori", func(f *fields) Instr { return Ori{f.rd, f.rs1, f.immI} }),
	op(opOpImm, 7, "andi", func(f *fields) Instr { return Andi{f.rd, f.rs1, f.immI} }),

	opAny(opAuipc, "auipc", func(f *fields) Instr { return Auipc{f.rd, f.immU} }),
	opAny(opLui, "lui", func(f *fields) Instr { return Lui{f.rd, f.immU} }),
	opAny(opJal, "jal", func(f *fields) Instr { return Jal{f.rd, f.immJ} }),

	op(opStore, 0, "sb", func(f *fields) Instr { return Sb{f.rs1, f.rs2, f.immS} }),
	op(opStore, 1, "sh", func(f *fields) Instr { return Sh{f.rs1, f.rs2, f.immS} }),
	op(opStore, 2, "sw", func(f *fields) Instr { return Sw{f.rs1, f.rs2, f.immS} }),

	opF7(opOp, 0, 0x00, "add", func(f *fields) Instr { return Add{f.rd, f.rs1, f.rs2} }),
	opF7(opOp, 0, 0x20, "sub", func(f *fields) Instr { return Sub{f.rd, f.rs1, f.rs2} }),
	opF7(opOp, 1, 0x00, "sll", func(f *fields) Instr { return Sll{f.rd, f.rs1, f.rs2} }),
	opF7(opOp, 2, 0x00, "slt", func(f *fields) Instr { return Slt{f.rd, f.rs1, f.rs2} }),
	opF7(opOp, 3, 0x00, "sltu", func(f *fields) Instr { return Sltu{f.rd, f.rs1, f.rs2} }),
	opF7(opOp, 4, 0x00, "xor", func(f *fields) Instr { return Xor{f.rd, f.rs1, f.rs2} }),
	opF7(opOp, 5, 0x00, "srl", func(f *fields) Instr { return Srl{f.rd, f.rs1, f.rs2} }),
	opF7(opOp, 5, 0x20, "sra", func(f *fields) Instr { return Sra{f.rd, f.rs1, f.rs2} }),
	opF7(opOp, 6, 0x00, "or", func(f *fields) Instr { return Or{f.rd, f.rs1, f.rs2} }),
	opF7(opOp, 7, 0x00, "and", func(f *fields) Instr { return And{f.rd, f.rs1, f.rs2} }),

	op(opBranch, 0, "beq", func(f *fields) Instr { return Beq{f.rs1, f.rs2, f.immB} }),
	op(opBranch, 1, "bne", func(f *fields) Instr { return Bne{f.rs1, f.rs2, f.immB} }),
	op(opBranch, 4, "blt", func(f *fields) Instr { return Blt{f.rs1, f.rs2, f.immB} }),
	op(opBranch, 5, "bge", func(f *fields) Instr { return Bge{f.rs1, f.rs2, f.immB} }),
	op(opBranch, 6, "bltu", func(f *fields) Instr { return Bltu{f.rs1, f.rs2, f.immB} }),
	op(opBranch, 7, "bgeu", func(f *fields) Instr { return Bgeu{f.rs1, f.rs2, f.immB} }),

	op(opJalr, 0, "jalr", func(f *fields) Instr { return Jalr{f.rd, f.rs1, f.immI} }),

	opF12(opSystem, 0, 0x000, "ecall", func(*fields) Instr { return Ecall{} }),
	opF12(opSystem, 0, 0x001, "ebreak", func(*fields) Instr { return Ebreak{} }),
	opF12(opSystem, 0, 0x002, "uret", func(*fields) Instr { return Uret{} }),
	opF12(opSystem, 0, 0x102, "sret", func(*fields) Instr { return Sret{} }),
	opF12(opSystem, 0, 0x105, "wfi", func(*fields) Instr { return Wfi{} }),
	opF12(opSystem, 0, 0x302, "mret", func(*fields) Instr { return Mret{} }),
	op(opSystem, 1, "csrrw", func(f *fields) Instr { return Csrrw{f.rd, f.rs1, f.csr} }),
	op(opSystem, 2, "csrrs", func(f *fields) Instr { return Csrrs{f.rd, f.rs1, f.csr} }),
	op(opSystem, 3, "csrrc", func(f *fields) Instr { return Csrrc{f.rd, f.rs1, f.csr} }),
	op(opSystem, 5, "csrrwi", func(f *fields) Instr { return Csrrwi{f.rd, f.uimm, f.csr} }),
	op(opSystem, 6, "csrrsi", func(f *fields) Instr { return Csrrsi{f.rd, f.uimm, f.csr} }),
	op(opSystem, 7, "csrrci", func(f *fields) Instr { return Csrrci{f.rd, f.uimm, f.csr} }),
}

var table = mustBuildTable(rv32Arms)
