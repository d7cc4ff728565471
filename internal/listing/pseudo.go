package listing

import "rvdis/internal/riscv"

// Pseudo rewrites inst as the standard assembler pseudo-instruction it
// encodes, if there is one.
func Pseudo(inst riscv.Instr) (name string, args []riscv.Arg, ok bool) {
	switch i := inst.(type) {
	case riscv.Addi:
		switch {
		case i.Rd == riscv.Zero && i.Rs1 == riscv.Zero && i.Imm == 0:
			return "nop", nil, true
		case i.Imm == 0:
			return "mv", []riscv.Arg{i.Rd, i.Rs1}, true
		case i.Rs1 == riscv.Zero:
			return "li", []riscv.Arg{i.Rd, riscv.SignedImm(i.Imm)}, true
		}
	case riscv.Xori:
		if i.Imm == -1 {
			return "not", []riscv.Arg{i.Rd, i.Rs1}, true
		}
	case riscv.Sub:
		if i.Rs1 == riscv.Zero {
			return "neg", []riscv.Arg{i.Rd, i.Rs2}, true
		}
	case riscv.Sltiu:
		if i.Imm == 1 {
			return "seqz", []riscv.Arg{i.Rd, i.Rs1}, true
		}
	case riscv.Sltu:
		if i.Rs1 == riscv.Zero {
			return "snez", []riscv.Arg{i.Rd, i.Rs2}, true
		}
	case riscv.Jal:
		switch i.Rd {
		case riscv.Zero:
			return "j", []riscv.Arg{riscv.SignedImm(i.Imm)}, true
		case riscv.Ra:
			return "jal", []riscv.Arg{riscv.SignedImm(i.Imm)}, true
		}
	case riscv.Jalr:
		if i.Rd == riscv.Zero && i.Imm == 0 {
			if i.Rs1 == riscv.Ra {
				return "ret", nil, true
			}
			return "jr", []riscv.Arg{i.Rs1}, true
		}
	case riscv.Beq:
		if i.Rs2 == riscv.Zero {
			return "beqz", []riscv.Arg{i.Rs1, riscv.SignedImm(i.Imm)}, true
		}
	case riscv.Bne:
		if i.Rs2 == riscv.Zero {
			return "bnez", []riscv.Arg{i.Rs1, riscv.SignedImm(i.Imm)}, true
		}
	case riscv.Fence:
		if i.Pred == 0xf && i.Succ == 0xf && i.Fm == 0 && i.Rd == riscv.Zero && i.Rs1 == riscv.Zero {
			return "fence", nil, true
		}
	case riscv.Csrrs:
		if i.Rs1 == riscv.Zero {
			return "csrr", []riscv.Arg{i.Rd, csrOperand(inst)}, true
		}
	case riscv.Csrrw:
		if i.Rd == riscv.Zero {
			return "csrw", []riscv.Arg{csrOperand(inst), i.Rs1}, true
		}
	}
	return "", nil, false
}

// csrOperand reuses the decoder's CSR rendering, which is the second
// operand of every CSR form.
func csrOperand(inst riscv.Instr) riscv.Arg {
	return inst.Args()[1]
}
