package riscv_test

import (
	"encoding/binary"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"rvdis/internal/riscv"
)

var _ = Describe("Decoder", func() {
	decodeWord := func(word uint32) riscv.Instr {
		inst, ok := riscv.Decode(word)
		ExpectWithOffset(1, ok).To(BeTrue(), "word %#08x did not decode", word)
		return inst
	}

	Describe("Little-endian byte fixtures", func() {
		DescribeTable("decodes each base format",
			func(b []byte, want riscv.Instr, text string) {
				inst, ok := riscv.DecodeBytes(b)
				Expect(ok).To(BeTrue())
				Expect(inst).To(Equal(want))
				Expect(riscv.Format(inst)).To(Equal(text))
			},
			Entry("R-type add", []byte{0x33, 0x86, 0xb7, 0x00},
				riscv.Add{Rd: riscv.A2, Rs1: riscv.A5, Rs2: riscv.A1}, "add a2, a5, a1"),
			Entry("I-type addi", []byte{0x13, 0x01, 0x01, 0x04},
				riscv.Addi{Rd: riscv.Sp, Rs1: riscv.Sp, Imm: 64}, "addi sp, sp, 64"),
			Entry("U-type lui", []byte{0x37, 0xc5, 0xad, 0xde},
				riscv.Lui{Rd: riscv.A0, Imm: 912092}, "lui a0, 912092"),
			Entry("J-type jal", []byte{0x6f, 0x00, 0x00, 0x00},
				riscv.Jal{Rd: riscv.Zero, Imm: 0}, "jal zero, 0"),
			Entry("S-type sw", le(0x00112623),
				riscv.Sw{Rs1: riscv.Sp, Rs2: riscv.Ra, Imm: 12}, "sw ra, 12(sp)"),
			Entry("B-type beq", le(0xfe050ce3),
				riscv.Beq{Rs1: riscv.A0, Rs2: riscv.Zero, Imm: -8}, "beq a0, zero, -8"),
		)
	})

	Describe("Immediates", func() {
		It("sign-extends negative load offsets", func() {
			Expect(decodeWord(0xffc42503)).To(Equal(riscv.Lw{Rd: riscv.A0, Rs1: riscv.S0, Imm: -4}))
		})

		It("keeps the largest positive I-type offset", func() {
			Expect(decodeWord(0x7ff1c283)).To(Equal(riscv.Lbu{Rd: riscv.T0, Rs1: riscv.Gp, Imm: 2047}))
		})

		It("reassembles the split S-type immediate", func() {
			Expect(decodeWord(0xfeb50fa3)).To(Equal(riscv.Sb{Rs1: riscv.A0, Rs2: riscv.A1, Imm: -1}))
		})

		It("decodes the B-type range limits", func() {
			Expect(decodeWord(0x7e62ffe3)).To(Equal(riscv.Bgeu{Rs1: riscv.T0, Rs2: riscv.T1, Imm: 4094}))
			Expect(decodeWord(0x80b54063)).To(Equal(riscv.Blt{Rs1: riscv.A0, Rs2: riscv.A1, Imm: -4096}))
		})

		It("decodes the J-type range limits", func() {
			Expect(decodeWord(0x7ffff06f)).To(Equal(riscv.Jal{Rd: riscv.Zero, Imm: 1048574}))
			Expect(decodeWord(0x8000006f)).To(Equal(riscv.Jal{Rd: riscv.Zero, Imm: -1048576}))
			Expect(decodeWord(0xff1ff0ef)).To(Equal(riscv.Jal{Rd: riscv.Ra, Imm: -16}))
		})

		It("leaves the U-type immediate unshifted", func() {
			Expect(decodeWord(0x12345197)).To(Equal(riscv.Auipc{Rd: riscv.Gp, Imm: 0x12345}))
		})

		It("treats sltiu's immediate as sign-extended", func() {
			Expect(decodeWord(0xfff5b513)).To(Equal(riscv.Sltiu{Rd: riscv.A0, Rs1: riscv.A1, Imm: -1}))
		})
	})

	Describe("Guarded arms", func() {
		It("separates add and sub by funct7", func() {
			Expect(decodeWord(0x40c58533)).To(Equal(riscv.Sub{Rd: riscv.A0, Rs1: riscv.A1, Rs2: riscv.A2}))
		})

		It("separates srli and srai by funct7", func() {
			Expect(decodeWord(0x40355513)).To(Equal(riscv.Srai{Rd: riscv.A0, Rs1: riscv.A0, Shamt: 3}))
			Expect(decodeWord(0x01f51513)).To(Equal(riscv.Slli{Rd: riscv.A0, Rs1: riscv.A0, Shamt: 31}))
		})

		DescribeTable("selects SYSTEM instructions by funct12",
			func(word uint32, want riscv.Instr) {
				Expect(decodeWord(word)).To(Equal(want))
			},
			Entry("ecall", uint32(0x00000073), riscv.Ecall{}),
			Entry("ebreak", uint32(0x00100073), riscv.Ebreak{}),
			Entry("uret", uint32(0x00200073), riscv.Uret{}),
			Entry("sret", uint32(0x10200073), riscv.Sret{}),
			Entry("wfi", uint32(0x10500073), riscv.Wfi{}),
			Entry("mret", uint32(0x30200073), riscv.Mret{}),
		)
	})

	Describe("CSR access", func() {
		It("decodes the CSR number and register source", func() {
			inst := decodeWord(0x30002573)
			Expect(inst).To(Equal(riscv.Csrrs{Rd: riscv.A0, Rs1: riscv.Zero, Csr: 0x300}))
			Expect(riscv.Format(inst)).To(Equal("csrrs a0, mstatus, zero"))
		})

		It("decodes the immediate source as a zero-extended uimm", func() {
			inst := decodeWord(0x3052d073)
			Expect(inst).To(Equal(riscv.Csrrwi{Rd: riscv.Zero, Uimm: 5, Csr: 0x305}))
			Expect(riscv.Format(inst)).To(Equal("csrrwi zero, mtvec, 5"))
		})

		It("renders uncatalogued CSRs by number", func() {
			Expect(riscv.Format(decodeWord(0x7ff5b2f3))).To(Equal("csrrc t0, 0x7ff, a1"))
		})
	})

	Describe("Rendering", func() {
		DescribeTable("matches the canonical assembly text",
			func(word uint32, text string) {
				Expect(riscv.Format(decodeWord(word))).To(Equal(text))
			},
			Entry("illegal", uint32(0x00000000), "illegal"),
			Entry("load", uint32(0xffc42503), "lw a0, -4(s0)"),
			Entry("jalr linking through ra", uint32(0x000080e7), "jalr 0(ra)"),
			Entry("jalr to zero", uint32(0x00008067), "jalr zero, 0(ra)"),
			Entry("full fence", uint32(0x0ff0000f), "fence zero, zero, pred=iorw succ=iorw fm=0"),
			Entry("partial fence", uint32(0x0030000f), "fence zero, zero, pred=0 succ=rw fm=0"),
			Entry("fence.i", uint32(0x0000100f), "fence.i"),
			Entry("srai", uint32(0x40355513), "srai a0, a0, 3"),
			Entry("auipc", uint32(0x12345197), "auipc gp, 74565"),
		)
	})
})

func le(word uint32) []byte {
	return binary.LittleEndian.AppendUint32(nil, word)
}
