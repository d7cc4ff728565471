package riscv

import "encoding/binary"

// fields are the decoded bit fields of one instruction word. Every field is
// extracted up front; an arm's builder picks the ones its format uses.
type fields struct {
	rd, rs1, rs2 Reg

	funct7  uint32
	funct12 uint32

	immI, immS, immB, immJ int32
	immU                   uint32

	shamt uint8
	uimm  uint8
	csr   uint16

	pred, succ, fm uint8
}

func regField(w Word, hi, lo uint) Reg {
	r, err := RegFromIndex(w.Bits(hi, lo))
	if err != nil {
		return Zero
	}
	return r
}

func extract(w Word) fields {
	return fields{
		rd:  regField(w, 11, 7),
		rs1: regField(w, 19, 15),
		rs2: regField(w, 24, 20),

		funct7:  w.Bits(31, 25),
		funct12: w.Bits(31, 20),

		immI: SignExtend(w.Bits(31, 20), 11),
		immS: SignExtend(w.Bits(31, 25)<<5|w.Bits(11, 7), 11),
		immB: SignExtend(w.Bit(31)<<12|w.Bit(7)<<11|w.Bits(30, 25)<<5|w.Bits(11, 8)<<1, 12),
		immJ: SignExtend(w.Bit(31)<<20|w.Bits(19, 12)<<12|w.Bit(20)<<11|w.Bits(30, 21)<<1, 20),
		immU: w.Bits(31, 12),

		shamt: uint8(w.Bits(24, 20)),
		uimm:  uint8(w.Bits(19, 15)),
		csr:   uint16(w.Bits(31, 20)),

		pred: uint8(w.Bits(27, 24)),
		succ: uint8(w.Bits(23, 20)),
		fm:   uint8(w.Bits(31, 28)),
	}
}

// Decode decodes one 32-bit instruction word. It reports false when the
// word is not an RV32I instruction this package knows. The all-zero word
// decodes to Illegal.
func Decode(word uint32) (Instr, bool) {
	if word == 0 {
		return Illegal{}, true
	}
	w := Word(word)
	s := &table[w.Bits(6, 0)][w.Bits(14, 12)]
	if s.empty() {
		return nil, false
	}
	f := extract(w)
	a := s.lookup(&f)
	if a == nil {
		return nil, false
	}
	return a.build(&f), true
}

// DecodeBytes decodes a little-endian instruction word. b must hold exactly
// four bytes.
func DecodeBytes(b []byte) (Instr, bool) {
	if len(b) != 4 {
		return nil, false
	}
	return Decode(binary.LittleEndian.Uint32(b))
}
