// Package riscv decodes 32-bit RV32I instruction words into typed
// instructions and renders them as assembly operands.
package riscv

import "fmt"

// Word is a raw 32-bit instruction word.
type Word uint32

// Bits extracts the inclusive bit range [lo, hi] and shifts it down to bit 0.
// It panics if the range is malformed; callers always pass constants.
func (w Word) Bits(hi, lo uint) uint32 {
	if hi > 31 || lo > hi {
		panic(fmt.Sprintf("riscv: invalid bit range [%d:%d]", hi, lo))
	}
	mask := ^uint32(0) >> (31 - hi)
	return (uint32(w) & mask) >> lo
}

// Bit extracts the single bit at idx.
func (w Word) Bit(idx uint) uint32 {
	return w.Bits(idx, idx)
}

// SignExtend treats bit hi of v as the sign bit and copies it into every
// higher bit position.
func SignExtend(v uint32, hi uint) int32 {
	if hi > 31 {
		panic(fmt.Sprintf("riscv: invalid sign bit %d", hi))
	}
	shift := 31 - hi
	return int32(v<<shift) >> shift
}
