// Package crosscheck compares the RV32I decoder against the Go project's
// RISC-V disassembler.
package crosscheck

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/arch/riscv64/riscv64asm"

	"rvdis/internal/disasm"
	"rvdis/internal/riscv"
)

// Class is the outcome of comparing one word.
type Class uint8

const (
	Agree         Class = iota // both decoded to the same mnemonic
	Mismatch                   // both decoded, to different mnemonics
	OnlyLocal                  // only the local decoder accepted the word
	OnlyReference              // only riscv64asm accepted the word
	Neither                    // neither decoder accepted the word
)

var classNames = [...]string{"agree", "mismatch", "only-local", "only-reference", "neither"}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return fmt.Sprintf("class(%d)", uint8(c))
}

// Classes lists every Class in report order.
var Classes = []Class{Agree, Mismatch, OnlyLocal, OnlyReference, Neither}

// Finding is the comparison of a single word.
type Finding struct {
	Addr      uint64
	Word      uint32
	Class     Class
	Local     string // local mnemonic, empty if undecoded
	Reference string // riscv64asm mnemonic, empty if undecoded
}

// aliases maps reference mnemonics onto the base instruction the local
// decoder reports for the same encoding.
var aliases = map[string]string{
	"fence.tso": "fence",
	"pause":     "fence",
}

// Compare decodes word with both decoders and classifies the result.
func Compare(word uint32) Finding {
	f := Finding{Word: word}
	if inst, ok := riscv.Decode(word); ok {
		f.Local = inst.Name()
	}

	var raw [4]byte
	raw[0], raw[1], raw[2], raw[3] = byte(word), byte(word>>8), byte(word>>16), byte(word>>24)
	if inst, err := riscv64asm.Decode(raw[:]); err == nil && inst.Len == 4 {
		f.Reference = strings.ToLower(inst.Op.String())
	}

	switch {
	case f.Local != "" && f.Reference != "":
		ref := f.Reference
		if a, ok := aliases[ref]; ok {
			ref = a
		}
		if strings.EqualFold(f.Local, ref) {
			f.Class = Agree
		} else {
			f.Class = Mismatch
		}
	case f.Local != "":
		f.Class = OnlyLocal
	case f.Reference != "":
		f.Class = OnlyReference
	default:
		f.Class = Neither
	}
	return f
}

// Report is the result of comparing every entry of a disassembly.
type Report struct {
	Total    int
	Counts   map[Class]int
	Findings []Finding // every entry that was not Agree or Neither
}

// Run compares every entry of d.
func Run(d *disasm.Disassembly) Report {
	r := Report{Counts: make(map[Class]int)}
	for e := range d.Entries() {
		f := Compare(e.Word())
		f.Addr = e.Addr
		r.Total++
		r.Counts[f.Class]++
		if f.Class != Agree && f.Class != Neither {
			r.Findings = append(r.Findings, f)
		}
	}
	return r
}

// ErrMismatch matches the error returned by Report.Err.
var ErrMismatch = errors.New("decoder disagrees with riscv64asm")

// Err reports the first mismatch, if any.
func (r Report) Err() error {
	n := r.Counts[Mismatch]
	if n == 0 {
		return nil
	}
	for _, f := range r.Findings {
		if f.Class == Mismatch {
			return fmt.Errorf("%w: %d words, first at %#x (%08x): %s vs %s",
				ErrMismatch, n, f.Addr, f.Word, f.Local, f.Reference)
		}
	}
	return fmt.Errorf("%w: %d words", ErrMismatch, n)
}
