// Package disasm builds a label-annotated, address-ordered disassembly of
// one RV32I code section.
package disasm

import (
	"encoding/binary"
	"iter"
	"slices"

	"rvdis/internal/riscv"
)

// Entry is one instruction slot of a Disassembly.
type Entry struct {
	Addr   uint64      // virtual address of the word
	Bytes  [4]byte     // raw little-endian encoding
	Instr  riscv.Instr // nil when the word did not decode
	Labels []string    // symbols at Addr, in symbol-table order
}

// Word returns the entry's raw instruction word.
func (e Entry) Word() uint32 { return binary.LittleEndian.Uint32(e.Bytes[:]) }

// Decoded reports whether the word decoded to an instruction.
func (e Entry) Decoded() bool { return e.Instr != nil }

// AnySection marks a Source whose symbols may belong to any defined
// section, as when code comes from a program segment.
const AnySection = -1

// Source identifies where a Disassembly's code came from.
type Source struct {
	Name  string // section name, or a synthetic name for a segment
	Index int    // section header index symbols must carry, or AnySection
}

func (s Source) owns(sym Symbol) bool {
	if s.Index == AnySection {
		return sym.Defined()
	}
	return sym.Section == s.Index
}

// Disassembly maps every word of a code section to its Entry. It is
// immutable once built and safe for concurrent readers.
type Disassembly struct {
	base    uint64
	source  Source
	entries []Entry
	labels  map[string]uint64
}

// New splits code into little-endian words starting at base, decodes each
// one and attaches the symbols owned by src at exact entry addresses.
// Symbols elsewhere are dropped.
func New(base uint64, code []byte, src Source, symbols []Symbol) (*Disassembly, error) {
	if len(code)%4 != 0 {
		return nil, structural(Misaligned, "%s is %d bytes, not a multiple of 4", src.Name, len(code))
	}
	d := &Disassembly{
		base:    base,
		source:  src,
		entries: make([]Entry, len(code)/4),
		labels:  make(map[string]uint64),
	}
	for i := range d.entries {
		e := &d.entries[i]
		e.Addr = base + 4*uint64(i)
		copy(e.Bytes[:], code[4*i:])
		if inst, ok := riscv.DecodeBytes(e.Bytes[:]); ok {
			e.Instr = inst
		}
	}
	for _, sym := range symbols {
		if sym.Name == "" || !src.owns(sym) {
			continue
		}
		i, ok := d.index(sym.Addr)
		if !ok {
			continue
		}
		d.entries[i].Labels = append(d.entries[i].Labels, sym.Name)
		if _, dup := d.labels[sym.Name]; !dup {
			d.labels[sym.Name] = sym.Addr
		}
	}
	return d, nil
}

func (d *Disassembly) index(addr uint64) (int, bool) {
	if addr < d.base || (addr-d.base)%4 != 0 {
		return 0, false
	}
	i := (addr - d.base) / 4
	if i >= uint64(len(d.entries)) {
		return 0, false
	}
	return int(i), true
}

// Entries yields every entry in increasing address order. Each call starts
// a fresh traversal. Entries and their Labels must not be modified.
func (d *Disassembly) Entries() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, e := range d.entries {
			e.Labels = slices.Clip(e.Labels)
			if !yield(e) {
				return
			}
		}
	}
}

// At returns the entry at addr.
func (d *Disassembly) At(addr uint64) (Entry, bool) {
	i, ok := d.index(addr)
	if !ok {
		return Entry{}, false
	}
	return d.entries[i], true
}

// Len is the number of entries.
func (d *Disassembly) Len() int { return len(d.entries) }

// Base is the address of the first entry.
func (d *Disassembly) Base() uint64 { return d.base }

// End is the address one past the last entry.
func (d *Disassembly) End() uint64 { return d.base + 4*uint64(len(d.entries)) }

// Section describes the code source.
func (d *Disassembly) Section() Source { return d.source }

// Labels returns a copy of the label map. A name attached at several
// addresses maps to the first one.
func (d *Disassembly) Labels() map[string]uint64 {
	m := make(map[string]uint64, len(d.labels))
	for k, v := range d.labels {
		m[k] = v
	}
	return m
}

// LabelAt returns the first label at addr, if any.
func (d *Disassembly) LabelAt(addr uint64) (string, bool) {
	e, ok := d.At(addr)
	if !ok || len(e.Labels) == 0 {
		return "", false
	}
	return e.Labels[0], true
}
