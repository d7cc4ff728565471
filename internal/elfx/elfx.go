// Package elfx opens ELF32 RISC-V executables, maps them into memory and
// exposes their sections, loadable segments and symbols.
package elfx

import (
	"debug/elf"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"syscall"

	"rvdis/internal/disasm"
)

// ErrNotRISCV32 is returned for ELF files that are not 32-bit RISC-V.
var ErrNotRISCV32 = errors.New("not an ELF32 RISC-V object")

type Image struct {
	Path  string
	File  *elf.File
	All   []byte
	Loads []Seg
	Syms  []disasm.Symbol
	f     *os.File
}

type Seg struct {
	Vaddr, Off, Filesz uint64
	Flags              elf.ProgFlag
}

// Open parses path, checks that it is an ELF32 RISC-V object and maps the
// whole file read-only.
func Open(path string) (*Image, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open elf: %w", err)
	}
	if f.Class != elf.ELFCLASS32 || f.Machine != elf.EM_RISCV {
		f.Close()
		return nil, fmt.Errorf("%s (%s, %s): %w", path, f.Class, f.Machine, ErrNotRISCV32)
	}

	of, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open file: %w", err)
	}

	fi, err := of.Stat()
	if err != nil {
		of.Close()
		f.Close()
		return nil, fmt.Errorf("stat file: %w", err)
	}

	all, err := syscall.Mmap(int(of.Fd()), 0, int(fi.Size()), syscall.PROT_READ, syscall.MAP_SHARED)
	if err != nil {
		of.Close()
		f.Close()
		return nil, fmt.Errorf("mmap file: %w", err)
	}

	im := &Image{Path: path, File: f, All: all, f: of}
	for _, p := range f.Progs {
		if p.Type != elf.PT_LOAD {
			continue
		}
		im.Loads = append(im.Loads, Seg{
			Vaddr:  p.Vaddr,
			Off:    p.Off,
			Filesz: p.Filesz,
			Flags:  p.Flags,
		})
	}

	im.loadSymbols()
	slog.Debug("Opened ELF image", "path", path, "sections", len(f.Sections), "loads", len(im.Loads), "symbols", len(im.Syms))
	return im, nil
}

// Close unmaps the memory and closes the underlying files.
func (im *Image) Close() error {
	var err1, err2 error
	if im.All != nil {
		err1 = syscall.Munmap(im.All)
		im.All = nil
	}
	if im.f != nil {
		err2 = im.f.Close()
		im.f = nil
	}
	if im.File != nil {
		err3 := im.File.Close()
		if err3 != nil && err2 == nil {
			err2 = err3
		}
		im.File = nil
	}
	if err1 != nil {
		return err1
	}
	return err2
}

// VA2Off translates a virtual address into a file offset
// using PT_LOAD segments. It returns false if VA is unmapped.
func (im *Image) VA2Off(va uint64) (uint64, bool) {
	for _, l := range im.Loads {
		if va >= l.Vaddr && va < l.Vaddr+l.Filesz {
			return l.Off + (va - l.Vaddr), true
		}
	}
	return 0, false
}

// SliceVA returns the mapped bytes for the virtual address range
// [va, va+size). It returns (nil, false) if the range is unmapped or runs
// past the end of the file.
func (im *Image) SliceVA(va uint64, size uint64) ([]byte, bool) {
	off, ok := im.VA2Off(va)
	if !ok {
		return nil, false
	}
	return im.slice(off, size)
}

func (im *Image) slice(off, size uint64) ([]byte, bool) {
	if size == 0 {
		return []byte{}, true
	}
	end := off + size
	if end < off || end > uint64(len(im.All)) {
		return nil, false
	}
	return im.All[off:end], true
}

// loadSymbols reads .symtab, falling back to .dynsym for stripped files.
// Mapping symbols ($x, $d) only mark code/data transitions and are skipped.
func (im *Image) loadSymbols() {
	syms, err := im.File.Symbols()
	if err != nil {
		slog.Debug("No static symbols", "path", im.Path, "error", err)
		syms, err = im.File.DynamicSymbols()
		if err != nil {
			return
		}
	}
	for _, sym := range syms {
		if isMappingSymbol(sym.Name) {
			continue
		}
		im.Syms = append(im.Syms, disasm.Symbol{
			Name:    sym.Name,
			Addr:    sym.Value,
			Section: int(sym.Section),
		})
	}
}

func isMappingSymbol(name string) bool {
	return name == "$x" || name == "$d" || strings.HasPrefix(name, "$x.") || strings.HasPrefix(name, "$d.")
}

// Object returns the image's sections, segments and symbols for code
// selection. Section and segment data alias the mapping and are only valid
// until Close.
func (im *Image) Object() disasm.Object {
	var obj disasm.Object
	for i, s := range im.File.Sections {
		sec := disasm.Section{
			Name:  s.Name,
			Index: i,
			Addr:  s.Addr,
			Size:  s.Size,
			Alloc: s.Flags&elf.SHF_ALLOC != 0,
			Exec:  s.Flags&elf.SHF_EXECINSTR != 0,
		}
		if s.Type != elf.SHT_NOBITS && s.Type != elf.SHT_NULL {
			if data, ok := im.slice(s.Offset, s.Size); ok {
				sec.Data = data
			} else {
				slog.Warn("Section extends past end of file", "section", s.Name, "offset", s.Offset, "size", s.Size)
			}
		}
		obj.Sections = append(obj.Sections, sec)
	}
	for _, l := range im.Loads {
		seg := disasm.Segment{Vaddr: l.Vaddr, Exec: l.Flags&elf.PF_X != 0}
		if data, ok := im.slice(l.Off, l.Filesz); ok {
			seg.Data = data
		}
		obj.Segments = append(obj.Segments, seg)
	}
	obj.Symbols = im.Syms
	return obj
}

// Disassemble opens path and disassembles its code section. The result
// owns copies of every instruction word and outlives the mapping.
func Disassemble(path string) (*disasm.Disassembly, error) {
	im, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer im.Close()

	d, err := disasm.FromObject(im.Object())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	slog.Debug("Disassembled", "path", path, "section", d.Section().Name,
		"base", fmt.Sprintf("%#x", d.Base()), "entries", d.Len(), "labels", len(d.Labels()))
	return d, nil
}
