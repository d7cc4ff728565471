// Package elftest builds small ELF32 RISC-V images for tests.
package elftest

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// TextIndex is the section header index of .text in a built image.
const TextIndex = 1

// Symbol is a symbol table entry to emit. Section defaults to TextIndex.
type Symbol struct {
	Name    string
	Addr    uint32
	Section uint16
}

// Options describes the image to build.
type Options struct {
	Machine  elf.Machine // EM_RISCV when zero
	Base     uint32      // load address of .text
	Text     []byte
	Symbols  []Symbol
	Stripped bool // omit every section header, leaving only PT_LOAD
}

const textOff = 0x100

// Build returns the bytes of an executable with one R+X PT_LOAD segment
// covering .text, plus .symtab, .strtab and .shstrtab unless stripped.
func Build(o Options) []byte {
	if o.Machine == 0 {
		o.Machine = elf.EM_RISCV
	}
	le := binary.LittleEndian

	hdr := elf.Header32{
		Type:      uint16(elf.ET_EXEC),
		Machine:   uint16(o.Machine),
		Version:   uint32(elf.EV_CURRENT),
		Entry:     o.Base,
		Phoff:     52,
		Ehsize:    52,
		Phentsize: 32,
		Phnum:     1,
	}
	copy(hdr.Ident[:], elf.ELFMAG)
	hdr.Ident[elf.EI_CLASS] = byte(elf.ELFCLASS32)
	hdr.Ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	hdr.Ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)

	prog := elf.Prog32{
		Type:   uint32(elf.PT_LOAD),
		Off:    textOff,
		Vaddr:  o.Base,
		Paddr:  o.Base,
		Filesz: uint32(len(o.Text)),
		Memsz:  uint32(len(o.Text)),
		Flags:  uint32(elf.PF_R | elf.PF_X),
		Align:  4,
	}

	body := make([]byte, textOff)
	body = append(body, o.Text...)

	var shdrs []elf.Section32
	if !o.Stripped {
		strtab := []byte{0}
		var symtab bytes.Buffer
		binary.Write(&symtab, le, elf.Sym32{})
		for _, s := range o.Symbols {
			shndx := s.Section
			if shndx == 0 {
				shndx = TextIndex
			}
			binary.Write(&symtab, le, elf.Sym32{
				Name:  uint32(len(strtab)),
				Value: s.Addr,
				Info:  elf.ST_INFO(elf.STB_GLOBAL, elf.STT_FUNC),
				Shndx: shndx,
			})
			strtab = append(append(strtab, s.Name...), 0)
		}

		names := []byte("\x00.text\x00.symtab\x00.strtab\x00.shstrtab\x00")

		for len(body)%4 != 0 {
			body = append(body, 0)
		}
		symOff := len(body)
		body = append(body, symtab.Bytes()...)
		strOff := len(body)
		body = append(body, strtab...)
		shstrOff := len(body)
		body = append(body, names...)
		for len(body)%4 != 0 {
			body = append(body, 0)
		}

		shdrs = []elf.Section32{
			{},
			{
				Name: 1, Type: uint32(elf.SHT_PROGBITS), Flags: uint32(elf.SHF_ALLOC | elf.SHF_EXECINSTR),
				Addr: o.Base, Off: textOff, Size: uint32(len(o.Text)), Addralign: 4,
			},
			{
				Name: 7, Type: uint32(elf.SHT_SYMTAB), Off: uint32(symOff), Size: uint32(symtab.Len()),
				Link: 3, Info: 1, Addralign: 4, Entsize: 16,
			},
			{Name: 15, Type: uint32(elf.SHT_STRTAB), Off: uint32(strOff), Size: uint32(len(strtab)), Addralign: 1},
			{Name: 23, Type: uint32(elf.SHT_STRTAB), Off: uint32(shstrOff), Size: uint32(len(names)), Addralign: 1},
		}
		hdr.Shoff = uint32(len(body))
		hdr.Shentsize = 40
		hdr.Shnum = uint16(len(shdrs))
		hdr.Shstrndx = 4
	}

	var out bytes.Buffer
	binary.Write(&out, le, hdr)
	binary.Write(&out, le, prog)
	img := out.Bytes()
	copy(body, img)
	out.Reset()
	out.Write(body)
	for _, sh := range shdrs {
		binary.Write(&out, le, sh)
	}
	return out.Bytes()
}

// Write builds an image into a temporary file and returns its path.
func Write(tb testing.TB, o Options) string {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), "prog.elf")
	if err := os.WriteFile(path, Build(o), 0o644); err != nil {
		tb.Fatal(err)
	}
	return path
}
