package disasm

import "fmt"

// Section is one section header of an object file, reduced to what code
// selection needs.
type Section struct {
	Name  string
	Index int
	Addr  uint64
	Size  uint64
	Alloc bool
	Exec  bool
	Data  []byte
}

// Segment is one PT_LOAD program header with its file-backed bytes.
type Segment struct {
	Vaddr uint64
	Exec  bool
	Data  []byte
}

// Symbol is a symbol table entry. Section is the owning section header
// index; zero is undefined.
type Symbol struct {
	Name    string
	Addr    uint64
	Section int
}

const (
	sectionUndef        = 0
	sectionReservedLow  = 0xff00
	sectionReservedHigh = 0xffff
)

// Defined reports whether the symbol belongs to a real section rather than
// being undefined, absolute or common.
func (s Symbol) Defined() bool {
	return s.Section != sectionUndef && (s.Section < sectionReservedLow || s.Section > sectionReservedHigh)
}

// Object is the parsed view of an executable that FromObject selects code
// from.
type Object struct {
	Sections []Section
	Segments []Segment
	Symbols  []Symbol
}

// FromObject selects the single code source of obj and disassembles it.
// A section named .text wins, then any allocated executable section, then
// an executable PT_LOAD segment. More than one candidate at the first tier
// that has any is an Ambiguous error.
func FromObject(obj Object) (*Disassembly, error) {
	var text, exec []Section
	for _, s := range obj.Sections {
		if len(s.Data) == 0 {
			continue
		}
		if s.Name == ".text" {
			text = append(text, s)
		}
		if s.Alloc && s.Exec {
			exec = append(exec, s)
		}
	}

	for _, tier := range [][]Section{text, exec} {
		switch len(tier) {
		case 0:
			continue
		case 1:
			s := tier[0]
			return New(s.Addr, s.Data, Source{Name: s.Name, Index: s.Index}, obj.Symbols)
		default:
			return nil, structural(Ambiguous, "%d candidate sections: %s", len(tier), sectionNames(tier))
		}
	}

	var segs []Segment
	for _, p := range obj.Segments {
		if p.Exec && len(p.Data) > 0 {
			segs = append(segs, p)
		}
	}
	switch len(segs) {
	case 0:
		return nil, structural(NoCode, "no executable section or segment")
	case 1:
	default:
		return nil, structural(Ambiguous, "%d executable PT_LOAD segments", len(segs))
	}

	seg := segs[0]
	end := seg.Vaddr + uint64(len(seg.Data))
	var syms []Symbol
	for _, s := range obj.Symbols {
		if s.Addr >= seg.Vaddr && s.Addr < end {
			syms = append(syms, s)
		}
	}
	name := fmt.Sprintf("LOAD@%#x", seg.Vaddr)
	return New(seg.Vaddr, seg.Data, Source{Name: name, Index: AnySection}, syms)
}

func sectionNames(secs []Section) string {
	var out string
	for i, s := range secs {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s[%d]", s.Name, s.Index)
	}
	return out
}
