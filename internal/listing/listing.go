// Package listing renders a disassembly as an objdump-style text listing
// or as JSON.
package listing

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"

	"github.com/ianlancetaylor/demangle"

	"rvdis/internal/disasm"
	"rvdis/internal/riscv"
	"rvdis/internal/ui/colorize"
)

// Options controls how entries are rendered.
type Options struct {
	Pseudo   bool // print pseudo-instructions such as mv, li and ret
	Demangle bool // demangle C++ and Rust symbol names
	Color    bool // highlight lines for a terminal
	Targets  bool // annotate jumps and branches with their absolute target
}

// Unknown is printed in place of a word that did not decode.
const Unknown = "<unknown>"

// Text renders one instruction.
func Text(inst riscv.Instr, opts Options) string {
	if inst == nil {
		return Unknown
	}
	if opts.Pseudo {
		if name, args, ok := Pseudo(inst); ok {
			return riscv.FormatArgs(name, args)
		}
	}
	return riscv.Format(inst)
}

// Label renders a symbol name.
func Label(name string, opts Options) string {
	if opts.Demangle {
		return demangle.Filter(name)
	}
	return name
}

// Line renders an entry as "addr: bytes \tinstruction". d supplies target
// labels and may be nil.
func Line(d *disasm.Disassembly, e disasm.Entry, opts Options) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%8x: ", e.Addr)
	for _, c := range e.Bytes {
		fmt.Fprintf(&b, "%02x ", c)
	}
	fmt.Fprintf(&b, "%17s\t", "")
	b.WriteString(Text(e.Instr, opts))

	if opts.Targets {
		if tgt, ok := riscv.Target(e.Instr, e.Addr); ok {
			fmt.Fprintf(&b, "  # %x", tgt)
			if d != nil {
				if l, ok := d.LabelAt(tgt); ok {
					fmt.Fprintf(&b, " <%s>", Label(l, opts))
				}
			}
		}
	}
	return b.String()
}

// Header is the preamble Write prints before the entries.
func Header(path string, d *disasm.Disassembly) string {
	return fmt.Sprintf("\n%s:\tfile format elf32-littleriscv\n\n\nDisassembly of section %s:\n", path, d.Section().Name)
}

// Lines yields the body of the listing. A labelled entry is preceded by a
// blank line and one "addr <label>:" line per label.
func Lines(d *disasm.Disassembly, opts Options) iter.Seq[string] {
	paint := func(s string) string { return s }
	if opts.Color {
		paint = colorize.Line
	}
	return func(yield func(string) bool) {
		for e := range d.Entries() {
			if len(e.Labels) > 0 {
				if !yield("") {
					return
				}
				for _, l := range e.Labels {
					if !yield(paint(fmt.Sprintf("%08x <%s>:", e.Addr, Label(l, opts)))) {
						return
					}
				}
			}
			if !yield(paint(Line(d, e, opts))) {
				return
			}
		}
	}
}

// Write prints the complete listing for the file at path.
func Write(w io.Writer, path string, d *disasm.Disassembly, opts Options) error {
	bw := bufio.NewWriter(w)
	if _, err := io.WriteString(bw, Header(path, d)); err != nil {
		return fmt.Errorf("write listing: %w", err)
	}
	for line := range Lines(d, opts) {
		bw.WriteString(line)
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("write listing: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write listing: %w", err)
	}
	slog.Debug("Wrote listing", "section", d.Section().Name, "entries", d.Len())
	return nil
}

// Record is the JSON form of one entry.
type Record struct {
	Addr    uint64   `json:"addr"`
	Bytes   string   `json:"bytes"`
	Decoded bool     `json:"decoded"`
	Name    string   `json:"name,omitempty"`
	Text    string   `json:"text"`
	Labels  []string `json:"labels,omitempty"`
	Target  *uint64  `json:"target,omitempty"`
}

// Document is the JSON form of a whole disassembly.
type Document struct {
	Path    string   `json:"path,omitempty"`
	Section string   `json:"section"`
	Base    uint64   `json:"base"`
	End     uint64   `json:"end"`
	Entries []Record `json:"entries"`
}

// NewDocument converts d for JSON output.
func NewDocument(path string, d *disasm.Disassembly, opts Options) Document {
	doc := Document{
		Path:    path,
		Section: d.Section().Name,
		Base:    d.Base(),
		End:     d.End(),
		Entries: make([]Record, 0, d.Len()),
	}
	for e := range d.Entries() {
		r := Record{
			Addr:    e.Addr,
			Bytes:   fmt.Sprintf("%08x", e.Word()),
			Decoded: e.Decoded(),
			Text:    Text(e.Instr, opts),
		}
		if e.Decoded() {
			r.Name = e.Instr.Name()
		}
		for _, l := range e.Labels {
			r.Labels = append(r.Labels, Label(l, opts))
		}
		if tgt, ok := riscv.Target(e.Instr, e.Addr); ok {
			r.Target = &tgt
		}
		doc.Entries = append(doc.Entries, r)
	}
	return doc
}

// WriteJSON prints d as an indented JSON Document.
func WriteJSON(w io.Writer, path string, d *disasm.Disassembly, opts Options) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewDocument(path, d, opts)); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// Stats summarises a disassembly.
type Stats struct {
	Entries   int
	Decoded   int
	Unknown   int
	Labels    int
	Mnemonics map[string]int
}

// Summarize counts entries, decode misses, labels and mnemonic frequencies.
func Summarize(d *disasm.Disassembly) Stats {
	s := Stats{Mnemonics: make(map[string]int)}
	for e := range d.Entries() {
		s.Entries++
		s.Labels += len(e.Labels)
		if !e.Decoded() {
			s.Unknown++
			continue
		}
		s.Decoded++
		s.Mnemonics[e.Instr.Name()]++
	}
	return s
}
