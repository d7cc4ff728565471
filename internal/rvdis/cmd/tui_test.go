package cmd

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea/v2"

	"rvdis/internal/disasm"
	"rvdis/internal/listing"
)

func loaded(t *testing.T) model {
	t.Helper()
	code := program(0x00000013, 0x00000013, 0x00000013, 0x00008067)
	d, err := disasm.New(0x1000, code, disasm.Source{Name: ".text", Index: 1}, []disasm.Symbol{
		{Name: "loop", Addr: 0x1008, Section: 1},
		{Name: "_start", Addr: 0x1000, Section: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	next, _ := newModel("/tmp/prog.elf", Config{Pseudo: true}).Update(loadedMsg{dis: d})
	return next.(model)
}

func press(t *testing.T, m model, keys ...string) model {
	t.Helper()
	for _, k := range keys {
		var ok bool
		m, _, ok = m.handleKey(k)
		if !ok {
			t.Fatalf("key %q not handled", k)
		}
	}
	return m
}

func TestModelLoad(t *testing.T) {
	m := loaded(t)
	if m.loading || m.err != nil {
		t.Fatalf("loading %v err %v", m.loading, m.err)
	}
	want := []string{
		"",
		"00001000 <_start>:",
		"    1000: 13 00 00 00 ",
		"    1004: 13 00 00 00 ",
		"",
		"00001008 <loop>:",
		"    1008: 13 00 00 00 ",
		"    100c: 67 80 00 00 ",
	}
	if len(m.lines) != len(want) {
		t.Fatalf("lines =\n%s", strings.Join(m.lines, "\n"))
	}
	for i, w := range want {
		if !strings.HasPrefix(m.lines[i], w) || (w == "" && m.lines[i] != "") {
			t.Errorf("line %d = %q, want prefix %q", i, m.lines[i], w)
		}
	}
	if m.anchors[0x1000] != 1 || m.anchors[0x1008] != 5 {
		t.Errorf("anchors = %v", m.anchors)
	}

	items := m.labels.Items()
	if len(items) != 2 {
		t.Fatalf("label items = %d", len(items))
	}
	if first := items[0].(labelItem); first.name != "_start" || first.addr != 0x1000 {
		t.Errorf("first label = %+v", first)
	}
}

func TestModelLabelNavigation(t *testing.T) {
	m := loaded(t)

	tests := []struct {
		key    string
		offset int
	}{
		{"n", 1},
		{"n", 5},
		{"n", 5},
		{"p", 1},
		{"p", 1},
		{"n", 5},
		{"g", 0},
	}
	for _, tt := range tests {
		m = press(t, m, tt.key)
		if m.offset != tt.offset {
			t.Fatalf("after %q offset = %d, want %d", tt.key, m.offset, tt.offset)
		}
	}
}

func TestModelJumpFromLabels(t *testing.T) {
	m := press(t, loaded(t), "s")
	if m.mode != viewLabels {
		t.Fatalf("mode = %v", m.mode)
	}
	m.labels.Select(1)
	m = press(t, m, "enter")
	if m.mode != viewListing || m.offset != 5 {
		t.Errorf("after enter mode %v offset %d", m.mode, m.offset)
	}
	if m.jumpTo(0x1004) {
		t.Error("jumped to an unlabelled address")
	}
}

func TestModelCycle(t *testing.T) {
	m := loaded(t)
	for _, want := range []viewMode{viewLabels, viewInfo, viewListing} {
		m = press(t, m, "tab")
		if m.mode != want {
			t.Fatalf("tab: mode = %v, want %v", m.mode, want)
		}
	}
	m = press(t, m, "shift+tab")
	if m.mode != viewInfo {
		t.Errorf("shift+tab: mode = %v", m.mode)
	}
	m = press(t, m, "a")
	if m.mode != viewListing {
		t.Errorf("a: mode = %v", m.mode)
	}
	if _, _, ok := m.handleKey("x"); ok {
		t.Error("unbound key handled")
	}
	if _, cmd, _ := m.handleKey("q"); cmd == nil {
		t.Error("q did not quit")
	}
}

func TestModelLoadError(t *testing.T) {
	next, _ := newModel("/tmp/prog.elf", Config{}).Update(loadedMsg{err: errors.New("boom")})
	m := next.(model)
	if m.loading || m.err == nil {
		t.Fatalf("loading %v err %v", m.loading, m.err)
	}
	for _, k := range []string{"s", "i", "tab"} {
		m = press(t, m, k)
		if m.mode != viewListing {
			t.Errorf("%q switched to %v without a disassembly", k, m.mode)
		}
	}
}

func TestModelResize(t *testing.T) {
	next, _ := loaded(t).Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m := next.(model)
	if m.width != 120 || m.height != 40 {
		t.Errorf("size = %dx%d", m.width, m.height)
	}
}

func TestInfoMarkdown(t *testing.T) {
	m := loaded(t)
	md := infoMarkdown("prog.elf", m.dis, listing.Summarize(m.dis))
	for _, want := range []string{
		"; prog.elf",
		"- **section** `.text`",
		"- **range** `0x1000` to `0x1010`",
		"- **entries** 4 (4 decoded, 0 unknown)",
		"- **labels** 2",
		"- `addi` 3\n- `jalr` 1\n",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("info missing %q:\n%s", want, md)
		}
	}
}
