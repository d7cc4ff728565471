package cmd

import (
	"cmp"
	"fmt"
	"io"
	"os"
	pathpkg "path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/v2/list"
	"github.com/charmbracelet/bubbles/v2/spinner"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"

	"rvdis/internal/disasm"
	"rvdis/internal/elfx"
	"rvdis/internal/listing"
	"rvdis/internal/rvdis/styles"
)

type viewMode int

const (
	viewListing viewMode = iota
	viewLabels
	viewInfo
)

type labelItem struct {
	addr uint64
	name string
}

func (i labelItem) Title() string       { return fmt.Sprintf("%x  %s", i.addr, i.name) }
func (i labelItem) Description() string { return "" }
func (i labelItem) FilterValue() string { return fmt.Sprintf("%x %s", i.addr, i.name) }

type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(labelItem)
	if !ok {
		return
	}
	indicator, addrStyle := " ", styles.Address
	if index == m.Index() {
		indicator, addrStyle = ">", styles.Selected
	}
	fmt.Fprintf(w, " %s  %s  %s",
		indicator,
		addrStyle.Render(fmt.Sprintf("%8x", i.addr)),
		styles.LabelName.Render(i.name))
}

type model struct {
	listing viewport.Model
	labels  list.Model
	info    viewport.Model
	spinner spinner.Model
	mode    viewMode
	path    string
	cfg     Config

	dis     *disasm.Disassembly
	err     error
	loading bool
	lines   []string
	anchors map[uint64]int // label address -> line of its first label
	marks   []int          // anchor lines in ascending order
	offset  int            // first listing line shown

	width  int
	height int
}

type loadedMsg struct {
	dis *disasm.Disassembly
	err error
}

func loadCmd(path string) tea.Cmd {
	return func() tea.Msg {
		d, err := elfx.Disassemble(path)
		return loadedMsg{dis: d, err: err}
	}
}

func newModel(path string, cfg Config) model {
	vp := viewport.New()
	vp.SetWidth(80)
	vp.SetHeight(22)

	labels := list.New([]list.Item{}, itemDelegate{}, 80, 22)
	labels.SetShowStatusBar(false)
	labels.SetFilteringEnabled(true)
	labels.SetShowHelp(true)
	labels.Title = "Labels"
	labels.Styles.Title = styles.Title

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Spinner

	info := viewport.New()
	info.SetWidth(80)
	info.SetHeight(22)

	m := model{
		listing: vp,
		labels:  labels,
		info:    info,
		spinner: s,
		mode:    viewListing,
		path:    path,
		cfg:     cfg,
		loading: true,
		width:   80,
		height:  24,
	}
	m.refreshListing()
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(loadCmd(m.path), m.spinner.Tick)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.refreshListing()
			return m, nil
		}
		m.setDisassembly(msg.dis)
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		m.refreshListing()
		return m, cmd

	case tea.WindowSizeMsg:
		if msg.Width != m.width || msg.Height != m.height {
			m.width = msg.Width
			m.height = msg.Height
			m.listing.SetWidth(msg.Width)
			m.listing.SetHeight(msg.Height - 2)
			m.labels.SetWidth(msg.Width)
			m.labels.SetHeight(msg.Height - 2)
			m.info.SetWidth(msg.Width)
			m.info.SetHeight(msg.Height - 2)
			m.updateInfo()
		}

	case tea.KeyMsg:
		if next, cmd, ok := m.handleKey(msg.String()); ok {
			return next, cmd
		}
	}

	switch m.mode {
	case viewLabels:
		m.labels, cmd = m.labels.Update(msg)
	case viewInfo:
		m.info, cmd = m.info.Update(msg)
	default:
		m.listing, cmd = m.listing.Update(msg)
	}
	return m, cmd
}

// handleKey applies the view-level bindings. It reports false for keys
// that belong to the active view.
func (m model) handleKey(key string) (model, tea.Cmd, bool) {
	if m.mode == viewLabels && m.labels.FilterState() == list.Filtering {
		if key == "ctrl+c" {
			return m, tea.Quit, true
		}
		return m, nil, false
	}

	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit, true
	case "a":
		m.mode = viewListing
	case "s":
		if len(m.labels.Items()) > 0 {
			m.mode = viewLabels
		}
	case "i":
		if m.dis != nil {
			m.mode = viewInfo
		}
	case "tab":
		m.mode = m.cycle(1)
	case "shift+tab":
		m.mode = m.cycle(-1)
	case "enter":
		if m.mode != viewLabels {
			return m, nil, false
		}
		if item, ok := m.labels.SelectedItem().(labelItem); ok {
			m.jumpTo(item.addr)
		}
	case "g", "home":
		if m.mode != viewListing {
			return m, nil, false
		}
		m.offset = 0
		m.refreshListing()
	case "n":
		if m.mode != viewListing {
			return m, nil, false
		}
		i := sort.SearchInts(m.marks, m.offset+1)
		if i < len(m.marks) {
			m.offset = m.marks[i]
			m.refreshListing()
		}
	case "p":
		if m.mode != viewListing {
			return m, nil, false
		}
		i := sort.SearchInts(m.marks, m.offset)
		if i > 0 {
			m.offset = m.marks[i-1]
			m.refreshListing()
		}
	default:
		return m, nil, false
	}
	return m, nil, true
}

// cycle steps through the views that have content.
func (m model) cycle(step int) viewMode {
	modes := []viewMode{viewListing}
	if len(m.labels.Items()) > 0 {
		modes = append(modes, viewLabels)
	}
	if m.dis != nil {
		modes = append(modes, viewInfo)
	}
	i := slices.Index(modes, m.mode)
	if i < 0 {
		return viewListing
	}
	return modes[(i+step+len(modes))%len(modes)]
}

func (m *model) setDisassembly(d *disasm.Disassembly) {
	m.dis = d
	opts := m.cfg.ListingOptions()
	m.lines = slices.Collect(listing.Lines(d, opts))

	// Mirrors the layout of listing.Lines: a blank line, the label lines,
	// then the instruction.
	m.anchors = make(map[uint64]int)
	m.marks = m.marks[:0]
	n := 0
	for e := range d.Entries() {
		if len(e.Labels) > 0 {
			m.anchors[e.Addr] = n + 1
			m.marks = append(m.marks, n+1)
			n += 1 + len(e.Labels)
		}
		n++
	}

	items := make([]list.Item, 0, len(m.anchors))
	for name, addr := range d.Labels() {
		items = append(items, labelItem{addr: addr, name: listing.Label(name, opts)})
	}
	slices.SortFunc(items, func(a, b list.Item) int {
		x, y := a.(labelItem), b.(labelItem)
		return cmp.Or(cmp.Compare(x.addr, y.addr), strings.Compare(x.name, y.name))
	})
	m.labels.SetItems(items)
	m.labels.Title = fmt.Sprintf("Labels (%d total)", len(items))

	m.offset = 0
	m.refreshListing()
	m.updateInfo()
}

func (m *model) jumpTo(addr uint64) bool {
	line, ok := m.anchors[addr]
	if !ok {
		return false
	}
	m.offset = line
	m.mode = viewListing
	m.refreshListing()
	return true
}

func (m *model) refreshListing() {
	switch {
	case m.err != nil:
		m.listing.SetContent(styles.ErrorMessage.Render(m.err.Error()))
	case m.loading:
		m.listing.SetContent(fmt.Sprintf("%s Disassembling %s...", m.spinner.View(), pathpkg.Base(m.path)))
	default:
		m.listing.SetContent(strings.Join(m.lines[min(m.offset, len(m.lines)):], "\n"))
	}
	m.listing.GotoTop()
}

func (m *model) updateInfo() {
	if m.dis == nil {
		return
	}
	markdown := infoMarkdown(displayPath(m.path), m.dis, listing.Summarize(m.dis))
	width := m.width
	if width == 0 {
		width = 80
	}
	renderer, err := styles.Renderer(width - 2)
	if err != nil {
		m.info.SetContent(markdown)
		return
	}
	rendered, err := renderer.Render(markdown)
	if err != nil {
		m.info.SetContent(markdown)
		return
	}
	m.info.SetContent(strings.TrimSuffix(rendered, "\n"))
}

// displayPath shortens path relative to the working directory.
func displayPath(path string) string {
	if cwd, err := os.Getwd(); err == nil {
		if rel, err := pathpkg.Rel(cwd, path); err == nil && !strings.HasPrefix(rel, "..") {
			return rel
		}
	}
	return path
}

const topMnemonics = 10

func infoMarkdown(path string, d *disasm.Disassembly, s listing.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# rvdis\n\n```\n; %s\n; elf32-littleriscv\n```\n\n", path)

	b.WriteString("## Code\n\n")
	fmt.Fprintf(&b, "- **section** `%s`\n", d.Section().Name)
	fmt.Fprintf(&b, "- **range** `%#x` to `%#x`\n", d.Base(), d.End())
	fmt.Fprintf(&b, "- **entries** %d (%d decoded, %d unknown)\n", s.Entries, s.Decoded, s.Unknown)
	fmt.Fprintf(&b, "- **labels** %d\n", s.Labels)

	if len(s.Mnemonics) == 0 {
		return b.String()
	}
	names := make([]string, 0, len(s.Mnemonics))
	for name := range s.Mnemonics {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		return cmp.Or(cmp.Compare(s.Mnemonics[b], s.Mnemonics[a]), strings.Compare(a, b))
	})
	b.WriteString("\n## Mnemonics\n\n")
	for _, name := range names[:min(len(names), topMnemonics)] {
		fmt.Fprintf(&b, "- `%s` %d\n", name, s.Mnemonics[name])
	}
	return b.String()
}

func (m model) View() string {
	var content, menu string
	switch m.mode {
	case viewLabels:
		content = m.labels.View()
		menu = " Enter: jump • A: listing • I: info • Tab: cycle • Q: quit "
	case viewInfo:
		content = m.info.View()
		menu = " A: listing • S: labels • Tab: cycle • Q: quit "
	default:
		content = m.listing.View()
		switch {
		case m.dis == nil:
			menu = " Q: quit "
		case len(m.marks) > 0:
			menu = " N/P: next/prev label • G: top • S: labels • I: info • Tab: cycle • Q: quit "
		default:
			menu = " I: info • Tab: cycle • Q: quit "
		}
	}
	return content + "\n" + styles.Menu.Width(m.width).Render(menu)
}
