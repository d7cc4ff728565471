// Package styles holds the colours shared by the TUI and the markdown info
// panel.
package styles

import (
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/exp/charmtone"
)

// VS Code dark palette for body text and code.
const (
	Foreground = "#D4D4D4"
	InlineCode = "#EACD53"
	Comment    = "#6A9955"
	Heading    = "#569CD6"
	Link       = "#4FC1FF"
	LineNumber = "#858585"
)

func boolPtr(b bool) *bool       { return &b }
func stringPtr(s string) *string { return &s }
func uintPtr(u uint) *uint       { return &u }

// Markdown is the glamour style for the info panel.
func Markdown() ansi.StyleConfig {
	heading := func(prefix string) ansi.StyleBlock {
		return ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{
			Prefix: prefix,
			Color:  stringPtr(Heading),
			Bold:   boolPtr(true),
		}}
	}
	return ansi.StyleConfig{
		Document: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Color: stringPtr(Foreground)},
		},
		BlockQuote: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Color:  stringPtr(Comment),
				Italic: boolPtr(true),
			},
			Indent:      uintPtr(1),
			IndentToken: stringPtr("│ "),
		},
		List: ansi.StyleList{LevelIndent: 2},
		Heading: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				BlockSuffix: "\n",
				Color:       stringPtr(Heading),
				Bold:        boolPtr(true),
			},
		},
		H1: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Prefix:          " ",
				Suffix:          " ",
				Color:           stringPtr(charmtone.Zest.Hex()),
				BackgroundColor: stringPtr(charmtone.Charple.Hex()),
				Bold:            boolPtr(true),
			},
		},
		H2: heading("## "),
		H3: heading("### "),
		Strong: ansi.StylePrimitive{
			Bold:  boolPtr(true),
			Color: stringPtr(Foreground),
		},
		Emph: ansi.StylePrimitive{Italic: boolPtr(true)},
		HorizontalRule: ansi.StylePrimitive{
			Color:  stringPtr(LineNumber),
			Format: "\n────────────────────────────────────────\n",
		},
		Item:        ansi.StylePrimitive{BlockPrefix: "• "},
		Enumeration: ansi.StylePrimitive{BlockPrefix: ". "},
		Link: ansi.StylePrimitive{
			Color:     stringPtr(Link),
			Underline: boolPtr(true),
		},
		Code: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Color: stringPtr(InlineCode)},
		},
		CodeBlock: ansi.StyleCodeBlock{
			StyleBlock: ansi.StyleBlock{
				StylePrimitive: ansi.StylePrimitive{Color: stringPtr(charmtone.Malibu.Hex())},
				Margin:         uintPtr(1),
			},
		},
		Table: ansi.StyleTable{
			StyleBlock: ansi.StyleBlock{
				StylePrimitive: ansi.StylePrimitive{Color: stringPtr(Foreground)},
			},
		},
		Text: ansi.StylePrimitive{Color: stringPtr(Foreground)},
	}
}

// Renderer returns a glamour renderer wrapping at width.
func Renderer(width int) (*glamour.TermRenderer, error) {
	return glamour.NewTermRenderer(
		glamour.WithStyles(Markdown()),
		glamour.WithWordWrap(width),
	)
}

// TUI styles.
var (
	Menu = lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("252")).
		Padding(0, 1)
	Title        = lipgloss.NewStyle().Foreground(lipgloss.Color("99")).MarginLeft(2)
	Selected     = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))
	Address      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	LabelName    = lipgloss.NewStyle().Foreground(lipgloss.Color(charmtone.Zest.Hex()))
	Spinner      = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))
	ErrorMessage = lipgloss.NewStyle().Foreground(lipgloss.Color(charmtone.Cheeky.Hex())).Bold(true)
)
