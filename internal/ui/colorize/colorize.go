// Package colorize highlights listing lines for the terminal.
package colorize

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Enabled reports whether colour output is allowed by the environment.
func Enabled() bool {
	return os.Getenv("RVDIS_NO_COLOR") == "" && os.Getenv("NO_COLOR") == ""
}

// getAssemblyLexer returns an appropriate assembly lexer with fallbacks
func getAssemblyLexer() chroma.Lexer {
	candidates := []string{"gas", "GAS", "Gas", "nasm"}
	for _, name := range candidates {
		if lexer := lexers.Get(name); lexer != nil {
			return lexer
		}
	}
	return nil
}

// getDisasmStyle returns the disassembly style with fallbacks
func getDisasmStyle() *chroma.Style {
	candidates := []string{"disasm-dark", "dracula", "monokai"}
	for _, name := range candidates {
		if style := styles.Get(name); style != nil {
			return style
		}
	}
	return styles.Fallback
}

// getTerminalFormatter returns an appropriate terminal formatter
func getTerminalFormatter() chroma.Formatter {
	candidates := []string{"terminal16m", "terminal256"}
	for _, name := range candidates {
		if formatter := formatters.Get(name); formatter != nil {
			return formatter
		}
	}
	return formatters.Fallback
}

// Assembly highlights a block of assembly text with the GAS lexer.
func Assembly(code string) (string, error) {
	if !Enabled() {
		return code, nil
	}

	lexer := getAssemblyLexer()
	if lexer == nil {
		return code, nil
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code, err
	}

	var buf strings.Builder
	if err := getTerminalFormatter().Format(&buf, getDisasmStyle(), iterator); err != nil {
		return code, err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

const (
	grey = "\033[38;2;79;79;79m"
	dim  = "\033[38;2;120;120;120m"
	gold = "\033[38;2;255;215;0m"
	rst  = "\033[0m"
)

// Line colours one listing line. Instruction lines have the shape
// "    addr: bytes \tinstruction"; label lines are "addr <name>:".
func Line(line string) string {
	if !Enabled() || strings.TrimSpace(line) == "" {
		return line
	}

	addr, rest, ok := strings.Cut(line, ": ")
	if !ok || !isHex(strings.TrimSpace(addr)) {
		if a, label, ok := strings.Cut(line, " "); ok && isHex(a) && strings.HasSuffix(label, ">:") {
			return fmt.Sprintf("%s%s%s %s%s%s", grey, a, rst, gold, label, rst)
		}
		return colorizeFullLine(line)
	}

	raw, text, ok := strings.Cut(rest, "\t")
	if !ok {
		return fmt.Sprintf("%s%s:%s %s", grey, addr, rst, colorizeFullLine(rest))
	}
	return fmt.Sprintf("%s%s:%s %s%s%s\t%s", grey, addr, rst, dim, raw, rst, colorizeFullLine(text))
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isHexChar(s[i]) {
			return false
		}
	}
	return true
}

// isHexChar checks if a character is a hexadecimal digit
func isHexChar(ch byte) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

// colorizeFullLine uses Chroma to colorize an assembly fragment
func colorizeFullLine(line string) string {
	out, err := Assembly(line)
	if err != nil {
		return line
	}
	return out
}

// Strip removes ANSI escape sequences.
func Strip(s string) string {
	var result strings.Builder
	inEscape := false

	for _, r := range s {
		if r == '\x1b' {
			inEscape = true
		} else if inEscape {
			if r == 'm' {
				inEscape = false
			}
		} else {
			result.WriteRune(r)
		}
	}

	return result.String()
}
