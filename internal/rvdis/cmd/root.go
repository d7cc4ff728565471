package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	pathpkg "path/filepath"
	"runtime/pprof"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"rvdis/internal/elfx"
	"rvdis/internal/listing"
	"rvdis/internal/rvdis/log"
)

func init() {
	setRootFlags(rootCmd)
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(verifyCmd)
}

func setRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolP("debug", "d", false, "Debug")

	cmd.Flags().BoolP("help", "h", false, "Help")
	cmd.Flags().BoolP("no-tui", "n", false, "Print the listing instead of starting the viewer")
	cmd.Flags().BoolP("json", "j", false, "Write the disassembly as JSON")
	cmd.Flags().StringP("output", "o", "", `Write the listing to a file ("auto" for ./<stem>.s, "-" for stdout)`)
	cmd.Flags().Bool("pseudo", true, "Print pseudo-instructions (mv, li, ret, ...)")
	cmd.Flags().Bool("demangle", false, "Demangle C++ and Rust symbol names")
	cmd.Flags().Bool("targets", true, "Annotate jumps and branches with their target")
	cmd.Flags().Bool("no-color", false, "Disable syntax highlighting")
	cmd.Flags().String("cpuprofile", "", "Write CPU profile to file")
}

var rootCmd = &cobra.Command{
	Use:   "rvdis [file]",
	Short: "RV32I disassembler",
	Long: `rvdis disassembles the code of a 32-bit RISC-V ELF object.
The listing labels every address that carries a symbol and can be browsed
in an interactive viewer, printed, or written as JSON.`,
	Example: `
# Browse the listing interactively
rvdis ./firmware.elf

# Print an objdump-style listing
rvdis -n ./firmware.elf

# Write ./firmware.s without pseudo-instructions
rvdis -o auto --pseudo=false ./firmware.elf
  `,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log.Setup(cfg.Debug)

		if cfg.CPUProfile != "" {
			f, err := os.Create(cfg.CPUProfile)
			if err != nil {
				return fmt.Errorf("could not create CPU profile: %v", err)
			}
			defer f.Close()
			if err := pprof.StartCPUProfile(f); err != nil {
				return fmt.Errorf("could not start CPU profile: %v", err)
			}
			defer pprof.StopCPUProfile()
		}

		file := args[0]
		absPath, err := pathpkg.Abs(file)
		if err != nil {
			return fmt.Errorf("failed to resolve path: %v", err)
		}
		if _, err := os.Stat(absPath); err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("file not found: %s", file)
			}
			return fmt.Errorf("cannot access file: %v", err)
		}

		out := cmd.OutOrStdout()
		interactive := !cfg.NoTUI && !cfg.JSON && cfg.Output == "" && isTerminal(out)
		if interactive {
			program := tea.NewProgram(
				newModel(absPath, cfg),
				tea.WithAltScreen(),
				tea.WithContext(cmd.Context()),
			)
			_, err := program.Run()
			return err
		}
		return runListing(out, file, absPath, cfg)
	},
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(f.Fd())
}

// runListing writes the listing of absPath to the destination selected by
// cfg.Output. display is the name printed in the listing header.
func runListing(stdout io.Writer, display, absPath string, cfg Config) error {
	d, err := elfx.Disassemble(absPath)
	if err != nil {
		return err
	}

	dest, err := resolveOutput(display, cfg.Output)
	if err != nil {
		return err
	}
	w := stdout
	if dest != "" {
		f, err := os.Create(dest)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	opts := cfg.ListingOptions()
	if dest != "" || !isTerminal(w) {
		opts.Color = false
	}

	if cfg.JSON {
		err = listing.WriteJSON(w, display, d, opts)
	} else {
		err = listing.Write(w, display, d, opts)
	}
	if err != nil {
		return err
	}
	if dest != "" {
		slog.Info("Wrote listing", "path", dest, "entries", d.Len())
	}
	return nil
}

// Execute runs the root command.
func Execute() {
	// fang renders help and errors for a human; scripted runs get plain cobra.
	plain := false
	for _, arg := range os.Args[1:] {
		if arg == "--no-tui" || arg == "-n" || arg == "--json" || arg == "-j" {
			plain = true
			break
		}
	}
	if !plain && !term.IsTerminal(os.Stdout.Fd()) {
		plain = true
	}

	if plain {
		if err := rootCmd.Execute(); err != nil {
			os.Exit(1)
		}
		return
	}
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
