package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"rvdis/internal/crosscheck"
	"rvdis/internal/elfx"
	"rvdis/internal/rvdis/log"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [file]",
	Short: "Compare the decoder against golang.org/x/arch",
	Long: `Decode every word of the selected code region with both rvdis and the
riscv64asm package from golang.org/x/arch and report where they differ.
Exits non-zero if both decoders accept a word but name it differently.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		debug, _ := cmd.Flags().GetBool("debug")
		log.Setup(debug)
		limit, _ := cmd.Flags().GetInt("limit")

		d, err := elfx.Disassemble(args[0])
		if err != nil {
			return err
		}
		r := crosscheck.Run(d)
		slog.Debug("Cross-checked", "file", args[0], "words", r.Total, "findings", len(r.Findings))
		writeReport(cmd.OutOrStdout(), args[0], r, limit)
		return r.Err()
	},
}

func init() {
	verifyCmd.Flags().Int("limit", 20, "Maximum number of differing words to list (0 for all)")
}

func writeReport(w io.Writer, name string, r crosscheck.Report, limit int) {
	fmt.Fprintf(w, "%s: %d words\n", name, r.Total)
	for _, c := range crosscheck.Classes {
		fmt.Fprintf(w, "  %-15s %d\n", c, r.Counts[c])
	}
	if len(r.Findings) == 0 {
		return
	}
	fmt.Fprintln(w)
	for i, f := range r.Findings {
		if limit > 0 && i == limit {
			fmt.Fprintf(w, "  ... %d more\n", len(r.Findings)-limit)
			break
		}
		local, ref := f.Local, f.Reference
		if local == "" {
			local = "-"
		}
		if ref == "" {
			ref = "-"
		}
		fmt.Fprintf(w, "%8x: %08x  %-14s %-10s %s\n", f.Addr, f.Word, f.Class, local, ref)
	}
}
