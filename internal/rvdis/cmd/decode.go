package cmd

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"rvdis/internal/listing"
	"rvdis/internal/riscv"
)

var decodeCmd = &cobra.Command{
	Use:   "decode [word...]",
	Short: "Decode instruction words given in hex",
	Long: `Decode one or more 32-bit instruction words and print them.
Words are read as numbers unless --bytes is given, in which case each
argument is the four bytes of the word in memory order.`,
	Example: `
# A word as printed by a debugger
rvdis decode 0x00a00513

# The same word as it appears in a hex dump
rvdis decode --bytes 1305a000
  `,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		asBytes, _ := cmd.Flags().GetBool("bytes")
		pseudo, _ := cmd.Flags().GetBool("pseudo")
		opts := listing.Options{Pseudo: pseudo}

		out := cmd.OutOrStdout()
		for _, arg := range args {
			word, err := parseWord(arg, asBytes)
			if err != nil {
				return err
			}
			inst, _ := riscv.Decode(word)
			fmt.Fprintf(out, "%08x\t%s\n", word, listing.Text(inst, opts))
		}
		return nil
	},
}

func init() {
	decodeCmd.Flags().Bool("bytes", false, "Read each argument as little-endian bytes")
	decodeCmd.Flags().Bool("pseudo", true, "Print pseudo-instructions")
}

// parseWord reads a hex word. Underscores and a 0x prefix are ignored.
func parseWord(s string, asBytes bool) (uint32, error) {
	clean := strings.ReplaceAll(strings.ToLower(s), "_", "")
	clean = strings.TrimPrefix(clean, "0x")
	if asBytes {
		b, err := hex.DecodeString(clean)
		if err != nil || len(b) != 4 {
			return 0, fmt.Errorf("invalid instruction bytes %q: want 8 hex digits", s)
		}
		return binary.LittleEndian.Uint32(b), nil
	}
	v, err := strconv.ParseUint(clean, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid instruction word %q: %w", s, err)
	}
	return uint32(v), nil
}
