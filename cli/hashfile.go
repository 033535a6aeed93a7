package cli

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"lukechampine.com/blake3"
)

var hashFileCmd = &cobra.Command{
	Use:   "hash-file <path>",
	Short: "Print the whole-buffer BLAKE3 hash of a file, without storing it",
	Long:  `Debug command: hashes the file as one flat buffer rather than building a verified tree over it. Useful for cross-checking a StreamId's root hash against a plain BLAKE3 digest for a stream small enough to fit in memory.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}
		sum := blake3.Sum256(data)
		fmt.Println(hex.EncodeToString(sum[:]))
		return nil
	},
}
