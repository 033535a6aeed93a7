// Package cli implements streamtree's command-line driver: a thin cobra
// front end over the root streamtree package, following the teacher's
// cli.go pattern of one rootCmd with subcommands registered in init().
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/javanhut/streamtree/config"
)

const streamtreeVersion = "0.1.0"

var storeDir string

var rootCmd = &cobra.Command{
	Use:   "streamtree",
	Short: "streamtree is a content-addressed, verified stream store",
	Long:  `streamtree stores byte streams as a Bao-style verified Merkle tree over 1024-byte chunks, addressed by a stable StreamId, so any contiguous slice can be proven and transferred independently of the whole.`,
	Run: func(cmd *cobra.Command, args []string) {
		if version {
			fmt.Printf("streamtree version %s\n", streamtreeVersion)
			os.Exit(0)
		}
		cmd.Help()
	},
}

var version bool

// Execute runs the root command; the caller (cmd/streamtree/main.go) is
// responsible for the process exit code.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Flags().BoolVar(&version, "version", false, "print the streamtree version")
	rootCmd.PersistentFlags().StringVar(&storeDir, "store", "", "store root directory (default: config's store.root)")

	rootCmd.AddCommand(insertCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(rangesCmd)
	rootCmd.AddCommand(missingRangesCmd)
	rootCmd.AddCommand(encodeRangeCmd)
	rootCmd.AddCommand(decodeRangeCmd)
	rootCmd.AddCommand(readRangeCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(hashFileCmd)
}

// resolveStoreDir returns the --store flag if set, else config's store.root:
// the global config file's root if it sets one, else STREAMTREE_STORE, else
// ~/.streamtree.
func resolveStoreDir() (string, error) {
	if storeDir != "" {
		return storeDir, nil
	}
	cfg, err := config.Load("")
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}
	return cfg.Store.Root, nil
}
