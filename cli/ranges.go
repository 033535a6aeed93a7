package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javanhut/streamtree"
)

var rangesID string

var rangesCmd = &cobra.Command{
	Use:   "ranges",
	Short: "List the byte ranges of a stream that are fully held",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printRanges(rangesID, false)
	},
}

var missingRangesID string

var missingRangesCmd = &cobra.Command{
	Use:   "missing-ranges",
	Short: "List the byte ranges of a stream that are not yet held",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printRanges(missingRangesID, true)
	},
}

func init() {
	rangesCmd.Flags().StringVar(&rangesID, "id", "", "stream id (required)")
	rangesCmd.MarkFlagRequired("id")

	missingRangesCmd.Flags().StringVar(&missingRangesID, "id", "", "stream id (required)")
	missingRangesCmd.MarkFlagRequired("id")
}

func printRanges(idStr string, missing bool) error {
	id, err := parseStreamId(idStr)
	if err != nil {
		return err
	}
	dir, err := resolveStoreDir()
	if err != nil {
		return err
	}
	store, err := streamtree.Open(dir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	stream, err := store.Get(id)
	if err != nil {
		return fmt.Errorf("get: %w", err)
	}

	var ranges []streamtree.Range
	if missing {
		ranges, err = stream.MissingRanges()
	} else {
		ranges, err = stream.Ranges()
	}
	if err != nil {
		return fmt.Errorf("ranges: %w", err)
	}
	for _, r := range ranges {
		fmt.Printf("%d:%d\n", r.Offset, r.Length)
	}
	return nil
}
