package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javanhut/streamtree"
)

var removeID string

var removeCmd = &cobra.Command{
	Use:   "remove",
	Short: "Delete a stream's node state and chunk bytes from the store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseStreamId(removeID)
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

		if err := store.Remove(id); err != nil {
			return fmt.Errorf("remove: %w", err)
		}
		return nil
	},
}

func init() {
	removeCmd.Flags().StringVar(&removeID, "id", "", "stream id (required)")
	removeCmd.MarkFlagRequired("id")
}
