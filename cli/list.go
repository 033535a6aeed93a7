package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javanhut/streamtree"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every stream id known to the store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := resolveStoreDir()
		if err != nil {
			return err
		}
		store, err := streamtree.Open(dir)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer store.Close()

		ids, err := store.List()
		if err != nil {
			return fmt.Errorf("list: %w", err)
		}
		for _, id := range ids {
			fmt.Printf("%s\t%d bytes\t%s\n", id.String(), id.Length(), id.MediaType().Mime())
		}
		return nil
	},
}
