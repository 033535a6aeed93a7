package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/javanhut/streamtree"
	"github.com/javanhut/streamtree/internal/streamid"
)

var insertMime string

var insertCmd = &cobra.Command{
	Use:   "insert <path>",
	Short: "Hash and store a file, printing its StreamId",
	Args:  cobra.ExactArgs(1),
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

		path := args[0]
		var stream *streamtree.Stream
		if insertMime != "" {
			mt, ok := streamid.FromMime(insertMime)
			if !ok {
				return fmt.Errorf("unknown media type %q", insertMime)
			}
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open %s: %w", path, err)
			}
			defer f.Close()
			stream, err = store.Insert(mt, f)
			if err != nil {
				return fmt.Errorf("insert: %w", err)
			}
		} else {
			stream, err = store.InsertPath(path)
			if err != nil {
				return fmt.Errorf("insert: %w", err)
			}
		}

		fmt.Println(stream.Id().String())
		return nil
	},
}

func init() {
	insertCmd.Flags().StringVar(&insertMime, "mime", "", "IANA media type to force (default: inferred from the file's extension)")
}
