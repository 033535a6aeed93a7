package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/javanhut/streamtree"
)

var (
	encodeRangeID   string
	encodeRangeSpan string
	encodeRangeOut  string
)

var encodeRangeCmd = &cobra.Command{
	Use:   "encode-range",
	Short: "Write a range proof for a slice of a stream to a file (or stdout)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseStreamId(encodeRangeID)
		if err != nil {
			return err
		}
		r, err := parseRange(encodeRangeSpan)
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

		out := os.Stdout
		if encodeRangeOut != "" {
			f, err := os.Create(encodeRangeOut)
			if err != nil {
				return fmt.Errorf("create %s: %w", encodeRangeOut, err)
			}
			defer f.Close()
			out = f
		}
		if err := stream.EncodeRange(r, out); err != nil {
			return fmt.Errorf("encode range: %w", err)
		}
		return nil
	},
}

var (
	decodeRangeID   string
	decodeRangeSpan string
	decodeRangeIn   string
)

var decodeRangeCmd = &cobra.Command{
	Use:   "decode-range",
	Short: "Verify and apply a range proof read from a file (or stdin)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseStreamId(decodeRangeID)
		if err != nil {
			return err
		}
		r, err := parseRange(decodeRangeSpan)
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

		in := io.Reader(os.Stdin)
		if decodeRangeIn != "" {
			f, err := os.Open(decodeRangeIn)
			if err != nil {
				return fmt.Errorf("open %s: %w", decodeRangeIn, err)
			}
			defer f.Close()
			in = f
		}
		if err := stream.DecodeRange(r, in); err != nil {
			return fmt.Errorf("decode range: %w", err)
		}
		return nil
	},
}

var (
	readRangeID   string
	readRangeSpan string
)

var readRangeCmd = &cobra.Command{
	Use:   "read-range",
	Short: "Print the raw bytes of an already-held range to stdout",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseStreamId(readRangeID)
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

		var r io.ReadCloser
		if readRangeSpan == "" {
			r, err = stream.Read()
		} else {
			var span streamtree.Range
			span, err = parseRange(readRangeSpan)
			if err != nil {
				return err
			}
			r, err = stream.ReadRange(span)
		}
		if err != nil {
			return fmt.Errorf("read range: %w", err)
		}
		defer r.Close()

		if _, err := io.Copy(os.Stdout, r); err != nil {
			return fmt.Errorf("copy: %w", err)
		}
		return nil
	},
}

func init() {
	encodeRangeCmd.Flags().StringVar(&encodeRangeID, "id", "", "stream id (required)")
	encodeRangeCmd.Flags().StringVar(&encodeRangeSpan, "range", "", "offset:length to encode (required)")
	encodeRangeCmd.Flags().StringVar(&encodeRangeOut, "out", "", "output file (default: stdout)")
	encodeRangeCmd.MarkFlagRequired("id")
	encodeRangeCmd.MarkFlagRequired("range")

	decodeRangeCmd.Flags().StringVar(&decodeRangeID, "id", "", "stream id (required)")
	decodeRangeCmd.Flags().StringVar(&decodeRangeSpan, "range", "", "offset:length being decoded (required)")
	decodeRangeCmd.Flags().StringVar(&decodeRangeIn, "in", "", "input file (default: stdin)")
	decodeRangeCmd.MarkFlagRequired("id")
	decodeRangeCmd.MarkFlagRequired("range")

	readRangeCmd.Flags().StringVar(&readRangeID, "id", "", "stream id (required)")
	readRangeCmd.Flags().StringVar(&readRangeSpan, "range", "", "offset:length to read (default: the whole stream)")
	readRangeCmd.MarkFlagRequired("id")
}
