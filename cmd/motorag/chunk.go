package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/motorag/motorag/internal/indexer"
)

func newChunkCmd(root *rootOptions) *cobra.Command {
	var size, overlap int

	cmd := &cobra.Command{
		Use:   "chunk <file>",
		Short: "Print the chunks a file would be split into",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("size") {
				size = cfg.Indexer.ChunkSize
			}
			if !cmd.Flags().Changed("overlap") {
				overlap = cfg.Indexer.ChunkOverlap
			}

			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}

			chunks, err := indexer.ChunkText(string(content), size, overlap)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "📄 %s: %d chunks (size %d, overlap %d)\n\n", args[0], len(chunks), size, overlap)
			for i, c := range chunks {
				fmt.Fprintf(out, "--- Chunk %d [%d:%d] ---\n%s\n\n", i+1, c.Start, c.End, c.Text)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&size, "size", indexer.DefaultChunkSize, "chunk size in characters")
	cmd.Flags().IntVar(&overlap, "overlap", indexer.DefaultChunkOverlap, "overlap between chunks in characters")
	return cmd
}
