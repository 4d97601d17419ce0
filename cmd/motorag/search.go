package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/motorag/motorag/internal/rag"
)

func newSearchCmd(root *rootOptions) *cobra.Command {
	var topK int
	var withMetadata bool

	cmd := &cobra.Command{
		Use:   "search <dir> <query...>",
		Short: "Index a directory of text files and run one query against it",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}

			pipeline, err := rag.New(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			dir, query := args[0], strings.Join(args[1:], " ")

			fmt.Fprintf(out, "📚 Indexing %s...\n", dir)
			res, err := pipeline.IngestDirectory(cmd.Context(), dir, nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "✅ Indexed %d documents, %d chunks in %s\n", res.Documents, res.Chunks, res.ElapsedTime.Round(time.Millisecond))
			for _, e := range res.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠️  %s\n", e)
			}
			fmt.Fprintln(out)

			if !withMetadata {
				texts, err := pipeline.SearchTexts(cmd.Context(), query, topK)
				if err != nil {
					return err
				}
				for i, text := range texts {
					fmt.Fprintf(out, "%d. %s\n\n", i+1, text)
				}
				return nil
			}

			results, err := pipeline.Search(cmd.Context(), query, topK)
			if err != nil {
				return err
			}
			for i, r := range results {
				fmt.Fprintf(out, "%d. [%.4f] %v\n%s\n\n", i+1, r.Score, r.Metadata["source"], r.Text)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "number of results (default: store.default_top_k)")
	cmd.Flags().BoolVarP(&withMetadata, "metadata", "m", false, "show scores and sources")
	return cmd
}
