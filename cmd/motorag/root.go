package main

import (
	"github.com/spf13/cobra"

	"github.com/motorag/motorag/internal/config"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "motorag",
		Short: "Chunk, embed and search text documents",
		Long: `motorag splits documents into overlapping windows, embeds them through an
Ollama-compatible, Ollama or OpenAI embedding service, and answers similarity
queries from an in-memory index.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default: ./config.yaml, ./configs/config.yaml or ~/.motorag/config.yaml)")

	cmd.AddCommand(
		newServeCmd(opts),
		newChunkCmd(opts),
		newSearchCmd(opts),
		newConfigCmd(),
	)

	return cmd
}

func (o *rootOptions) load() (*config.Config, error) {
	return config.Load(o.configPath)
}
