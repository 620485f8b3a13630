package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "indexer",
		Short: "Index stored PDF documents into a vector table",
		Long: `indexer downloads PDFs from object storage, splits their text per page,
embeds the chunks and stores them in Postgres (pgvector) for retrieval.`,
		SilenceUsage: true,
	}
	root.AddCommand(
		newServeCmd(),
		newIndexCmd(),
		newDiagnoseCmd(),
		newUploadCmd(),
	)
	return root
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
