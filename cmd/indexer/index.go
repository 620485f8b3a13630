package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/markdave123-py/storage-indexer/internal/api/handlers"
	"github.com/markdave123-py/storage-indexer/internal/app"
	"github.com/markdave123-py/storage-indexer/internal/config"
	"github.com/markdave123-py/storage-indexer/internal/core/ingestion_engine"
)

func newIndexCmd() *cobra.Command {
	var (
		bucket string
		key    string
		opts   ingestion_engine.RunOptions
	)

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Index one stored PDF and print the result as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			application, err := app.NewApp(ctx, config.LoadConfig())
			if err != nil {
				return err
			}
			defer application.Close()

			res, err := application.Indexer.Index(ctx, bucket, key, opts)
			if err != nil {
				_ = printJSON(out, handlers.ErrorResponse(err))
				return fmt.Errorf("index %s/%s: %w", bucket, key, err)
			}
			return printJSON(out, handlers.RunResponse(res))
		},
	}

	cmd.Flags().StringVar(&bucket, "bucket", "", "storage bucket holding the PDF")
	cmd.Flags().StringVar(&key, "key", "", "object key of the PDF")
	cmd.Flags().BoolVar(&opts.Overwrite, "overwrite", false, "delete previously indexed pages first")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "extract only; report page and character counts")
	_ = cmd.MarkFlagRequired("bucket")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}
