package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/markdave123-py/storage-indexer/internal/app"
	"github.com/markdave123-py/storage-indexer/internal/config"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP indexing API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg := config.LoadConfig()
			application, err := app.NewApp(ctx, cfg)
			if err != nil {
				log.Printf("startup failed: %v", err)
				return err
			}
			defer application.Close()

			log.Println("indexer is running; DB connected and bootstrapped.")
			err = application.Server.Run(ctx)
			log.Println("shutting down...")
			return err
		},
	}
}
