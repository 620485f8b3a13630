package main

import (
	"github.com/spf13/cobra"

	"github.com/markdave123-py/storage-indexer/internal/api/handlers"
	"github.com/markdave123-py/storage-indexer/internal/config"
)

func newDiagnoseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diagnose",
		Short: "Report which backend credentials are configured",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()
			return printJSON(cmd.OutOrStdout(), handlers.DiagnosticResponse(cfg.Backend().Diagnose()))
		},
	}
}
