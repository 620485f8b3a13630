package main

import (
	"context"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/markdave123-py/storage-indexer/internal/config"
	objectclient "github.com/markdave123-py/storage-indexer/internal/core/object-client"
)

func newUploadCmd() *cobra.Command {
	var bucket, key, file string

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload a local file into object storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}
			if key == "" {
				key = filepath.Base(file)
			}
			contentType := mime.TypeByExtension(filepath.Ext(file))
			if contentType == "" {
				contentType = "application/octet-stream"
			}

			uploadCtx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			obj, err := objectclient.NewObjectClient(uploadCtx, config.LoadConfig())
			if err != nil {
				return err
			}
			if err := obj.UploadFile(uploadCtx, bucket, key, data, contentType); err != nil {
				return fmt.Errorf("upload %s/%s: %w", bucket, key, err)
			}
			log.Printf("uploaded %s to %s/%s (%d bytes)", file, bucket, key, len(data))
			return nil
		},
	}

	cmd.Flags().StringVar(&bucket, "bucket", "", "destination bucket")
	cmd.Flags().StringVar(&key, "key", "", "destination key (defaults to the file name)")
	cmd.Flags().StringVar(&file, "file", "", "local file to upload")
	_ = cmd.MarkFlagRequired("bucket")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
