package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log"
	"time"
)

// schemaVersion is the version scripts/initdb.sql brings the database to.
const schemaVersion = 1

// bootstrapLockID serializes bootstrap across processes sharing one database.
const bootstrapLockID = 0x1d0c_1de5

//go:embed scripts/initdb.sql
var bootstrapFS embed.FS

// EnsureBootstrapped brings the schema to schemaVersion. The script and the
// indexer_meta row recording it are committed in one transaction, so a failed
// bootstrap leaves no version behind and is retried on the next start.
func EnsureBootstrapped(ctx context.Context, db *sql.DB) error {
	ctxBoot, cancel := context.WithTimeout(ctx, 3*time.Minute)
	defer cancel()

	tx, err := db.BeginTx(ctxBoot, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctxBoot, `SELECT pg_advisory_xact_lock($1)`, bootstrapLockID); err != nil {
		return fmt.Errorf("bootstrap lock: %w", err)
	}

	current, err := appliedVersion(ctxBoot, tx)
	if err != nil {
		return err
	}
	if !needsBootstrap(current) {
		log.Printf("schema already at version %d", current)
		return nil
	}

	script, err := bootstrapFS.ReadFile("scripts/initdb.sql")
	if err != nil {
		return fmt.Errorf("read initdb.sql: %w", err)
	}
	if _, err := tx.ExecContext(ctxBoot, string(script)); err != nil {
		return fmt.Errorf("exec bootstrap: %w", err)
	}
	if _, err := tx.ExecContext(ctxBoot,
		`INSERT INTO indexer_meta (version) VALUES ($1) ON CONFLICT (version) DO NOTHING`, schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bootstrap: %w", err)
	}
	log.Printf("schema bootstrapped from version %d to %d", current, schemaVersion)
	return nil
}

// appliedVersion returns the highest recorded schema version, 0 when the
// meta table does not exist yet.
func appliedVersion(ctx context.Context, tx *sql.Tx) (int, error) {
	var metaTable sql.NullString
	if err := tx.QueryRowContext(ctx, `SELECT to_regclass('indexer_meta')::text`).Scan(&metaTable); err != nil {
		return 0, fmt.Errorf("meta table check failed: %w", err)
	}
	if !metaTable.Valid {
		return 0, nil
	}

	var version sql.NullInt64
	if err := tx.QueryRowContext(ctx, `SELECT MAX(version) FROM indexer_meta`).Scan(&version); err != nil {
		return 0, fmt.Errorf("meta version check failed: %w", err)
	}
	return int(version.Int64), nil
}

func needsBootstrap(current int) bool {
	return current < schemaVersion
}
