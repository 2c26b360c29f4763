// Package migrate applies the SQL files of db/migrations in lexical order,
// recording each one in schema_migrations.
package migrate

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultDir is the migrations directory relative to the module root.
const DefaultDir = "db/migrations"

// ErrChecksumMismatch means an applied migration file was edited afterwards.
var ErrChecksumMismatch = errors.New("migration changed after it was applied")

const createTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		id BIGSERIAL PRIMARY KEY,
		filename TEXT NOT NULL UNIQUE,
		checksum TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

// Files lists the .sql files of dir, sorted.
func Files(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// Checksum is the hex SHA-256 of a migration's content.
func Checksum(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Apply runs every migration of dir not yet recorded, each in its own
// transaction, and returns the names it applied.
func Apply(ctx context.Context, db *sql.DB, dir string) ([]string, error) {
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	files, err := Files(dir)
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, name := range files {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return applied, fmt.Errorf("read %s: %w", name, err)
		}
		sum := Checksum(content)

		var recorded string
		err = db.QueryRowContext(ctx, "SELECT checksum FROM schema_migrations WHERE filename = $1", name).Scan(&recorded)
		switch {
		case err == nil:
			if recorded != sum {
				return applied, fmt.Errorf("%w: %s", ErrChecksumMismatch, name)
			}
			continue
		case !errors.Is(err, sql.ErrNoRows):
			return applied, fmt.Errorf("check %s: %w", name, err)
		}

		if err := applyOne(ctx, db, name, string(content), sum); err != nil {
			return applied, err
		}
		applied = append(applied, name)
	}
	return applied, nil
}

func applyOne(ctx context.Context, db *sql.DB, name, content, sum string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s: %w", name, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, content); err != nil {
		return fmt.Errorf("apply %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (filename, checksum) VALUES ($1, $2)", name, sum); err != nil {
		return fmt.Errorf("record %s: %w", name, err)
	}
	return tx.Commit()
}
