package migration

import (
	"context"

	"goagree/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner creates the report store schema. Statements are limited to
// the SQL shared by SQLite and PostgreSQL and are safe to run repeatedly.
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createAgreementReportsTable(ctx, db); err != nil {
		return errors.IOError("failed to create agreement_reports table", err)
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.IOError("failed to create indexes", err)
	}

	return nil
}

func (r *MigrationRunner) createAgreementReportsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS agreement_reports (
			id VARCHAR(36) PRIMARY KEY,
			source TEXT NOT NULL,
			column_name TEXT NOT NULL DEFAULT '',
			generated_at VARCHAR(40) NOT NULL,
			fingerprint VARCHAR(64) NOT NULL,
			participants INTEGER NOT NULL,
			observations INTEGER NOT NULL,
			bias DOUBLE PRECISION NOT NULL,
			sd DOUBLE PRECISION NOT NULL,
			loa_lower DOUBLE PRECISION NOT NULL,
			loa_upper DOUBLE PRECISION NOT NULL,
			common_sense DOUBLE PRECISION NOT NULL,
			between_clamped BOOLEAN NOT NULL DEFAULT FALSE,
			payload TEXT NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_agreement_reports_generated_at ON agreement_reports(generated_at)`,
		`CREATE INDEX IF NOT EXISTS idx_agreement_reports_fingerprint ON agreement_reports(fingerprint)`,
	}

	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
