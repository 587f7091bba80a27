package store

import "fmt"

// currentSchemaVersion is the latest schema version.
const currentSchemaVersion = 1

// Migrate runs forward migrations to bring the database schema up to date.
func (db *DB) Migrate() error {
	if _, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	version := 0
	row := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1")
	if err := row.Scan(&version); err != nil {
		// No rows means version 0 (fresh database).
		version = 0
	}

	if version < 1 {
		if err := db.migrateV1(); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	return nil
}

// SchemaVersion reports the version recorded in the database.
func (db *DB) SchemaVersion() (int, error) {
	var v int
	if err := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return v, nil
}

// migrateV1 creates the review history tables and indexes.
func (db *DB) migrateV1() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS reviews (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id          TEXT NOT NULL UNIQUE,
			reviewed_at     TEXT NOT NULL,
			source_name     TEXT NOT NULL,
			source_sha256   TEXT NOT NULL,
			issue_count     INTEGER NOT NULL,
			advisory_count  INTEGER NOT NULL,
			finding_count   INTEGER NOT NULL,
			highest         TEXT,
			version         TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS review_items (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			review_id  INTEGER NOT NULL REFERENCES reviews(id) ON DELETE CASCADE,
			kind       TEXT NOT NULL,
			rule_id    TEXT NOT NULL,
			domain     TEXT,
			line       INTEGER NOT NULL,
			severity   TEXT NOT NULL,
			title      TEXT NOT NULL
		)`,

		// Indexes.
		`CREATE INDEX IF NOT EXISTS idx_reviews_source ON reviews(source_name)`,
		`CREATE INDEX IF NOT EXISTS idx_review_items_review ON review_items(review_id)`,
		`CREATE INDEX IF NOT EXISTS idx_review_items_rule ON review_items(rule_id)`,
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:40], err)
		}
	}

	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion); err != nil {
		return err
	}

	return tx.Commit()
}
