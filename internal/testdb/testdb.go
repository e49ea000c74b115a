// Package testdb opens a migrated PostgreSQL database for integration tests.
// Tests are skipped unless OUTREACH_TEST_DATABASE_DSN is set.
package testdb

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/JaimeStill/outreach/migrations"
)

// EnvDSN names the environment variable holding the test database URL.
const EnvDSN = "OUTREACH_TEST_DATABASE_DSN"

// Open migrates the test database, truncates every table, and returns a
// connection closed when the test ends.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv(EnvDSN)
	if dsn == "" {
		t.Skipf("%s not set; skipping integration test", EnvDSN)
	}

	if err := migrations.Up(dsn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	Truncate(t, db)
	return db
}

// Truncate clears all data tables, keeping seeded field definitions.
func Truncate(t *testing.T, db *sql.DB) {
	t.Helper()

	_, err := db.ExecContext(context.Background(), `
		TRUNCATE suggested_updates, batch_messages, analysis_batches,
			contact_custom_fields, contact_tags, tags, contact_channels,
			contacts, prompts
		CASCADE`)
	if err != nil {
		t.Fatalf("truncate: %v", err)
	}
}

// Contact inserts a contact with an optional primary phone and returns its id.
func Contact(t *testing.T, db *sql.DB, firstName, phone string) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	var id uuid.UUID
	err := db.QueryRowContext(ctx,
		"INSERT INTO contacts (first_name) VALUES ($1) RETURNING id",
		firstName,
	).Scan(&id)
	if err != nil {
		t.Fatalf("insert contact: %v", err)
	}

	if phone != "" {
		_, err := db.ExecContext(ctx,
			"INSERT INTO contact_channels (contact_id, type, identifier, is_primary) VALUES ($1, 'phone', $2, true)",
			id, phone,
		)
		if err != nil {
			t.Fatalf("insert phone channel: %v", err)
		}
	}

	return id
}

// Tag attaches tag to the contact, creating the tag when needed.
func Tag(t *testing.T, db *sql.DB, contactID uuid.UUID, tag string) {
	t.Helper()

	_, err := db.ExecContext(context.Background(), `
		WITH t AS (
			INSERT INTO tags (name) VALUES ($2)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		)
		INSERT INTO contact_tags (contact_id, tag_id) SELECT $1, id FROM t`,
		contactID, tag,
	)
	if err != nil {
		t.Fatalf("tag contact: %v", err)
	}
}
