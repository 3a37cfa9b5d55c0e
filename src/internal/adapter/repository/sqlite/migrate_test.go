package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func TestExtractUpMigration(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "no markers", content: "CREATE TABLE a (id INTEGER);", want: "CREATE TABLE a (id INTEGER);"},
		{name: "up only", content: "-- +migrate Up\nCREATE TABLE a (id INTEGER);", want: "\nCREATE TABLE a (id INTEGER);"},
		{name: "up and down", content: "-- +migrate Up\nCREATE TABLE a (id INTEGER);\n-- +migrate Down\nDROP TABLE a;", want: "\nCREATE TABLE a (id INTEGER);\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractUpMigration(tc.content); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestApplyMigrationsRunsEachFileOnce(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migrate.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	migrationFS := fstest.MapFS{
		"001_first.sql":  {Data: []byte("-- +migrate Up\nCREATE TABLE first (id INTEGER);\n-- +migrate Down\nDROP TABLE first;")},
		"002_second.sql": {Data: []byte("-- +migrate Up\nCREATE TABLE second (id INTEGER);")},
		"README.md":      {Data: []byte("ignored")},
	}

	ctx := context.Background()
	if err := applyMigrations(ctx, db, migrationFS); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := applyMigrations(ctx, db, migrationFS); err != nil {
		t.Fatalf("second run should be a no-op: %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&count); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 recorded migrations, got %d", count)
	}
	for _, table := range []string{"first", "second"} {
		if _, err := db.ExecContext(ctx, `INSERT INTO `+table+` (id) VALUES (1)`); err != nil {
			t.Fatalf("table %s missing: %v", table, err)
		}
	}
}
