package database_test

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ebbingassist/backend/internal/database"
)

func TestMigrate_LogsAndIsRepeatable(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(database.DriverSQLite, filepath.Join(t.TempDir(), "m.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	if err := database.Migrate(ctx, db, database.DriverSQLite, logger); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !strings.Contains(buf.String(), `"msg":"migration applied"`) || !strings.Contains(buf.String(), "00001_init.sql") {
		t.Errorf("first run log = %s", buf.String())
	}

	buf.Reset()
	if err := database.Migrate(ctx, db, database.DriverSQLite, logger); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("second run applied migrations again: %s", buf.String())
	}

	version, err := database.MigrationVersion(ctx, db, database.DriverSQLite)
	if err != nil || version != 1 {
		t.Errorf("version = %d, %v; want 1", version, err)
	}
}

func TestMigrate_UnknownDriver(t *testing.T) {
	db, err := database.Open(database.DriverSQLite, filepath.Join(t.TempDir(), "m.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(context.Background(), db, "postgres", slog.Default()); err == nil {
		t.Error("expected an error for an unsupported driver")
	}
	if _, err := database.Open("postgres", "x"); err == nil {
		t.Error("expected Open to reject an unsupported driver")
	}
}

func TestOpen_SQLiteLowerIsUnicodeAware(t *testing.T) {
	db, err := database.Open(database.DriverSQLite, filepath.Join(t.TempDir(), "m.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	var got string
	if err := db.QueryRow("SELECT LOWER('ÜBER Äpfel ÉCOLE')").Scan(&got); err != nil {
		t.Fatalf("query: %v", err)
	}
	if got != "über äpfel école" {
		t.Errorf("LOWER = %q", got)
	}

	var fk int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil || fk != 1 {
		t.Errorf("foreign_keys = %d, %v; want 1", fk, err)
	}
}
