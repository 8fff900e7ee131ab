// Package testing provides testing utilities and helpers for the portfolio tracker.
package testing

import (
	"fmt"
	"os"
	"testing"

	"github.com/aristath/portfolio-tracker/internal/database"
)

// NewTestDB creates a temp-file SQLite database with the embedded schema for name applied.
// Returns the database instance and a cleanup function that closes and removes it.
//
// Supported schema names:
//   - "portfolio" - portfolios, people, widgets
//   - "client_data" - cached upstream payloads
func NewTestDB(t *testing.T, name string) (*database.DB, func()) {
	t.Helper()

	// Temp files rather than :memory: so every pooled connection sees the same database
	tmpFile, err := os.CreateTemp("", fmt.Sprintf("test_%s_*.db", name))
	if err != nil {
		t.Fatalf("Failed to create temporary database file: %v", err)
	}
	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()

	profile := database.ProfileStandard
	if name == database.NameClientData {
		profile = database.ProfileCache
	}

	db, err := database.New(database.Config{
		Path:    tmpPath,
		Profile: profile,
		Name:    name,
	})
	if err != nil {
		_ = os.Remove(tmpPath)
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		_ = os.Remove(tmpPath)
		t.Fatalf("Failed to migrate test database %s: %v", name, err)
	}

	return db, func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close test database %s: %v", name, err)
		}
		for _, p := range []string{tmpPath, tmpPath + "-wal", tmpPath + "-shm"} {
			_ = os.Remove(p)
		}
	}
}
