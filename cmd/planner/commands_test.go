package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DATABASE_URL", "PG_HOST", "SESSION_SECRET"} {
		t.Setenv(key, "")
	}
}

func TestMigrateCreatesDatabase(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "planner.db")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"migrate", "--db-path", path, "--log-level", "error"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("database file not created: %v", err)
	}
}

func TestServeRequiresSessionSecret(t *testing.T) {
	isolateEnv(t)

	cmd := newRootCmd()
	cmd.SetArgs([]string{"serve", "--db-path", filepath.Join(t.TempDir(), "planner.db"), "--log-level", "error"})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "SESSION_SECRET") {
		t.Fatalf("expected missing secret error, got %v", err)
	}
}

func TestRejectsBadLogLevel(t *testing.T) {
	isolateEnv(t)

	cmd := newRootCmd()
	cmd.SetArgs([]string{"migrate", "--db-path", filepath.Join(t.TempDir(), "planner.db"), "--log-level", "loud"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for unknown log level")
	}
}
