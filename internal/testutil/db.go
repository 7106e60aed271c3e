package testutil

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"byte-battle/internal/config"
	"byte-battle/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// OpenTestStore opens a Postgres store inside a throwaway schema with the
// init migration applied. The schema is dropped when the test ends. Tests are
// skipped when TEST_POSTGRES_DSN is not set.
func OpenTestStore(t *testing.T) *store.Store {
	t.Helper()
	cfg, err := config.LoadTest()
	if err != nil {
		t.Skipf("skip test db: %v", err)
	}
	dsn := cfg.TestPostgresDSN
	schema := fmt.Sprintf("battle_test_%d", time.Now().UnixNano())
	if err := execDDL(dsn, "CREATE SCHEMA %s", schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}

	st, err := store.New(withSearchPath(dsn, schema))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
		_ = execDDL(dsn, "DROP SCHEMA %s CASCADE", schema)
	})
	if err := applyMigration(st); err != nil {
		t.Fatalf("apply migration: %v", err)
	}
	return st
}

func execDDL(dsn, format, schema string) error {
	if !schemaNamePattern.MatchString(schema) {
		return fmt.Errorf("schema %q does not match required pattern", schema)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	base, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return err
	}
	defer base.Close()
	_, err = base.Exec(ctx, fmt.Sprintf(format, pgx.Identifier{schema}.Sanitize()))
	return err
}

func applyMigration(st *store.Store) error {
	path, err := findMigration("000001_init.up.sql")
	if err != nil {
		return err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	_, err = st.Pool.Exec(context.Background(), string(b))
	return err
}

func findMigration(name string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for i := 0; i < 6; i++ {
		p := filepath.Join(dir, "migrations", name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("%s not found from %s", name, dir)
}

func withSearchPath(dsn, schema string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "search_path=" + url.QueryEscape(schema)
}
