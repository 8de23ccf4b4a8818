package persistence

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/membership-portal/internal/config"
)

func TestMigrationFilesSorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_b.sql", "001_a.sql", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o700); err != nil {
		t.Fatal(err)
	}

	files, err := migrationFiles(dir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if strings.Join(files, ",") != "001_a.sql,002_b.sql" {
		t.Fatalf("unexpected order %v", files)
	}
}

func TestRunMigrationsWithoutPool(t *testing.T) {
	if err := RunMigrations(context.Background(), nil, "does-not-matter", zap.NewNop()); err != nil {
		t.Fatalf("expected skip, got %v", err)
	}
}

func TestNilHandlesAreSafe(t *testing.T) {
	var pg *Postgres
	pg.Close()
	if pg.PoolHandle() != nil {
		t.Fatalf("nil postgres should expose no pool")
	}
	if err := pg.Ping(context.Background()); err == nil {
		t.Fatalf("nil postgres ping should fail")
	}
	var rd *Redis
	rd.Close()
	if rd.ClientHandle() != nil {
		t.Fatalf("nil redis should expose no client")
	}
	if err := rd.Ping(context.Background()); err == nil {
		t.Fatalf("nil redis ping should fail")
	}
}

func TestNewRedisDisabledWithoutAddress(t *testing.T) {
	rd := NewRedis(context.Background(), config.RedisConfig{}, zap.NewNop())
	if rd != nil {
		t.Fatalf("expected redis to stay disabled")
	}
	if rd.ClientHandle() != nil {
		t.Fatalf("disabled redis must not hand out a client")
	}
}
