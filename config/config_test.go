package config

import (
	"testing"
	"time"

	"chatiip-backend/storage"
)

func TestEnvHelpersFallBackOnMalformedInput(t *testing.T) {
	t.Setenv("CFG_INT", "abc")
	t.Setenv("CFG_BOOL", "maybe")
	t.Setenv("CFG_DUR", "-5s")
	t.Setenv("CFG_LIST", " , ,")

	if got := Int("CFG_INT", 7); got != 7 {
		t.Fatalf("Int: got=%d want=7", got)
	}
	if got := Bool("CFG_BOOL", true); !got {
		t.Fatalf("Bool: got=false want=true")
	}
	if got := Duration("CFG_DUR", time.Second); got != time.Second {
		t.Fatalf("Duration: got=%s want=1s", got)
	}
	if got := List("CFG_LIST", []string{"x"}); len(got) != 1 || got[0] != "x" {
		t.Fatalf("List: got=%v want=[x]", got)
	}
}

func TestListTrimsEntries(t *testing.T) {
	t.Setenv("CFG_LIST", " https://a.test ,https://b.test,, ")
	got := List("CFG_LIST", nil)
	if len(got) != 2 || got[0] != "https://a.test" || got[1] != "https://b.test" {
		t.Fatalf("unexpected list: %v", got)
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, _, err := Load(); err == nil {
		t.Fatalf("expected error without JWT_SECRET")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORAGE_TYPE", "")
	t.Setenv("JWT_TTL", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Type != storage.StorageTypeLocal {
		t.Fatalf("storage type: got=%q want=local", cfg.Storage.Type)
	}
	if cfg.JWTTTL != 7*24*time.Hour {
		t.Fatalf("jwt ttl: got=%s", cfg.JWTTTL)
	}
	if len(cfg.CORSOrigins) != len(DefaultCORSOrigins) {
		t.Fatalf("cors origins: got=%v", cfg.CORSOrigins)
	}
}
