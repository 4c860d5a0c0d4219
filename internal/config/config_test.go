package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "STORE_DRIVER", "SQLITE_PATH", "STORE_SCOPE", "RUN_MIGRATIONS", "RABBITMQ_URL", "LOG_JSON", "LOCATE_DELAY"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	if cfg.HTTPAddr != ":8084" {
		t.Fatalf("expected :8084, got %s", cfg.HTTPAddr)
	}
	if cfg.StoreDriver != DriverSQLite || cfg.SQLitePath != "storefront.db" {
		t.Fatalf("expected sqlite at storefront.db, got %s at %s", cfg.StoreDriver, cfg.SQLitePath)
	}
	if cfg.StoreScope != "default" {
		t.Fatalf("expected default scope, got %s", cfg.StoreScope)
	}
	if !cfg.RunMigrations {
		t.Fatalf("expected migrations on by default")
	}
	if cfg.RabbitMQURL != "" {
		t.Fatalf("expected no broker by default, got %s", cfg.RabbitMQURL)
	}
	if cfg.LocateDelay != 1500*time.Millisecond {
		t.Fatalf("expected 1.5s locate delay, got %v", cfg.LocateDelay)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Redis")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("RUN_MIGRATIONS", "no")
	t.Setenv("LOG_JSON", "1")
	t.Setenv("LOCATE_DELAY", "250ms")

	cfg := Load()

	if cfg.StoreDriver != DriverRedis || cfg.RedisAddr != "cache:6379" {
		t.Fatalf("expected redis at cache:6379, got %s at %s", cfg.StoreDriver, cfg.RedisAddr)
	}
	if cfg.RunMigrations {
		t.Fatalf("expected migrations disabled")
	}
	if !cfg.LogJSON {
		t.Fatalf("expected json logging")
	}
	if cfg.LocateDelay != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %v", cfg.LocateDelay)
	}
}

func TestEnvHelpersFallBack(t *testing.T) {
	t.Setenv("X_BOOL", "maybe")
	if !envBool("X_BOOL", true) {
		t.Fatalf("expected fallback for unparseable bool")
	}
	if d := parseDuration("soon", time.Second); d != time.Second {
		t.Fatalf("expected fallback duration, got %v", d)
	}
	t.Setenv("X_STR", "   ")
	if v := getenv("X_STR", "def"); v != "def" {
		t.Fatalf("expected blank value to fall back, got %q", v)
	}
}

func TestValidate(t *testing.T) {
	tests := map[string]struct {
		cfg     Config
		wantErr bool
	}{
		"memory":          {cfg: Config{StoreDriver: DriverMemory, StoreScope: "s"}},
		"sqlite no path":  {cfg: Config{StoreDriver: DriverSQLite, StoreScope: "s"}, wantErr: true},
		"postgres no dsn": {cfg: Config{StoreDriver: DriverPostgres, StoreScope: "s"}, wantErr: true},
		"redis no addr":   {cfg: Config{StoreDriver: DriverRedis, StoreScope: "s"}, wantErr: true},
		"unknown driver":  {cfg: Config{StoreDriver: "etcd", StoreScope: "s"}, wantErr: true},
		"blank scope":     {cfg: Config{StoreDriver: DriverMemory, StoreScope: " "}, wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
