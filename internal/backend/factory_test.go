package backend

import (
	"context"
	"path/filepath"
	"testing"

	"gastos/internal/config"
)

func TestCreateBackend(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"file", Config{Type: FileBackend, DataDirectory: filepath.Join(dir, "files")}, false},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "db", "gastos.db")}, false},
		{"file without directory", Config{Type: FileBackend}, true},
		{"unknown", Config{Type: "sheets"}, true},
	}

	f := NewFactory(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.CreateBackend(context.Background(), tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateBackend: %v", err)
			}
			defer res.Close()

			ctx := context.Background()
			if err := res.Backend.Set(ctx, "metas", []byte("{}")); err != nil {
				t.Fatalf("Set: %v", err)
			}
			got, ok, err := res.Backend.Get(ctx, "metas")
			if err != nil || !ok || string(got) != "{}" {
				t.Fatalf("Get = %q %v %v", got, ok, err)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	cfg, err := FromAppConfig(&config.Config{DataBackend: "file", DataDir: "/tmp/x"})
	if err != nil || cfg.Type != FileBackend || cfg.DataDirectory != "/tmp/x" {
		t.Fatalf("FromAppConfig = %+v, %v", cfg, err)
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "nope"}); err == nil {
		t.Fatalf("expected error for invalid backend")
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
	if len(GetBackendTypeStrings()) != 3 {
		t.Fatalf("unexpected backend list %v", GetBackendTypeStrings())
	}
}
