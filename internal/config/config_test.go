package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/smallwins/internal/constants"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		Storage:     constants.StoragePostgres,
		DataDir:     "/var/lib/smallwins",
		Timezone:    "America/New_York",
		MaxBackups:  3,
		ExportDir:   "/tmp/exports",
		PostgresDSN: "postgres://me@localhost/habits",
	}

	var buf bytes.Buffer
	m := &Manager{}
	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if *got != *original {
		t.Errorf("Read() = %+v, want %+v", got, original)
	}
}

func TestManager_ReadPartialUsesDefaults(t *testing.T) {
	m := &Manager{}
	got, err := m.Read(strings.NewReader(`timezone = "UTC"`))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	want := Default()
	want.Timezone = "UTC"
	if *got != *want {
		t.Errorf("Read() = %+v, want %+v", got, want)
	}
}

func TestManager_ReadUnknownKey(t *testing.T) {
	m := &Manager{}
	if _, err := m.Read(strings.NewReader(`colour = "blue"`)); err == nil {
		t.Error("Read() with unknown key should fail")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.Storage = constants.StorageSQLite
	cfg.MaxBackups = 5

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config file mode = %v, want 0600", perm)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *got != *cfg {
		t.Errorf("Load() = %+v, want %+v", got, cfg)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad storage", `storage = "mongo"`},
		{"bad timezone", `timezone = "Mars/Olympus"`},
		{"negative backups", `max_backups = -1`},
		{"malformed toml", `storage = `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load() should fail")
			}
		})
	}
}

func TestSaveRejectsInvalid(t *testing.T) {
	cfg := Default()
	cfg.Storage = "mongo"
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := Save(path, cfg); err == nil {
		t.Fatal("Save() should fail for invalid config")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("invalid config was written")
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	t.Setenv("HOME", home)

	got, err := ExpandPath("~/.config/smallwins")
	if err != nil {
		t.Fatalf("ExpandPath() error = %v", err)
	}
	if want := filepath.Join(home, ".config", "smallwins"); got != want {
		t.Errorf("ExpandPath() = %q, want %q", got, want)
	}

	abs, err := ExpandPath("/tmp/x/../y")
	if err != nil || abs != "/tmp/y" {
		t.Errorf("ExpandPath(abs) = %q, %v", abs, err)
	}
}

func TestResolvedExportDirDefaultsToWorkingDir(t *testing.T) {
	dir, err := Default().ResolvedExportDir()
	if err != nil || dir != "." {
		t.Errorf("ResolvedExportDir() = %q, %v; want \".\"", dir, err)
	}
}
