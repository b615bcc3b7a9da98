package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	c := New()

	if c.Server.Port != 3000 {
		t.Errorf("Port = %d, want 3000", c.Server.Port)
	}
	if c.Upload.MaxFileBytes != 50<<20 {
		t.Errorf("MaxFileBytes = %d, want %d", c.Upload.MaxFileBytes, 50<<20)
	}
	if c.Store.DownloadPrefix != "/downloads" {
		t.Errorf("DownloadPrefix = %q, want %q", c.Store.DownloadPrefix, "/downloads")
	}
	if c.Limits.MaxBatch != 10 {
		t.Errorf("MaxBatch = %d, want 10", c.Limits.MaxBatch)
	}
	if c.Limits.MaxPixels != 100_000_000 {
		t.Errorf("MaxPixels = %d, want 100000000", c.Limits.MaxPixels)
	}
	if c.Retention.MaxAgeHours != 24 {
		t.Errorf("MaxAgeHours = %d, want 24", c.Retention.MaxAgeHours)
	}
}

func TestReadOverlaysFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.json")
	body := `{
		"server": {"port": 8080},
		"limits": {"max_batch": 25},
		"mirrors": [{"type": "s3", "settings": {"bucket": "artifacts"}}]
	}`
	if err := os.WriteFile(file, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	c := New()
	if err := c.Read(file); err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if c.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", c.Server.Port)
	}
	if c.Limits.MaxBatch != 25 {
		t.Errorf("MaxBatch = %d, want 25", c.Limits.MaxBatch)
	}
	// Fields absent from the file keep their defaults.
	if c.Store.DownloadsDir != "./downloads" {
		t.Errorf("DownloadsDir = %q, want default", c.Store.DownloadsDir)
	}
	if len(c.Mirrors) != 1 || c.Mirrors[0].Type != "s3" || c.Mirrors[0].Settings["bucket"] != "artifacts" {
		t.Errorf("unexpected mirrors: %+v", c.Mirrors)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("PIXFORM_DOWNLOADS_DIR", "/srv/downloads")
	t.Setenv("PIXFORM_DATA_DIR", "/srv/data")
	t.Setenv("SENTRY_DSN", "https://example@sentry.invalid/1")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if c.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", c.Server.Port)
	}
	if c.Store.DownloadsDir != "/srv/downloads" {
		t.Errorf("DownloadsDir = %q", c.Store.DownloadsDir)
	}
	if c.Sentry.SentryDSN == "" {
		t.Error("SENTRY_DSN should flow into the config")
	}
	if c.RecordsDBPath() != filepath.Join("/srv/data", "records.db") {
		t.Errorf("RecordsDBPath = %q", c.RecordsDBPath())
	}
}

func TestLoadIgnoresUnparsablePort(t *testing.T) {
	t.Setenv("PORT", "not-a-number")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Server.Port != 3000 {
		t.Errorf("Port = %d, want default 3000", c.Server.Port)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(file, []byte(`{"server": {"port": 8080}}`), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PIXFORM_CONFIG", file)
	t.Setenv("PORT", "7070")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Server.Port != 7070 {
		t.Errorf("env should win over the file: Port = %d, want 7070", c.Server.Port)
	}
}

func TestLoadMissingConfigFileFails(t *testing.T) {
	t.Setenv("PIXFORM_CONFIG", filepath.Join(t.TempDir(), "absent.json"))

	if _, err := Load(); err == nil {
		t.Error("a named but missing config file should be an error")
	}
}
