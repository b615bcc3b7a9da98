package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
)

// New returns a Config populated with the built-in defaults.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            3000,
			ReadTimeoutSec:  60,
			WriteTimeoutSec: 120,
		},
		Upload: UploadConfig{
			MaxFileBytes:         50 << 20,
			MaxMultipartMemoryMB: 32,
		},
		Store: StoreConfig{
			DownloadsDir:   "./downloads",
			DownloadPrefix: "/downloads",
			DataDir:        "./data",
		},
		Limits: LimitsConfig{
			MaxBatch:  10,
			MaxPixels: 100_000_000,
			Workers:   0, // 0 means one worker per CPU
		},
		Retention: RetentionConfig{
			MaxAgeHours: 24,
		},
	}
}

// Read overlays the configuration from a JSON file. Missing fields keep
// their current values.
func (c *Config) Read(file string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, c)
}

// Load builds the effective configuration: defaults, then the optional JSON
// file named by PIXFORM_CONFIG, then environment overrides.
func Load() (*Config, error) {
	c := New()

	if file := os.Getenv("PIXFORM_CONFIG"); file != "" {
		if err := c.Read(file); err != nil {
			return nil, err
		}
	}

	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
	if dir := os.Getenv("PIXFORM_DOWNLOADS_DIR"); dir != "" {
		c.Store.DownloadsDir = dir
	}
	if dir := os.Getenv("PIXFORM_DATA_DIR"); dir != "" {
		c.Store.DataDir = dir
	}
	if file := os.Getenv("PIXFORM_LOG_FILE"); file != "" {
		c.Log.File = file
	}
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		c.Sentry.SentryDSN = dsn
	}

	return c, nil
}

// RecordsDBPath returns the full path to the conversion records database.
// Path: {DataDir}/records.db
func (c *Config) RecordsDBPath() string {
	return filepath.Join(c.Store.DataDir, "records.db")
}
