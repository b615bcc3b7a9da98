package config

type Config struct {
	Server    ServerConfig    `json:"server"`
	Upload    UploadConfig    `json:"upload"`
	Store     StoreConfig     `json:"store"`
	Limits    LimitsConfig    `json:"limits"`
	Retention RetentionConfig `json:"retention"`
	Mirrors   []MirrorConfig  `json:"mirrors"`
	Sentry    SentryConfig    `json:"sentry"`
	Log       LogConfig       `json:"log"`
}

type ServerConfig struct {
	Port            int `json:"port"`
	ReadTimeoutSec  int `json:"read_timeout"`
	WriteTimeoutSec int `json:"write_timeout"`
}

type UploadConfig struct {
	MaxFileBytes         int64 `json:"max_file_bytes"`
	MaxMultipartMemoryMB int64 `json:"max_multipart_memory"`
}

type StoreConfig struct {
	DownloadsDir   string `json:"downloads_dir"`
	DownloadPrefix string `json:"download_prefix"`
	DataDir        string `json:"data_dir"`
}

type LimitsConfig struct {
	MaxBatch  int   `json:"max_batch"`
	MaxPixels int64 `json:"max_pixels"`
	Workers   int   `json:"workers"`
}

type RetentionConfig struct {
	MaxAgeHours int `json:"max_age_hours"` // 0 disables pruning
}

// MirrorConfig describes one remote copy target for produced artifacts.
// Type is one of "s3", "gcs" or "sftp"; Settings carries the backend
// specific keys (bucket, region, credentials and so on).
type MirrorConfig struct {
	Type     string            `json:"type"`
	Settings map[string]string `json:"settings"`
}

type SentryConfig struct {
	SentryDSN   string `json:"sentry_dsn"`
	Environment string `json:"environment"`
}

type LogConfig struct {
	File string `json:"file"`
}
