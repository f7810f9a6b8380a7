// Package config handles configuration loading and validation for the
// sender, mirroring the layered design used elsewhere in this codebase:
// command-line flags take precedence over environment variables, which
// take precedence over a YAML config file, which takes precedence over
// built-in defaults.
//
// # Configuration sources
//
// Configuration is loaded from (in order of precedence):
//  1. Command-line flags (applied by the caller after LoadFromFile/ApplyEnvOverrides)
//  2. Environment variables (LOGBACK_OSS_*)
//  3. Config file (YAML)
//  4. Defaults
//
// # Example config file
//
//	storage:
//	  endpoint: https://oss-cn-hangzhou.aliyuncs.com
//	  bucket: my-app-logs
//	  access_key_id: LTAI...
//	  access_key_secret: ...
//
//	app:
//	  name: checkout-service
//	  object_key_prefix: logs/
//
//	batch:
//	  max_batch_count: 5000
//	  max_batch_bytes: 4194304
//	  flush_interval: 2s
//	  gzip: true
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete sender configuration as bound from a file/env/flags.
type Config struct {
	Storage    StorageConfig    `yaml:"storage"`
	App        AppConfig        `yaml:"app"`
	Queue      QueueConfig      `yaml:"queue"`
	Batch      BatchConfig      `yaml:"batch"`
	Retry      RetryConfig      `yaml:"retry"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Lifecycle  LifecycleConfig  `yaml:"lifecycle"`
	OnePassword OnePasswordConfig `yaml:"onepassword,omitempty"`
}

// StorageConfig points at the destination bucket.
type StorageConfig struct {
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region,omitempty"`
	Bucket          string `yaml:"bucket"`
	AccessKeyID     string `yaml:"access_key_id,omitempty"`
	AccessKeySecret string `yaml:"access_key_secret,omitempty"`
	UsePathStyle    bool   `yaml:"use_path_style,omitempty"`
}

// AppConfig identifies the producing application in uploaded object keys.
type AppConfig struct {
	Name            string `yaml:"name"`
	ObjectKeyPrefix string `yaml:"object_key_prefix"`
}

// QueueConfig tunes the bounded queue's capacity and admission policy.
type QueueConfig struct {
	MaxQueueSize      int           `yaml:"max_queue_size"`
	OfferTimeout      time.Duration `yaml:"offer_timeout"`
	DropWhenQueueFull bool          `yaml:"drop_when_queue_full"`
}

// BatchConfig tunes the aggregator's flush triggers and payload shape.
type BatchConfig struct {
	MaxBatchCount int           `yaml:"max_batch_count"`
	MaxBatchBytes int           `yaml:"max_batch_bytes"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	PollInterval  time.Duration `yaml:"poll_interval"`
	Gzip          bool          `yaml:"gzip"`
	ContentType   string        `yaml:"content_type"`
}

// RetryConfig tunes the upload retry/backoff schedule.
type RetryConfig struct {
	MaxRetries        int           `yaml:"max_retries"`
	InitialBackoff    time.Duration `yaml:"initial_backoff"`
	BackoffMultiplier float64       `yaml:"backoff_multiplier"`
}

// RateLimitConfig bounds sustained upload throughput.
type RateLimitConfig struct {
	UploadRateLimit float64 `yaml:"upload_rate_limit"`
}

// LifecycleConfig tunes Start/Stop behavior.
type LifecycleConfig struct {
	ShutdownTimeout      time.Duration `yaml:"shutdown_timeout"`
	RegisterShutdownHook bool          `yaml:"register_shutdown_hook"`
}

// OnePasswordConfig configures the optional 1Password Connect credentials backend.
type OnePasswordConfig struct {
	Host     string `yaml:"host,omitempty"`
	Token    string `yaml:"token,omitempty"`
	VaultID  string `yaml:"vault_id,omitempty"`
	ItemName string `yaml:"item_name,omitempty"`
}

// DefaultConfig returns a Config seeded with the documented defaults.
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:            "app",
			ObjectKeyPrefix: "logs/",
		},
		Queue: QueueConfig{
			MaxQueueSize:      200000,
			OfferTimeout:      500 * time.Millisecond,
			DropWhenQueueFull: false,
		},
		Batch: BatchConfig{
			MaxBatchCount: 5000,
			MaxBatchBytes: 4 * 1024 * 1024,
			FlushInterval: 2 * time.Second,
			PollInterval:  200 * time.Millisecond,
			Gzip:          true,
			ContentType:   "application/x-ndjson",
		},
		Retry: RetryConfig{
			MaxRetries:        5,
			InitialBackoff:    200 * time.Millisecond,
			BackoffMultiplier: 2.0,
		},
		Lifecycle: LifecycleConfig{
			ShutdownTimeout:      5 * time.Second,
			RegisterShutdownHook: true,
		},
	}
}

// LoadFromFile loads configuration from a YAML file on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing file: %w", err)
	}
	return cfg, nil
}

// Validate checks that the fields required to construct a Sender are present.
func (c *Config) Validate() error {
	if c.Storage.Endpoint == "" {
		return fmt.Errorf("config: storage.endpoint is required")
	}
	if c.Storage.Bucket == "" {
		return fmt.Errorf("config: storage.bucket is required")
	}
	haveStaticCreds := c.Storage.AccessKeyID != "" && c.Storage.AccessKeySecret != ""
	haveOnePassword := c.OnePassword.Host != "" && c.OnePassword.Token != "" && c.OnePassword.VaultID != ""
	if !haveStaticCreds && !haveOnePassword {
		return fmt.Errorf("config: either storage.access_key_id/access_key_secret or a complete onepassword section is required")
	}
	return nil
}

// ApplyEnvOverrides applies LOGBACK_OSS_* environment variable overrides.
//
//   - LOGBACK_OSS_ENDPOINT
//   - LOGBACK_OSS_BUCKET
//   - LOGBACK_OSS_REGION
//   - LOGBACK_OSS_ACCESS_KEY_ID
//   - LOGBACK_OSS_ACCESS_KEY_SECRET
//   - LOGBACK_OSS_APP_NAME
//   - LOGBACK_OSS_OBJECT_KEY_PREFIX
//   - LOGBACK_OSS_GZIP ("true"/"false")
//   - LOGBACK_OSS_UPLOAD_RATE_LIMIT (float, uploads/second)
//   - LOGBACK_OSS_OP_CONNECT_HOST
//   - LOGBACK_OSS_OP_CONNECT_TOKEN
//   - LOGBACK_OSS_OP_VAULT_ID
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("LOGBACK_OSS_ENDPOINT"); v != "" {
		c.Storage.Endpoint = v
	}
	if v := os.Getenv("LOGBACK_OSS_BUCKET"); v != "" {
		c.Storage.Bucket = v
	}
	if v := os.Getenv("LOGBACK_OSS_REGION"); v != "" {
		c.Storage.Region = v
	}
	if v := os.Getenv("LOGBACK_OSS_ACCESS_KEY_ID"); v != "" {
		c.Storage.AccessKeyID = v
	}
	if v := os.Getenv("LOGBACK_OSS_ACCESS_KEY_SECRET"); v != "" {
		c.Storage.AccessKeySecret = v
	}
	if v := os.Getenv("LOGBACK_OSS_APP_NAME"); v != "" {
		c.App.Name = v
	}
	if v := os.Getenv("LOGBACK_OSS_OBJECT_KEY_PREFIX"); v != "" {
		c.App.ObjectKeyPrefix = v
	}
	if v := os.Getenv("LOGBACK_OSS_GZIP"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Batch.Gzip = b
		}
	}
	if v := os.Getenv("LOGBACK_OSS_UPLOAD_RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RateLimit.UploadRateLimit = f
		}
	}
	if v := os.Getenv("LOGBACK_OSS_OP_CONNECT_HOST"); v != "" {
		c.OnePassword.Host = v
	}
	if v := os.Getenv("LOGBACK_OSS_OP_CONNECT_TOKEN"); v != "" {
		c.OnePassword.Token = v
	}
	if v := os.Getenv("LOGBACK_OSS_OP_VAULT_ID"); v != "" {
		c.OnePassword.VaultID = v
	}
}
