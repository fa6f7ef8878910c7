// Package config loads the worker's process-wide configuration once at
// startup. Nothing in the analyzer package reaches for it directly; every
// value it holds is threaded in as an explicit constructor parameter.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every setting the worker recognizes, per spec.md §6.
type Config struct {
	Database    DatabaseConfig    `yaml:"database"`
	Queue       QueueConfig       `yaml:"queue"`
	ObjectStore ObjectStoreConfig `yaml:"object_store"`
	Worker      WorkerConfig      `yaml:"worker"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type QueueConfig struct {
	BrokerURL  string        `yaml:"broker_url"`
	Name       string        `yaml:"name"`
	PopTimeout time.Duration `yaml:"pop_timeout"`
}

type ObjectStoreConfig struct {
	Region      string `yaml:"region"`
	AccessKeyID string `yaml:"access_key_id"`
	SecretKey   string `yaml:"secret_key"`
	Bucket      string `yaml:"bucket"`
	Endpoint    string `yaml:"endpoint"` // optional, for S3-compatible stores
}

type WorkerConfig struct {
	WorkspaceBaseDir string `yaml:"workspace_base_dir"`
}

// Default returns a configuration with conservative, locally-runnable
// defaults; environment variables and an optional config file layer on top.
func Default() *Config {
	return &Config{
		Queue: QueueConfig{
			Name:       "repo-analysis-jobs",
			PopTimeout: 5 * time.Second,
		},
		Worker: WorkerConfig{
			WorkspaceBaseDir: filepath.Join(os.TempDir(), "repo-analyzer"),
		},
	}
}

// Load loads configuration from an optional YAML file, then applies
// environment variable overrides. path == "" searches standard locations.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")

	cfg := Default()
	v.SetDefault("queue", cfg.Queue)
	v.SetDefault("worker", cfg.Worker)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/repo-analyzer")
	}

	v.SetEnvPrefix("ANALYZER")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(cfg)

	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("database url is required (set DATABASE_URL or database.url)")
	}

	return cfg, nil
}

// loadEnvFiles loads .env files in order of precedence, matching the
// teacher's layered-override approach.
func loadEnvFiles() {
	for _, file := range []string{".env.local", ".env"} {
		if _, err := os.Stat(file); err == nil {
			godotenv.Load(file)
		}
	}
}

// applyEnvOverrides applies the raw environment variable names listed in
// spec.md §6, which take precedence over the YAML file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("QUEUE_BROKER_URL"); v != "" {
		cfg.Queue.BrokerURL = v
	}
	if v := os.Getenv("QUEUE_NAME"); v != "" {
		cfg.Queue.Name = v
	}
	if v := os.Getenv("OBJECT_STORE_REGION"); v != "" {
		cfg.ObjectStore.Region = v
	}
	if v := os.Getenv("OBJECT_STORE_ACCESS_KEY_ID"); v != "" {
		cfg.ObjectStore.AccessKeyID = v
	}
	if v := os.Getenv("OBJECT_STORE_SECRET_KEY"); v != "" {
		cfg.ObjectStore.SecretKey = v
	}
	if v := os.Getenv("OBJECT_STORE_BUCKET"); v != "" {
		cfg.ObjectStore.Bucket = v
	}
	if v := os.Getenv("OBJECT_STORE_ENDPOINT"); v != "" {
		cfg.ObjectStore.Endpoint = v
	}
	if v := os.Getenv("WORKSPACE_BASE_DIR"); v != "" {
		cfg.Worker.WorkspaceBaseDir = v
	}
}
