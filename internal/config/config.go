// Package config defines all configuration structures for the PolicyLens
// platform.  No I/O or parsing logic lives here, only plain data types and
// validation.  Loading lives in loader.go, defaults in defaults.go.
package config

import (
	"fmt"
	"time"

	"github.com/turtacn/policylens/internal/infrastructure/monitoring/logging"
)

// Version is the platform version, overridable at build time via ldflags.
var Version = "dev"

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxUploadSize   int64         `mapstructure:"max_upload_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	MigrationPath   string        `mapstructure:"migration_path"`
}

// RedisConfig holds Redis connection parameters for the report cache.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	ReportTTL    time.Duration `mapstructure:"report_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds Apache Kafka producer parameters for platform events.
type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	Acks         string        `mapstructure:"acks"` // "all" | "one" | "none"
	MaxRetries   int           `mapstructure:"max_retries"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// MinIOConfig holds object-storage parameters for raw uploaded documents.
type MinIOConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
}

// LLMConfig holds parameters for the OpenAI-compatible endpoint backing the
// text oracle and the embedding similarity scorer.  Ollama's /v1 endpoint is
// the default target; any OpenAI-compatible server works.
type LLMConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	ChatModel      string        `mapstructure:"chat_model"`
	EmbeddingModel string        `mapstructure:"embedding_model"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxInputChars  int           `mapstructure:"max_input_chars"`
}

// PipelineConfig holds tunables for the comparison pipeline that are safe to
// vary per deployment.  The matching threshold itself is a fixed algorithm
// constant and deliberately not configurable.
type PipelineConfig struct {
	// ClassifyConcurrency bounds the number of parallel oracle calls when
	// classifying matched section pairs.  1 disables parallelism.
	ClassifyConcurrency int `mapstructure:"classify_concurrency"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Config is the root configuration object for all PolicyLens processes.
type Config struct {
	Server   ServerConfig      `mapstructure:"server"`
	Database DatabaseConfig    `mapstructure:"database"`
	Redis    RedisConfig       `mapstructure:"redis"`
	Kafka    KafkaConfig       `mapstructure:"kafka"`
	MinIO    MinIOConfig       `mapstructure:"minio"`
	LLM      LLMConfig         `mapstructure:"llm"`
	Pipeline PipelineConfig    `mapstructure:"pipeline"`
	Metrics  MetricsConfig     `mapstructure:"metrics"`
	Log      logging.LogConfig `mapstructure:"log"`
}

// Validate checks cross-field invariants that ApplyDefaults cannot repair.
// It returns the first violation found.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.MaxUploadSize < 0 {
		return fmt.Errorf("server.max_upload_size must not be negative")
	}
	if c.Database.Port < 0 || c.Database.Port > 65535 {
		return fmt.Errorf("database.port %d out of range", c.Database.Port)
	}
	if c.Pipeline.ClassifyConcurrency < 0 {
		return fmt.Errorf("pipeline.classify_concurrency must not be negative")
	}
	if c.LLM.Enabled {
		if c.LLM.BaseURL == "" {
			return fmt.Errorf("llm.base_url is required when llm.enabled")
		}
		if c.LLM.ChatModel == "" {
			return fmt.Errorf("llm.chat_model is required when llm.enabled")
		}
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required when kafka.enabled")
	}
	if c.MinIO.Enabled && c.MinIO.Endpoint == "" {
		return fmt.Errorf("minio.endpoint is required when minio.enabled")
	}
	return nil
}
