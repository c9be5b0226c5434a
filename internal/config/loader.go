package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all platform settings.
const envPrefix = "POLICYLENS"

// newViper builds a pre-configured Viper instance with the platform's standard
// settings: YAML file type, POLICYLENS_ env prefix, automatic env binding, and
// a key replacer that maps "." to "_" so that nested keys like "database.host"
// resolve to "POLICYLENS_DATABASE_HOST".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setViperDefaults(v)
	return v
}

// setViperDefaults registers every configurable key with viper. Viper only
// considers environment variables for keys it already knows about, so without
// this registration POLICYLENS_* overrides would be invisible to Unmarshal
// when no config file supplies the key.
func setViperDefaults(v *viper.Viper) {
	def := NewDefaultConfig()

	v.SetDefault("server.port", def.Server.Port)
	v.SetDefault("server.read_timeout", def.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", def.Server.WriteTimeout)
	v.SetDefault("server.max_upload_size", def.Server.MaxUploadSize)
	v.SetDefault("server.shutdown_timeout", def.Server.ShutdownTimeout)

	v.SetDefault("database.host", def.Database.Host)
	v.SetDefault("database.port", def.Database.Port)
	v.SetDefault("database.user", def.Database.User)
	v.SetDefault("database.password", def.Database.Password)
	v.SetDefault("database.db_name", def.Database.DBName)
	v.SetDefault("database.ssl_mode", def.Database.SSLMode)
	v.SetDefault("database.max_conns", def.Database.MaxConns)
	v.SetDefault("database.min_conns", def.Database.MinConns)
	v.SetDefault("database.conn_max_lifetime", def.Database.ConnMaxLifetime)
	v.SetDefault("database.conn_max_idle_time", def.Database.ConnMaxIdleTime)
	v.SetDefault("database.migration_path", def.Database.MigrationPath)

	v.SetDefault("redis.enabled", def.Redis.Enabled)
	v.SetDefault("redis.addr", def.Redis.Addr)
	v.SetDefault("redis.password", def.Redis.Password)
	v.SetDefault("redis.db", def.Redis.DB)
	v.SetDefault("redis.pool_size", def.Redis.PoolSize)
	v.SetDefault("redis.dial_timeout", def.Redis.DialTimeout)
	v.SetDefault("redis.read_timeout", def.Redis.ReadTimeout)
	v.SetDefault("redis.write_timeout", def.Redis.WriteTimeout)
	v.SetDefault("redis.report_ttl", def.Redis.ReportTTL)
	v.SetDefault("redis.key_prefix", def.Redis.KeyPrefix)

	v.SetDefault("kafka.enabled", def.Kafka.Enabled)
	v.SetDefault("kafka.brokers", def.Kafka.Brokers)
	v.SetDefault("kafka.acks", def.Kafka.Acks)
	v.SetDefault("kafka.max_retries", def.Kafka.MaxRetries)
	v.SetDefault("kafka.batch_timeout", def.Kafka.BatchTimeout)
	v.SetDefault("kafka.write_timeout", def.Kafka.WriteTimeout)

	v.SetDefault("minio.enabled", def.MinIO.Enabled)
	v.SetDefault("minio.endpoint", def.MinIO.Endpoint)
	v.SetDefault("minio.access_key", def.MinIO.AccessKey)
	v.SetDefault("minio.secret_key", def.MinIO.SecretKey)
	v.SetDefault("minio.use_ssl", def.MinIO.UseSSL)
	v.SetDefault("minio.bucket", def.MinIO.Bucket)

	v.SetDefault("llm.enabled", def.LLM.Enabled)
	v.SetDefault("llm.base_url", def.LLM.BaseURL)
	v.SetDefault("llm.api_key", def.LLM.APIKey)
	v.SetDefault("llm.chat_model", def.LLM.ChatModel)
	v.SetDefault("llm.embedding_model", def.LLM.EmbeddingModel)
	v.SetDefault("llm.timeout", def.LLM.Timeout)
	v.SetDefault("llm.max_input_chars", def.LLM.MaxInputChars)

	v.SetDefault("pipeline.classify_concurrency", def.Pipeline.ClassifyConcurrency)

	v.SetDefault("metrics.enabled", def.Metrics.Enabled)
	v.SetDefault("metrics.path", def.Metrics.Path)

	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("log.output_paths", def.Log.OutputPaths)
	v.SetDefault("log.error_output_paths", def.Log.ErrorOutputPaths)
}

// Load reads the YAML file at configPath, merges any POLICYLENS_* environment
// variable overrides, applies platform defaults for unset fields, and
// validates the result.  It returns a fully-populated *Config or a
// descriptive error.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from POLICYLENS_* environment
// variables, with no config file required.  This is the preferred loading
// strategy for containerised (12-factor) deployments.
func LoadFromEnv() (*Config, error) {
	v := newViper()
	return unmarshalAndFinalize(v)
}

// unmarshalAndFinalize unmarshals viper state into a Config struct, applies
// defaults, and validates the result.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// Watch monitors configPath for changes and invokes onChange with the newly
// parsed Config whenever the file is modified on disk.  It is intended for
// hot-reloading non-critical settings such as log level; callers are
// responsible for applying only the safe subset of changes at runtime.
//
// Watch is non-blocking; it starts a background goroutine managed by viper.
// If the changed file fails to parse or validate, onChange is not called.
func Watch(configPath string, onChange func(*Config)) {
	v := newViper()
	v.SetConfigFile(configPath)

	// Initial read; errors are ignored here since callers should call Load first.
	_ = v.ReadInConfig()

	v.WatchConfig()
	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			return
		}
		onChange(cfg)
	})
}

// MustLoad is a convenience wrapper around Load that panics on any error.
// It is intended for use in main() where a config-load failure is always fatal.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
