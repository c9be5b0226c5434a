package config

import "time"

const (
	DefaultServerPort      = 8080
	DefaultMaxUploadSize   = 32 << 20 // 32 MiB
	DefaultShutdownTimeout = 30 * time.Second

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBName     = "policylens"
	DefaultDBMaxConns = 25

	DefaultRedisAddr     = "localhost:6379"
	DefaultReportTTL     = 24 * time.Hour
	DefaultRedisPrefix   = "policylens:"
	DefaultKafkaBroker   = "localhost:9092"
	DefaultMinIOEndpoint = "localhost:9000"
	DefaultMinIOBucket   = "policylens-documents"

	DefaultLLMBaseURL        = "http://localhost:11434/v1"
	DefaultChatModel         = "llama3.2"
	DefaultEmbeddingModel    = "nomic-embed-text"
	DefaultLLMTimeout        = 60 * time.Second
	DefaultLLMMaxInputChars  = 2000
	DefaultClassifyConcurrency = 4

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsPath = "/metrics"
)

// ApplyDefaults fills every zero-value field in cfg with the platform default.
// Fields that have already been set by the caller (non-zero values) are left
// unchanged so that explicit configuration always wins.  It must be called
// after unmarshalling raw config data and before Validate().
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 120 * time.Second
	}
	if cfg.Server.MaxUploadSize == 0 {
		cfg.Server.MaxUploadSize = DefaultMaxUploadSize
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MigrationPath == "" {
		cfg.Database.MigrationPath = "migrations"
	}

	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.ReportTTL == 0 {
		cfg.Redis.ReportTTL = DefaultReportTTL
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisPrefix
	}

	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.Acks == "" {
		cfg.Kafka.Acks = "all"
	}
	if cfg.Kafka.MaxRetries == 0 {
		cfg.Kafka.MaxRetries = 3
	}
	if cfg.Kafka.BatchTimeout == 0 {
		cfg.Kafka.BatchTimeout = 100 * time.Millisecond
	}
	if cfg.Kafka.WriteTimeout == 0 {
		cfg.Kafka.WriteTimeout = 10 * time.Second
	}

	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}

	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = DefaultLLMBaseURL
	}
	if cfg.LLM.ChatModel == "" {
		cfg.LLM.ChatModel = DefaultChatModel
	}
	if cfg.LLM.EmbeddingModel == "" {
		cfg.LLM.EmbeddingModel = DefaultEmbeddingModel
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = DefaultLLMTimeout
	}
	if cfg.LLM.MaxInputChars == 0 {
		cfg.LLM.MaxInputChars = DefaultLLMMaxInputChars
	}

	if cfg.Pipeline.ClassifyConcurrency == 0 {
		cfg.Pipeline.ClassifyConcurrency = DefaultClassifyConcurrency
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}

// NewDefaultConfig returns a Config carrying only defaults.  Used by entry
// points when no config file is present.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
