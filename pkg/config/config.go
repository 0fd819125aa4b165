// Package config loads minisearch configuration from YAML files with
// environment-variable overrides. It provides typed structs for every
// subsystem (Server, Postgres, Kafka, Redis, Corpus, Indexer, Rank, Search).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Corpus sources understood by the searcher.
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
	SourceSnapshot = "snapshot"
)

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig   `yaml:"server"`
	Ingestion ServerConfig   `yaml:"ingestion"`
	Postgres  PostgresConfig `yaml:"postgres"`
	Kafka     KafkaConfig    `yaml:"kafka"`
	Redis     RedisConfig    `yaml:"redis"`
	Corpus    CorpusConfig   `yaml:"corpus"`
	Indexer   IndexerConfig  `yaml:"indexer"`
	Rank      RankConfig     `yaml:"rank"`
	Search    SearchConfig   `yaml:"search"`
	Logging   LoggingConfig  `yaml:"logging"`
	Metrics   MetricsConfig  `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker and topic settings.
type KafkaConfig struct {
	Brokers       []string    `yaml:"brokers"`
	ConsumerGroup string      `yaml:"consumerGroup"`
	Topics        KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	DocumentIngest string `yaml:"documentIngest"`
}

// RedisConfig holds Redis connection and caching parameters.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// CorpusConfig tells the searcher where its static snapshot comes from.
type CorpusConfig struct {
	Source string `yaml:"source"`
	// Path is the corpus file for SourceFile and the snapshot directory for
	// SourceSnapshot. It is ignored for SourcePostgres.
	Path string `yaml:"path"`
	// RestrictLinks drops edges whose target is not a declared document
	// instead of turning the target into a dangling node.
	RestrictLinks bool `yaml:"restrictLinks"`
}

// IndexerConfig controls where snapshots are written and how often.
type IndexerConfig struct {
	DataDir       string        `yaml:"dataDir"`
	FlushInterval time.Duration `yaml:"flushInterval"`
	KeepSnapshots int           `yaml:"keepSnapshots"`
}

// RankConfig holds the PageRank parameters.
type RankConfig struct {
	Damping    float64 `yaml:"damping"`
	Iterations int     `yaml:"iterations"`
	Tolerance  float64 `yaml:"tolerance"`
	Workers    int     `yaml:"workers"`
}

// SearchConfig controls query evaluation defaults and limits.
type SearchConfig struct {
	MaxResults   int    `yaml:"maxResults"`
	DefaultLimit int    `yaml:"defaultLimit"`
	Strategy     string `yaml:"strategy"`
	Workers      int    `yaml:"workers"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. Missing values keep their defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// Default returns a Config with defaults for local development.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Ingestion: ServerConfig{
			Port:            8081,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "minisearch",
			User:            "minisearch",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			ConsumerGroup: "minisearch-indexer",
			Topics: KafkaTopics{
				DocumentIngest: "document-ingest",
			},
		},
		Redis: RedisConfig{
			Enabled:  true,
			Addr:     "localhost:6379",
			PoolSize: 10,
			CacheTTL: 60 * time.Second,
		},
		Corpus: CorpusConfig{
			Source: SourceFile,
			Path:   "data/corpus.json",
		},
		Indexer: IndexerConfig{
			DataDir:       "data/snapshots",
			FlushInterval: 30 * time.Second,
			KeepSnapshots: 3,
		},
		Rank: RankConfig{
			Damping:    0.85,
			Iterations: 10,
			Workers:    1,
		},
		Search: SearchConfig{
			MaxResults:   100,
			DefaultLimit: 10,
			Strategy:     "daat",
			Workers:      1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// applyEnvOverrides reads MS_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	setInt("MS_SERVER_PORT", &cfg.Server.Port)
	setInt("MS_INGESTION_PORT", &cfg.Ingestion.Port)
	setString("MS_POSTGRES_HOST", &cfg.Postgres.Host)
	setInt("MS_POSTGRES_PORT", &cfg.Postgres.Port)
	setString("MS_POSTGRES_DATABASE", &cfg.Postgres.Database)
	setString("MS_POSTGRES_USER", &cfg.Postgres.User)
	setString("MS_POSTGRES_PASSWORD", &cfg.Postgres.Password)
	setString("MS_POSTGRES_SSLMODE", &cfg.Postgres.SSLMode)
	if v := os.Getenv("MS_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	setString("MS_REDIS_ADDR", &cfg.Redis.Addr)
	setString("MS_REDIS_PASSWORD", &cfg.Redis.Password)
	setBool("MS_REDIS_ENABLED", &cfg.Redis.Enabled)
	setString("MS_CORPUS_SOURCE", &cfg.Corpus.Source)
	setString("MS_CORPUS_PATH", &cfg.Corpus.Path)
	setString("MS_INDEXER_DATA_DIR", &cfg.Indexer.DataDir)
	setFloat("MS_RANK_DAMPING", &cfg.Rank.Damping)
	setInt("MS_RANK_ITERATIONS", &cfg.Rank.Iterations)
	setFloat("MS_RANK_TOLERANCE", &cfg.Rank.Tolerance)
	setInt("MS_RANK_WORKERS", &cfg.Rank.Workers)
	setString("MS_SEARCH_STRATEGY", &cfg.Search.Strategy)
	setString("MS_LOGGING_LEVEL", &cfg.Logging.Level)
	setString("MS_LOGGING_FORMAT", &cfg.Logging.Format)
}

func setString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat(key string, dst *float64) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
