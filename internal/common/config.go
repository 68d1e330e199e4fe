package common

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/startpacket/constants"
)

// Config holds all application configuration
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Parser    ParserConfig
	Ingest    IngestConfig
	Territory TerritoryConfig
	Log       LogConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver           string // "pgx" or "sqlite"
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr string
	HTTPAddr string
}

// ParserConfig holds quote parsing configuration
type ParserConfig struct {
	VocabularyFile  string
	DefaultBranchID string
	LeadType        string
	Concurrent      bool
	Timeout         time.Duration
	MaxPages        int
	PDFToText       string // external fallback binary, empty disables it
}

// IngestConfig holds inbox watching configuration
type IngestConfig struct {
	InboxDir  string
	Workers   int
	QueueSize int
	Debounce  time.Duration
}

type TerritoryConfig struct {
	Environment constants.Environment
}

type LogConfig struct {
	Level  slog.Level
	Format string // "json" or "text"
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:           getEnv("DB_DRIVER", "pgx"),
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			GRPCAddr: getEnv("GRPC_ADDR", ":8080"),
			HTTPAddr: getEnv("HTTP_ADDR", ":8081"),
		},
		Parser: ParserConfig{
			VocabularyFile:  getEnv("VOCABULARY_FILE", ""),
			DefaultBranchID: getEnv("DEFAULT_BRANCH_ID", constants.DefaultBranchID),
			LeadType:        getEnv("LEAD_TYPE", string(constants.LeadInbound)),
			Concurrent:      getEnvAsBool("PARSE_CONCURRENT", false),
			Timeout:         getEnvAsDuration("PARSE_TIMEOUT", 60*time.Second),
			MaxPages:        getEnvAsInt("MAX_PAGES", 40),
			PDFToText:       getEnv("PDFTOTEXT_BIN", "pdftotext"),
		},
		Ingest: IngestConfig{
			InboxDir:  getEnv("INBOX_DIR", ""),
			Workers:   getEnvAsInt("WORKERS", 2),
			QueueSize: getEnvAsInt("QUEUE_SIZE", 64),
			Debounce:  getEnvAsDuration("WATCH_DEBOUNCE", 750*time.Millisecond),
		},
		Territory: TerritoryConfig{
			Environment: constants.Environment(strings.ToUpper(getEnv("TERRITORY_ENV", string(constants.EnvironmentTest)))),
		},
		Log: LogConfig{
			Level:  parseLevel(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "json")),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func parseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.Driver != "pgx" && c.Database.Driver != "sqlite" {
		return NewAppError("CONFIG_ERROR", "DB_DRIVER must be pgx or sqlite", ErrInvalidInput)
	}
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Server.GRPCAddr == "" {
		return NewAppError("CONFIG_ERROR", "GRPC_ADDR is required", ErrInvalidInput)
	}
	if !c.Territory.Environment.Valid() {
		return NewAppError("CONFIG_ERROR", "TERRITORY_ENV must be TEST or PRODUCTION", ErrInvalidInput)
	}
	if !constants.IsLeadType(c.Parser.LeadType) {
		return NewAppError("CONFIG_ERROR", "LEAD_TYPE must be one of Inbound, Creative, TAP", ErrInvalidInput)
	}
	if c.Ingest.Workers <= 0 {
		return NewAppError("CONFIG_ERROR", "WORKERS must be positive", ErrInvalidInput)
	}
	return nil
}

// NewLogger builds the process logger from LogConfig.
func NewLogger(cfg LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
