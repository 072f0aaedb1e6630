package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	defaultHTTPPort      = "8080"
	defaultLogLevel      = "info"
	defaultLogFormat     = "json"
	defaultMinioEndpoint = "localhost:9000"
	defaultMinioBucket   = "exception-records"
	defaultIntakePrefix  = "incoming/"
	defaultOutcomePrefix = "outcomes/"
	defaultMaxBodyBytes  = 1 << 20
)

type Config struct {
	HTTPPort        string
	LogLevel        string
	LogFormat       string
	S2SSigningKey   string
	AllowedServices []string
	FormSchemaFile  string
	PostgresDSN     string
	MinioEndpoint   string
	MinioAccessKey  string
	MinioSecretKey  string
	MinioBucket     string
	MinioUseSSL     bool
	IntakePrefix    string
	OutcomePrefix   string
	MaxBodyBytes    int64
}

// AuditEnabled reports whether verdicts and outcomes are persisted.
func (c Config) AuditEnabled() bool {
	return c.PostgresDSN != ""
}

func Load() (Config, error) {
	cfg := Config{
		HTTPPort:        getenv("HTTP_PORT", defaultHTTPPort),
		LogLevel:        strings.ToLower(getenv("LOG_LEVEL", defaultLogLevel)),
		LogFormat:       strings.ToLower(getenv("LOG_FORMAT", defaultLogFormat)),
		S2SSigningKey:   os.Getenv("S2S_SIGNING_KEY"),
		AllowedServices: getenvList("S2S_ALLOWED_SERVICES"),
		FormSchemaFile:  os.Getenv("FORM_SCHEMA_FILE"),
		PostgresDSN:     os.Getenv("POSTGRES_DSN"),
		MinioEndpoint:   getenv("MINIO_ENDPOINT", defaultMinioEndpoint),
		MinioAccessKey:  os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey:  os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:     getenv("MINIO_BUCKET", defaultMinioBucket),
		MinioUseSSL:     getenvBool("MINIO_USE_SSL", false),
		IntakePrefix:    getenv("INTAKE_PREFIX", defaultIntakePrefix),
		OutcomePrefix:   getenv("OUTCOME_PREFIX", defaultOutcomePrefix),
		MaxBodyBytes:    int64(getenvInt("MAX_BODY_BYTES", defaultMaxBodyBytes)),
	}

	if cfg.S2SSigningKey == "" {
		return Config{}, fmt.Errorf("S2S_SIGNING_KEY is required")
	}
	if len(cfg.AllowedServices) == 0 {
		return Config{}, fmt.Errorf("S2S_ALLOWED_SERVICES is required")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return Config{}, fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return Config{}, fmt.Errorf("LOG_FORMAT %q is not one of json, text", cfg.LogFormat)
	}
	if cfg.MaxBodyBytes <= 0 {
		return Config{}, fmt.Errorf("MAX_BODY_BYTES must be positive")
	}
	if strings.Trim(cfg.IntakePrefix, "/") == strings.Trim(cfg.OutcomePrefix, "/") {
		return Config{}, fmt.Errorf("INTAKE_PREFIX and OUTCOME_PREFIX must differ")
	}

	return cfg, nil
}

func getenv(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getenvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
