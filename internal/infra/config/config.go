package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Document source kinds accepted by DOCUMENT_SOURCE.
const (
	SourceSheets   = "sheets"
	SourcePostgres = "postgres"
	SourceSQLite   = "sqlite"
)

type Config struct {
	Env    string
	Log    LogConfig
	Server ServerConfig
	Source SourceConfig
	DB     DBConfig
	OpenAI OpenAIConfig
	RAG    RAGConfig
	Load   LoadConfig
	Cache  CacheConfig
	OTel   OTelConfig
}

type LogConfig struct {
	Level string
}

type ServerConfig struct {
	Port            string `validate:"required,numeric"`
	H2C             bool
	ShutdownTimeout time.Duration `validate:"gt=0"`
}

// SourceConfig selects where (title, body) rows come from.
type SourceConfig struct {
	Kind                  string `validate:"oneof=sheets postgres sqlite"`
	SpreadsheetID         string `validate:"required_if=Kind sheets"`
	SheetName             string `validate:"required_if=Kind sheets"`
	HeaderRows            int    `validate:"gte=0"`
	SheetsAPIKey          string
	SheetsCredentialsFile string
	SheetsEndpoint        string
	SheetsTimeout         time.Duration `validate:"gt=0"`
	SQLitePath            string        `validate:"required_if=Kind sqlite"`
	Table                 string        `validate:"required"`
	OrderColumn           string        `validate:"required"`
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	MaxConns int32 `validate:"gte=1"`
	MinConns int32 `validate:"gte=0,ltefield=MaxConns"`
}

// DSN returns a libpq-style connection URL.
func (c DBConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + c.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

type OpenAIConfig struct {
	BaseURL         string
	APIKey          string
	EmbeddingModel  string        `validate:"required"`
	CompletionModel string        `validate:"required"`
	Timeout         time.Duration `validate:"gt=0"`
	MaxRetries      int           `validate:"gte=0"`
}

// RAGConfig tunes prompt assembly and completion.
type RAGConfig struct {
	WordBudget         int     `validate:"gte=1"`
	Temperature        float64 `validate:"gte=0,lte=2"`
	MaxTokens          int     `validate:"gte=1"`
	TopP               float64 `validate:"gte=0,lte=1"`
	FrequencyPenalty   float64 `validate:"gte=-2,lte=2"`
	PresencePenalty    float64 `validate:"gte=-2,lte=2"`
	PromptTemplateFile string
	StrictErrors       bool
}

type LoadConfig struct {
	Concurrency   int     `validate:"gte=1"`
	RatePerSecond float64 `validate:"gte=0"`
	Burst         int     `validate:"gte=0"`
}

// CacheConfig sizes the question-embedding cache. Size 0 disables it.
type CacheConfig struct {
	Size int `validate:"gte=0"`
	TTL  int `validate:"gte=0"` // minutes
}

type OTelConfig struct {
	Enabled     bool
	ServiceName string `validate:"required"`
	Endpoint    string
	SampleRatio float64 `validate:"gte=0,lte=1"`
}

func Load() *Config {
	return &Config{
		Env: getEnv("ENV", "development"),
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			H2C:             getEnvBool("SERVER_H2C", false),
			ShutdownTimeout: time.Duration(getEnvInt("SERVER_SHUTDOWN_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Source: SourceConfig{
			Kind:                  strings.ToLower(getEnv("DOCUMENT_SOURCE", SourceSheets)),
			SpreadsheetID:         getEnv("SHEETS_SPREADSHEET_ID", ""),
			SheetName:             getEnv("SHEETS_SHEET_NAME", "Sheet1"),
			HeaderRows:            getEnvInt("SHEETS_HEADER_ROWS", 1),
			SheetsAPIKey:          getSecret("SHEETS_API_KEY", "SHEETS_API_KEY_FILE", ""),
			SheetsCredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
			SheetsEndpoint:        getEnv("SHEETS_ENDPOINT", ""),
			SheetsTimeout:         time.Duration(getEnvInt("SHEETS_TIMEOUT_SECONDS", 30)) * time.Second,
			SQLitePath:            getEnv("SQLITE_PATH", ""),
			Table:                 getEnv("DOCUMENTS_TABLE", "documents"),
			OrderColumn:           getEnv("DOCUMENTS_ORDER_COLUMN", "id"),
		},
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "sheetqa"),
			Password: getSecret("DB_PASSWORD", "DB_PASSWORD_FILE", ""),
			Name:     getEnv("DB_NAME", "sheetqa"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 4)),
			MinConns: int32(getEnvInt("DB_MIN_CONNS", 0)),
		},
		OpenAI: OpenAIConfig{
			BaseURL:         getEnv("OPENAI_BASE_URL", ""),
			APIKey:          getSecret("OPENAI_API_KEY", "OPENAI_API_KEY_FILE", ""),
			EmbeddingModel:  getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-ada-002"),
			CompletionModel: getEnv("OPENAI_COMPLETION_MODEL", "gpt-3.5-turbo-instruct"),
			Timeout:         time.Duration(getEnvInt("OPENAI_TIMEOUT_SECONDS", 30)) * time.Second,
			MaxRetries:      getEnvInt("OPENAI_MAX_RETRIES", 0),
		},
		RAG: RAGConfig{
			WordBudget:         getEnvInt("RAG_WORD_BUDGET", 1125),
			Temperature:        getEnvFloat64("COMPLETION_TEMPERATURE", 0),
			MaxTokens:          getEnvInt("COMPLETION_MAX_TOKENS", 300),
			TopP:               getEnvFloat64("COMPLETION_TOP_P", 1),
			FrequencyPenalty:   getEnvFloat64("COMPLETION_FREQUENCY_PENALTY", 0),
			PresencePenalty:    getEnvFloat64("COMPLETION_PRESENCE_PENALTY", 0),
			PromptTemplateFile: getEnv("PROMPT_TEMPLATE_FILE", ""),
			StrictErrors:       getEnvBool("ANSWER_STRICT_ERRORS", false),
		},
		Load: LoadConfig{
			Concurrency:   getEnvInt("LOAD_CONCURRENCY", 4),
			RatePerSecond: getEnvFloat64("LOAD_RATE_PER_SECOND", 0),
			Burst:         getEnvInt("LOAD_BURST", 1),
		},
		Cache: CacheConfig{
			Size: getEnvInt("CACHE_SIZE", 256),
			TTL:  getEnvInt("CACHE_TTL_MINUTES", 10),
		},
		OTel: OTelConfig{
			Enabled:     getEnvBool("OTEL_ENABLED", false),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "sheetqa"),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
			SampleRatio: getEnvFloat64("OTEL_TRACE_SAMPLE_RATIO", 1.0),
		},
	}
}

// Validate checks field ranges and the settings each document source needs.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(validateSource, Config{})

	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func validateSource(sl validator.StructLevel) {
	c := sl.Current().Interface().(Config)
	if c.Source.Kind != SourcePostgres {
		return
	}
	if c.DB.Host == "" {
		sl.ReportError(c.DB.Host, "DB.Host", "Host", "required_for_postgres", "")
	}
	if c.DB.Name == "" {
		sl.ReportError(c.DB.Name, "DB.Name", "Name", "required_for_postgres", "")
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getSecret(envKey, fileEnvKey, fallback string) string {
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}

	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		content, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat64(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
