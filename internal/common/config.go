package common

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	OCR      OCRConfig
	LLM      LLMConfig
	Summary  SummaryConfig
	Pipeline PipelineConfig
	Log      LogConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string // postgres; takes precedence over SQLitePath
	SQLitePath       string // file path or ":memory:"
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr       string
	MaxUploadBytes int
}

// OCRConfig holds text extraction configuration
type OCRConfig struct {
	Pdftotext           string
	Pdftoppm            string
	Tesseract           string
	TesseractLang       string
	TessdataDir         string
	DPI                 int
	MaxPages            int
	EnableTSVConfidence bool
}

// LLMConfig holds capability provider configuration
type LLMConfig struct {
	Backend     string // openai | hf | eino | none
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	Timeout     time.Duration

	HFToken           string
	HFBaseURL         string
	HFSummaryModel    string
	HFClassifierModel string
	HFQAModel         string

	ClassifierEnabled bool
}

// SummaryConfig selects the summarization preset
type SummaryConfig struct {
	Mode       string // interactive | batch
	BestEffort bool
}

// PipelineConfig holds orchestrator behavior flags
type PipelineConfig struct {
	Parallel    bool
	LexiconFile string
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string
}

const (
	BackendOpenAI = "openai"
	BackendHF     = "hf"
	BackendEino   = "eino"
	BackendNone   = "none"

	SummaryModeInteractive = "interactive"
	SummaryModeBatch       = "batch"
)

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			SQLitePath:       getEnv("SQLITE_PATH", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			GRPCAddr:       getEnv("GRPC_ADDR", ":8080"),
			MaxUploadBytes: getEnvAsInt("MAX_UPLOAD_BYTES", 32<<20),
		},
		OCR: OCRConfig{
			Pdftotext:           getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Pdftoppm:            getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract:           getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang:       getEnv("TESSERACT_LANG", "eng"),
			TessdataDir:         getEnv("TESSDATA_PREFIX", ""),
			DPI:                 getEnvAsInt("OCR_DPI", 300),
			MaxPages:            getEnvAsInt("OCR_MAX_PAGES", 0),
			EnableTSVConfidence: getEnvAsBool("OCR_TSV_CONFIDENCE", false),
		},
		LLM: LLMConfig{
			Backend:           strings.ToLower(getEnv("LLM_BACKEND", BackendOpenAI)),
			Model:             getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			APIKey:            getEnv("OPENAI_API_KEY", ""),
			BaseURL:           getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Temperature:       getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			Timeout:           getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
			HFToken:           getEnv("HF_API_TOKEN", ""),
			HFBaseURL:         getEnv("HF_BASE_URL", "https://api-inference.huggingface.co/models"),
			HFSummaryModel:    getEnv("HF_SUMMARY_MODEL", "facebook/bart-large-cnn"),
			HFClassifierModel: getEnv("HF_CLASSIFIER_MODEL", ""),
			HFQAModel:         getEnv("HF_QA_MODEL", "deepset/roberta-base-squad2"),
			ClassifierEnabled: getEnvAsBool("CLASSIFIER_ENABLED", false),
		},
		Summary: SummaryConfig{
			Mode:       strings.ToLower(getEnv("SUMMARY_MODE", SummaryModeInteractive)),
			BestEffort: getEnvAsBool("SUMMARY_BEST_EFFORT", false),
		},
		Pipeline: PipelineConfig{
			Parallel:    getEnvAsBool("PIPELINE_PARALLEL", true),
			LexiconFile: getEnv("LEXICON_FILE", ""),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
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

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
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

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator()
	v.Field("LLM_BACKEND", c.LLM.Backend, OneOf(BackendOpenAI, BackendHF, BackendEino, BackendNone))
	v.Field("SUMMARY_MODE", c.Summary.Mode, OneOf(SummaryModeInteractive, SummaryModeBatch))
	v.Field("LOG_LEVEL", c.Log.Level, OneOf("debug", "info", "warn", "error"))
	v.Field("LOG_FORMAT", c.Log.Format, OneOf("json", "text"))
	v.Field("OCR_DPI", c.OCR.DPI, Positive)
	v.Field("OCR_MAX_PAGES", c.OCR.MaxPages, NonNegative)
	switch c.LLM.Backend {
	case BackendOpenAI, BackendEino:
		v.Field("OPENAI_API_KEY", c.LLM.APIKey, Required)
	case BackendHF:
		v.Field("HF_API_TOKEN", c.LLM.HFToken, Required)
		v.Field("HF_SUMMARY_MODEL", c.LLM.HFSummaryModel, Required)
	}
	return ValidateAndReturnError("config", v)
}

// ValidateServer adds the checks only the daemon needs.
func (c *Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	v := NewValidator()
	v.Field("GRPC_ADDR", c.Server.GRPCAddr, Required)
	v.Field("MAX_UPLOAD_BYTES", c.Server.MaxUploadBytes, Positive)
	return ValidateAndReturnError("config", v)
}
