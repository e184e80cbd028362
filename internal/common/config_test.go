package common

import (
	"errors"
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Server:  ServerConfig{GRPCAddr: ":8080", MaxUploadBytes: 1 << 20},
		OCR:     OCRConfig{DPI: 300},
		LLM:     LLMConfig{Backend: BackendNone},
		Summary: SummaryConfig{Mode: SummaryModeInteractive},
		Log:     LogConfig{Level: "info", Format: "json"},
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cfg := validConfig()
	cfg.LLM.Backend = BackendOpenAI
	cfg.OCR.DPI = 0
	cfg.Summary.Mode = "eager"
	err := cfg.Validate()
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("err = %v, want configuration error", err)
	}
	for _, field := range []string{"OPENAI_API_KEY", "OCR_DPI", "SUMMARY_MODE"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error does not mention %s: %v", field, err)
		}
	}

	cfg = validConfig()
	cfg.LLM.Backend = BackendHF
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "HF_API_TOKEN") {
		t.Errorf("hf without token err = %v", err)
	}
}

func TestValidateServer(t *testing.T) {
	cfg := validConfig()
	cfg.Server.MaxUploadBytes = 0
	if err := cfg.ValidateServer(); err == nil || !strings.Contains(err.Error(), "MAX_UPLOAD_BYTES") {
		t.Errorf("err = %v", err)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("LLM_BACKEND", "HF")
	t.Setenv("OCR_DPI", "150")
	t.Setenv("SUMMARY_BEST_EFFORT", "true")
	t.Setenv("LLM_TIMEOUT", "nonsense")

	cfg := LoadConfig()
	if cfg.LLM.Backend != BackendHF {
		t.Errorf("backend = %q", cfg.LLM.Backend)
	}
	if cfg.OCR.DPI != 150 || !cfg.Summary.BestEffort {
		t.Errorf("ocr/summary = %+v %+v", cfg.OCR, cfg.Summary)
	}
	if cfg.LLM.Timeout.Seconds() != 60 {
		t.Errorf("unparseable duration should keep the default, got %v", cfg.LLM.Timeout)
	}
}
