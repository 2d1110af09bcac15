package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// =============================================================================
// CONFIG TESTS
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Name != "counsellor" {
		t.Errorf("expected Name=counsellor, got %s", cfg.Name)
	}
	if cfg.Database.Driver != DriverModernc {
		t.Errorf("expected Driver=%s, got %s", DriverModernc, cfg.Database.Driver)
	}
	if cfg.Context.MaxCandidates != 20 {
		t.Errorf("expected MaxCandidates=20, got %d", cfg.Context.MaxCandidates)
	}
	if cfg.Context.BackfillThreshold != 10 || cfg.Context.BackfillLimit != 10 {
		t.Errorf("unexpected backfill bounds: %+v", cfg.Context)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	cfg := DefaultConfig()
	cfg.LLM.Provider = ProviderGemini
	cfg.LLM.APIKey = "gm-test"
	cfg.Context.MaxCandidates = 15

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.LLM.Provider != ProviderGemini {
		t.Errorf("expected Provider=gemini, got %s", loaded.LLM.Provider)
	}
	if loaded.LLM.APIKey != "gm-test" {
		t.Errorf("expected APIKey=gm-test, got %s", loaded.LLM.APIKey)
	}
	if loaded.Context.MaxCandidates != 15 {
		t.Errorf("expected MaxCandidates=15, got %d", loaded.Context.MaxCandidates)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Addr != ":8000" {
		t.Errorf("expected default addr, got %s", cfg.Server.Addr)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("llm: [unterminated"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for missing API key")
	}

	cfg.LLM.APIKey = "test-key"
	cfg.LLM.Provider = ProviderGroq
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got error: %v", err)
	}

	cfg.LLM.Provider = "invalid-provider"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for invalid provider")
	}

	cfg.LLM.Provider = ProviderGroq
	cfg.Database.Driver = "postgres"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for invalid driver")
	}
}

func TestConfig_Timeouts(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.GetLLMTimeout(); got != 30*time.Second {
		t.Errorf("GetLLMTimeout=%v, want 30s", got)
	}

	cfg.LLM.Timeout = "garbage"
	if got := cfg.GetLLMTimeout(); got != 30*time.Second {
		t.Errorf("GetLLMTimeout fallback=%v, want 30s", got)
	}

	cfg.Server.WriteTimeout = "10s"
	if got := cfg.GetWriteTimeout(); got <= cfg.GetLLMTimeout() {
		t.Errorf("write timeout %v must outlive LLM timeout", got)
	}
}
