package config

import (
	"os"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("DEEPGRAM_API_KEY")
	os.Unsetenv("CARTESIA_API_KEY")
	os.Unsetenv("LOG_LEVEL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected default Port '8080', got '%s'", cfg.Port)
	}

	if cfg.GRPCHealthPort != "9090" {
		t.Errorf("Expected default GRPCHealthPort '9090', got '%s'", cfg.GRPCHealthPort)
	}

	if cfg.DeepgramModel != "nova-2" {
		t.Errorf("Expected default DeepgramModel 'nova-2', got '%s'", cfg.DeepgramModel)
	}

	if cfg.DeepgramLanguage != "en-GB" {
		t.Errorf("Expected default DeepgramLanguage 'en-GB', got '%s'", cfg.DeepgramLanguage)
	}

	if cfg.DefaultAccent != "general" {
		t.Errorf("Expected default DefaultAccent 'general', got '%s'", cfg.DefaultAccent)
	}

	if cfg.DefaultKeyStage != "ks2" {
		t.Errorf("Expected default DefaultKeyStage 'ks2', got '%s'", cfg.DefaultKeyStage)
	}

	if cfg.DefaultSensitivity != 50 {
		t.Errorf("Expected default DefaultSensitivity 50, got %d", cfg.DefaultSensitivity)
	}

	if !cfg.AdaptiveRecognition {
		t.Error("Expected default AdaptiveRecognition true, got false")
	}

	if cfg.DatabasePath != "data/voice-input.db" {
		t.Errorf("Expected default DatabasePath 'data/voice-input.db', got '%s'", cfg.DatabasePath)
	}

	if cfg.AudioSampleRate != 16000 {
		t.Errorf("Expected default AudioSampleRate 16000, got %d", cfg.AudioSampleRate)
	}

	if cfg.AutoStopSilenceMs != 1500 {
		t.Errorf("Expected default AutoStopSilenceMs 1500, got %d", cfg.AutoStopSilenceMs)
	}
}

func TestLoad_OptionalEngines(t *testing.T) {
	os.Unsetenv("DEEPGRAM_API_KEY")
	os.Unsetenv("CARTESIA_API_KEY")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.DeepgramEnabled() {
		t.Error("Expected Deepgram to be disabled without an API key")
	}
	if cfg.CartesiaEnabled() {
		t.Error("Expected Cartesia to be disabled without an API key")
	}

	t.Setenv("DEEPGRAM_API_KEY", "test-deepgram-key")
	t.Setenv("CARTESIA_API_KEY", "test-cartesia-key")

	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if !cfg.DeepgramEnabled() || cfg.DeepgramAPIKey != "test-deepgram-key" {
		t.Errorf("Expected Deepgram enabled with key 'test-deepgram-key', got '%s'", cfg.DeepgramAPIKey)
	}
	if !cfg.CartesiaEnabled() || cfg.CartesiaAPIKey != "test-cartesia-key" {
		t.Errorf("Expected Cartesia enabled with key 'test-cartesia-key', got '%s'", cfg.CartesiaAPIKey)
	}
}

func TestLoad_InvalidKeyStage(t *testing.T) {
	t.Setenv("DEFAULT_KEY_STAGE", "ks9")

	if _, err := Load(); err == nil {
		t.Error("Expected error for unknown key stage")
	}
}

func TestLoad_InvalidSensitivity(t *testing.T) {
	t.Setenv("DEFAULT_SENSITIVITY", "150")

	if _, err := LoadFromEnv(); err == nil {
		t.Error("Expected error for sensitivity above 100")
	}
}

func TestLoad_AllowedOrigins(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() failed: %v", err)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("Expected two allowed origins, got %v", cfg.AllowedOrigins)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("TEST_KEY", "test-value")

	value := GetEnv("TEST_KEY", "default")
	if value != "test-value" {
		t.Errorf("Expected 'test-value', got '%s'", value)
	}

	value = GetEnv("NON_EXISTENT_KEY", "default")
	if value != "default" {
		t.Errorf("Expected 'default', got '%s'", value)
	}
}

func TestConfig_ResilienceDefaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() failed: %v", err)
	}

	if cfg.CircuitBreakerMaxFailures != 5 {
		t.Errorf("Expected default CircuitBreakerMaxFailures 5, got %d", cfg.CircuitBreakerMaxFailures)
	}

	if cfg.CircuitBreakerResetTimeout != 30 {
		t.Errorf("Expected default CircuitBreakerResetTimeout 30, got %d", cfg.CircuitBreakerResetTimeout)
	}

	if cfg.RetryMaxAttempts != 3 {
		t.Errorf("Expected default RetryMaxAttempts 3, got %d", cfg.RetryMaxAttempts)
	}

	if cfg.ReconnectBackoff != 1000 {
		t.Errorf("Expected default ReconnectBackoff 1000, got %d", cfg.ReconnectBackoff)
	}

	if cfg.SessionMessageRate != 20 || cfg.SessionMessageBurst != 40 {
		t.Errorf("Expected session rate 20/40, got %v/%d", cfg.SessionMessageRate, cfg.SessionMessageBurst)
	}
}

func TestConfig_ObservabilityDefaults(t *testing.T) {
	os.Unsetenv("LOG_LEVEL")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() failed: %v", err)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("Expected default LogLevel 'info', got '%s'", cfg.LogLevel)
	}

	if cfg.LogPretty {
		t.Error("Expected default LogPretty false, got true")
	}

	if cfg.LogFile != "" {
		t.Errorf("Expected no default LogFile, got '%s'", cfg.LogFile)
	}

	if !cfg.MetricsEnabled {
		t.Error("Expected default MetricsEnabled true, got false")
	}
}
