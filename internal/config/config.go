package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the voice input gateway
type Config struct {
	// Server configuration
	Port           string `envconfig:"PORT" default:"8080"`
	GRPCHealthPort string `envconfig:"GRPC_HEALTH_PORT" default:"9090"`

	// Public base URL (e.g. https://voice.school.example). Only used for logging the
	// WebSocket endpoint; if unset, logs ws://localhost:PORT/voice/ws.
	PublicURL string `envconfig:"PUBLIC_URL" default:""`

	// Allowed WebSocket origins, comma separated. Empty allows any origin.
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:""`

	// Storage
	DatabasePath string `envconfig:"DATABASE_PATH" default:"data/voice-input.db" validate:"required"`

	// Deepgram server-side recognition (optional; clients relay their own engine otherwise)
	DeepgramAPIKey   string `envconfig:"DEEPGRAM_API_KEY" default:""`
	DeepgramModel    string `envconfig:"DEEPGRAM_MODEL" default:"nova-2"`
	DeepgramLanguage string `envconfig:"DEEPGRAM_LANGUAGE" default:"en-GB"`

	// Cartesia spoken feedback (optional)
	CartesiaAPIKey  string `envconfig:"CARTESIA_API_KEY" default:""`
	CartesiaURL     string `envconfig:"CARTESIA_URL" default:"https://api.cartesia.ai/v1/tts" validate:"omitempty,url"`
	CartesiaVoiceID string `envconfig:"CARTESIA_VOICE_ID" default:"sonic-english"`
	CartesiaModelID string `envconfig:"CARTESIA_MODEL_ID" default:"sonic"`

	// Recognition defaults, overridden per user by stored preferences
	DefaultAccent       string `envconfig:"DEFAULT_ACCENT" default:"general"`
	DefaultKeyStage     string `envconfig:"DEFAULT_KEY_STAGE" default:"ks2" validate:"oneof=early-years ks1 ks2 ks3 ks4"`
	DefaultSensitivity  int    `envconfig:"DEFAULT_SENSITIVITY" default:"50" validate:"min=0,max=100"`
	AdaptiveRecognition bool   `envconfig:"ADAPTIVE_RECOGNITION" default:"true"`

	// Server-side audio: PCM sample rate and the silence that ends an
	// utterance when a client asks for auto-stop
	AudioSampleRate       int     `envconfig:"AUDIO_SAMPLE_RATE" default:"16000" validate:"gt=0"`
	AutoStopSilenceMs     int     `envconfig:"AUTO_STOP_SILENCE_MS" default:"1500" validate:"gt=0"`
	SpeechEnergyThreshold float64 `envconfig:"SPEECH_ENERGY_THRESHOLD" default:"500" validate:"gt=0"`

	// Session limits
	SessionMessageRate  float64 `envconfig:"SESSION_MESSAGE_RATE" default:"20" validate:"gt=0"` // inbound messages per second
	SessionMessageBurst int     `envconfig:"SESSION_MESSAGE_BURST" default:"40" validate:"gt=0"`

	// Resilience configuration
	CircuitBreakerMaxFailures  int `envconfig:"CIRCUIT_BREAKER_MAX_FAILURES" default:"5" validate:"gt=0"` // Failures before opening circuit
	CircuitBreakerResetTimeout int `envconfig:"CIRCUIT_BREAKER_RESET_TIMEOUT" default:"30"`               // Seconds before attempting recovery
	RetryMaxAttempts           int `envconfig:"RETRY_MAX_ATTEMPTS" default:"3" validate:"gt=0"`
	RetryInitialBackoff        int `envconfig:"RETRY_INITIAL_BACKOFF" default:"100"` // milliseconds
	ReconnectMaxAttempts       int `envconfig:"RECONNECT_MAX_ATTEMPTS" default:"5"`
	ReconnectBackoff           int `envconfig:"RECONNECT_BACKOFF" default:"1000"` // milliseconds

	// Observability configuration
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error fatal panic"`
	LogPretty      bool   `envconfig:"LOG_PRETTY" default:"false"`
	LogFile        string `envconfig:"LOG_FILE" default:""`             // Rotating log file, disabled when empty
	LogFileMaxSize int    `envconfig:"LOG_FILE_MAX_SIZE" default:"100"` // megabytes
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"`
}

// DeepgramEnabled reports whether server-side recognition is configured.
func (c *Config) DeepgramEnabled() bool {
	return c.DeepgramAPIKey != ""
}

// CartesiaEnabled reports whether spoken feedback is configured.
func (c *Config) CartesiaEnabled() bool {
	return c.CartesiaAPIKey != ""
}

// Load reads configuration from environment variables
// It first attempts to load from .env file if it exists, then from environment
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()
	return LoadFromEnv()
}

// LoadFromEnv loads configuration directly from environment variables
// without attempting to load .env file (useful for containerized deployments)
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// GetEnv returns the value of an environment variable or a default value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
