package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lexiqai/voice-input/internal/commands"
	"github.com/lexiqai/voice-input/internal/config"
	"github.com/lexiqai/voice-input/internal/gateway"
	"github.com/lexiqai/voice-input/internal/observability"
	"github.com/lexiqai/voice-input/internal/recognition"
	"github.com/lexiqai/voice-input/internal/resilience"
	"github.com/lexiqai/voice-input/internal/store"
	"github.com/lexiqai/voice-input/internal/tts"
)

const shutdownTimeout = 30 * time.Second

func init() {
	RootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the voice gateway server",
		RunE:  runServe,
	})
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		// The logger is not configured yet.
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return err
	}

	observability.InitLogger(observability.LogOptions{
		Level:     cfg.LogLevel,
		Pretty:    cfg.LogPretty,
		File:      cfg.LogFile,
		MaxSizeMB: cfg.LogFileMaxSize,
	})
	logger := observability.WithCorrelationID("startup")

	logger.Info().
		Str("port", cfg.Port).
		Str("database", cfg.DatabasePath).
		Str("log_level", cfg.LogLevel).
		Bool("deepgram_enabled", cfg.DeepgramEnabled()).
		Bool("cartesia_enabled", cfg.CartesiaEnabled()).
		Bool("metrics_enabled", cfg.MetricsEnabled).
		Msg("Voice Gateway Service starting")

	st, err := store.NewSQLiteStore(cfg.DatabasePath, store.Preferences{
		KeyStage:               cfg.DefaultKeyStage,
		VoiceNavigationEnabled: true,
		FeedbackEnabled:        true,
		Accent:                 cfg.DefaultAccent,
		Sensitivity:            cfg.DefaultSensitivity,
		Adaptive:               cfg.AdaptiveRecognition,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to open store")
		return err
	}
	defer st.Close()

	registry, err := commands.Load()
	if err != nil {
		logger.Error().Err(err).Msg("Command catalogue is invalid")
		return err
	}

	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = cfg.RetryMaxAttempts
	retry.InitialBackoff = time.Duration(cfg.RetryInitialBackoff) * time.Millisecond

	var serverEngine recognition.Capability = recognition.Unsupported{}
	if cfg.DeepgramEnabled() {
		serverEngine = recognition.NewDeepgramCapability(recognition.DeepgramConfig{
			APIKey:              cfg.DeepgramAPIKey,
			Model:               cfg.DeepgramModel,
			Language:            cfg.DeepgramLanguage,
			SampleRate:          cfg.AudioSampleRate,
			BreakerMaxFailures:  cfg.CircuitBreakerMaxFailures,
			BreakerResetTimeout: time.Duration(cfg.CircuitBreakerResetTimeout) * time.Second,
			Reconnect: resilience.RetryConfig{
				MaxAttempts:       cfg.ReconnectMaxAttempts,
				InitialBackoff:    time.Duration(cfg.ReconnectBackoff) * time.Millisecond,
				MaxBackoff:        30 * time.Second,
				BackoffMultiplier: 2.0,
			},
		}, logger)
	}

	var synthesizer tts.Synthesizer = tts.Silent{}
	if cfg.CartesiaEnabled() {
		synthesizer = tts.NewCartesiaClient(tts.CartesiaConfig{
			APIKey:  cfg.CartesiaAPIKey,
			URL:     cfg.CartesiaURL,
			VoiceID: cfg.CartesiaVoiceID,
			ModelID: cfg.CartesiaModelID,
			Retry:   retry,
		}, logger)
	}

	gw := gateway.New(gateway.Options{
		Config:       cfg,
		Commands:     registry,
		Store:        st,
		Synthesizer:  synthesizer,
		ServerEngine: serverEngine,
		Logger:       logger,
	})

	checks := observability.Checks{
		"store": func(ctx context.Context) (bool, error) {
			if err := st.Ping(ctx); err != nil {
				return false, err
			}
			return true, nil
		},
	}
	grpcHealth := observability.NewGRPCHealth(checks)

	mux := http.NewServeMux()
	gw.RegisterRoutes(mux)
	mux.HandleFunc("/health", observability.HealthCheckHandler())
	mux.HandleFunc("/ready", observability.ReadinessHandler(checks, grpcHealth.SetReady))
	if cfg.MetricsEnabled {
		mux.Handle("/metrics", promhttp.Handler())
		logger.Info().Msg("Prometheus metrics enabled at /metrics")
	}

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	grpcListener, err := net.Listen("tcp", ":"+cfg.GRPCHealthPort)
	if err != nil {
		logger.Error().Err(err).Str("port", cfg.GRPCHealthPort).Msg("Failed to listen for gRPC health")
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		endpoint := cfg.PublicURL
		if endpoint == "" {
			endpoint = "ws://localhost:" + cfg.Port
		}
		logger.Info().
			Str("port", cfg.Port).
			Str("endpoint", endpoint+"/voice/ws").
			Msg("Server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info().Str("port", cfg.GRPCHealthPort).Msg("gRPC health listening")
		return grpcHealth.Server.Serve(grpcListener)
	})

	g.Go(func() error {
		grpcHealth.Watch(gctx, 10*time.Second)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		grpcHealth.Shutdown()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("HTTP server forced to shutdown")
		}
		if err := gw.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Int("sessions", gw.ActiveSessions()).Msg("Voice sessions did not close in time")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("Server failed")
		return err
	}

	logger.Info().Msg("Server exited gracefully")
	return nil
}
