// main package for the podcast-service
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/book-expert/logger"
	"github.com/book-expert/podcast-service/internal/artifact"
	"github.com/book-expert/podcast-service/internal/config"
	"github.com/book-expert/podcast-service/internal/core"
	"github.com/book-expert/podcast-service/internal/jobstore"
	"github.com/book-expert/podcast-service/internal/notify"
	"github.com/book-expert/podcast-service/internal/pipeline"
	"github.com/book-expert/podcast-service/internal/script"
	"github.com/book-expert/podcast-service/internal/server"
	"github.com/book-expert/podcast-service/internal/speech"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
)

const shutdownGracePeriod = 10 * time.Second

func setupLogger(logPath string) (*logger.Logger, error) {
	log, err := logger.New(logPath, "podcast-service.log")
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return log, nil
}

// natsBackends holds the optional NATS-backed components. Both are nil when
// no NATS URL is configured.
type natsBackends struct {
	conn      *nats.Conn
	artifacts core.ArtifactStore
	notifier  core.LifecycleNotifier
}

func connectNATS(cfg *config.Config, log *logger.Logger) (*natsBackends, error) {
	conn, connectErr := nats.Connect(cfg.NATS.URL)
	if connectErr != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.NATS.URL, connectErr)
	}

	jetstreamContext, jetstreamErr := conn.JetStream()
	if jetstreamErr != nil {
		conn.Close()

		return nil, fmt.Errorf("failed to get JetStream context: %w", jetstreamErr)
	}

	artifacts, storeErr := artifact.NewNATSStore(jetstreamContext, cfg.Storage.AudioBucket)
	if storeErr != nil {
		conn.Close()

		return nil, fmt.Errorf("failed to create NATS artifact store: %w", storeErr)
	}

	notifier := notify.NewNATSNotifier(
		conn, cfg.NATS.PodcastCompletedSubject, cfg.NATS.PodcastFailedSubject, log,
	)

	return &natsBackends{conn: conn, artifacts: artifacts, notifier: notifier}, nil
}

func buildJobStore(cfg *config.Config, log *logger.Logger) (core.JobStore, error) {
	if cfg.Redis.Addr != "" {
		log.Info("Using Redis job store at %s", cfg.Redis.Addr)

		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		return jobstore.NewRedisStore(client), nil
	}

	log.Info("Using file job store at %s", cfg.Storage.JobStorePath)

	store, storeErr := jobstore.NewFileStore(cfg.Storage.JobStorePath)
	if storeErr != nil {
		return nil, fmt.Errorf("failed to open job store: %w", storeErr)
	}

	return store, nil
}

func buildVoiceCatalog(cfg *config.Config) (speech.VoiceCatalog, error) {
	if cfg.Speech.VoiceCatalogPath == "" {
		return speech.DefaultVoiceCatalog(), nil
	}

	catalog, loadErr := speech.LoadVoiceCatalog(cfg.Speech.VoiceCatalogPath)
	if loadErr != nil {
		return speech.VoiceCatalog{}, fmt.Errorf("failed to load voice catalog: %w", loadErr)
	}

	return catalog, nil
}

func run() error {
	bootstrapLog, err := setupLogger(os.TempDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to create bootstrap logger: %v\n", err)

		return err
	}

	cfg, err := config.Load(bootstrapLog)
	if err != nil {
		bootstrapLog.Error("Failed to load configuration: %v", err)

		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := setupLogger(cfg.Paths.BaseLogsDir)
	if err != nil {
		bootstrapLog.Error("Failed to create final logger: %v", err)

		return fmt.Errorf("failed to create final logger: %w", err)
	}

	defer func() {
		closeErr := log.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing logger: %v\n", closeErr)
		}
	}()

	return serve(cfg, log)
}

func serve(cfg *config.Config, log *logger.Logger) error {
	store, storeErr := buildJobStore(cfg, log)
	if storeErr != nil {
		return storeErr
	}

	catalog, catalogErr := buildVoiceCatalog(cfg)
	if catalogErr != nil {
		return catalogErr
	}

	scripts := script.NewGenerator(
		cfg.Script.BaseURL,
		cfg.Script.Model,
		os.Getenv(cfg.Script.APIKeyEnv),
		time.Duration(cfg.Script.TimeoutSeconds)*time.Second,
		log,
	)

	synthesizer := speech.NewSynthesizer(
		cfg.Speech.BaseURL,
		os.Getenv(cfg.Speech.APIKeyEnv),
		catalog,
		time.Duration(cfg.Speech.TimeoutSeconds)*time.Second,
		log,
	)

	var (
		artifacts core.ArtifactStore
		notifier  core.LifecycleNotifier
	)

	if cfg.NATS.URL != "" {
		backends, natsErr := connectNATS(cfg, log)
		if natsErr != nil {
			return natsErr
		}

		defer backends.conn.Close()

		artifacts = backends.artifacts
		notifier = backends.notifier

		log.Info("Audio artifacts stored in NATS object store bucket %s", cfg.Storage.AudioBucket)
	} else {
		fsStore, fsErr := artifact.NewFSStore(cfg.Storage.AudioDir)
		if fsErr != nil {
			return fmt.Errorf("failed to create audio directory: %w", fsErr)
		}

		artifacts = fsStore

		log.Info("Audio artifacts stored in %s", cfg.Storage.AudioDir)
	}

	orchestrator := pipeline.New(
		store,
		scripts,
		synthesizer,
		artifacts,
		notifier,
		time.Duration(cfg.Pipeline.ScriptTimeoutSeconds)*time.Second,
		time.Duration(cfg.Pipeline.AudioTimeoutSeconds)*time.Second,
		log,
	)

	apiServer := server.New(store, orchestrator, scripts, artifacts, log)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)

	go func() {
		serveErr <- httpServer.ListenAndServe()
	}()

	log.System("Podcast service listening on port %d", cfg.HTTP.Port)

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}

		return nil
	case <-ctx.Done():
	}

	log.Info("Shutdown signal received, draining connections")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer cancel()

	shutdownErr := httpServer.Shutdown(shutdownCtx)
	if shutdownErr != nil {
		return fmt.Errorf("http server shutdown failed: %w", shutdownErr)
	}

	return nil
}

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Service exited with error: %v\n", err)
		os.Exit(1)
	}
}
