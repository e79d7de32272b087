// Package config provides the configuration structure for the podcast-service.
package config

import (
	"fmt"

	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"
)

// Defaults applied when the TOML file leaves a field unset.
const (
	DefaultHTTPPort             = 8080
	DefaultScriptTimeoutSeconds = 120
	DefaultAudioTimeoutSeconds  = 300
	DefaultProviderTimeout      = 60
)

// HTTPConfig holds the configuration for the HTTP API.
type HTTPConfig struct {
	Port int `toml:"port"`
}

// ScriptProviderConfig holds the configuration for the text-generation
// provider. The API key is read from the named environment variable, never
// from the file itself.
type ScriptProviderConfig struct {
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	APIKeyEnv      string `toml:"api_key_env"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// SpeechProviderConfig holds the configuration for the speech-synthesis
// provider.
type SpeechProviderConfig struct {
	BaseURL          string `toml:"base_url"`
	APIKeyEnv        string `toml:"api_key_env"`
	TimeoutSeconds   int    `toml:"timeout_seconds"`
	VoiceCatalogPath string `toml:"voice_catalog_path"`
}

// StorageConfig holds the configuration for job and artifact persistence.
type StorageConfig struct {
	JobStorePath string `toml:"job_store_path"`
	AudioDir     string `toml:"audio_dir"`
	AudioBucket  string `toml:"audio_bucket"`
}

// NATSConfig holds the optional NATS configuration. An empty URL disables the
// NATS artifact backend and lifecycle notifications.
type NATSConfig struct {
	URL                     string `toml:"url"`
	PodcastCompletedSubject string `toml:"podcast_completed_subject"`
	PodcastFailedSubject    string `toml:"podcast_failed_subject"`
}

// RedisConfig holds the optional Redis job store configuration. An empty
// address selects the file-backed store.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// PipelineConfig bounds each pipeline stage. A stage that exceeds its timeout
// fails the job.
type PipelineConfig struct {
	ScriptTimeoutSeconds int `toml:"script_timeout_seconds"`
	AudioTimeoutSeconds  int `toml:"audio_timeout_seconds"`
}

// PathsConfig holds the configuration for file paths.
type PathsConfig struct {
	BaseLogsDir string `toml:"base_logs_dir"`
}

// Config is the root configuration structure.
type Config struct {
	HTTP     HTTPConfig           `toml:"http"`
	Script   ScriptProviderConfig `toml:"script_provider"`
	Speech   SpeechProviderConfig `toml:"speech_provider"`
	Storage  StorageConfig        `toml:"storage"`
	NATS     NATSConfig           `toml:"nats"`
	Redis    RedisConfig          `toml:"redis"`
	Pipeline PipelineConfig       `toml:"pipeline"`
	Paths    PathsConfig          `toml:"paths"`
}

// Load loads the configuration for the podcast-service.
func Load(log *logger.Logger) (*Config, error) {
	var cfg Config

	err := configurator.Load(&cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from configurator: %w", err)
	}

	cfg.ApplyDefaults()

	return &cfg, nil
}

// ApplyDefaults fills unset fields with their documented default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = DefaultHTTPPort
	}

	if c.Script.TimeoutSeconds == 0 {
		c.Script.TimeoutSeconds = DefaultProviderTimeout
	}

	if c.Speech.TimeoutSeconds == 0 {
		c.Speech.TimeoutSeconds = DefaultProviderTimeout
	}

	if c.Storage.JobStorePath == "" {
		c.Storage.JobStorePath = "podcasts.json"
	}

	if c.Storage.AudioDir == "" {
		c.Storage.AudioDir = "generated_audio"
	}

	if c.Pipeline.ScriptTimeoutSeconds == 0 {
		c.Pipeline.ScriptTimeoutSeconds = DefaultScriptTimeoutSeconds
	}

	if c.Pipeline.AudioTimeoutSeconds == 0 {
		c.Pipeline.AudioTimeoutSeconds = DefaultAudioTimeoutSeconds
	}
}
