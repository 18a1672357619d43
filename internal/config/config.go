// Package config provides the configuration schema, loader, and provider
// registry for the voicebrief bot.
package config

import "voicebrief/internal/telegram"

// LogLevel controls log verbosity for the bot process.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for voicebrief.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader];
// credentials left empty in the file are filled from the environment.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Telegram  telegram.Config `yaml:"telegram"`
	Providers ProvidersConfig `yaml:"providers"`
}

// ServerConfig holds process-level settings.
type ServerConfig struct {
	// ListenAddr is the TCP address the metrics/health HTTP server listens
	// on (e.g., ":9090"). Empty disables the server.
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity. Defaults to info.
	LogLevel LogLevel `yaml:"log_level"`
}

// ProvidersConfig declares which provider implementation to use for each
// pipeline stage. Each field selects a named provider registered in the
// [Registry].
type ProvidersConfig struct {
	STT        ProviderEntry `yaml:"stt"`
	Summarizer ProviderEntry `yaml:"summarizer"`
}

// ProviderEntry is the common configuration block shared by all provider
// types. The Name field is used to look up the constructor in the [Registry].
type ProviderEntry struct {
	// Name selects the registered provider implementation (e.g., "openai",
	// "whisper", "anthropic").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API if any.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	// Leave empty to use the provider's built-in default.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider (e.g., "whisper-1",
	// "gpt-3.5-turbo").
	Model string `yaml:"model"`

	// Options holds provider-specific configuration values not covered by
	// the standard fields above (e.g., "language" for STT providers).
	Options map[string]any `yaml:"options"`
}

// Default returns the configuration used when no config file is present:
// OpenAI for both pipeline stages, credentials from the environment.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			LogLevel: LogInfo,
		},
		Providers: ProvidersConfig{
			STT:        ProviderEntry{Name: "openai", Model: "whisper-1"},
			Summarizer: ProviderEntry{Name: "openai", Model: "gpt-3.5-turbo"},
		},
	}
}
