package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for sitebot.
type Config struct {
	General GeneralConfig `json:"general" yaml:"general"`
	Server  ServerConfig  `json:"server" yaml:"server"`
	Ollama  OllamaConfig  `json:"ollama" yaml:"ollama"`
	Queue   QueueConfig   `json:"queue" yaml:"queue"`
	Storage StorageConfig `json:"storage" yaml:"storage"`
	Notify  NotifyConfig  `json:"notify" yaml:"notify"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`
}

type GeneralConfig struct {
	LogLevel string `json:"logLevel" yaml:"logLevel"` // debug | info | warn | error
}

// ServerConfig configures the webhook HTTP server.
type ServerConfig struct {
	Host        string `json:"host" yaml:"host"`
	Port        int    `json:"port" yaml:"port"`
	WebhookPath string `json:"webhookPath" yaml:"webhookPath"`
	VerifyToken string `json:"verifyToken,omitempty" yaml:"verifyToken,omitempty"`
}

// OllamaConfig configures the classification endpoint. The defaults bias the
// model toward short, deterministic, low-creativity output.
type OllamaConfig struct {
	URL            string  `json:"url" yaml:"url"`
	Model          string  `json:"model" yaml:"model"`
	TimeoutSeconds int     `json:"timeoutSeconds" yaml:"timeoutSeconds"`
	Temperature    float64 `json:"temperature" yaml:"temperature"`
	ResponseLength int     `json:"responseLength" yaml:"responseLength"` // num_predict token cap
}

// QueueConfig configures the in-process job queue and worker pool.
type QueueConfig struct {
	Workers     int `json:"workers" yaml:"workers"`
	BufferSize  int `json:"bufferSize" yaml:"bufferSize"`
	MaxAttempts int `json:"maxAttempts" yaml:"maxAttempts"`
}

// StorageConfig selects the message store backend.
type StorageConfig struct {
	Backend string `json:"backend" yaml:"backend"` // "log" | "sqlite"
	DBPath  string `json:"dbPath,omitempty" yaml:"dbPath,omitempty"`
}

type NotifyConfig struct {
	Telegram TelegramConfig `json:"telegram" yaml:"telegram"`
}

// TelegramConfig configures the optional Telegram notification sink.
type TelegramConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Token   string `json:"token,omitempty" yaml:"token,omitempty"`
	ChatID  int64  `json:"chatId,omitempty" yaml:"chatId,omitempty"`
}

type MetricsConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	Endpoint string `json:"endpoint" yaml:"endpoint"`
}

// DefaultConfigDir returns the default config directory (~/.sitebot).
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sitebot"
	}
	return filepath.Join(home, ".sitebot")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// Load reads, env-expands, decodes, and validates the config file. Files
// ending in .yaml or .yml are decoded as YAML, everything else as JSON.
func Load(path string) (*Config, error) {
	path = ExpandPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	// Substitute environment variables: ${VAR} and ${VAR:-default}
	data = []byte(ExpandEnvVars(string(data)))

	cfg := Defaults()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}

	cfg.Storage.DBPath = ExpandPath(cfg.Storage.DBPath)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns in config strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-(.*?))?\}`)

// ExpandEnvVars replaces ${VAR} with the environment variable value.
// ${VAR:-default} falls back to "default" when VAR is unset or empty.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultVal := ""
		hasDefault := len(groups) >= 3 && groups[2] != ""
		if hasDefault {
			defaultVal = groups[2]
		}

		val, exists := os.LookupEnv(varName)
		if !exists || val == "" {
			if hasDefault {
				return defaultVal
			}
			return match
		}
		return val
	})
}

func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// Validate checks that the config has valid values, collecting every problem.
func Validate(cfg *Config) error {
	var errs []string

	switch cfg.General.LogLevel {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		errs = append(errs, "general.logLevel must be one of: debug, info, warn, error")
	}

	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 0 and 65535")
	}
	if !strings.HasPrefix(cfg.Server.WebhookPath, "/") {
		errs = append(errs, "server.webhookPath must start with /")
	}

	if cfg.Ollama.URL == "" {
		errs = append(errs, "ollama.url is required")
	}
	if cfg.Ollama.TimeoutSeconds < 1 {
		errs = append(errs, "ollama.timeoutSeconds must be >= 1")
	}
	if cfg.Ollama.Temperature < 0 || cfg.Ollama.Temperature > 2 {
		errs = append(errs, "ollama.temperature must be between 0 and 2")
	}
	if cfg.Ollama.ResponseLength < 1 {
		errs = append(errs, "ollama.responseLength must be >= 1")
	}

	if cfg.Queue.Workers < 1 {
		errs = append(errs, "queue.workers must be >= 1")
	}
	if cfg.Queue.BufferSize < 1 {
		errs = append(errs, "queue.bufferSize must be >= 1")
	}
	if cfg.Queue.MaxAttempts < 1 {
		errs = append(errs, "queue.maxAttempts must be >= 1")
	}

	switch cfg.Storage.Backend {
	case "log":
		// valid
	case "sqlite":
		if cfg.Storage.DBPath == "" {
			errs = append(errs, "storage.dbPath is required for the sqlite backend")
		}
	default:
		errs = append(errs, "storage.backend must be one of: log, sqlite")
	}

	if cfg.Notify.Telegram.Enabled {
		if cfg.Notify.Telegram.Token == "" {
			errs = append(errs, "notify.telegram.token is required when telegram is enabled")
		}
		if cfg.Notify.Telegram.ChatID == 0 {
			errs = append(errs, "notify.telegram.chatId is required when telegram is enabled")
		}
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Endpoint, "/") {
		errs = append(errs, "metrics.endpoint must start with /")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// ExpandPath resolves ~/ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
