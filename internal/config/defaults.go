package config

func Defaults() *Config {
	return &Config{
		General: GeneralConfig{
			LogLevel: "info",
		},
		Server: ServerConfig{
			Host:        "",
			Port:        8080,
			WebhookPath: "/webhooks/whatsapp",
		},
		Ollama: OllamaConfig{
			URL:            "http://localhost:11434",
			Model:          "llama3.2:latest",
			TimeoutSeconds: 30,
			Temperature:    0.1,
			ResponseLength: 50,
		},
		Queue: QueueConfig{
			Workers:     2,
			BufferSize:  100,
			MaxAttempts: 3,
		},
		Storage: StorageConfig{
			Backend: "log",
			DBPath:  "~/.sitebot/messages.db",
		},
		Notify: NotifyConfig{
			Telegram: TelegramConfig{
				Enabled: false,
			},
		},
		Metrics: MetricsConfig{
			Enabled:  false,
			Endpoint: "/metrics",
		},
	}
}
