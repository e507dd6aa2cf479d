package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"sitebot/internal/classifier"

	"github.com/spf13/cobra"
)

func classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify [message]",
		Short: "Classify a message from the command line",
		Long:  "Runs the configured classifier against a literal message and prints the result. Useful for prompt and model debugging.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			setLogLevel(cfg.General.LogLevel)

			cls := classifier.New(classifier.Config{
				URL:            cfg.Ollama.URL,
				Model:          cfg.Ollama.Model,
				Timeout:        time.Duration(cfg.Ollama.TimeoutSeconds) * time.Second,
				Temperature:    cfg.Ollama.Temperature,
				ResponseLength: cfg.Ollama.ResponseLength,
				Logger:         logger,
			})

			result := cls.Classify(context.Background(), strings.Join(args, " "))

			out := map[string]any{
				"success":    result.Success,
				"category":   result.Category,
				"confidence": result.Confidence,
				"model":      result.ModelUsed,
			}
			if result.Error != "" {
				out["error"] = result.Error
			}
			if result.RawResponse != "" {
				out["raw_response"] = result.RawResponse
			}

			data, _ := json.MarshalIndent(out, "", "  ")
			fmt.Println(string(data))
			return nil
		},
	}
}
