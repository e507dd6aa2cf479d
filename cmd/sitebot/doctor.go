package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"sitebot/internal/classifier"
	"sitebot/internal/config"
	"sitebot/internal/store"

	"github.com/spf13/cobra"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run diagnostic checks on your sitebot installation",
		Long: `Verifies that sitebot's configuration, Ollama endpoint, and storage
are correctly set up. Reports pass/fail for each check.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			fmt.Printf("sitebot doctor v%s\n\n", version)

			passed := 0
			failed := 0

			// 1. Config file exists
			if _, err := os.Stat(cfgPath); err != nil {
				printFail("Config file", fmt.Sprintf("not found at %s", cfgPath))
				fmt.Printf("\nRun 'sitebot init' to create a default configuration.\n")
				return nil
			}
			printPass("Config file", cfgPath)
			passed++

			// 2. Config loads and validates
			cfg, err := config.Load(cfgPath)
			if err != nil {
				printFail("Config validation", err.Error())
				fmt.Printf("\nResults: %d passed, 1 failed\n", passed)
				return fmt.Errorf("config invalid")
			}
			printPass("Config validation", "valid")
			passed++

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			// 3. Ollama reachable
			cls := classifier.New(classifier.Config{
				URL:    cfg.Ollama.URL,
				Model:  cfg.Ollama.Model,
				Logger: logger,
			})
			if err := cls.Healthy(ctx); err != nil {
				printFail("Ollama", err.Error())
				failed++
			} else {
				printPass("Ollama", fmt.Sprintf("%s (%s)", cfg.Ollama.URL, cfg.Ollama.Model))
				passed++
			}

			// 4. Storage
			switch cfg.Storage.Backend {
			case "sqlite":
				s, err := store.NewSQLite(cfg.Storage.DBPath, logger)
				if err != nil {
					printFail("Storage", err.Error())
					failed++
					break
				}
				n, err := s.Count(ctx)
				s.Close()
				if err != nil {
					printFail("Storage", err.Error())
					failed++
					break
				}
				printPass("Storage", fmt.Sprintf("sqlite %s (%d messages)", cfg.Storage.DBPath, n))
				passed++
			default:
				printPass("Storage", "log stub")
				passed++
			}

			// 5. Server port available
			if err := checkPort(cfg.Server.Port); err != nil {
				printFail("Server port", fmt.Sprintf("port %d may be in use: %v", cfg.Server.Port, err))
				failed++
			} else {
				printPass("Server port", fmt.Sprintf(":%d available", cfg.Server.Port))
				passed++
			}

			fmt.Printf("\nResults: %d passed, %d failed\n", passed, failed)
			if failed > 0 {
				return fmt.Errorf("%d check(s) failed", failed)
			}
			fmt.Printf("\nAll checks passed! sitebot is ready to run.\n")
			return nil
		},
	}
}

func checkPort(port int) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return err
	}
	ln.Close()
	return nil
}

func printPass(check, detail string) {
	fmt.Printf("  [PASS] %-20s %s\n", check, detail)
}

func printFail(check, detail string) {
	fmt.Printf("  [FAIL] %-20s %s\n", check, detail)
}
