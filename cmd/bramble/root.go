package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Gobusters/ectologger"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Ramsey-B/bramble/config"
)

var rootCmd = &cobra.Command{
	Use:   "bramble",
	Short: "Content catalog service with relation consistency enforcement",
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(syncCmd)
}

// loadConfig reads .env if present and then the environment.
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()

	var cfg config.Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// newLogger emits one JSON object per log line on stdout.
func newLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(msg ectologger.EctoLogMessage) {
		b, err := json.Marshal(msg)
		if err != nil {
			return
		}
		fmt.Fprintln(os.Stdout, string(b))
	})
}

// postgresDSN builds the content database URL from config.
func postgresDSN(cfg *config.Config) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.DatabaseUserName,
		cfg.DatabasePassword,
		cfg.DatabaseHost,
		cfg.DatabasePort,
		cfg.DatabaseName,
		cfg.DatabaseSSLMode,
	)
}
