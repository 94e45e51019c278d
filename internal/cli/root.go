package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	dbPath string
)

var rootCmd = &cobra.Command{
	Use:   "flowlens",
	Short: "Flowlens - turn recorded browser interactions into test code",
	Long: `Flowlens processes recorded browser interactions and synthesizes
test code for Playwright, Cypress, Selenium, and Puppeteer.

Recordings are JSON files of captured events. Templates and mined
patterns persist in an embedded SQLite database.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", getEnvOrDefault("FLOWLENS_DB_PATH", "./flowlens.db"), "database path")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
