package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/dgallion1/personadoc/internal/config"
)

var (
	cfg *config.Config
	log *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "personadoc",
	Short: "Persona-driven document section ranking",
	Long:  "Ranks the sections of a document collection by relevance to a persona and the task they need done, and extracts the most relevant passages.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env is fine; real environment variables still apply.
		_ = godotenv.Load()

		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		if err := c.Validate(); err != nil {
			return eris.Wrap(err, "invalid configuration")
		}
		cfg = c

		l, err := config.NewLogger(cfg.Log, os.Stderr)
		if err != nil {
			return eris.Wrap(err, "init logger")
		}
		log = l
		slog.SetDefault(log)
		return nil
	},
}

func main() {
	rootCmd.SilenceUsage = true
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
