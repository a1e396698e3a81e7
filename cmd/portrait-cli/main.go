// Package main provides the portrait-cli command for retouching a local
// portrait with the same pipeline the Lambda runs.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/portrait-retouch/internal/config"
	"github.com/fpang/portrait-retouch/internal/logging"
)

var configFlag string

// cfg is loaded once by the root command before any subcommand runs.
var cfg *config.Pipeline

// rootCmd is the main Cobra command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "portrait-cli",
	Short: "AI portrait retouching from the command line",
	Long: `Portrait CLI analyzes a portrait photo and generates retouched variations,
fixing eye contact, posture, camera angle and lighting one step at a time.
Every step is checked by a second model before the next one runs.

Settings come from built-in defaults, an optional TOML file (--config) and
PORTRAIT_* environment variables. .env and .env.local in the working
directory are loaded first.

Examples:
  portrait-cli templates
  portrait-cli analyze --image ./headshot.jpg
  portrait-cli generate -i ./headshot.jpg --fix eye-contact --fix lighting:lighting-golden-hour
  portrait-cli generate -i ./headshot.jpg --prompt "posture=shoulders back" -n 2 -o ./out`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Missing .env files are normal.
		_ = godotenv.Load(".env", ".env.local")
		logging.Init()

		loaded, err := config.Load(configFlag)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "TOML file with pipeline settings")
	rootCmd.AddCommand(generateCmd, analyzeCmd, templatesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("portrait-cli failed")
		os.Exit(1)
	}
}
