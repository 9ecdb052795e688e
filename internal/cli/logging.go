package cli

import (
	"os"

	"banisa-service/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// setupLogging configures the global zerolog logger from config. LOG_PRETTY
// switches to console output for local runs.
func setupLogging(cfg config.Config) {
	level := zerolog.InfoLevel
	if cfg.Log.Level != "" {
		if lvl, err := zerolog.ParseLevel(cfg.Log.Level); err == nil {
			level = lvl
		}
	}
	zerolog.SetGlobalLevel(level)
	if os.Getenv("LOG_PRETTY") != "" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
