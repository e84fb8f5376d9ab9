package app

import (
	"strings"

	"github.com/foodlinkhq/foodlink/pkg/logger"
)

// ConfigureLogging initialises the global logger, defaulting to info level JSON output.
func ConfigureLogging(cfg LogConfig) error {
	level := strings.TrimSpace(cfg.Level)
	if level == "" {
		level = "info"
	}
	return logger.Configure(logger.Options{Level: level, Format: cfg.Format})
}
