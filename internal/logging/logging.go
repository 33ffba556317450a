// Package logging provides the scoped loggers used across videorecord.
// Levels are controlled through the PION_LOG_* environment variables.
package logging

import (
	"github.com/pion/logging"
)

var loggerFactory = logging.NewDefaultLoggerFactory()

// NewLogger returns a leveled logger for scope, e.g. "videorecord/session".
func NewLogger(scope string) logging.LeveledLogger {
	return loggerFactory.NewLogger(scope)
}
