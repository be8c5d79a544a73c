package utils

import "go.uber.org/zap"

// NewLogger returns the process-wide zap logger. Debug mode gets the
// human-readable development config at debug level, everything else the
// JSON production config at info level.
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
