package utils

import "go.uber.org/zap"

// NewLogger returns the process logger, named "latexify". When debug is true it uses
// the development config (human-readable, debug level); otherwise the production
// config (JSON, info level). Both write to stderr so stdout stays free for output.
func NewLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Named("latexify"), nil
}
