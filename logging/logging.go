package logging

import "go.uber.org/zap"

// New creates a new zap logger for standalone tools that run without config.New
func New() *zap.SugaredLogger {
	logger, err := zap.NewProduction()
	if err != nil {
		logger = zap.NewExample()
	}
	defer logger.Sync()
	return logger.Sugar()
}
