package logger

import (
	"fmt"

	"go.uber.org/zap"

	"geo-quiz-service/internal/config"
)

// New builds a production logger when log.env is "production", a development one otherwise.
func New(cfg config.Config) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if cfg.Log.Env == "production" {
		zcfg = zap.NewProductionConfig()
	}
	if cfg.Log.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Log.Level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		zcfg.Level = level
	}
	return zcfg.Build()
}
