package logger

import (
	"strings"

	"go.uber.org/zap"
)

// New builds a zap logger for the given APP_ENV. Production config emits
// JSON; anything else gets the human-readable development encoder.
func New(env string) (*zap.Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(env) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	return cfg.Build()
}
