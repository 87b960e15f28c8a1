package kit

import "go.uber.org/zap"

// NewLogger builds the service logger. format is "json" (production encoder)
// or "console" (development encoder); anything else falls back to json.
func NewLogger(service, format string) *zap.Logger {
	var cfg zap.Config
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.InitialFields = map[string]any{"service": service}
	l, _ := cfg.Build()
	return l
}
