// Package logging builds the structured zap logger the start-agent driver
// uses (rejected handshake/steady-state messages, intention tick errors),
// grounded on this repository's existing zap setup for its CLI entry point.
// The decision-core packages themselves do not log.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"deliveroo/config"
)

// New builds a zap.Logger at the given level: "debug", "warn" and "error"
// select the matching zap level; anything else defaults to info and above.
func New(level config.LogLevel) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel(level))
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build zap logger: %w", err)
	}
	return logger, nil
}

func zapLevel(level config.LogLevel) zapcore.Level {
	switch level {
	case config.LogDebug:
		return zapcore.DebugLevel
	case config.LogWarn:
		return zapcore.WarnLevel
	case config.LogError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// ErrorRecovery logs a recovered plan/intention error at warn, with
// structured fields for predicate type and plan name. Only fatal/Disconnect
// errors are logged at error by the driver itself.
func ErrorRecovery(logger *zap.Logger, predicateType, planName string, err error) {
	logger.Warn("recovered plan error",
		zap.String("predicateType", predicateType),
		zap.String("plan", planName),
		zap.Error(err),
	)
}
