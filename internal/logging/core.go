package logging

import (
	"errors"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// scopeName is the instrumentation scope of records sent to OpenTelemetry.
const scopeName = "github.com/fyrsmithlabs/inspire"

// newCore tees the outputs enabled in cfg and applies sampling on top.
// Stdout carries command output, so the console output is stderr.
func newCore(cfg *Config, provider log.LoggerProvider) (zapcore.Core, error) {
	var cores []zapcore.Core

	if cfg.Output.Stderr {
		cores = append(cores, zapcore.NewCore(newEncoder(cfg.Format), zapcore.Lock(os.Stderr), cfg.Level))
	}
	if cfg.Output.OTEL {
		if provider == nil {
			return nil, errors.New("otel log output enabled without a logger provider")
		}
		// The bridge asks the provider whether a level is enabled, which
		// knows nothing about the configured level.
		cores = append(cores, &levelGate{
			Core:  otelzap.NewCore(scopeName, otelzap.WithLoggerProvider(provider)),
			allow: cfg.Level.Enabled,
		})
	}

	return newSampledCore(zapcore.NewTee(cores...), cfg.Sampling), nil
}

func newEncoder(format string) zapcore.Encoder {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeDuration = zapcore.StringDurationEncoder

	if format == "console" {
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(encoderCfg)
	}
	return zapcore.NewJSONEncoder(encoderCfg)
}
