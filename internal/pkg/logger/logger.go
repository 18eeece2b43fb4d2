package logger

import (
	"context"
	"fmt"
	"os"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds the application logger. Production-like environments get JSON on stdout,
// everything else the development console encoder. A non-empty logFile adds a rotating
// JSON file sink.
func New(level, environment, logFile string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}

	jsonEncoder := zapcore.NewJSONEncoder(productionEncoderConfig())

	var consoleEncoder zapcore.Encoder
	if isProduction(environment) {
		consoleEncoder = jsonEncoder
	} else {
		consoleEncoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}

	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout), lvl),
	}

	if logFile != "" {
		cores = append(cores, fileCore(jsonEncoder, logFile, lvl))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

// NewFileOnly builds a logger that never writes to the terminal, for the
// full-screen UI. Without a logFile everything is discarded.
func NewFileOnly(level, logFile string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	if logFile == "" {
		return zap.NewNop(), nil
	}

	core := fileCore(zapcore.NewJSONEncoder(productionEncoderConfig()), logFile, lvl)
	return zap.New(core, zap.AddCaller()), nil
}

func fileCore(encoder zapcore.Encoder, logFile string, lvl zapcore.Level) zapcore.Core {
	rotator := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
	return zapcore.NewCore(encoder, zapcore.AddSync(rotator), lvl)
}

func productionEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}

func isProduction(environment string) bool {
	return environment == "prod" || environment == "production"
}

// AddFields adds fields to the logger in context and returns new context
func AddFields(ctx context.Context, fields ...zap.Field) context.Context {
	logger := ctxzap.Extract(ctx)
	return ctxzap.ToContext(ctx, logger.With(fields...))
}

// WithAction adds "action" field to context logger to describe the flow
func WithAction(ctx context.Context, action string) context.Context {
	logger := ctxzap.Extract(ctx)
	return ctxzap.ToContext(ctx, logger.With(zap.String("action", action)))
}
