// Package logging monta os loggers zap usados pelos executáveis do SpriteVision.
package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

// Logger é o logger estruturado compartilhado pelos pacotes.
type Logger = *zap.SugaredLogger

// NewConfig retorna a configuração padrão: console colorido, sem stacktrace.
func NewConfig(level string) zap.Config {
	lvl := zap.NewAtomicLevelAt(zap.InfoLevel)
	if level != "" {
		if parsed, err := zapcore.ParseLevel(level); err == nil {
			lvl = zap.NewAtomicLevelAt(parsed)
		}
	}
	return zap.Config{
		Level:    lvl,
		Encoding: "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalColorLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		DisableStacktrace: true,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
	}
}

// New cria um logger nomeado (ex: "Pipeline", "Hub"), equivalente aos antigos prefixos "[Componente]".
// Saídas extras (ex: arquivo de log) podem ser passadas em paths.
func New(name, level string, paths ...string) Logger {
	cfg := NewConfig(level)
	cfg.OutputPaths = append(cfg.OutputPaths, paths...)
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger.Sugar().Named(name)
}

// NewTest retorna um logger que escreve no log do teste.
func NewTest(t testing.TB) Logger {
	return zaptest.NewLogger(t).Sugar()
}

// Nop descarta tudo. Usado quando o chamador não fornece logger.
func Nop() Logger {
	return zap.NewNop().Sugar()
}

// OrNop devolve l ou um logger silencioso se l for nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return Nop()
	}
	return l
}
