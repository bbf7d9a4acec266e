package log

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// L é o logger global estruturado (zap.Logger).
	L *zap.Logger
	// S é o logger global sugarizado (zap.SugaredLogger), para logging printf-style.
	S *zap.SugaredLogger
)

// Init inicializa os loggers globais L e S.
// logLevel pode ser "debug", "info", "warn", "error", "dpanic", "panic", "fatal".
// env "development" liga o encoder de console; qualquer outro valor usa JSON de produção.
func Init(logLevel string, env string) {
	var cfg zap.Config
	if strings.ToLower(env) == "development" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	level, err := zapcore.ParseLevel(strings.ToLower(logLevel))
	if err != nil {
		level = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("falha ao construir o logger zap: %v", err))
	}

	L = logger
	S = logger.Sugar()
	zap.ReplaceGlobals(L)
}

// Sync descarrega logs em buffer. Chamar via defer no main.
func Sync() {
	if L != nil {
		_ = L.Sync()
	}
}

func init() {
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "development"
	}
	Init(logLevel, appEnv)
}
