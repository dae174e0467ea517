// Package logger provides the structured event log of the proxy.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log = zap.NewNop()

// Init initializes the structured logger. An empty path logs to stderr.
func Init(logFilePath, level string) error {
	ws := zapcore.AddSync(os.Stderr)
	if logFilePath != "" {
		f, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		ws = zapcore.AddSync(f)
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zap.InfoLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), ws, lvl)
	log = zap.New(core)
	return nil
}

func Sync() {
	if log != nil {
		log.Sync()
	}
}

// LogMessageReceived logs a new incoming submission.
func LogMessageReceived(from string, to []string) {
	log.Info("Message received",
		zap.String("event", "message_received"),
		zap.String("from", from),
		zap.Strings("to", to),
	)
}

// LogTransformed logs a message that got its HTML alternative attached.
func LogTransformed(from, subject string) {
	log.Info("HTML alternative attached",
		zap.String("event", "transformed"),
		zap.String("from", from),
		zap.String("subject", subject),
	)
}

// LogForwarded logs a message handed to the upstream relay.
func LogForwarded(from string, to []string, upstream string) {
	log.Info("Message forwarded",
		zap.String("event", "forwarded"),
		zap.String("from", from),
		zap.Strings("to", to),
		zap.String("upstream", upstream),
	)
}

// LogError logs an operational error.
func LogError(message string, err error, context map[string]string) {
	fields := []zap.Field{
		zap.String("event", "error"),
		zap.String("error", err.Error()),
	}

	for k, v := range context {
		fields = append(fields, zap.String(k, v))
	}

	log.Error(message, fields...)
}
