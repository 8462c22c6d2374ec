package logging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"carvalue/internal/config"
)

var (
	AppLogger     = zap.NewNop()
	RequestLogger = zap.NewNop()
)

// InitLogger builds the application and request loggers. Files are rotated
// under cfg.Dir; "console" format additionally mirrors app logs to stderr.
func InitLogger(cfg config.LoggingConfig) error {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.Level, err)
	}
	if err := os.MkdirAll(cfg.Dir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderConfig)

	appCore := zapcore.NewCore(encoder,
		zapcore.AddSync(&lumberjack.Logger{
			Filename: filepath.Join(cfg.Dir, "app.log"), MaxSize: 100, MaxAge: 28, Compress: true,
		}),
		level,
	)
	if cfg.Format == "console" {
		consoleEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		appCore = zapcore.NewTee(appCore, zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stderr), level))
	}
	AppLogger = zap.New(appCore, zap.AddCaller())

	requestCore := zapcore.NewCore(encoder,
		zapcore.AddSync(&lumberjack.Logger{
			Filename: filepath.Join(cfg.Dir, "request.log"), MaxSize: 50, MaxAge: 7, Compress: true,
		}),
		zap.InfoLevel,
	)
	RequestLogger = zap.New(requestCore)

	return nil
}

// Sync flushes buffered log entries
func Sync() {
	_ = AppLogger.Sync()
	_ = RequestLogger.Sync()
}

// GinMiddleware writes one request.log entry per HTTP request
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.String("client_ip", c.ClientIP()),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		RequestLogger.Info("request", fields...)
	}
}

// LogDuration lets you do: defer logging.LogDuration(ctx, "FuncName")()
func LogDuration(ctx context.Context, name string) func() {
	start := time.Now()
	sessionID, _ := ctx.Value(SessionIDKey).(string)

	return func() {
		fields := []zap.Field{
			zap.String("func", name),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		}
		if sessionID != "" {
			fields = append(fields, zap.String("session_id", sessionID))
		}
		AppLogger.Debug("Function timed", fields...)
	}
}

type ctxKey string

// SessionIDKey tags a context with the chat session it serves
const SessionIDKey ctxKey = "session_id"

// WithSessionID returns a context carrying the chat session id
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, SessionIDKey, id)
}
