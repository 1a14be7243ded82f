package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Logger interface {
	Info(action, message, requestID string, details map[string]interface{})
	Debug(action, message, requestID string, details map[string]interface{})
	Error(action, message, requestID string, details map[string]interface{}, err error)
}

type Options struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string
	// Filename enables a rotated JSON log file next to stdout.
	Filename string
}

type zapLogger struct {
	z *zap.Logger
}

func New(service string, opts Options) (Logger, func() error, error) {
	level := zap.NewAtomicLevel()
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, nil, err
		}
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.MessageKey = "message"
	encoderCfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(os.Stdout), level)
	if opts.Filename != "" {
		rotated := &lumberjack.Logger{
			Filename:   opts.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
		}
		core = zapcore.NewTee(
			core,
			zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(rotated), level),
		)
	}

	l := newZapLogger(service, core)
	return l, l.z.Sync, nil
}

// NewWithCore builds a Logger over an existing zap core, adding the service
// and hostname fields to every entry.
func NewWithCore(service string, core zapcore.Core) Logger {
	return newZapLogger(service, core)
}

func newZapLogger(service string, core zapcore.Core) *zapLogger {
	hostname, _ := os.Hostname()
	return &zapLogger{
		z: zap.New(core).With(
			zap.String("service", service),
			zap.String("hostname", hostname),
		),
	}
}

// Nop discards everything.
func Nop() Logger {
	return &zapLogger{z: zap.NewNop()}
}

func (l *zapLogger) Info(action, message, requestID string, details map[string]interface{}) {
	l.z.Info(message, fields(action, requestID, details, nil)...)
}

func (l *zapLogger) Debug(action, message, requestID string, details map[string]interface{}) {
	l.z.Debug(message, fields(action, requestID, details, nil)...)
}

func (l *zapLogger) Error(action, message, requestID string, details map[string]interface{}, err error) {
	l.z.Error(message, fields(action, requestID, details, err)...)
}

func fields(action, requestID string, details map[string]interface{}, err error) []zap.Field {
	fs := make([]zap.Field, 0, 4)
	fs = append(fs, zap.String("action", action), zap.String("request_id", requestID))
	if len(details) > 0 {
		fs = append(fs, zap.Any("details", details))
	}
	if err != nil {
		fs = append(fs, zap.Error(err))
	}
	return fs
}
