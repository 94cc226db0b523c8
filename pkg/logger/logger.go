package logger

import (
    "fmt"
    "os"
    "path/filepath"
    "time"

    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
    "gopkg.in/natefinch/lumberjack.v2"
)

// Field type
type Field = zapcore.Field

// Logger is the logging facade used across the analyzer. It keeps call sites
// decoupled from zap so tests can swap in a capturing implementation.
type Logger interface {
    Debug(msg string, fields ...Field)
    Info(msg string, fields ...Field)
    Warn(msg string, fields ...Field)
    Error(msg string, fields ...Field)
    Fatal(msg string, fields ...Field)
    With(fields ...Field) Logger
    Named(name string) Logger
    Sync() error
}

// Config defines logger configuration
type Config struct {
    Level      string `json:"level" yaml:"level"`
    Encoding   string `json:"encoding" yaml:"encoding"`
    File       string `json:"file" yaml:"file"` // optional rotating log file
    MaxSize    int    `json:"maxSize" yaml:"maxSize"` // MB
    MaxBackups int    `json:"maxBackups" yaml:"maxBackups"`
    MaxAge     int    `json:"maxAge" yaml:"maxAge"` // days
    Compress   bool   `json:"compress" yaml:"compress"`
}

// Option defines logger option function
type Option func(*Config)

// WithLevel sets logger level
func WithLevel(level string) Option {
    return func(c *Config) {
        c.Level = level
    }
}

// WithEncoding sets logger encoding ("json" or "console")
func WithEncoding(encoding string) Option {
    return func(c *Config) {
        c.Encoding = encoding
    }
}

// WithFile enables a rotating log file next to stdout
func WithFile(path string) Option {
    return func(c *Config) {
        c.File = path
    }
}

type logger struct {
    zap *zap.Logger
}

// NewLogger creates a new logger instance. Output always goes to stdout; a
// rotating file is added when Config.File is set.
func NewLogger(opts ...Option) (Logger, error) {
    cfg := &Config{
        Level:      "info",
        Encoding:   "json",
        MaxSize:    100,
        MaxBackups: 3,
        MaxAge:     7,
        Compress:   true,
    }

    for _, opt := range opts {
        opt(cfg)
    }

    level := zap.NewAtomicLevel()
    if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
        return nil, fmt.Errorf("can't parse log level: %w", err)
    }

    encoderConfig := zapcore.EncoderConfig{
        TimeKey:        "timestamp",
        LevelKey:       "level",
        NameKey:        "logger",
        CallerKey:      "caller",
        FunctionKey:    zapcore.OmitKey,
        MessageKey:     "message",
        StacktraceKey:  "stacktrace",
        LineEnding:     zapcore.DefaultLineEnding,
        EncodeLevel:    zapcore.LowercaseLevelEncoder,
        EncodeTime:     zapcore.ISO8601TimeEncoder,
        EncodeDuration: zapcore.SecondsDurationEncoder,
        EncodeCaller:   zapcore.ShortCallerEncoder,
    }

    var encoder zapcore.Encoder
    if cfg.Encoding == "console" {
        encoder = zapcore.NewConsoleEncoder(encoderConfig)
    } else {
        encoder = zapcore.NewJSONEncoder(encoderConfig)
    }

    cores := []zapcore.Core{
        zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level),
    }

    if cfg.File != "" {
        if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
            return nil, fmt.Errorf("can't create log directory: %w", err)
        }
        fileWriter := zapcore.AddSync(&lumberjack.Logger{
            Filename:   cfg.File,
            MaxSize:    cfg.MaxSize,
            MaxBackups: cfg.MaxBackups,
            MaxAge:     cfg.MaxAge,
            Compress:   cfg.Compress,
        })
        cores = append(cores, zapcore.NewCore(encoder, fileWriter, level))
    }

    zapLogger := zap.New(
        zapcore.NewTee(cores...),
        zap.AddCaller(),
        zap.AddCallerSkip(1),
    )

    return &logger{zap: zapLogger}, nil
}

// Various field constructors
func String(key string, val string) Field          { return zap.String(key, val) }
func Int(key string, val int) Field                { return zap.Int(key, val) }
func Int64(key string, val int64) Field            { return zap.Int64(key, val) }
func Bool(key string, val bool) Field              { return zap.Bool(key, val) }
func Any(key string, val interface{}) Field        { return zap.Any(key, val) }
func Error(err error) Field                        { return zap.Error(err) }
func Time(key string, val time.Time) Field         { return zap.Time(key, val) }
func Duration(key string, val time.Duration) Field { return zap.Duration(key, val) }

// Logger implementation
func (l *logger) Debug(msg string, fields ...Field) {
    l.zap.Debug(msg, fields...)
}

func (l *logger) Info(msg string, fields ...Field) {
    l.zap.Info(msg, fields...)
}

func (l *logger) Warn(msg string, fields ...Field) {
    l.zap.Warn(msg, fields...)
}

func (l *logger) Error(msg string, fields ...Field) {
    l.zap.Error(msg, fields...)
}

func (l *logger) Fatal(msg string, fields ...Field) {
    l.zap.Fatal(msg, fields...)
}

func (l *logger) With(fields ...Field) Logger {
    return &logger{zap: l.zap.With(fields...)}
}

func (l *logger) Named(name string) Logger {
    return &logger{zap: l.zap.Named(name)}
}

func (l *logger) Sync() error {
    return l.zap.Sync()
}
