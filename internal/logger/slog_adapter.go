package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// emitter holds what both the root and child loggers need to write a record
type emitter struct {
	logger    *slog.Logger
	sanitizer *Sanitizer
}

func (e *emitter) log(level slog.Level, msg string, args []any) {
	if !e.logger.Enabled(context.Background(), level) {
		return
	}
	e.logger.Log(context.Background(), level, e.sanitizer.Sanitize(msg), e.sanitizer.SanitizeArgs(args)...)
}

func (e *emitter) Debug(msg string, args ...any) { e.log(slog.LevelDebug, msg, args) }
func (e *emitter) Info(msg string, args ...any)  { e.log(slog.LevelInfo, msg, args) }
func (e *emitter) Warn(msg string, args ...any)  { e.log(slog.LevelWarn, msg, args) }
func (e *emitter) Error(msg string, args ...any) { e.log(slog.LevelError, msg, args) }

// With 建立帶 context 的子 logger; children never own writers
func (e *emitter) With(args ...any) Logger {
	return &childLogger{emitter: emitter{
		logger:    e.logger.With(e.sanitizer.SanitizeArgs(args)...),
		sanitizer: e.sanitizer,
	}}
}

// SlogLogger slog 實作, owner of the output writers
type SlogLogger struct {
	emitter
	writers []io.WriteCloser
}

// NewSlogLogger 建立新的 slog logger
func NewSlogLogger(config Config) (*SlogLogger, error) {
	var writers []io.Writer
	var closers []io.WriteCloser

	for _, output := range config.Outputs {
		switch output.Type {
		case OutputStdout, OutputStderr:
			w := output.Writer
			if w == nil {
				w = os.Stdout
				if output.Type == OutputStderr {
					w = os.Stderr
				}
			}
			writers = append(writers, w)
			if wc, ok := w.(io.WriteCloser); ok && !isStdStream(wc) {
				closers = append(closers, wc)
			}
		case OutputFile:
			if !config.File.Enabled {
				continue
			}
			fw, err := createFileWriter(config.File)
			if err != nil {
				return nil, fmt.Errorf("failed to create file writer: %w", err)
			}
			writers = append(writers, fw)
			closers = append(closers, fw)
		}
	}

	if len(writers) == 0 {
		writers = append(writers, os.Stdout)
	}

	opts := &slog.HandlerOptions{Level: config.Level}
	out := io.MultiWriter(writers...)

	var handler slog.Handler
	if config.Format == FormatJSON {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return &SlogLogger{
		emitter: emitter{logger: slog.New(handler), sanitizer: NewSanitizer()},
		writers: closers,
	}, nil
}

func isStdStream(w io.WriteCloser) bool {
	return w == os.Stdout || w == os.Stderr || w == os.Stdin
}

// createFileWriter 建立檔案 writer（使用 lumberjack 支援 rotation）
func createFileWriter(config FileConfig) (io.WriteCloser, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("log file path cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(config.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	return &lumberjack.Logger{
		Filename:   config.Path,
		MaxSize:    config.MaxSizeMB,
		MaxAge:     config.MaxAgeDays,
		MaxBackups: config.MaxBackups,
		Compress:   config.Compress,
	}, nil
}

// Sync is a no-op: slog writes through and lumberjack flushes on write
func (l *SlogLogger) Sync() error {
	return nil
}

// Shutdown closes every writer the logger owns
func (l *SlogLogger) Shutdown() error {
	var lastErr error
	for _, w := range l.writers {
		if err := w.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// childLogger 子 logger，不擁有 writers，避免重複關閉
type childLogger struct {
	emitter
}

func (c *childLogger) Sync() error     { return nil }
func (c *childLogger) Shutdown() error { return nil }
