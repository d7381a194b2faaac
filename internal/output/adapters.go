package output

import (
	"context"
	"io"
	"log/slog"

	"github.com/hashicorp/go-hclog"
	"github.com/rs/zerolog"

	"domainlog/internal/severity"
)

// Slog は log/slog の JSON ハンドラに書き出す Output
type Slog struct {
	logger *slog.Logger
}

var (
	_ Output      = (*Slog)(nil)
	_ ErrorWriter = (*Slog)(nil)
)

const (
	slogLevelTrace = slog.Level(-8)
	slogLevelFatal = slog.Level(12)
)

// NewSlog は新しい Slog を作成する
func NewSlog(w io.Writer) *Slog {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slogLevelTrace})
	return &Slog{logger: slog.New(h)}
}

func (s *Slog) Write(level severity.Severity, domain string, message string) {
	s.logger.LogAttrs(context.Background(), toSlogLevel(level), message,
		slog.String("domain", domain))
}

func (s *Slog) WriteError(level severity.Severity, domain string, message string, err error) {
	s.logger.LogAttrs(context.Background(), toSlogLevel(level), message,
		slog.String("domain", domain),
		slog.String("error", RenderError(err)))
}

func toSlogLevel(level severity.Severity) slog.Level {
	switch level {
	case severity.Trace:
		return slogLevelTrace
	case severity.Debug:
		return slog.LevelDebug
	case severity.Info:
		return slog.LevelInfo
	case severity.Warning:
		return slog.LevelWarn
	case severity.Error:
		return slog.LevelError
	default:
		return slogLevelFatal
	}
}

// Zerolog は zerolog に書き出す Output
type Zerolog struct {
	logger zerolog.Logger
}

var (
	_ Output      = (*Zerolog)(nil)
	_ ErrorWriter = (*Zerolog)(nil)
)

// NewZerolog は新しい Zerolog を作成する
func NewZerolog(w io.Writer) *Zerolog {
	l := zerolog.New(zerolog.SyncWriter(w)).
		Level(zerolog.TraceLevel).
		With().Timestamp().Logger()
	return &Zerolog{logger: l}
}

func (z *Zerolog) Write(level severity.Severity, domain string, message string) {
	z.logger.WithLevel(toZerologLevel(level)).Str("domain", domain).Msg(message)
}

func (z *Zerolog) WriteError(level severity.Severity, domain string, message string, err error) {
	z.logger.WithLevel(toZerologLevel(level)).
		Str("domain", domain).
		Str("stack", RenderError(err)).
		Err(err).
		Msg(message)
}

func toZerologLevel(level severity.Severity) zerolog.Level {
	switch level {
	case severity.Trace:
		return zerolog.TraceLevel
	case severity.Debug:
		return zerolog.DebugLevel
	case severity.Info:
		return zerolog.InfoLevel
	case severity.Warning:
		return zerolog.WarnLevel
	case severity.Error:
		return zerolog.ErrorLevel
	default:
		return zerolog.FatalLevel
	}
}

// Hclog は hclog に書き出す Output
type Hclog struct {
	logger hclog.Logger
}

var (
	_ Output      = (*Hclog)(nil)
	_ ErrorWriter = (*Hclog)(nil)
)

// NewHclog は新しい Hclog を作成する
func NewHclog(w io.Writer) *Hclog {
	l := hclog.New(&hclog.LoggerOptions{
		Level:  hclog.Trace,
		Output: w,
	})
	return &Hclog{logger: l}
}

func (h *Hclog) Write(level severity.Severity, domain string, message string) {
	h.logger.Log(toHclogLevel(level), message, "domain", domain)
}

func (h *Hclog) WriteError(level severity.Severity, domain string, message string, err error) {
	h.logger.Log(toHclogLevel(level), message, "domain", domain, "error", RenderError(err))
}

// hclog には fatal がないため error に寄せる
func toHclogLevel(level severity.Severity) hclog.Level {
	switch level {
	case severity.Trace:
		return hclog.Trace
	case severity.Debug:
		return hclog.Debug
	case severity.Info:
		return hclog.Info
	case severity.Warning:
		return hclog.Warn
	default:
		return hclog.Error
	}
}
