package logger

import (
	"context"

	"domainlog/internal/severity"
)

// コンテキストのハンドルを使うショートカット

func Trace(ctx context.Context, msg func() string)   { From(ctx).Write(severity.Trace, msg) }
func Debug(ctx context.Context, msg func() string)   { From(ctx).Write(severity.Debug, msg) }
func Info(ctx context.Context, msg func() string)    { From(ctx).Write(severity.Info, msg) }
func Warning(ctx context.Context, msg func() string) { From(ctx).Write(severity.Warning, msg) }
func Error(ctx context.Context, msg func() string)   { From(ctx).Write(severity.Error, msg) }

func Tracef(ctx context.Context, format string, args ...any) {
	From(ctx).Writef(severity.Trace, format, args...)
}

func Debugf(ctx context.Context, format string, args ...any) {
	From(ctx).Writef(severity.Debug, format, args...)
}

func Infof(ctx context.Context, format string, args ...any) {
	From(ctx).Writef(severity.Info, format, args...)
}

func Warningf(ctx context.Context, format string, args ...any) {
	From(ctx).Writef(severity.Warning, format, args...)
}

func Errorf(ctx context.Context, format string, args ...any) {
	From(ctx).Writef(severity.Error, format, args...)
}

func TraceErr(ctx context.Context, err error, msg func() string) {
	From(ctx).WriteError(severity.Trace, err, msg)
}

func DebugErr(ctx context.Context, err error, msg func() string) {
	From(ctx).WriteError(severity.Debug, err, msg)
}

func InfoErr(ctx context.Context, err error, msg func() string) {
	From(ctx).WriteError(severity.Info, err, msg)
}

func WarningErr(ctx context.Context, err error, msg func() string) {
	From(ctx).WriteError(severity.Warning, err, msg)
}

func ErrorErr(ctx context.Context, err error, msg func() string) {
	From(ctx).WriteError(severity.Error, err, msg)
}

// Fatal は現在のハンドルで Fatal する。戻らない
func Fatal(ctx context.Context, msg func() string) {
	From(ctx).Fatal(msg)
}

// Fatalf は現在のハンドルで Fatalf する。戻らない
func Fatalf(ctx context.Context, format string, args ...any) {
	From(ctx).Fatalf(format, args...)
}

// FatalErr は現在のハンドルで FatalErr する。戻らない
func FatalErr(ctx context.Context, err error, msg func() string) {
	From(ctx).FatalErr(err, msg)
}
