package logger

import (
	"fmt"

	"domainlog/internal/config"
	"domainlog/internal/output"
	"domainlog/internal/severity"
)

// Handle はドメインに紐づいたログの書き込み口
// 不変で、複数のゴルーチンから同時に使える
type Handle struct {
	root   *Root
	output output.Output
	domain string
	config config.Configuration
}

// Empty はハンドルが設定されていないときに使われる。何も出力しない
var Empty = &Handle{
	output: output.Void{},
	domain: "",
	config: config.Silent,
}

// Domain はハンドルの完全なドメインを返す
func (h *Handle) Domain() string {
	return h.domain
}

// Severity は重要度の上限を返す
func (h *Handle) Severity() severity.Severity {
	return h.config.Severity
}

// Configuration は解決された設定を返す
func (h *Handle) Configuration() config.Configuration {
	return h.config
}

// Output は共有されている出力を返す
func (h *Handle) Output() output.Output {
	return h.output
}

// Root はハンドルを生成した Root を返す。Empty から派生した場合は nil
func (h *Handle) Root() *Root {
	return h.root
}

// Enabled は level のレコードが出力されるかを返す
func (h *Handle) Enabled(level severity.Severity) bool {
	return level.Passes(h.config.Severity)
}

// Child はサブドメインのハンドルを返す
func (h *Handle) Child(name string) *Handle {
	domain := name
	if h.domain != "" {
		domain = h.domain + config.DomainSeparator + name
	}
	if h.root == nil {
		return &Handle{output: h.output, domain: domain, config: h.config}
	}
	child, err := h.root.Lookup(domain)
	if err != nil {
		h.FatalErr(err, func() string { return "cannot resolve log domain " + domain })
	}
	return child
}

// Write は上限を満たす場合のみ msg を呼び出して出力する
func (h *Handle) Write(level severity.Severity, msg func() string) {
	if !h.Enabled(level) {
		return
	}
	h.output.Write(level, h.domain, produce(msg))
}

// Writef は上限を満たす場合のみ書式化して出力する
func (h *Handle) Writef(level severity.Severity, format string, args ...any) {
	if !h.Enabled(level) {
		return
	}
	h.output.Write(level, h.domain, fmt.Sprintf(format, args...))
}

// WriteError はエラーを出力する。msg が nil ならエラーのみを出力する
func (h *Handle) WriteError(level severity.Severity, err error, msg func() string) {
	if !h.Enabled(level) {
		return
	}
	if msg == nil {
		output.WriteErrorOnly(h.output, level, h.domain, err)
		return
	}
	output.WriteError(h.output, level, h.domain, msg(), err)
}

func (h *Handle) Trace(msg func() string)   { h.Write(severity.Trace, msg) }
func (h *Handle) Debug(msg func() string)   { h.Write(severity.Debug, msg) }
func (h *Handle) Info(msg func() string)    { h.Write(severity.Info, msg) }
func (h *Handle) Warning(msg func() string) { h.Write(severity.Warning, msg) }
func (h *Handle) Error(msg func() string)   { h.Write(severity.Error, msg) }

func (h *Handle) Tracef(format string, args ...any)   { h.Writef(severity.Trace, format, args...) }
func (h *Handle) Debugf(format string, args ...any)   { h.Writef(severity.Debug, format, args...) }
func (h *Handle) Infof(format string, args ...any)    { h.Writef(severity.Info, format, args...) }
func (h *Handle) Warningf(format string, args ...any) { h.Writef(severity.Warning, format, args...) }
func (h *Handle) Errorf(format string, args ...any)   { h.Writef(severity.Error, format, args...) }

func (h *Handle) TraceErr(err error, msg func() string)   { h.WriteError(severity.Trace, err, msg) }
func (h *Handle) DebugErr(err error, msg func() string)   { h.WriteError(severity.Debug, err, msg) }
func (h *Handle) InfoErr(err error, msg func() string)    { h.WriteError(severity.Info, err, msg) }
func (h *Handle) WarningErr(err error, msg func() string) { h.WriteError(severity.Warning, err, msg) }
func (h *Handle) ErrorErr(err error, msg func() string)   { h.WriteError(severity.Error, err, msg) }

// Fatal はメッセージを必ず構築し、上限が None でなければ出力してから
// *FatalError で panic する。戻らない
func (h *Handle) Fatal(msg func() string) {
	message := produce(msg)
	if h.Enabled(severity.Fatal) {
		h.output.Write(severity.Fatal, h.domain, message)
	}
	panic(newFatalError(message, nil))
}

// Fatalf は書式化したメッセージで Fatal する
func (h *Handle) Fatalf(format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	h.Fatal(func() string { return message })
}

// FatalErr はエラーを出力してから *FatalError で panic する
// msg が nil の場合、エラーのみを出力し FatalError はメッセージを持たない
func (h *Handle) FatalErr(err error, msg func() string) {
	if msg == nil {
		if h.Enabled(severity.Fatal) {
			output.WriteErrorOnly(h.output, severity.Fatal, h.domain, err)
		}
		panic(newFatalError("", err))
	}

	message := msg()
	if h.Enabled(severity.Fatal) {
		output.WriteError(h.output, severity.Fatal, h.domain, message, err)
	}
	panic(newFatalError(message, err))
}

func produce(msg func() string) string {
	if msg == nil {
		return ""
	}
	return msg()
}
