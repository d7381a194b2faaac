package output

import (
	"fmt"

	"domainlog/internal/severity"
)

// ErrorPlaceholder はエラーのみを出力する際のメッセージ
const ErrorPlaceholder = "error occurred"

// Output はログレコードの出力先
type Output interface {
	Write(level severity.Severity, domain string, message string)
}

// ErrorWriter はエラーを独自に出力できる Output
type ErrorWriter interface {
	WriteError(level severity.Severity, domain string, message string, err error)
}

// ErrorOnlyWriter はメッセージのないエラーを独自に出力できる Output
type ErrorOnlyWriter interface {
	WriteErrorOnly(level severity.Severity, domain string, err error)
}

// RenderError はエラーをスタックトレース付きで文字列化する
func RenderError(err error) string {
	if err == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%+v", err)
}

// WriteError はメッセージ付きでエラーを出力する
func WriteError(o Output, level severity.Severity, domain string, message string, err error) {
	if ew, ok := o.(ErrorWriter); ok {
		ew.WriteError(level, domain, message, err)
		return
	}
	o.Write(level, domain, message+": "+RenderError(err))
}

// WriteErrorOnly はエラーのみを出力する
// ErrorOnlyWriter でなければ ErrorPlaceholder をメッセージにする
func WriteErrorOnly(o Output, level severity.Severity, domain string, err error) {
	if ew, ok := o.(ErrorOnlyWriter); ok {
		ew.WriteErrorOnly(level, domain, err)
		return
	}
	WriteError(o, level, domain, ErrorPlaceholder, err)
}
