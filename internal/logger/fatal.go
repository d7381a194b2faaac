package logger

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// FatalError は作業単位を終了させる回復不能なエラー
// Run 以外で recover してはならない
type FatalError struct {
	Message string
	Cause   error

	origin error
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

func newFatalError(message string, cause error) *FatalError {
	return &FatalError{
		Message: message,
		Cause:   cause,
		origin:  errors.New(message),
	}
}

func (e *FatalError) Error() string {
	switch {
	case e.Message != "" && e.Cause != nil:
		return e.Message + ": " + e.Cause.Error()
	case e.Message != "":
		return e.Message
	case e.Cause != nil:
		return e.Cause.Error()
	default:
		return "fatal error"
	}
}

func (e *FatalError) Unwrap() error {
	return e.Cause
}

// StackTrace は発生地点のスタックトレースを返す
func (e *FatalError) StackTrace() errors.StackTrace {
	if st, ok := e.origin.(stackTracer); ok {
		return st.StackTrace()
	}
	return nil
}

func (e *FatalError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			_, _ = io.WriteString(s, e.Error())
			e.StackTrace().Format(s, verb)
			if e.Cause != nil {
				_, _ = fmt.Fprintf(s, "\ncaused by: %+v", e.Cause)
			}
			return
		}
		_, _ = io.WriteString(s, e.Error())
	case 's':
		_, _ = io.WriteString(s, e.Error())
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", e.Error())
	}
}

// IsFatal は err が FatalError を含むかを返す
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}

// Run は作業単位の境界。fn 内で発生した FatalError の panic をエラーとして返す
// それ以外の panic はそのまま伝播する
func Run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fe, ok := r.(*FatalError)
			if !ok {
				panic(r)
			}
			err = fe
		}
	}()
	return fn(ctx)
}
