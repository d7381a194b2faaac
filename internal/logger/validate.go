package logger

import (
	"context"
	"fmt"
	"reflect"
)

const (
	validationFailed = "validation failed"
	valueWasNil      = "value was nil"
)

// Validate は cond が false なら現在のハンドルで Fatal する
// msg は失敗時にだけ一度呼ばれる。nil なら既定のメッセージを使う
func Validate(ctx context.Context, cond bool, msg func() string) {
	if cond {
		return
	}
	if msg == nil {
		msg = func() string { return validationFailed }
	}
	From(ctx).Fatal(msg)
}

// Validatef は書式付きの Validate。書式化は失敗時のみ行う
func Validatef(ctx context.Context, cond bool, format string, args ...any) {
	if cond {
		return
	}
	From(ctx).Fatal(func() string { return fmt.Sprintf(format, args...) })
}

// ValidateNotNil は v が nil なら Fatal し、そうでなければ v を返す
// ポインタ、インタフェース、マップ、スライス、関数、チャネルを検査できる
func ValidateNotNil[T any](ctx context.Context, v T, msg func() string) T {
	if isNil(v) {
		if msg == nil {
			msg = func() string { return valueWasNil }
		}
		From(ctx).Fatal(msg)
	}
	return v
}

// isNil は v 自体か、v が保持する nil 可能な値が nil かを返す
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice,
		reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return rv.IsNil()
	default:
		return false
	}
}

// ValidateOK は comma-ok 形式の結果を検証し、ok なら v を返す
func ValidateOK[T any](ctx context.Context, v T, ok bool, msg func() string) T {
	Validate(ctx, ok, msg)
	return v
}
