package logger

import "context"

type handleKey struct{}

// From はコンテキストに設定されたハンドルを返す。なければ Empty
func From(ctx context.Context) *Handle {
	if ctx == nil {
		return Empty
	}
	if h, ok := ctx.Value(handleKey{}).(*Handle); ok && h != nil {
		return h
	}
	return Empty
}

// WithHandle は h を設定した子コンテキストを返す
func WithHandle(ctx context.Context, h *Handle) context.Context {
	return context.WithValue(ctx, handleKey{}, h)
}

// Using は h を設定したコンテキストで body を実行する
// 呼び出し元の ctx は変更されないため、どの経路で抜けても元のハンドルに戻る
func Using(ctx context.Context, h *Handle, body func(ctx context.Context) error) error {
	return body(WithHandle(ctx, h))
}

// Descend はサブドメイン name のハンドルを設定した子コンテキストを返す
func Descend(ctx context.Context, name string) context.Context {
	return WithHandle(ctx, From(ctx).Child(name))
}

// Branch はサブドメイン name で body を実行する
// body から ctx を受け取って起動したゴルーチンやタスクも同じドメインで記録する
func Branch(ctx context.Context, name string, body func(ctx context.Context) error) error {
	return Using(ctx, From(ctx).Child(name), body)
}

// Subprogram は Branch の単純版。並行処理を起動しない補助的な呼び出しに使う
func Subprogram(ctx context.Context, name string, body func(ctx context.Context)) {
	body(Descend(ctx, name))
}
