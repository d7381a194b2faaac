package logger

import (
	"domainlog/internal/config"
	"domainlog/internal/output"
	"domainlog/internal/severity"
)

// newTestRoot は "memory" 種別を Recorder に向けた Root を作成する
func newTestRoot(tree *config.Node) (*Root, *output.Recorder) {
	rec := output.NewRecorder()
	reg := output.NewRegistry()
	reg.Register("memory", func() (output.Output, error) { return rec, nil })
	reg.Register("void", func() (output.Output, error) { return output.Void{}, nil })
	return NewRoot(tree, reg), rec
}

func memoryTree(level severity.Severity, children map[string]*config.Node) *config.Node {
	return config.NewNode(level, "memory", children)
}

// counter は呼び出し回数を数えるメッセージ生成関数を作る
type counter struct {
	calls int
}

func (c *counter) msg(s string) func() string {
	return func() string {
		c.calls++
		return s
	}
}

// stringer は書式化された回数を数える
type stringer struct {
	calls int
}

func (s *stringer) String() string {
	s.calls++
	return "value"
}
