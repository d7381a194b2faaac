package output

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"golang.org/x/text/cases"
)

// ErrUnresolvableOutput は登録されていない出力種別を表す
var ErrUnresolvableOutput = errors.New("unresolvable output")

// Kind names understood by DefaultRegistry.
const (
	KindConsole = "console"
	KindVoid    = "void"
	KindSlog    = "slog"
	KindZerolog = "zerolog"
	KindHclog   = "hclog"
)

// Factory は出力を生成する
type Factory func() (Output, error)

// Registry は出力種別名とファクトリの対応表
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	aliases   map[string]string
}

// foldName は大文字小文字を区別しない比較用に名前を正規化する
// Caser はゴルーチン間で共有できない
func foldName(name string) string {
	return cases.Fold().String(name)
}

// NewRegistry は空のレジストリを作成する
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		aliases:   make(map[string]string),
	}
}

// DefaultRegistry は標準の出力種別を登録したレジストリを返す
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(KindConsole, func() (Output, error) { return NewConsole(), nil })
	r.Register(KindVoid, func() (Output, error) { return Void{}, nil })
	r.Register(KindSlog, func() (Output, error) { return NewSlog(os.Stderr), nil })
	r.Register(KindZerolog, func() (Output, error) { return NewZerolog(os.Stderr), nil })
	r.Register(KindHclog, func() (Output, error) { return NewHclog(os.Stderr), nil })

	// 旧設定ファイルのクラス名
	r.Alias("ktlo.log.outputs.ConsoleOutput", KindConsole)
	r.Alias("ktlo.log.outputs.VoidOutput", KindVoid)
	return r
}

// Register は出力種別を登録する
func (r *Registry) Register(kind string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[foldName(kind)] = factory
}

// Alias は既存の種別に別名を付ける
func (r *Registry) Alias(alias, kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aliases[foldName(alias)] = foldName(kind)
}

// Resolve は種別名を正規化し、対応するファクトリを返す
func (r *Registry) Resolve(kind string) (string, Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name := foldName(kind)
	if target, ok := r.aliases[name]; ok {
		name = target
	}
	f, ok := r.factories[name]
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", ErrUnresolvableOutput, kind)
	}
	return name, f, nil
}

// Kinds は登録済みの種別名を返す
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
