package logger

import (
	"context"
	"fmt"

	"domainlog/internal/config"
	"domainlog/internal/output"
)

// Root は設定ツリーと出力キャッシュをまとめたもの
// プロセスごとに一つ作成し、テストでは個別に作成する
type Root struct {
	tree     *config.Node
	registry *output.Registry
	cache    *output.Cache
}

// NewRoot は新しい Root を作成する
// tree が nil なら config.Default、registry が nil なら output.DefaultRegistry を使う
func NewRoot(tree *config.Node, registry *output.Registry) *Root {
	if tree == nil {
		tree = config.Default()
	}
	if registry == nil {
		registry = output.DefaultRegistry()
	}
	return &Root{
		tree:     tree,
		registry: registry,
		cache:    output.NewCache(registry),
	}
}

// Tree は設定ツリーを返す
func (r *Root) Tree() *config.Node {
	return r.tree
}

// Cache は出力キャッシュを返す
func (r *Root) Cache() *output.Cache {
	return r.cache
}

// Lookup はドメインのハンドルを作成する
// 出力種別を初めて解決した場合のみ出力を生成する
func (r *Root) Lookup(domain string) (*Handle, error) {
	conf := r.tree.Resolve(domain)
	out, err := r.cache.Get(conf.Output)
	if err != nil {
		return nil, fmt.Errorf("domain %q: %w", domain, err)
	}
	return &Handle{
		root:   r,
		output: out,
		domain: domain,
		config: conf,
	}, nil
}

// Get はドメインのハンドルを返す。出力を解決できなければ FatalError で panic する
func (r *Root) Get(domain string) *Handle {
	h, err := r.Lookup(domain)
	if err != nil {
		Empty.FatalErr(err, nil)
	}
	return h
}

// Context はルートドメインのハンドルを設定したコンテキストを返す
func (r *Root) Context(ctx context.Context) context.Context {
	return WithHandle(ctx, r.Get(""))
}

// Check はツリー内の全ての出力種別が解決できるかを確認する
func (r *Root) Check() error {
	var firstErr error
	r.tree.Walk(func(domain string, n *config.Node) {
		if firstErr != nil {
			return
		}
		if _, _, err := r.registry.Resolve(n.Output()); err != nil {
			firstErr = fmt.Errorf("domain %q: %w", domain, err)
		}
	})
	return firstErr
}
