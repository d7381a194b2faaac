package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"

	"domainlog/internal/severity"
)

// DefaultOutput は最上位のデフォルト出力種別
const DefaultOutput = "console"

// DomainSeparator はドメインの区切り文字
const DomainSeparator = "/"

const (
	keyLevel  = "level"
	keyOutput = "output"
)

// ErrInvalidDomainKey は空のセグメントを含むドメインキーを表す
var ErrInvalidDomainKey = errors.New("invalid domain key")

// Configuration はドメインの解決結果
type Configuration struct {
	Domain   string // 一致したプレフィックス
	Severity severity.Severity
	Output   string
}

// Silent は何も出力しない設定
var Silent = Configuration{Domain: "", Severity: severity.None, Output: "void"}

// Node は設定ツリーのノード。構築後は変更しない
type Node struct {
	severity severity.Severity
	output   string
	children map[string]*Node
}

// NewNode は新しいノードを作成する
func NewNode(sev severity.Severity, output string, children map[string]*Node) *Node {
	c := make(map[string]*Node, len(children))
	for k, v := range children {
		c[k] = v
	}
	return &Node{severity: sev, output: output, children: c}
}

// Default は設定ファイルがない場合のツリーを返す
func Default() *Node {
	return NewNode(severity.Info, DefaultOutput, nil)
}

// Severity はノードの重要度上限を返す
func (n *Node) Severity() severity.Severity {
	return n.severity
}

// Output はノードの出力種別を返す
func (n *Node) Output() string {
	return n.output
}

// Child は子ノードを返す
func (n *Node) Child(segment string) (*Node, bool) {
	c, ok := n.children[segment]
	return c, ok
}

// Segments は子ノードのセグメント名をソートして返す
func (n *Node) Segments() []string {
	segs := make([]string, 0, len(n.children))
	for k := range n.children {
		segs = append(segs, k)
	}
	sort.Strings(segs)
	return segs
}

// Resolve はドメインを最長一致で解決する
func (n *Node) Resolve(domain string) Configuration {
	current := n
	matched := make([]string, 0, strings.Count(domain, DomainSeparator)+1)
	for _, segment := range strings.Split(domain, DomainSeparator) {
		next, ok := current.children[segment]
		if !ok {
			break
		}
		current = next
		matched = append(matched, segment)
	}
	return Configuration{
		Domain:   strings.Join(matched, DomainSeparator),
		Severity: current.severity,
		Output:   current.output,
	}
}

// Walk は全ノードを深さ優先で訪問する
func (n *Node) Walk(fn func(domain string, node *Node)) {
	n.walk("", fn)
}

func (n *Node) walk(domain string, fn func(string, *Node)) {
	fn(domain, n)
	for _, seg := range n.Segments() {
		n.children[seg].walk(join(domain, seg), fn)
	}
}

// settings は予約キーの値
type settings struct {
	Level  string `mapstructure:"level"`
	Output string `mapstructure:"output"`
}

// Build は階層マップから設定ツリーを構築する
func Build(raw map[string]any) (*Node, error) {
	exploded, err := explode(raw, "")
	if err != nil {
		return nil, err
	}
	return build(exploded, "", severity.Info, DefaultOutput)
}

func build(raw map[string]any, domain string, level severity.Severity, output string) (*Node, error) {
	var s settings
	if err := mapstructure.WeakDecode(raw, &s); err != nil {
		return nil, fmt.Errorf("domain %q: %w", domain, err)
	}
	if s.Level != "" {
		parsed, err := severity.Parse(s.Level)
		if err != nil {
			return nil, fmt.Errorf("domain %q: %w", domain, err)
		}
		level = parsed
	}
	if s.Output != "" {
		output = s.Output
	}

	node := &Node{severity: level, output: output, children: make(map[string]*Node)}
	for key, value := range raw {
		if isReserved(key) {
			continue
		}
		m, ok := asMapping(value)
		if !ok {
			continue
		}
		child, err := build(m, join(domain, key), level, output)
		if err != nil {
			return nil, err
		}
		node.children[key] = child
	}
	return node, nil
}

// explode はスラッシュ区切りのキーを単一セグメントの入れ子に展開する
// キーはソート順に処理し、重複した予約キーは後勝ち
func explode(raw map[string]any, domain string) (map[string]any, error) {
	out := make(map[string]any, len(raw))

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := raw[key]
		if isReserved(key) {
			out[key] = value
			continue
		}
		m, ok := asMapping(value)
		if !ok {
			continue
		}

		segments := strings.Split(key, DomainSeparator)
		for _, seg := range segments {
			if seg == "" {
				return nil, fmt.Errorf("%w: %q under %q", ErrInvalidDomainKey, key, domain)
			}
		}

		child, err := explode(m, join(domain, key))
		if err != nil {
			return nil, err
		}
		for i := len(segments) - 1; i >= 1; i-- {
			child = map[string]any{segments[i]: child}
		}

		if existing, ok := out[segments[0]].(map[string]any); ok {
			out[segments[0]] = merge(existing, child)
		} else {
			out[segments[0]] = child
		}
	}
	return out, nil
}

func merge(dst, src map[string]any) map[string]any {
	for k, v := range src {
		dm, dok := dst[k].(map[string]any)
		sm, sok := v.(map[string]any)
		if dok && sok {
			dst[k] = merge(dm, sm)
			continue
		}
		dst[k] = v
	}
	return dst
}

func isReserved(key string) bool {
	return strings.EqualFold(key, keyLevel) || strings.EqualFold(key, keyOutput)
}

func asMapping(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func join(domain, segment string) string {
	if domain == "" {
		return segment
	}
	return domain + DomainSeparator + segment
}
