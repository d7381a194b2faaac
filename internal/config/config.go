package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath は設定ファイルパスを指定する環境変数
const EnvConfigPath = "DOMAINLOG_CONFIG"

// candidates は作業ディレクトリで探す設定ファイル名
var candidates = []string{"log.yaml", "log.yml", "log.json", "log.toml"}

// LoadFile は設定ファイルを読み込んでツリーを構築する
func LoadFile(path string) (*Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	raw, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, err
	}

	tree, err := Build(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return tree, nil
}

// Parse は拡張子に応じて階層マップにデコードする
func Parse(data []byte, ext string) (map[string]any, error) {
	var raw map[string]any

	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	case "toml":
		tree, err := toml.LoadBytes(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
		raw = tree.ToMap()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}

	return raw, nil
}

// Discover は設定ファイルのパスを探す
// 環境変数を優先し、次に dir 内の候補ファイルを順に確認する
func Discover(dir string) (string, bool) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, true
	}
	for _, name := range candidates {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, true
		}
	}
	return "", false
}

// Load は path が空なら設定ファイルを探して読み込む
// 見つからない場合は Default を返す
func Load(path string) (*Node, error) {
	if path == "" {
		found, ok := Discover(".")
		if !ok {
			return Default(), nil
		}
		path = found
	}
	return LoadFile(path)
}
