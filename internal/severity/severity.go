package severity

import (
	"errors"
	"fmt"

	"golang.org/x/text/cases"
)

// Severity はログの重要度を表す
type Severity int

const (
	None Severity = iota
	Fatal
	Error
	Warning
	Info
	Debug
	Trace
)

// ErrUnknownSeverity は未知の重要度名を表す
var ErrUnknownSeverity = errors.New("unknown severity")

var names = [...]string{
	None:    "none",
	Fatal:   "fatal",
	Error:   "error",
	Warning: "warning",
	Info:    "info",
	Debug:   "debug",
	Trace:   "trace",
}

// foldName は大文字小文字を区別しない比較用に名前を正規化する
// Caser はゴルーチン間で共有できない
func foldName(name string) string {
	return cases.Fold().String(name)
}

func (s Severity) String() string {
	if s < None || s > Trace {
		return "unknown"
	}
	return names[s]
}

// Rank は重要度の順位を返す（None=0 ... Trace=6）
func (s Severity) Rank() int {
	return int(s)
}

// Passes は ceiling を上限とするハンドルでこの重要度が出力されるかを返す
func (s Severity) Passes(ceiling Severity) bool {
	return s <= ceiling
}

// Valid は既知の重要度かを返す
func (s Severity) Valid() bool {
	return s >= None && s <= Trace
}

// All は全ての重要度を順位順に返す
func All() []Severity {
	return []Severity{None, Fatal, Error, Warning, Info, Debug, Trace}
}

// Parse は名前から重要度を取得する（大文字小文字を区別しない）
func Parse(name string) (Severity, error) {
	folded := foldName(name)
	for s, n := range names {
		if n == folded {
			return Severity(s), nil
		}
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownSeverity, name)
}
