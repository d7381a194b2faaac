package output

import (
	"sync"

	"domainlog/internal/severity"
)

// Record はメモリに記録されたログレコード
type Record struct {
	Level   severity.Severity
	Domain  string
	Message string
	Err     error
}

// Recorder はレコードをメモリに蓄積する Output
// テストや埋め込み用途で使う
type Recorder struct {
	mu      sync.Mutex
	records []Record
}

var (
	_ Output      = (*Recorder)(nil)
	_ ErrorWriter = (*Recorder)(nil)
)

// NewRecorder は新しい Recorder を作成する
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Write(level severity.Severity, domain string, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, Record{Level: level, Domain: domain, Message: message})
}

func (r *Recorder) WriteError(level severity.Severity, domain string, message string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, Record{Level: level, Domain: domain, Message: message, Err: err})
}

// Records は記録済みレコードのコピーを返す
func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// Len は記録数を返す
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}
