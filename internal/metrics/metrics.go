package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Config はメトリクスの設定
type Config struct {
	MaxLifetimeSamples int // 保持する接続時間のサンプル数
}

// DefaultConfig はデフォルト設定を返す
func DefaultConfig() Config {
	return Config{MaxLifetimeSamples: 1000}
}

// Metrics は接続のメトリクスを収集する
type Metrics struct {
	accepted    atomic.Uint64
	active      atomic.Int64
	closed      atomic.Uint64
	failed      atomic.Uint64
	bytesEchoed atomic.Uint64

	mu                 sync.RWMutex
	startTime          time.Time
	lifetimes          []time.Duration
	maxLifetimeSamples int
}

// New は新しいメトリクスを作成する
func New() *Metrics {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig は設定を指定してメトリクスを作成する
func NewWithConfig(config Config) *Metrics {
	maxSamples := config.MaxLifetimeSamples
	if maxSamples <= 0 {
		maxSamples = DefaultConfig().MaxLifetimeSamples
	}
	return &Metrics{
		startTime:          time.Now(),
		lifetimes:          make([]time.Duration, 0, maxSamples),
		maxLifetimeSamples: maxSamples,
	}
}

// RecordAccepted は受け付けた接続を記録する
func (m *Metrics) RecordAccepted() {
	m.accepted.Add(1)
	m.active.Add(1)
}

// RecordClosed は終了した接続を記録する
// err が nil でなければ異常終了として数える
func (m *Metrics) RecordClosed(lifetime time.Duration, bytes int64, err error) {
	m.active.Add(-1)
	m.closed.Add(1)
	if err != nil {
		m.failed.Add(1)
	}
	if bytes > 0 {
		m.bytesEchoed.Add(uint64(bytes))
	}

	m.mu.Lock()
	if len(m.lifetimes) < m.maxLifetimeSamples {
		m.lifetimes = append(m.lifetimes, lifetime)
	}
	m.mu.Unlock()
}

// AcceptedConnections は受け付けた接続数を返す
func (m *Metrics) AcceptedConnections() uint64 {
	return m.accepted.Load()
}

// ActiveConnections は現在の接続数を返す
func (m *Metrics) ActiveConnections() int64 {
	return m.active.Load()
}

// ClosedConnections は終了した接続数を返す
func (m *Metrics) ClosedConnections() uint64 {
	return m.closed.Load()
}

// FailedConnections は異常終了した接続数を返す
func (m *Metrics) FailedConnections() uint64 {
	return m.failed.Load()
}

// BytesEchoed は返送したバイト数を返す
func (m *Metrics) BytesEchoed() uint64 {
	return m.bytesEchoed.Load()
}

// AcceptRate は開始からの平均受付数（毎秒）を返す
func (m *Metrics) AcceptRate() float64 {
	elapsed := time.Since(m.startTime).Seconds()
	if elapsed == 0 {
		return 0
	}
	return float64(m.accepted.Load()) / elapsed
}

// P99Lifetime は接続時間のP99を返す（サンプルベース）
func (m *Metrics) P99Lifetime() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.lifetimes) == 0 {
		return 0
	}

	sorted := make([]time.Duration, len(m.lifetimes))
	copy(sorted, m.lifetimes)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	idx := int(float64(len(sorted)) * 0.99)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// Reset はサンプルをリセットする。カウンタは保持する
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lifetimes = m.lifetimes[:0]
}

// Snapshot はメトリクスのスナップショット
type Snapshot struct {
	AcceptedConnections uint64
	ActiveConnections   int64
	ClosedConnections   uint64
	FailedConnections   uint64
	BytesEchoed         uint64
	AcceptRate          float64
	P99Lifetime         time.Duration
	Elapsed             time.Duration
}

// Snapshot は現在のメトリクスのスナップショットを返す
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		AcceptedConnections: m.AcceptedConnections(),
		ActiveConnections:   m.ActiveConnections(),
		ClosedConnections:   m.ClosedConnections(),
		FailedConnections:   m.FailedConnections(),
		BytesEchoed:         m.BytesEchoed(),
		AcceptRate:          m.AcceptRate(),
		P99Lifetime:         m.P99Lifetime(),
		Elapsed:             time.Since(m.startTime),
	}
}
