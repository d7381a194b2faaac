package client

import (
	"bytes"
	"context"
	cryptorand "crypto/rand"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"domainlog/internal/logger"
	"domainlog/internal/metrics"
	"domainlog/internal/worker"
)

// Domain は負荷生成が記録するサブドメイン名
const Domain = "bench"

// ErrMismatch は返送されたデータが送信したものと異なる場合のエラー
var ErrMismatch = errors.New("echoed payload does not match")

// Config はClientの設定
type Config struct {
	Addr        string        // エコーサーバーのアドレス
	NumWorkers  int           // ワーカー数（0でCPU数）
	Sessions    int           // 接続数
	Messages    int           // 1接続あたりの送信数
	PayloadSize int           // 送信サイズ（バイト）
	DialTimeout time.Duration // 接続タイムアウト
}

// DefaultConfig はデフォルト設定を返す
func DefaultConfig() Config {
	return Config{
		Addr:        "localhost:1337",
		NumWorkers:  0, // CPU数
		Sessions:    10,
		Messages:    100,
		PayloadSize: 64,
		DialTimeout: 5 * time.Second,
	}
}

// Client は負荷生成器
type Client struct {
	config  Config
	pool    *worker.Pool
	metrics *metrics.Metrics
}

// New は新しいClientを作成する
func New(config Config) *Client {
	defaults := DefaultConfig()
	if config.Sessions <= 0 {
		config.Sessions = defaults.Sessions
	}
	if config.Messages <= 0 {
		config.Messages = defaults.Messages
	}
	if config.PayloadSize <= 0 {
		config.PayloadSize = defaults.PayloadSize
	}
	if config.DialTimeout <= 0 {
		config.DialTimeout = defaults.DialTimeout
	}
	return &Client{
		config:  config,
		pool:    worker.NewPool(config.NumWorkers),
		metrics: metrics.New(),
	}
}

// Metrics はメトリクスを返す
func (c *Client) Metrics() *metrics.Metrics {
	return c.metrics
}

// Run は全セッションを実行し、終了後のスナップショットを返す
func (c *Client) Run(ctx context.Context) (*metrics.Snapshot, error) {
	err := logger.Branch(ctx, Domain, func(ctx context.Context) error {
		c.pool.Start(ctx)
		defer c.pool.Stop()

		logger.Infof(ctx, "benchmark started (sessions: %d, messages: %d, payload: %dB)",
			c.config.Sessions, c.config.Messages, c.config.PayloadSize)

		var wg sync.WaitGroup
		for i := range c.config.Sessions {
			wg.Add(1)
			submitted := c.pool.Spawn(ctx, fmt.Sprintf("session-%d", i), func(ctx context.Context) {
				defer wg.Done()
				c.session(ctx)
			})
			if !submitted {
				wg.Done()
				return fmt.Errorf("failed to submit session %d", i)
			}
		}
		wg.Wait()

		snap := c.metrics.Snapshot()
		logger.Infof(ctx, "benchmark finished: %d sessions, %d failed, %d bytes echoed",
			snap.ClosedConnections, snap.FailedConnections, snap.BytesEchoed)
		return nil
	})
	if err != nil {
		return nil, err
	}

	snapshot := c.metrics.Snapshot()
	return &snapshot, nil
}

// session は一つの接続で送受信を繰り返す
func (c *Client) session(ctx context.Context) {
	start := time.Now()
	c.metrics.RecordAccepted()

	n, err := c.exchange(ctx)
	if err != nil {
		logger.ErrorErr(ctx, err, func() string { return "session failed" })
	} else {
		logger.Debugf(ctx, "session finished in %v", time.Since(start))
	}
	c.metrics.RecordClosed(time.Since(start), n, err)
}

func (c *Client) exchange(ctx context.Context) (int64, error) {
	dialer := net.Dialer{Timeout: c.config.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.config.Addr)
	if err != nil {
		return 0, fmt.Errorf("failed to dial %s: %w", c.config.Addr, err)
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	logger.Tracef(ctx, "connected from %s", conn.LocalAddr())

	var total int64
	payload := make([]byte, c.config.PayloadSize)
	echoed := make([]byte, c.config.PayloadSize)
	for i := range c.config.Messages {
		_, _ = cryptorand.Read(payload)
		if _, err := conn.Write(payload); err != nil {
			return total, fmt.Errorf("message %d: write: %w", i, err)
		}
		if _, err := io.ReadFull(conn, echoed); err != nil {
			return total, fmt.Errorf("message %d: read: %w", i, err)
		}
		if !bytes.Equal(payload, echoed) {
			return total, fmt.Errorf("message %d: %w", i, ErrMismatch)
		}
		total += int64(len(echoed))
	}
	return total, nil
}
