package echo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"golang.org/x/net/netutil"

	"domainlog/internal/events"
	"domainlog/internal/logger"
	"domainlog/internal/metrics"
	"domainlog/internal/worker"
)

// ClientDomain は受付ループのサブドメイン名
const ClientDomain = "client"

// Config はエコーサーバーの設定
type Config struct {
	Addr        string // 待ち受けアドレス
	MaxConns    int    // 同時接続数の上限
	AcceptLimit int    // この数に達すると検証エラーで停止する（0で無制限）
}

// DefaultConfig はデフォルト設定を返す
func DefaultConfig() Config {
	return Config{
		Addr:     "localhost:1337",
		MaxConns: 64,
	}
}

// Server はエコーサーバー
type Server struct {
	config  Config
	manager *ConnectionManager
	metrics *metrics.Metrics
	bus     *events.Bus
	pool    *worker.Pool
}

// NewServer は新しいエコーサーバーを作成する
func NewServer(config Config) *Server {
	if config.MaxConns <= 0 {
		config.MaxConns = DefaultConfig().MaxConns
	}
	return &Server{
		config:  config,
		manager: NewConnectionManager(),
		metrics: metrics.New(),
		bus:     events.NewBus(),
		pool:    worker.NewPool(config.MaxConns),
	}
}

// Manager はコネクション管理を返す
func (s *Server) Manager() *ConnectionManager {
	return s.manager
}

// Metrics は接続メトリクスを返す
func (s *Server) Metrics() *metrics.Metrics {
	return s.metrics
}

// Events はセッションイベントのバスを返す
func (s *Server) Events() *events.Bus {
	return s.bus
}

// ListenAndServe は設定されたアドレスで待ち受けを開始する
// ctx がキャンセルされると停止する
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}
	logger.Infof(ctx, "started server on %s", ln.Addr())
	return s.Serve(ctx, ln)
}

// Serve は ln で接続を受け付ける。ln は Serve が閉じる
// 予期しない受付エラーは Fatal になる
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ln = netutil.LimitListener(ln, s.config.MaxConns)

	return logger.Branch(ctx, ClientDomain, func(ctx context.Context) error {
		s.pool.Start(ctx)
		defer s.pool.Stop()
		defer s.manager.CloseAll(ctx)

		stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
		defer stop()
		defer ln.Close()

		for i := 1; ; i++ {
			conn, err := ln.Accept()
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
					logger.Debug(ctx, func() string { return "listener closed" })
					return nil
				}
				logger.FatalErr(ctx, err, func() string { return "unknown exception" })
			}

			s.metrics.RecordAccepted()
			if !s.pool.Spawn(ctx, Identify(conn), func(ctx context.Context) { s.handle(ctx, conn) }) {
				s.metrics.RecordClosed(0, 0, nil)
				_ = conn.Close()
			}

			logger.Validatef(ctx, s.config.AcceptLimit <= 0 || i < s.config.AcceptLimit, "oh no, i = %d", i)
		}
	})
}

// handle は一つの接続を処理する。ctx はセッションのドメインを持つ
func (s *Server) handle(ctx context.Context, conn net.Conn) {
	start := time.Now()
	domain := logger.From(ctx).Domain()
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	logger.Debug(ctx, func() string { return "connected" })
	id := s.manager.Enter(ctx, conn)
	s.bus.Publish(events.NewConnectedEvent(id, domain, conn.RemoteAddr().String()))

	var n int64
	var err error
	defer func() {
		s.manager.Leave(ctx, id)
		logger.Debug(ctx, func() string { return "disconnected" })
		s.bus.Publish(events.NewDisconnectedEvent(id, domain, n, time.Since(start)))
		s.metrics.RecordClosed(time.Since(start), n, err)
	}()

	logger.Trace(ctx, func() string { return "got connection stream" })
	logger.Subprogram(ctx, "next", func(ctx context.Context) {
		logger.Warning(ctx, func() string { return "additional level" })
	})

	n, err = io.Copy(conn, conn)
	if err != nil && !errors.Is(err, net.ErrClosed) {
		logger.ErrorErr(ctx, err, func() string { return "client error" })
		s.bus.Publish(events.NewClientErrorEvent(id, domain, err))
		return
	}
	err = nil
}

// Identify は接続のドメイン名を返す
func Identify(conn net.Conn) string {
	return "#" + strings.ReplaceAll(conn.RemoteAddr().String(), "/", "")
}
