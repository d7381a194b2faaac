package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/websocket"

	"domainlog/internal/config"
	"domainlog/internal/echo"
	"domainlog/internal/logger"
)

// Domain は API サーバーが記録するサブドメイン名
const Domain = "api"

// Server は管理用 API サーバー
type Server struct {
	addr      string
	echo      *echo.Server
	startTime time.Time
	interval  time.Duration

	mu        sync.RWMutex
	wsClients map[*websocket.Conn]bool

	server *http.Server
}

// NewServer は新しい API サーバーを作成する
func NewServer(addr string, echoServer *echo.Server) *Server {
	return &Server{
		addr:      addr,
		echo:      echoServer,
		startTime: time.Now(),
		interval:  time.Second,
		wsClients: make(map[*websocket.Conn]bool),
	}
}

// Handler は ctx のハンドルの下で記録するルーティングを返す
func (s *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/status", s.get(ctx, s.handleStatus))
	mux.HandleFunc("/api/metrics", s.get(ctx, s.handleMetrics))
	mux.HandleFunc("/api/log/domains", s.get(ctx, s.handleDomains))
	mux.HandleFunc("/api/log/resolve", s.get(ctx, s.handleResolve))

	mux.Handle("/ws", websocket.Handler(func(ws *websocket.Conn) {
		s.handleWebSocket(ctx, ws)
	}))

	return mux
}

// Start はサーバーを開始する。ctx がキャンセルされるまで戻らない
func (s *Server) Start(ctx context.Context) error {
	return logger.Branch(ctx, Domain, func(ctx context.Context) error {
		s.server = &http.Server{
			Addr:              s.addr,
			Handler:           s.Handler(ctx),
			ReadHeaderTimeout: 5 * time.Second,
		}

		go s.broadcastLoop(ctx)

		logger.Infof(ctx, "admin API listening on http://%s", s.addr)

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = s.server.Shutdown(shutdownCtx)
		}()

		if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
}

type handlerFunc func(ctx context.Context, w http.ResponseWriter, r *http.Request)

func (s *Server) get(ctx context.Context, h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		logger.Tracef(ctx, "%s %s from %s", r.Method, r.URL.Path, r.RemoteAddr)
		h(ctx, w, r)
	}
}

// StatusResponse はステータスレスポンス
type StatusResponse struct {
	Sessions      int               `json:"sessions"`
	SessionAddrs  map[string]string `json:"session_addrs"`
	UptimeSeconds float64           `json:"uptime_seconds"`
	Subscribers   int               `json:"subscribers"`
}

func (s *Server) status() StatusResponse {
	sessions := s.echo.Manager().Sessions()
	return StatusResponse{
		Sessions:      len(sessions),
		SessionAddrs:  sessions,
		UptimeSeconds: time.Since(s.startTime).Seconds(),
		Subscribers:   s.echo.Events().SubscriberCount(),
	}
}

func (s *Server) handleStatus(ctx context.Context, w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(ctx, w, s.status())
}

// MetricsResponse はメトリクスレスポンス
type MetricsResponse struct {
	AcceptedConnections uint64  `json:"accepted_connections"`
	ActiveConnections   int64   `json:"active_connections"`
	ClosedConnections   uint64  `json:"closed_connections"`
	FailedConnections   uint64  `json:"failed_connections"`
	BytesEchoed         uint64  `json:"bytes_echoed"`
	AcceptRate          float64 `json:"accept_rate"`
	P99LifetimeMs       float64 `json:"p99_lifetime_ms"`
	DroppedEvents       uint64  `json:"dropped_events"`
}

func (s *Server) metrics() MetricsResponse {
	snap := s.echo.Metrics().Snapshot()
	return MetricsResponse{
		AcceptedConnections: snap.AcceptedConnections,
		ActiveConnections:   snap.ActiveConnections,
		ClosedConnections:   snap.ClosedConnections,
		FailedConnections:   snap.FailedConnections,
		BytesEchoed:         snap.BytesEchoed,
		AcceptRate:          snap.AcceptRate,
		P99LifetimeMs:       float64(snap.P99Lifetime.Microseconds()) / 1000,
		DroppedEvents:       s.echo.Events().Dropped(),
	}
}

func (s *Server) handleMetrics(ctx context.Context, w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(ctx, w, s.metrics())
}

// DomainInfo はログドメインの設定
type DomainInfo struct {
	Domain   string `json:"domain"`
	Severity string `json:"severity"`
	Output   string `json:"output"`
}

func (s *Server) handleDomains(ctx context.Context, w http.ResponseWriter, _ *http.Request) {
	root := logger.From(ctx).Root()
	if root == nil {
		http.Error(w, "Logging is not configured", http.StatusServiceUnavailable)
		return
	}

	domains := []DomainInfo{}
	root.Tree().Walk(func(domain string, n *config.Node) {
		domains = append(domains, DomainInfo{
			Domain:   domain,
			Severity: n.Severity().String(),
			Output:   n.Output(),
		})
	})

	s.writeJSON(ctx, w, domains)
}

// ResolveResponse はドメイン解決の結果
type ResolveResponse struct {
	Domain  string     `json:"domain"`
	Matched DomainInfo `json:"matched"`
}

func (s *Server) handleResolve(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	root := logger.From(ctx).Root()
	if root == nil {
		http.Error(w, "Logging is not configured", http.StatusServiceUnavailable)
		return
	}

	domain := r.URL.Query().Get("domain")
	conf := root.Tree().Resolve(domain)
	s.writeJSON(ctx, w, ResolveResponse{
		Domain: domain,
		Matched: DomainInfo{
			Domain:   conf.Domain,
			Severity: conf.Severity.String(),
			Output:   conf.Output,
		},
	})
}

// WebSocket handling
func (s *Server) handleWebSocket(ctx context.Context, ws *websocket.Conn) {
	sub := s.echo.Events().Subscribe()

	s.mu.Lock()
	s.wsClients[ws] = true
	s.mu.Unlock()
	logger.Debugf(ctx, "websocket client %s subscribed", ws.Request().RemoteAddr)

	defer func() {
		s.mu.Lock()
		delete(s.wsClients, ws)
		s.mu.Unlock()
		s.echo.Events().Unsubscribe(sub)
		_ = ws.Close()
		logger.Debugf(ctx, "websocket client %s unsubscribed", ws.Request().RemoteAddr)
	}()

	// 受信側が閉じたら終了する
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			var msg string
			if err := websocket.Message.Receive(ws, &msg); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-closed:
			return
		case event, ok := <-sub:
			if !ok {
				return
			}
			if err := s.send(ws, map[string]interface{}{
				"type":  "event",
				"event": event,
			}); err != nil {
				logger.DebugErr(ctx, err, func() string { return "websocket send failed" })
				return
			}
		}
	}
}

func (s *Server) send(ws *websocket.Conn, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return websocket.Message.Send(ws, string(jsonData))
}

func (s *Server) broadcast(ctx context.Context, data interface{}) {
	s.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(s.wsClients))
	for ws := range s.wsClients {
		clients = append(clients, ws)
	}
	s.mu.RUnlock()

	for _, ws := range clients {
		if err := s.send(ws, data); err != nil {
			logger.DebugErr(ctx, err, func() string { return "websocket broadcast failed" })
		}
	}
}

func (s *Server) broadcastLoop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.broadcast(ctx, map[string]interface{}{
				"type":    "metrics",
				"metrics": s.metrics(),
			})
		}
	}
}

func (s *Server) writeJSON(ctx context.Context, w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.ErrorErr(ctx, err, func() string { return "failed to encode JSON" })
	}
}
