package echo

import (
	"context"
	"net"
	"sync"

	"github.com/google/uuid"

	"domainlog/internal/logger"
)

// ManagerDomain はコネクション管理が記録するサブドメイン名
const ManagerDomain = "@connection-manager"

// ConnectionManager は生存中のセッションを管理する
// 複数のセッションから呼ばれ、呼び出し元のドメインの下に記録する
type ConnectionManager struct {
	mu       sync.Mutex
	sessions map[string]net.Conn
}

// NewConnectionManager は新しい ConnectionManager を作成する
func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		sessions: make(map[string]net.Conn),
	}
}

// Enter はセッションを登録し、セッション ID を返す
func (m *ConnectionManager) Enter(ctx context.Context, conn net.Conn) string {
	id := uuid.NewString()
	logger.Subprogram(ctx, ManagerDomain, func(ctx context.Context) {
		m.mu.Lock()
		m.sessions[id] = conn
		m.mu.Unlock()
		logger.Infof(ctx, "added socket %s", id)
	})
	return id
}

// Leave はセッションを削除する。未登録の ID は Fatal になる
func (m *ConnectionManager) Leave(ctx context.Context, id string) {
	logger.Subprogram(ctx, ManagerDomain, func(ctx context.Context) {
		m.mu.Lock()
		_, ok := m.sessions[id]
		delete(m.sessions, id)
		m.mu.Unlock()

		logger.Validatef(ctx, ok, "unknown session %s", id)
		logger.Infof(ctx, "removed socket %s", id)
	})
}

// Len は生存中のセッション数を返す
func (m *ConnectionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sessions は生存中のセッション ID とリモートアドレスを返す
func (m *ConnectionManager) Sessions() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]string, len(m.sessions))
	for id, conn := range m.sessions {
		out[id] = conn.RemoteAddr().String()
	}
	return out
}

// CloseAll は全セッションの接続を閉じる。登録の削除は各セッションが行う
func (m *ConnectionManager) CloseAll(ctx context.Context) {
	logger.Subprogram(ctx, ManagerDomain, func(ctx context.Context) {
		m.mu.Lock()
		conns := make([]net.Conn, 0, len(m.sessions))
		for _, conn := range m.sessions {
			conns = append(conns, conn)
		}
		m.mu.Unlock()

		for _, conn := range conns {
			if err := conn.Close(); err != nil {
				logger.DebugErr(ctx, err, func() string { return "close failed" })
			}
		}
		logger.Infof(ctx, "closed %d sockets", len(conns))
	})
}
