package connect

import "sync"

// Manager 管理所有在线 WebSocket 连接。
// 维护两套索引：
// - byKey(user_id:conn_id) 用于精确定位单条连接；
// - byUser(user_id -> conn_id -> client) 用于按用户广播。
// SendToUser 满足通知引擎的在线直发接口，返回 0 时引擎回退 Kafka 离线推送。
type Manager struct {
	mu       sync.RWMutex
	byKey    map[string]*Client
	byUser   map[string]map[string]*Client
	shutdown bool
}

// NewManager 创建连接管理器实例。
func NewManager() *Manager {
	return &Manager{
		byKey:  make(map[string]*Client),
		byUser: make(map[string]map[string]*Client),
	}
}

// Register 注册一条连接。
// 返回被替换掉的同键旧连接（如有），调用方应主动关闭它。
func (m *Manager) Register(client *Client) (replaced *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.shutdown {
		return nil
	}

	key := client.Key()
	if old, ok := m.byKey[key]; ok && old != client {
		replaced = old
	}

	m.byKey[key] = client
	userConns, ok := m.byUser[client.UserID()]
	if !ok {
		userConns = make(map[string]*Client)
		m.byUser[client.UserID()] = userConns
	}
	userConns[client.ConnID()] = client
	return replaced
}

// Unregister 注销一条连接。
// 只有 map 中当前连接与入参一致时才删除，防止并发替换时误删新连接。
func (m *Manager) Unregister(client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := client.Key()
	current, ok := m.byKey[key]
	if !ok || current != client {
		return
	}

	delete(m.byKey, key)
	if userConns, ok := m.byUser[client.UserID()]; ok {
		delete(userConns, client.ConnID())
		if len(userConns) == 0 {
			delete(m.byUser, client.UserID())
		}
	}
}

// SendToUser 向用户的所有在线端广播消息，返回成功入队的连接数。
func (m *Manager) SendToUser(userID string, msg []byte) int {
	m.mu.RLock()
	userConns, ok := m.byUser[userID]
	if !ok || len(userConns) == 0 {
		m.mu.RUnlock()
		return 0
	}
	clients := make([]*Client, 0, len(userConns))
	for _, client := range userConns {
		clients = append(clients, client)
	}
	m.mu.RUnlock()

	sent := 0
	for _, client := range clients {
		if client.Enqueue(msg) {
			sent++
		}
	}
	return sent
}

// Count 返回当前在线连接数。
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byKey)
}

// Shutdown 关闭全部连接并阻止后续注册，用于进程优雅退出。
func (m *Manager) Shutdown() {
	m.mu.Lock()
	if m.shutdown {
		m.mu.Unlock()
		return
	}
	m.shutdown = true
	clients := make([]*Client, 0, len(m.byKey))
	for _, client := range m.byKey {
		clients = append(clients, client)
	}
	m.byKey = make(map[string]*Client)
	m.byUser = make(map[string]map[string]*Client)
	m.mu.Unlock()

	for _, client := range clients {
		client.Close()
	}
}
