package connect

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	defaultSendQueueSize = 64
	wsWriteTimeout       = 5 * time.Second
	wsPongWait           = 60 * time.Second
	wsPingPeriod         = 45 * time.Second
)

// CloseHandler 连接关闭回调，用于在读写循环退出后从 manager 注销。
type CloseHandler func()

// Client 封装单条 WebSocket 连接。
// 设计要点：
// - send 队列用于削峰，避免通知扇出 goroutine 直接阻塞在网络写；
// - done 用于统一关闭信号，读写循环都监听该信号退出；
// - once 保证 Close 幂等，避免重复 close channel/panic。
type Client struct {
	conn   *websocket.Conn
	userID string
	connID string
	send   chan []byte
	done   chan struct{}
	once   sync.Once
}

// NewClient 创建连接包装对象。
// userID 是规范身份 id；connID 区分同一用户的多端连接。
func NewClient(conn *websocket.Conn, userID, connID string) *Client {
	return &Client{
		conn:   conn,
		userID: userID,
		connID: connID,
		send:   make(chan []byte, defaultSendQueueSize),
		done:   make(chan struct{}),
	}
}

// Key 返回连接唯一键（user_id:conn_id），用于替换与索引。
func (c *Client) Key() string {
	return buildKey(c.userID, c.connID)
}

func (c *Client) UserID() string {
	return c.userID
}

func (c *Client) ConnID() string {
	return c.connID
}

// Done 返回连接关闭信号通道。
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Enqueue 将待下发消息投递到写队列。
// 返回 false 表示连接已关闭或队列已满，调用方可回退到离线通道。
func (c *Client) Enqueue(msg []byte) bool {
	if len(msg) == 0 {
		return true
	}
	cloned := append([]byte(nil), msg...)
	select {
	case <-c.done:
		return false
	case c.send <- cloned:
		return true
	default:
		return false
	}
}

// Run 启动读写循环并阻塞到连接结束。
// writeLoop 在独立 goroutine 中运行；readLoop 占用当前 goroutine，
// 断连或读错误触发整体退出，退出时保证 Close 和 onClose 都被调用。
func (c *Client) Run(ctx context.Context, onClose CloseHandler) {
	defer func() {
		c.Close()
		if onClose != nil {
			onClose()
		}
	}()

	go c.writeLoop()
	c.readLoop(ctx)
}

// readLoop 下行通道只接收 pong 与关闭帧，上行业务消息走 HTTP 接口
func (c *Client) readLoop(ctx context.Context) {
	_ = c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		default:
		}
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writeLoop() {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.Close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		}
	}
}

// Close 幂等关闭连接。
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func buildKey(userID, connID string) string {
	return userID + ":" + connID
}
