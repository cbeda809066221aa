package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"PromptFM/logger"
)

// MessageType WebSocket消息类型
type MessageType string

const (
	MsgTypePrompt MessageType = "prompt" // 新解析出的提示词
	MsgTypePing   MessageType = "ping"   // 心跳
	MsgTypePong   MessageType = "pong"   // 心跳响应
)

// WSMessage WebSocket 消息结构
type WSMessage struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

const (
	writeWait      = 5 * time.Second
	sendBufferSize = 8
)

// hubClient 一个已连接的展示端
type hubClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// PromptHub 向所有订阅的展示端广播解析结果
// 解析循环是唯一的写入方；慢客户端直接丢帧，绝不阻塞解析
type PromptHub struct {
	mu      sync.RWMutex
	clients map[string]*hubClient
}

// NewPromptHub 创建广播中心
func NewPromptHub() *PromptHub {
	return &PromptHub{
		clients: make(map[string]*hubClient),
	}
}

// Register 注册一个新的websocket连接并启动读写循环
func (h *PromptHub) Register(conn *websocket.Conn) {
	client := &hubClient{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}

	h.mu.Lock()
	h.clients[client.id] = client
	count := len(h.clients)
	h.mu.Unlock()

	logger.Info("display client connected",
		logger.String("clientId", client.id),
		logger.Int("clients", count))

	go h.writeLoop(client)
	go h.readLoop(client)
}

// Broadcast 把一条解析结果推送给所有客户端
func (h *PromptHub) Broadcast(payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Warn("broadcast marshal failed", logger.ErrorField(err))
		return
	}
	msg, err := json.Marshal(WSMessage{
		Type:      MsgTypePrompt,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		select {
		case client.send <- msg:
		default:
			// 客户端消费不过来，丢掉这一帧
		}
	}
}

// sendTo 向单个客户端投递消息
// 持锁校验客户端仍在注册表中，注销与关闭都在同一把锁下关闭通道，
// 保证不会向已关闭的通道发送
func (h *PromptHub) sendTo(client *hubClient, msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[client.id]; !ok {
		return
	}
	select {
	case client.send <- msg:
	default:
	}
}

// ClientCount 当前连接数
func (h *PromptHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close 断开所有客户端
func (h *PromptHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, client := range h.clients {
		close(client.send)
		client.conn.Close()
		delete(h.clients, id)
	}
}

func (h *PromptHub) unregister(client *hubClient) {
	h.mu.Lock()
	if _, ok := h.clients[client.id]; ok {
		delete(h.clients, client.id)
		close(client.send)
	}
	h.mu.Unlock()

	client.conn.Close()
	logger.Info("display client disconnected", logger.String("clientId", client.id))
}

// writeLoop 串行化对单个连接的所有写操作
func (h *PromptHub) writeLoop(client *hubClient) {
	for msg := range client.send {
		client.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := client.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.unregister(client)
			return
		}
	}
}

// readLoop 消费客户端消息，目前只处理心跳
func (h *PromptHub) readLoop(client *hubClient) {
	defer h.unregister(client)
	for {
		_, raw, err := client.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		if msg.Type == MsgTypePing {
			pong, _ := json.Marshal(WSMessage{Type: MsgTypePong, Timestamp: time.Now().UnixMilli()})
			h.sendTo(client, pong)
		}
	}
}
