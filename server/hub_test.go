package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialTestHub 启动一个注册到hub的websocket端点并接入一个客户端
func dialTestHub(t *testing.T, hub *PromptHub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := wsUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register(conn)
	}))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)
	return conn
}

func TestHubBroadcastReachesClient(t *testing.T) {
	hub := NewPromptHub()
	defer hub.Close()
	conn := dialTestHub(t, hub)

	hub.Broadcast(map[string]string{"prompt": "neon skyline"})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg WSMessage
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, MsgTypePrompt, msg.Type)
	assert.Contains(t, string(msg.Data), "neon skyline")
}

func TestHubPingAnsweredWithPong(t *testing.T) {
	hub := NewPromptHub()
	defer hub.Close()
	conn := dialTestHub(t, hub)

	ping, _ := json.Marshal(WSMessage{Type: MsgTypePing, Timestamp: time.Now().UnixMilli()})
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, ping))

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg WSMessage
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, MsgTypePong, msg.Type)
}

func TestHubCloseDuringPingFlood(t *testing.T) {
	hub := NewPromptHub()
	conn := dialTestHub(t, hub)

	// 心跳洪峰与Close并发：注销后迟到的pong必须被静默丢弃，
	// 而不是撞上已关闭的发送通道
	ping, _ := json.Marshal(WSMessage{Type: MsgTypePing, Timestamp: time.Now().UnixMilli()})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			if err := conn.WriteMessage(websocket.TextMessage, ping); err != nil {
				return
			}
		}
	}()

	time.Sleep(5 * time.Millisecond)
	hub.Close()
	<-done

	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 },
		time.Second, 10*time.Millisecond)
}
