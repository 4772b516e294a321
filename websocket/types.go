// websocket/types.go
package websocket

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

// Message - сообщение, передаваемое через WebSocket
type Message struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// Client - подключенный наблюдатель панели
type Client struct {
	ID     string
	Socket *websocket.Conn
	Send   chan []byte
}

// SnapshotFunc возвращает текущее состояние панели для новых клиентов и запросов refresh
type SnapshotFunc func() (any, error)

// Manager - менеджер WebSocket-соединений.
// Карта клиентов принадлежит горутине Run, остальные обращаются к ней через каналы.
type Manager struct {
	clients    map[string]*Client
	Broadcast  chan []byte
	Register   chan *Client
	Unregister chan *Client
	snapshot   SnapshotFunc
	connected  atomic.Int64
	done       chan struct{}
}

// Конфигурация WebSocket-соединения
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}
