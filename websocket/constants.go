// websocket/constants.go
package websocket

import (
	"time"
)

// Константы для WebSocket-соединения
const (
	// Время ожидания записи сообщения клиенту
	writeWait = 10 * time.Second

	// Время ожидания сообщения от клиента
	pongWait = 60 * time.Second

	// Период отправки пинг-сообщений
	pingPeriod = (pongWait * 9) / 10

	// Максимальный размер сообщения от клиента
	maxMessageSize = 4 * 1024

	// Размер очереди исходящих сообщений клиента
	sendBufferSize = 16
)

// Типы сообщений
const (
	TypeDashboard = "dashboard"
	TypeRefresh   = "refresh"
	TypePing      = "ping"
	TypePong      = "pong"
	TypeError     = "error"
)
