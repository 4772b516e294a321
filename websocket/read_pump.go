// websocket/read_pump.go
package websocket

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

// readPump обрабатывает сообщения клиента: ping и refresh
func (c *Client) readPump(manager *Manager) {
	defer func() {
		// Отправка в закрытый канал после отключения
		if r := recover(); r != nil {
			log.Printf("Паника при чтении сообщений клиента %s: %v", c.ID, r)
		}
		select {
		case manager.Unregister <- c:
		case <-manager.done:
		}
		c.Socket.Close()
	}()

	c.Socket.SetReadLimit(maxMessageSize)
	c.Socket.SetReadDeadline(time.Now().Add(pongWait))
	c.Socket.SetPongHandler(func(string) error {
		c.Socket.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Ошибка: %v", err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Println("Ошибка декодирования сообщения:", err)
			continue
		}

		switch msg.Type {
		case TypePing:
			if pong, err := encode(TypePong, nil); err == nil {
				c.Send <- pong
			}
		case TypeRefresh:
			c.Send <- manager.currentDashboard()
		}
	}
}
