// websocket/write_pump.go
package websocket

import (
	"log"
	"time"

	"github.com/gorilla/websocket"
)

// writePump отвечает за отправку сообщений клиенту
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Socket.Close()
		log.Printf("Завершение writePump для клиента %s", c.ID)
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Socket.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Канал закрыт менеджером
				c.Socket.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// Каждое сообщение отправляется отдельным кадром
			if err := c.Socket.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
