// websocket/connection_handler.go
package websocket

import (
	"log"
	"net/http"

	"github.com/google/uuid"
)

// HandleConnections обрабатывает подключения к ленте панели
func (manager *Manager) HandleConnections(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Ошибка при установке WebSocket-соединения:", err)
		return
	}

	client := &Client{
		ID:     uuid.NewString(),
		Socket: conn,
		Send:   make(chan []byte, sendBufferSize),
	}

	// Новый клиент сразу получает текущее состояние
	client.Send <- manager.currentDashboard()

	select {
	case manager.Register <- client:
	case <-manager.done:
		conn.Close()
		return
	}
	log.Printf("✅ Клиент %s подключился с адреса %s", client.ID, r.RemoteAddr)

	go client.readPump(manager)
	go client.writePump()
}
