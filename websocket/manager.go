// websocket/manager.go
package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
)

// ErrManagerStopped - менеджер остановлен и не принимает сообщения
var ErrManagerStopped = errors.New("менеджер WebSocket остановлен")

// NewManager создает новый менеджер WebSocket-соединений
func NewManager(snapshot SnapshotFunc) *Manager {
	return &Manager{
		clients:    make(map[string]*Client),
		Broadcast:  make(chan []byte),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		snapshot:   snapshot,
		done:       make(chan struct{}),
	}
}

// Run запускает работу менеджера до отмены контекста
func (manager *Manager) Run(ctx context.Context) {
	defer close(manager.done)

	for {
		select {
		case client := <-manager.Register:
			manager.clients[client.ID] = client
			manager.connected.Store(int64(len(manager.clients)))
			log.Printf("👤 Клиент %s подключился к панели", client.ID)

		case client := <-manager.Unregister:
			if _, ok := manager.clients[client.ID]; ok {
				delete(manager.clients, client.ID)
				close(client.Send)
				manager.connected.Store(int64(len(manager.clients)))
				log.Printf("👤 Клиент %s отключился", client.ID)
			}

		case message := <-manager.Broadcast:
			manager.broadcast(message)

		case <-ctx.Done():
			for id, client := range manager.clients {
				close(client.Send)
				delete(manager.clients, id)
			}
			manager.connected.Store(0)
			return
		}
	}
}

// broadcast отправляет сообщение всем подключенным клиентам; медленные клиенты отключаются
func (manager *Manager) broadcast(message []byte) {
	for id, client := range manager.clients {
		select {
		case client.Send <- message:
		default:
			close(client.Send)
			delete(manager.clients, id)
			log.Printf("⚠️ Клиент %s не успевает получать сообщения и отключен", id)
		}
	}
	manager.connected.Store(int64(len(manager.clients)))
}

// ClientCount возвращает число подключенных клиентов
func (manager *Manager) ClientCount() int {
	return int(manager.connected.Load())
}

// BroadcastDashboard рассылает состояние панели всем клиентам
func (manager *Manager) BroadcastDashboard(ctx context.Context, snapshot any) error {
	data, err := encode(TypeDashboard, snapshot)
	if err != nil {
		return err
	}
	select {
	case manager.Broadcast <- data:
		return nil
	case <-manager.done:
		return ErrManagerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// currentDashboard кодирует текущее состояние панели или сообщение об ошибке
func (manager *Manager) currentDashboard() []byte {
	snapshot, err := manager.snapshot()
	if err != nil {
		return errorMessage(err)
	}
	data, err := encode(TypeDashboard, snapshot)
	if err != nil {
		return errorMessage(err)
	}
	return data
}

func encode(msgType string, payload any) ([]byte, error) {
	msg := Message{Type: msgType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("ошибка кодирования сообщения %s: %w", msgType, err)
		}
		msg.Data = raw
	}
	return json.Marshal(msg)
}

func errorMessage(err error) []byte {
	data, _ := json.Marshal(Message{Type: TypeError, Error: err.Error()})
	return data
}
