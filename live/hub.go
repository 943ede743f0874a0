// Package live пушит события админ-дашборду: новые заявки и смены статусов
// появляются без перезагрузки страницы.
package live

import (
	"encoding/json"
	"log/slog"
	"sync"
)

const (
	EventRegistrationCreated = "REGISTRATION_CREATED"
	EventStatusUpdated       = "REGISTRATION_STATUS_UPDATED"
)

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	broadcast chan []byte
	clients   map[*Client]bool
	logger    *slog.Logger
	mu        sync.RWMutex
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		clients:    make(map[*Client]bool),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Info("live feed client connected", slog.Int("clients", h.clientCount()))

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.closeSend()
			}
			h.mu.Unlock()
			h.logger.Info("live feed client disconnected", slog.Int("clients", h.clientCount()))

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer; drop the message rather than block the hub.
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast рассылает событие всем подключённым админам. Никогда не блокирует
// вызывающий запрос.
func (h *Hub) Broadcast(eventType string, payload interface{}) {
	data, err := json.Marshal(Message{Type: eventType, Payload: payload})
	if err != nil {
		h.logger.Error("failed to marshal live feed message", slog.Any("error", err))
		return
	}
	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("live feed broadcast channel full, dropping message", slog.String("type", eventType))
	}
}

func (h *Hub) clientCount() int {
	return len(h.clients)
}
