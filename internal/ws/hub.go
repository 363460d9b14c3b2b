// Package ws реализует WebSocket-шлюз рассылки сообщений чатов:
// hub держит подписчиков по чатам и транслирует им новые сообщения.
package ws

import (
	"encoding/json"
	"log/slog"
)

// event — исходящее событие для подписчиков чата.
type event struct {
	chatID  int64
	payload []byte
}

// Hub владеет всеми подключёнными клиентами и раскладывает их по чатам.
// Вся работа с картами происходит в одной горутине Run — синхронизация
// каналами, без мьютексов.
type Hub struct {
	// Подписчики по идентификатору чата.
	rooms map[int64]map[*Client]struct{}

	broadcast  chan event
	register   chan *Client
	unregister chan *Client

	log *slog.Logger
}

// NewHub создаёт hub. Запуск — отдельной горутиной через Run.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		rooms:      make(map[int64]map[*Client]struct{}),
		broadcast:  make(chan event, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
	}
}

// Run обслуживает hub до закрытия done.
func (h *Hub) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			for _, room := range h.rooms {
				for client := range room {
					close(client.send)
				}
			}

			return
		case client := <-h.register:
			room := h.rooms[client.chatID]
			if room == nil {
				room = make(map[*Client]struct{})
				h.rooms[client.chatID] = room
			}
			room[client] = struct{}{}
		case client := <-h.unregister:
			h.drop(client)
		case ev := <-h.broadcast:
			for client := range h.rooms[ev.chatID] {
				select {
				case client.send <- ev.payload:
				default:
					// Медленный клиент: отключаем, чтобы не блокировать чат.
					h.drop(client)
				}
			}
		}
	}
}

// drop удаляет клиента из комнаты и закрывает его канал отправки.
func (h *Hub) drop(client *Client) {
	room, ok := h.rooms[client.chatID]
	if !ok {
		return
	}

	if _, ok := room[client]; !ok {
		return
	}

	delete(room, client)
	close(client.send)

	if len(room) == 0 {
		delete(h.rooms, client.chatID)
	}
}

// NotifyMessage рассылает событие всем подписчикам чата.
// Реализует контракт уведомлений бизнес-слоя; безопасен для
// конкурентных вызовов.
func (h *Hub) NotifyMessage(chatID int64, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		h.log.Error("ws_marshal_failed", slog.String("err", err.Error()))

		return
	}

	h.broadcast <- event{chatID: chatID, payload: raw}
}
