package ws

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"chat-backend/internal/guard"
	logctx "chat-backend/internal/pkg/log"
)

// Имя query-параметра с токеном при WS-рукопожатии: браузерный WebSocket
// не умеет ставить заголовок Authorization.
const tokenQueryParam = "token"

// Gateway апгрейдит HTTP-запрос в WebSocket-подписку на чат.
//
// Гарды отрабатывают ДО апгрейда, на рукопожатии: неавторизованное или
// чужое соединение отклоняется обычным HTTP-статусом и до сокета не доходит.
type Gateway struct {
	hub      *Hub
	session  guard.Guard
	chat     guard.Guard
	upgrader websocket.Upgrader
}

// NewGateway создаёт WS-шлюз поверх hub с заданными гардами.
func NewGateway(hub *Hub, session, chat guard.Guard) *Gateway {
	return &Gateway{
		hub:     hub,
		session: session,
		chat:    chat,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Subscribe — GET /chats/{chatId}/ws. На успехе апгрейдит соединение
// и подписывает клиента на события чата.
func (g *Gateway) Subscribe(w http.ResponseWriter, r *http.Request) {
	carrier := &wsCarrier{r: r, meta: guard.NewMeta()}

	if g.session.Evaluate(r.Context(), carrier) != guard.Allow {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	switch g.chat.Evaluate(r.Context(), carrier) {
	case guard.Allow:
	case guard.NotFound:
		http.Error(w, "not found", http.StatusNotFound)
		return
	default:
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	chat, _ := guard.ChatFrom(carrier.Meta())
	user, _ := guard.UserFrom(carrier.Meta())

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам ответил клиенту; нам остаётся залогировать.
		logctx.From(r.Context()).Warn("ws_upgrade_failed",
			slog.String("err", err.Error()),
		)

		return
	}

	client := &Client{
		hub:    g.hub,
		conn:   conn,
		chatID: chat.ID,
		userID: user.ID,
		send:   make(chan []byte, 16),
	}

	g.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// wsCarrier адаптирует WS-рукопожатие под контракт guard.Carrier:
// токен приходит сырым в query-параметре, без схемы Bearer.
type wsCarrier struct {
	r    *http.Request
	meta *guard.Meta
}

func (c *wsCarrier) Authorization() (string, bool) {
	return c.r.URL.Query().Get(tokenQueryParam), false
}

func (c *wsCarrier) UserAgent() string {
	return c.r.UserAgent()
}

func (c *wsCarrier) Param(name string) string {
	return chi.URLParam(c.r, name)
}

func (c *wsCarrier) Meta() *guard.Meta {
	return c.meta
}
