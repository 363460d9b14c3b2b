// Package http собирает HTTP-поверхность сервиса: роутер chi, мидлвары
// и цепочки гардов на защищённых маршрутах.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"chat-backend/internal/guard"
	"chat-backend/internal/http/handlers"
	"chat-backend/internal/http/middleware"
	"chat-backend/internal/service"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	BasePath string // например, "/api"; если пустой — роуты регистрируются на корне.
	// Metrics — реестр Prometheus; nil отключает сбор метрик.
	Metrics prometheus.Registerer
	// WSSubscribe — хендлер WS-подписки на чат; nil отключает маршрут.
	// Аутентифицируется сам на рукопожатии, поэтому регистрируется в обход
	// сессионного мидлвара.
	WSSubscribe http.HandlerFunc
}

// Guards — гарды, навешиваемые на защищённые маршруты.
type Guards struct {
	Session     guard.Guard
	Chat        guard.Guard
	Participant guard.Guard
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(h *handlers.Handlers, g Guards, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
		middleware.WithMeta(),           // request-scoped метаданные для гардов
	)
	if opts.Metrics != nil {
		root.Use(middleware.Metrics(opts.Metrics))
	}
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	// Регистрация маршрутов.
	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h, g, opts.WSSubscribe)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h, g, opts.WSSubscribe)
	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
//
// Маппинг отказов гардов: сессионный гард отдаёт 401 (unauthenticated),
// ресурсные гарды — 403 (permission denied); NotFound всегда 404.
func registerRoutes(r chi.Router, h *handlers.Handlers, g Guards, wsSubscribe http.HandlerFunc) {
	session := middleware.Guard(g.Session, service.ErrInvalidCredentials)
	chatAccess := middleware.Guard(g.Chat, service.ErrForbidden)
	participantAccess := middleware.Guard(g.Participant, service.ErrForbidden)

	// auth
	r.Route("/auth", func(r chi.Router) {
		r.Post("/sign-up-by-password", h.SignUpStart)
		r.Post("/sign-up-by-password/verify", h.SignUpVerify)
		r.Post("/sign-in", h.SignIn)

		r.Group(func(r chi.Router) {
			r.Use(session)
			r.Post("/sign-out", h.SignOut)
			r.Post("/prolong", h.Prolong)
		})
	})

	// chats
	r.Route("/chats", func(r chi.Router) {
		if wsSubscribe != nil {
			r.Get("/{chatId}/ws", wsSubscribe)
		}

		r.Group(func(r chi.Router) {
			r.Use(session)

			r.Get("/", h.ListChats)
			r.Post("/", h.CreateChat)

			r.Route("/{chatId}", func(r chi.Router) {
				r.Use(chatAccess)

				r.Get("/", h.GetChat)
				r.Delete("/", h.DeleteChat)

				r.Get("/participants", h.ListParticipants)
				r.Post("/participants", h.AddParticipant)
				r.Route("/participants/{chatParticipantId}", func(r chi.Router) {
					r.Use(participantAccess)
					r.Get("/", h.GetParticipant)
					r.Delete("/", h.RemoveParticipant)
				})

				r.Get("/messages", h.ListMessages)
				r.Post("/messages", h.PostMessage)
			})
		})
	})

	// health
	r.Get("/health", h.HealthCheck)
}
