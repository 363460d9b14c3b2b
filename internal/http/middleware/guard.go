package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "chat-backend/internal/errors"
	"chat-backend/internal/guard"
	"chat-backend/internal/service"
)

// WithMeta создаёт request-scoped хранилище метаданных и кладёт его в контекст.
// Должен стоять раньше любого Guard-мидлвара.
func WithMeta() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := guard.IntoContext(r.Context(), guard.NewMeta())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Guard навешивает гард на маршрут. Маппинг исходов:
//   - Allow -> запрос идёт дальше;
//   - Deny -> denyErr (ошибка бизнес-слоя, задаёт 401 или 403);
//   - NotFound -> 404.
func Guard(g guard.Guard, denyErr error) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch g.Evaluate(r.Context(), carrierFrom(r)) {
			case guard.Allow:
				next.ServeHTTP(w, r)
			case guard.NotFound:
				apierrors.WriteError(w, r, service.ErrNotFound)
			default:
				apierrors.WriteError(w, r, denyErr)
			}
		})
	}
}

// httpCarrier адаптирует *http.Request под контракт guard.Carrier.
type httpCarrier struct {
	r *http.Request
}

func carrierFrom(r *http.Request) *httpCarrier {
	return &httpCarrier{r: r}
}

// Authorization возвращает значение заголовка Authorization;
// HTTP-транспорт всегда ожидает схему Bearer.
func (c *httpCarrier) Authorization() (string, bool) {
	return c.r.Header.Get("Authorization"), true
}

func (c *httpCarrier) UserAgent() string {
	return c.r.UserAgent()
}

func (c *httpCarrier) Param(name string) string {
	return chi.URLParam(c.r, name)
}

// Meta возвращает хранилище метаданных запроса.
// WithMeta обязателен выше по цепочке; при его отсутствии гард получит
// пустое хранилище и ничего не сможет опубликовать.
func (c *httpCarrier) Meta() *guard.Meta {
	if m := guard.MetaFrom(c.r.Context()); m != nil {
		return m
	}

	return guard.NewMeta()
}
