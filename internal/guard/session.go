package guard

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"chat-backend/internal/device"
	"chat-backend/internal/models"
	"chat-backend/internal/pkg/log"
	"chat-backend/internal/storage"
	"chat-backend/internal/token"
)

// SessionSource отдаёт активные сессии.
type SessionSource interface {
	ActiveSessionByID(ctx context.Context, id int64, now time.Time) (*models.AuthSession, error)
}

// UserSource отдаёт пользователей.
type UserSource interface {
	UserByID(ctx context.Context, id int64) (*models.User, error)
}

// SessionOptions настраивает SessionGuard.
type SessionOptions struct {
	// Optional — при отказе пропустить запрос дальше без сессии
	// (анонимно), вместо того чтобы отклонить его.
	Optional bool
	// Now — источник текущего времени; по умолчанию time.Now (UTC).
	Now func() time.Time
}

// SessionGuard разрешает предъявленный креденшиал в сессию и пользователя.
//
// Последовательность проверок фиксирована: наличие креденшила -> декодирование
// токена -> активная сессия по sub -> совпадение jti с access_token_id ->
// совпадение отпечатка устройства -> активность пользователя. Любой сбой
// схлопывается в единый отказ: клиент не должен узнать, на каком шаге
// аутентификация развалилась.
type SessionGuard struct {
	sessions  SessionSource
	users     UserSource
	signature string
	optional  bool
	now       func() time.Time
}

// NewSessionGuard создаёт гард разрешения сессии.
func NewSessionGuard(sessions SessionSource, users UserSource, signature string, opts SessionOptions) *SessionGuard {
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}

	return &SessionGuard{
		sessions:  sessions,
		users:     users,
		signature: signature,
		optional:  opts.Optional,
		now:       now,
	}
}

// Evaluate выполняет разрешение сессии для текущего запроса.
// На успехе публикует сессию и её пользователя в метаданные запроса.
func (g *SessionGuard) Evaluate(ctx context.Context, req Carrier) Decision {
	const op = "guard.SessionGuard.Evaluate"

	// Сессия уже разрешена ранее по цепочке — повторная работа не нужна.
	if _, ok := SessionFrom(req.Meta()); ok {
		return Allow
	}

	currentTime := g.now()

	authorization, bearer := req.Authorization()
	if authorization == "" {
		return g.deny()
	}

	userAgent := req.UserAgent()
	if userAgent == "" {
		return g.deny()
	}

	raw := authorization
	if bearer {
		raw = parseAuthorization(authorization)
		if raw == "" {
			return g.deny()
		}
	}

	payload := token.Decode(raw, g.signature)
	if payload == nil {
		return g.deny()
	}

	session, err := g.sessions.ActiveSessionByID(ctx, payload.SessionID, currentTime)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.From(ctx).Error("session_lookup_failed",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
		}

		return g.deny()
	}

	// Токен с прежним jti после ротации недействителен.
	if session.AccessTokenID != payload.TokenID {
		return g.deny()
	}

	if device.Fingerprint(userAgent) != session.Device {
		return g.deny()
	}

	user, err := g.users.UserByID(ctx, session.UserID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.From(ctx).Error("session_user_lookup_failed",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
		}

		return g.deny()
	}

	if !user.IsActive {
		return g.deny()
	}

	PutSession(req.Meta(), session)
	PutUser(req.Meta(), user)

	return Allow
}

// deny возвращает исход отказа с учётом режима Optional:
// необязательный гард пропускает запрос дальше анонимно.
func (g *SessionGuard) deny() Decision {
	if g.optional {
		return Allow
	}

	return Deny
}

// parseAuthorization выделяет токен из строки заголовка Authorization.
// Схема строго "Bearer " (регистрозависимо, один пробел); иначе — "".
func parseAuthorization(authorization string) string {
	const scheme = "Bearer "

	if !strings.HasPrefix(authorization, scheme) {
		return ""
	}

	return authorization[len(scheme):]
}
