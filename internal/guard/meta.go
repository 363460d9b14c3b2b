package guard

import (
	"context"

	"chat-backend/internal/models"
)

// Meta — изолированное request-scoped хранилище метаданных запроса.
//
// Один экземпляр живёт ровно один входящий вызов (HTTP-запрос или
// WS-соединение): ранние гарды пишут разрешённые сущности, поздние гарды и
// хендлеры читают их, не обращаясь в БД повторно. Между запросами ничего не
// разделяется, поэтому синхронизация не нужна — цепочка гардов одного запроса
// выполняется строго последовательно.
type Meta struct {
	values map[string]any
}

// NewMeta создаёт пустое хранилище метаданных запроса.
func NewMeta() *Meta {
	return &Meta{}
}

// Get возвращает значение по ключу и признак его наличия.
// Безопасен на nil-получателе (метаданные не созданы транспортом).
func (m *Meta) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}

	v, ok := m.values[key]
	return v, ok
}

// Set сохраняет значение по ключу. Само хранилище создаётся лениво,
// при первой записи.
func (m *Meta) Set(key string, value any) {
	if m.values == nil {
		m.values = make(map[string]any)
	}

	m.values[key] = value
}

// Ключи, под которыми гарды публикуют разрешённые сущности.
const (
	keySession     = "auth_session"
	keyUser        = "current_auth_user"
	keyChat        = "chat"
	keyParticipant = "chat_participant"
)

// SessionFrom возвращает сессию, опубликованную SessionGuard.
func SessionFrom(m *Meta) (*models.AuthSession, bool) {
	v, ok := m.Get(keySession)
	if !ok {
		return nil, false
	}

	s, ok := v.(*models.AuthSession)
	return s, ok
}

// PutSession публикует сессию в метаданные запроса.
func PutSession(m *Meta, session *models.AuthSession) {
	m.Set(keySession, session)
}

// UserFrom возвращает пользователя, опубликованного SessionGuard.
func UserFrom(m *Meta) (*models.User, bool) {
	v, ok := m.Get(keyUser)
	if !ok {
		return nil, false
	}

	u, ok := v.(*models.User)
	return u, ok
}

// PutUser публикует пользователя в метаданные запроса.
func PutUser(m *Meta, user *models.User) {
	m.Set(keyUser, user)
}

// ChatFrom возвращает чат, опубликованный ChatGuard.
func ChatFrom(m *Meta) (*models.Chat, bool) {
	v, ok := m.Get(keyChat)
	if !ok {
		return nil, false
	}

	c, ok := v.(*models.Chat)
	return c, ok
}

// PutChat публикует чат в метаданные запроса.
func PutChat(m *Meta, chat *models.Chat) {
	m.Set(keyChat, chat)
}

// ParticipantFrom возвращает участника, опубликованного ParticipantGuard.
func ParticipantFrom(m *Meta) (*models.ChatParticipant, bool) {
	v, ok := m.Get(keyParticipant)
	if !ok {
		return nil, false
	}

	p, ok := v.(*models.ChatParticipant)
	return p, ok
}

// PutParticipant публикует участника в метаданные запроса.
func PutParticipant(m *Meta, participant *models.ChatParticipant) {
	m.Set(keyParticipant, participant)
}

type metaCtxKey struct{}

// IntoContext кладёт хранилище метаданных в контекст запроса.
func IntoContext(ctx context.Context, m *Meta) context.Context {
	return context.WithValue(ctx, metaCtxKey{}, m)
}

// MetaFrom достаёт хранилище метаданных из контекста.
// Возвращает nil, если транспорт его не создал.
func MetaFrom(ctx context.Context) *Meta {
	if v := ctx.Value(metaCtxKey{}); v != nil {
		if m, ok := v.(*Meta); ok {
			return m
		}
	}

	return nil
}
