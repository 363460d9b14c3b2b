package models

import "time"

// Chat — модель чата.
// EndedAt == nil, пока чат не завершён; в завершённый чат нельзя писать.
type Chat struct {
	ID        int64
	CreatedAt time.Time
	EndedAt   *time.Time
}

// Ended сообщает, завершён ли чат на момент now.
func (c *Chat) Ended(now time.Time) bool {
	return c.EndedAt != nil && !c.EndedAt.After(now)
}

// ChatParticipant — участник чата.
// Пара (ChatID, UserID) уникальна. Создатель чата всегда администратор,
// и флаг IsCreator неизменяем.
type ChatParticipant struct {
	ID        int64
	ChatID    int64
	UserID    int64
	IsCreator bool
	IsAdmin   bool
}

// ChatMessage — сообщение в чате.
type ChatMessage struct {
	ID            int64
	ChatID        int64
	ParticipantID int64
	CreatedAt     time.Time
	Text          string
}
